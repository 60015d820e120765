package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/postqueue/postqueue/configs"
	"github.com/postqueue/postqueue/internal/api/handlers"
	"github.com/postqueue/postqueue/internal/api/middleware"
	job "github.com/postqueue/postqueue/internal/jobs"
	"github.com/postqueue/postqueue/internal/queue"
	"github.com/postqueue/postqueue/internal/repository"
	"github.com/postqueue/postqueue/internal/service"
	"github.com/postqueue/postqueue/pkg/crypto"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cipher, err := crypto.New([]byte(cfg.EncryptionKey))
	if err != nil {
		log.Fatalf("Failed to initialize token cipher: %v", err)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Api-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	rateLimitRepo := repository.NewRateLimitRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(*cfg)
	accountService := service.NewAccountService(socialAccountRepo, cipher)
	postService := service.NewPostService(db, postRepo, socialAccountRepo, mediaAssetRepo, postMediaRepo)
	rateLimitService := service.NewRateLimitService(rateLimitRepo, cfg.ActionLimits)
	assetService := service.NewAssetService(mediaAssetRepo, r2Service)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	account := handlers.NewAccountHandler(accountService)
	api.Post("/accounts/connect", account.ConnectAccount)
	api.Post("/accounts/disconnect", account.DisconnectAccount)
	api.Get("/accounts", account.ListAccounts)

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts/create", post.SchedulePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/update", post.UpdatePost)
	api.Post("/posts/cancel", post.CancelPost)
	api.Post("/posts/publish", post.MarkPublished)
	api.Post("/posts/fail", post.MarkFailed)
	api.Post("/posts/remove", post.RemovePost)

	limits := handlers.NewRateLimitHandler(rateLimitService)
	api.Post("/limits/consume", limits.CheckAndConsume)

	assets := handlers.NewAssetHandler(assetService)
	api.Post("/assets/upload", assets.UploadAsset)
	api.Post("/assets/remove", assets.RemoveAsset)

	// cron jobs
	windowPruneJob := job.NewWindowPruneJob(rateLimitRepo)
	tokenExpiryJob := job.NewTokenExpiryJob(socialAccountRepo)

	// queue
	queueW := queue.NewQueue(postRepo, postService, accountService)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", windowPruneJob.PruneWindows)
	c.AddFunc("@every 00h10m00s", tokenExpiryJob.ExpireTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeDispatchPost, queueW.HandleDispatchPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
