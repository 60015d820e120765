package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"
	"github.com/postqueue/postqueue/internal/models"
	"github.com/postqueue/postqueue/internal/transfer"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetForOwner(ctx context.Context, id, userID int64) (*models.Post, error)
	Update(ctx context.Context, id, userID int64, upd *transfer.PostUpdate) (int64, error)
	UpdateStatus(ctx context.Context, id, userID int64, from, to string) (int64, error)
	Remove(ctx context.Context, id, userID int64) (int64, error)
	List(ctx context.Context, userID int64, filter *transfer.PostFilter, limit, offset int) ([]*models.Post, int64, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, account_id, content, hashtags, scheduled_for, status,
		brand_profile_id, created_from, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, account_id, content, hashtags, scheduled_for, status, brand_profile_id, created_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.AccountID, post.Content, post.Hashtags,
			post.ScheduledFor, post.Status, post.BrandProfileID, post.CreatedFrom).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.AccountID, post.Content, post.Hashtags,
			post.ScheduledFor, post.Status, post.BrandProfileID, post.CreatedFrom).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) GetForOwner(ctx context.Context, id, userID int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND user_id = $2`
	row := r.db.QueryRowContext(ctx, query, id, userID)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

// Update edits a post only while it is still scheduled; the status guard
// lives in the WHERE clause so a terminal post is never half-updated.
func (r *postRepository) Update(ctx context.Context, id, userID int64, upd *transfer.PostUpdate) (int64, error) {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{id, userID, models.PostStatusScheduled}

	if upd.Content != nil {
		args = append(args, *upd.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if upd.Hashtags != nil {
		args = append(args, pq.StringArray(upd.Hashtags))
		sets = append(sets, fmt.Sprintf("hashtags = $%d", len(args)))
	}
	if upd.ScheduledFor != nil {
		args = append(args, *upd.ScheduledFor)
		sets = append(sets, fmt.Sprintf("scheduled_for = $%d", len(args)))
	}
	if upd.BrandProfileID != nil {
		args = append(args, *upd.BrandProfileID)
		sets = append(sets, fmt.Sprintf("brand_profile_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE posts
		SET %s
		WHERE id = $1 AND user_id = $2 AND status = $3
	`, strings.Join(sets, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}

// UpdateStatus moves a post from one status to another in a single
// conditional statement. Zero affected rows means the post is absent, not
// owned, or no longer in the expected state.
func (r *postRepository) UpdateStatus(ctx context.Context, id, userID int64, from, to string) (int64, error) {
	query := `
		UPDATE posts
		SET status = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2 AND status = $3
	`
	result, err := r.db.ExecContext(ctx, query, id, userID, from, to)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}

func (r *postRepository) Remove(ctx context.Context, id, userID int64) (int64, error) {
	query := `DELETE FROM posts WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}

// List applies the optional filters, orders by scheduled_for ascending and
// paginates the filtered set. The platform filter joins social_accounts.
func (r *postRepository) List(ctx context.Context, userID int64, filter *transfer.PostFilter, limit, offset int) ([]*models.Post, int64, error) {
	from := `FROM posts p`
	where := []string{"p.user_id = $1"}
	args := []interface{}{userID}

	if filter != nil {
		if filter.Platform != nil {
			from += ` JOIN social_accounts a ON a.id = p.account_id`
			args = append(args, *filter.Platform)
			where = append(where, fmt.Sprintf("a.platform = $%d", len(args)))
		}
		if filter.Status != nil {
			args = append(args, *filter.Status)
			where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
		}
		if filter.ScheduledFrom != nil {
			args = append(args, *filter.ScheduledFrom)
			where = append(where, fmt.Sprintf("p.scheduled_for >= $%d", len(args)))
		}
		if filter.ScheduledTo != nil {
			args = append(args, *filter.ScheduledTo)
			where = append(where, fmt.Sprintf("p.scheduled_for <= $%d", len(args)))
		}
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s WHERE %s`, from, whereClause)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	selectCols := `p.id, p.user_id, p.account_id, p.content, p.hashtags, p.scheduled_for, p.status,
		p.brand_profile_id, p.created_from, p.created_at, p.updated_at`

	args = append(args, limit)
	limitParam := len(args)
	args = append(args, offset)
	offsetParam := len(args)

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY p.scheduled_for ASC LIMIT $%d OFFSET $%d`,
		selectCols, from, whereClause, limitParam, offsetParam)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	return posts, total, nil
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.UserID, &post.AccountID, &post.Content, &post.Hashtags,
		&post.ScheduledFor, &post.Status, &post.BrandProfileID, &post.CreatedFrom,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
