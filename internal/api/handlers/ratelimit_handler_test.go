package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postqueue/postqueue/internal/apperror"
	"github.com/postqueue/postqueue/internal/transfer"
)

type stubRateLimitService struct {
	admission *transfer.Admission
	err       error

	gotUserID   int64
	gotPlatform string
	gotAction   string
}

func (s *stubRateLimitService) CheckAndConsume(_ context.Context, userID int64, platform, actionType string) (*transfer.Admission, error) {
	s.gotUserID = userID
	s.gotPlatform = platform
	s.gotAction = actionType
	return s.admission, s.err
}

func newRateLimitApp(svc *stubRateLimitService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "7")
		return c.Next()
	})
	app.Get("/api/limits/consume", NewRateLimitHandler(svc).CheckAndConsume)
	return app
}

func TestCheckAndConsume_Admitted(t *testing.T) {
	svc := &stubRateLimitService{admission: &transfer.Admission{Admitted: true, Remaining: 4}}
	app := newRateLimitApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/limits/consume?platform=twitter&action_type=schedule_post", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), svc.gotUserID)
	assert.Equal(t, "twitter", svc.gotPlatform)
	assert.Equal(t, "schedule_post", svc.gotAction)

	var adm transfer.Admission
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&adm))
	assert.True(t, adm.Admitted)
	assert.Equal(t, 4, adm.Remaining)
}

func TestCheckAndConsume_RejectedIs429(t *testing.T) {
	svc := &stubRateLimitService{admission: &transfer.Admission{Admitted: false, Remaining: 0}}
	app := newRateLimitApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/limits/consume?platform=twitter&action_type=schedule_post", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var adm transfer.Admission
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&adm))
	assert.False(t, adm.Admitted)
}

func TestCheckAndConsume_InvalidArgumentIs400(t *testing.T) {
	svc := &stubRateLimitService{err: fmt.Errorf("%w: platform and action_type are required", apperror.ErrInvalidArgument)}
	app := newRateLimitApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/limits/consume", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid_argument", body["error"])
}

func TestErrorResponse_TaxonomyMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{fmt.Errorf("%w: bad input", apperror.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{fmt.Errorf("%w: post 11", apperror.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: post 11 is published", apperror.ErrInvalidState), http.StatusConflict, "invalid_state"},
		{fmt.Errorf("%w: connection refused", apperror.ErrStorageUnavailable), http.StatusServiceUnavailable, "storage_unavailable"},
		{fmt.Errorf("something else"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		app := fiber.New()
		failing := tc.err
		app.Get("/boom", func(c *fiber.Ctx) error {
			return ErrorResponse(c, failing)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.NoError(t, err)

		assert.Equal(t, tc.status, resp.StatusCode, tc.kind)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, tc.kind, body["error"])
		resp.Body.Close()
	}
}
