package middleware

import (
	contextPkg "ExpenseChat/pkg/context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestApp(cfg Config) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	m := New(log, cfg)
	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Use(m.NewRateLimiter, m.NewUserMiddleware, m.NewLoggingMiddleware)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user":    m.GetUserID(c),
			"request": m.GetRequestID(c),
			"ctxUser": contextPkg.GetUserID(contextPkg.FromFiberCtx(c)),
		})
	})
	return app
}

func TestUserMiddleware(t *testing.T) {
	app := newTestApp(Config{})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"default user", "", fiber.StatusOK},
		{"explicit user", "maria.lopez@example.com", fiber.StatusOK},
		{"malformed user", "drop table;", fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(RequestIDKey))

			body, _ := io.ReadAll(resp.Body)
			if tt.wantStatus == fiber.StatusOK {
				want := tt.header
				if want == "" {
					want = contextPkg.DefaultUserID
				}
				assert.Contains(t, string(body), `"user":"`+want+`"`)
				assert.Contains(t, string(body), `"ctxUser":"`+want+`"`)
			}
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := newTestApp(Config{})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(RequestIDKey, "req-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(RequestIDKey))

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(RequestIDKey, strings.Repeat("x", 200))

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(RequestIDKey), 26)
}

func TestRateLimiter(t *testing.T) {
	app := newTestApp(Config{RateLimitRPS: 0.001, RateLimitBurst: 2})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, statuses)
}

func TestRateLimiterIsPerUser(t *testing.T) {
	app := newTestApp(Config{RateLimitRPS: 0.001, RateLimitBurst: 1})

	send := func(userID string) int {
		req := httptest.NewRequest("GET", "/whoami", nil)
		if userID != "" {
			req.Header.Set(UserIDHeader, userID)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, send("alice"))
	assert.Equal(t, fiber.StatusTooManyRequests, send("alice"))
	assert.Equal(t, fiber.StatusOK, send("bob"))

	// Requests without a header and malformed ids share the default bucket.
	assert.Equal(t, fiber.StatusOK, send(""))
	assert.Equal(t, fiber.StatusTooManyRequests, send("not a valid id!"))
}

func TestRateLimiterDropsIdleClients(t *testing.T) {
	current := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	r := newRateLimiter(rate.Limit(0.001), 1)
	r.now = func() time.Time { return current }

	assert.True(t, r.allow("alice|1.2.3.4"))
	assert.False(t, r.allow("alice|1.2.3.4"))
	assert.True(t, r.allow("bob|1.2.3.4"))
	assert.Equal(t, 2, r.size())

	current = current.Add(limiterIdleTTL + limiterSweepInterval)

	assert.True(t, r.allow("alice|1.2.3.4"))
	assert.Equal(t, 1, r.size())
}

func TestSanitizeRequestBody(t *testing.T) {
	assert.Equal(t, `{"Password":"[SECRET]"}`, sanitizeRequestBody([]byte(`{"Password":"hunter2"}`)))
	assert.Equal(t, "[non-JSON body]", sanitizeRequestBody([]byte("spent 250 on tacos")))
}
