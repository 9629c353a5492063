package analyticsHandler

import (
	"ExpenseChat/internal/api/analytics"
	analyticsService "ExpenseChat/internal/api/analytics/service"
	ledgerService "ExpenseChat/internal/api/ledger/service"
	"ExpenseChat/internal/entity"
	"ExpenseChat/internal/middleware"
	"ExpenseChat/pkg/amqp"
	"ExpenseChat/pkg/taxonomy"
	"ExpenseChat/pkg/utils"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*fiber.App, ledgerService.ILedgerService) {
	t.Helper()
	return newTestAppWithClock(t, func() time.Time { return testNow })
}

func newTestAppWithClock(t *testing.T, now func() time.Time) (*fiber.App, ledgerService.ILedgerService) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	registry := taxonomy.DefaultRegistry()
	ledger := ledgerService.NewLedgerService(log, nil, amqp.NewNoop(), utils.New(), registry, ledgerService.Options{Now: now})
	svc := analyticsService.NewAnalyticsService(log, ledger, registry, analyticsService.Options{Now: now})

	mw := middleware.New(log, middleware.Config{})
	h := New(log, validator.New(), mw, svc, registry, time.UTC)
	h.now = now

	app := fiber.New(fiber.Config{JSONEncoder: jsoniter.Marshal, JSONDecoder: jsoniter.Unmarshal})
	app.Use(mw.NewRequestIDMiddleware())
	h.Start(app.Group("/api/v1"))

	return app, ledger
}

func get(t *testing.T, app *fiber.App, path string, headers map[string]string) (*analytics.DashboardResponse, int, string) {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if resp.StatusCode != fiber.StatusOK {
		return nil, resp.StatusCode, resp.Header.Get(fiber.HeaderETag)
	}

	var out analytics.DashboardResponse
	require.NoError(t, jsoniter.Unmarshal(body, &out))
	return &out, resp.StatusCode, resp.Header.Get(fiber.HeaderETag)
}

func TestGetDashboard(t *testing.T) {
	app, ledger := newTestApp(t)

	for _, amount := range []string{"100", "300"} {
		_, err := ledger.Commit(context.Background(), entity.CommitRequest{
			UserID:     "default",
			Amount:     decimal.RequireFromString(amount),
			Category:   taxonomy.CategoryFoodDining,
			OccurredAt: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
			Source:     entity.SourceChat,
		})
		require.NoError(t, err)
	}

	d, status, etag := get(t, app, "/api/v1/dashboard?from=2024-03-06&to=2024-03-12&bucket=day", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, `"2:2024-03-06:2024-03-12:day"`, etag)
	assert.Equal(t, "400.00", d.GrandTotal)
	assert.Equal(t, "200.00", d.Average)
	assert.Len(t, d.Series, 7)
	assert.Equal(t, "400.00", d.Series[6].Total)
	require.Len(t, d.Totals, 1)
	assert.Equal(t, "100.0", d.Totals[0].PercentOfTotal)
	assert.Len(t, d.Rows, 2)

	_, status, _ = get(t, app, "/api/v1/dashboard?from=2024-03-06&to=2024-03-12&bucket=day",
		map[string]string{fiber.HeaderIfNoneMatch: etag})
	assert.Equal(t, fiber.StatusNotModified, status)

	d, status, filtered := get(t, app, "/api/v1/dashboard?from=2024-03-06&to=2024-03-12&bucket=day&category=groceries",
		map[string]string{fiber.HeaderIfNoneMatch: etag})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, `"2:2024-03-06:2024-03-12:day:c=groceries"`, filtered)
	assert.Empty(t, d.Rows)
}

func TestGetDashboard_DefaultRangeRollsOverETag(t *testing.T) {
	current := testNow
	app, _ := newTestAppWithClock(t, func() time.Time { return current })

	_, status, etag := get(t, app, "/api/v1/dashboard", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, `"0:2024-03-01:2024-03-13:day"`, etag)

	current = testNow.Add(24 * time.Hour)

	d, status, next := get(t, app, "/api/v1/dashboard", map[string]string{fiber.HeaderIfNoneMatch: etag})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEqual(t, etag, next)
	assert.Equal(t, "2024-03-14", d.To)
}

func TestGetDashboard_DefaultsToCurrentMonth(t *testing.T) {
	app, _ := newTestApp(t)

	d, status, _ := get(t, app, "/api/v1/dashboard", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "2024-03-01", d.From)
	assert.Equal(t, "2024-03-13", d.To)
	assert.Equal(t, "day", d.BucketSize)
	assert.Equal(t, "0.00", d.GrandTotal)
	assert.Equal(t, "0.00", d.Average)
	assert.Empty(t, d.Totals)
	assert.Len(t, d.Series, 13)
}

func TestGetDashboard_BadRequests(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{
		"/api/v1/dashboard?from=2024-03-31&to=2024-03-01",
		"/api/v1/dashboard?bucket=hour",
		"/api/v1/dashboard?category=spaceships",
		"/api/v1/dashboard?from=2020-01-01&to=2024-01-01&bucket=day",
	} {
		_, status, _ := get(t, app, path, nil)
		assert.Equal(t, fiber.StatusBadRequest, status, path)
	}
}
