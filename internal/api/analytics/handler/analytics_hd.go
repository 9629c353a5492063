package analyticsHandler

import (
	"ExpenseChat/internal/api/analytics"
	"ExpenseChat/internal/api/ledger"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	contextPkg "ExpenseChat/pkg/context"
	"ExpenseChat/pkg/handlerUtil"
	"ExpenseChat/pkg/log"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AnalyticsHandler) GetDashboard(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing dashboard request")

	var query analytics.DashboardQuery
	if err := ctx.QueryParser(&query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	req, err := h.toDashboardRequest(query)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_dashboard")
	}

	dashboard, err := h.analyticsService.Dashboard(c, h.middleware.GetUserID(ctx), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_dashboard")
	}

	etag := dashboardETag(dashboard, req.Filter)
	ctx.Set(fiber.HeaderETag, etag)
	if ctx.Get(fiber.HeaderIfNoneMatch) == etag {
		return ctx.SendStatus(fiber.StatusNotModified)
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.toResponse(dashboard))
	}
}

// dashboardETag names the snapshot version together with everything that
// shaped the response, so a default range that rolls over is a new tag.
func dashboardETag(d entity.Dashboard, filter entity.TransactionFilter) string {
	parts := []string{
		strconv.FormatUint(d.Version, 10),
		calendar.Format(d.Range.From),
		calendar.Format(d.Range.To),
		string(d.BucketSize),
	}

	if len(filter.Categories) > 0 {
		keys := make([]string, 0, len(filter.Categories))
		for _, c := range filter.Categories {
			keys = append(keys, string(c))
		}
		sort.Strings(keys)
		parts = append(parts, "c="+strings.Join(keys, ","))
	}
	if len(filter.PaymentMethods) > 0 {
		keys := make([]string, 0, len(filter.PaymentMethods))
		for _, m := range filter.PaymentMethods {
			keys = append(keys, string(m))
		}
		sort.Strings(keys)
		parts = append(parts, "p="+strings.Join(keys, ","))
	}

	return `"` + strings.Join(parts, ":") + `"`
}

// toDashboardRequest defaults a missing range to the current month so far.
func (h *AnalyticsHandler) toDashboardRequest(query analytics.DashboardQuery) (entity.DashboardRequest, error) {
	var req entity.DashboardRequest

	today := calendar.Today(h.now(), h.location)
	from, to := calendar.StartOfMonth(today), today

	if query.From != "" {
		parsed, err := calendar.Parse(query.From)
		if err != nil {
			return req, fmt.Errorf("%w: from must be YYYY-MM-DD", ledger.ErrInvalidFilter)
		}
		from = parsed
	}
	if query.To != "" {
		parsed, err := calendar.Parse(query.To)
		if err != nil {
			return req, fmt.Errorf("%w: to must be YYYY-MM-DD", ledger.ErrInvalidFilter)
		}
		to = parsed
	}

	r, err := calendar.NewRange(from, to)
	if err != nil {
		return req, analytics.ErrInvalidRange
	}
	req.Range = r
	req.BucketSize = entity.BucketSize(query.Bucket)

	for _, value := range query.Category {
		key, ok := h.registry.ResolveCategory(value)
		if !ok {
			return req, fmt.Errorf("%w: unknown category %q", ledger.ErrInvalidFilter, value)
		}
		req.Filter.Categories = append(req.Filter.Categories, key)
	}

	for _, value := range query.PaymentMethod {
		key, ok := h.registry.ResolvePaymentMethod(value)
		if !ok {
			return req, fmt.Errorf("%w: unknown payment method %q", ledger.ErrInvalidFilter, value)
		}
		req.Filter.PaymentMethods = append(req.Filter.PaymentMethods, key)
	}

	return req, nil
}

func (h *AnalyticsHandler) toResponse(d entity.Dashboard) analytics.DashboardResponse {
	res := analytics.DashboardResponse{
		From:       calendar.Format(d.Range.From),
		To:         calendar.Format(d.Range.To),
		BucketSize: string(d.BucketSize),
		Currency:   d.Currency,
		GrandTotal: d.GrandTotal.StringFixed(2),
		Count:      d.Count,
		Average:    d.Average.StringFixed(2),
		Version:    d.Version,
		Totals:     make([]analytics.AggregateBucketResponse, 0, len(d.Totals)),
		Series:     make([]analytics.SeriesPointResponse, 0, len(d.Series)),
		Rows:       make([]analytics.DashboardRowResponse, 0, len(d.Rows)),
	}

	for _, b := range d.Totals {
		res.Totals = append(res.Totals, analytics.AggregateBucketResponse{
			Key:            b.Key,
			DisplayName:    b.DisplayName,
			Total:          b.Total.StringFixed(2),
			Count:          b.Count,
			PercentOfTotal: b.PercentOfTotal.StringFixed(1),
		})
	}

	for _, p := range d.Series {
		res.Series = append(res.Series, analytics.SeriesPointResponse{
			BucketLabel: p.BucketLabel,
			Total:       p.Total.StringFixed(2),
			Count:       p.Count,
		})
	}

	for _, t := range d.Rows {
		res.Rows = append(res.Rows, analytics.DashboardRowResponse{
			ID:            t.ID,
			Amount:        t.Amount.StringFixed(2),
			Currency:      t.Currency,
			Category:      string(t.Category),
			PaymentMethod: string(t.PaymentMethod),
			Note:          t.Note,
			OccurredAt:    calendar.Format(t.OccurredAt),
		})
	}

	return res
}
