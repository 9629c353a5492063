package analyticsService

import (
	"ExpenseChat/internal/api/analytics"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	contextPkg "ExpenseChat/pkg/context"
	"ExpenseChat/pkg/nlp"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

const maxCachedDashboards = 1024

func (s *analyticsService) Dashboard(ctx context.Context, userID string, req entity.DashboardRequest) (entity.Dashboard, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if req.Range.From.IsZero() && req.Range.To.IsZero() {
		today := calendar.Today(s.now(), s.location)
		req.Range = calendar.Range{From: calendar.StartOfMonth(today), To: today}
	}
	if !req.Range.Valid() {
		return entity.Dashboard{}, analytics.ErrInvalidRange
	}
	if req.BucketSize == "" {
		req.BucketSize = DefaultBucketSize(req.Range)
	}
	if !req.BucketSize.Valid() {
		return entity.Dashboard{}, analytics.ErrInvalidBucketSize
	}

	snapshot, err := s.ledgerService.Snapshot(ctx, userID)
	if err != nil {
		return entity.Dashboard{}, err
	}

	key := cacheKey(userID, req)
	if cached, ok := s.cached(key, snapshot.Version); ok {
		return cached, nil
	}

	filter := req.Filter
	filter.Range = &req.Range
	rows := Filter(snapshot.Transactions, filter)

	dashboard := entity.Dashboard{
		Range:      req.Range,
		BucketSize: req.BucketSize,
		Rows:       rows,
		Count:      len(rows),
		Currency:   s.currency,
		Version:    snapshot.Version,
	}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		dashboard.Totals = AggregateByCategory(rows, req.Range, s.registry)
		return nil
	})

	g.Go(func() error {
		series, err := TimeSeries(rows, req.Range, req.BucketSize)
		if err != nil {
			return err
		}
		dashboard.Series = series
		return nil
	})

	g.Go(func() error {
		total := decimal.Zero
		for _, t := range rows {
			total = total.Add(t.Amount)
		}
		dashboard.GrandTotal = total
		dashboard.Average = decimal.Zero
		if len(rows) > 0 {
			dashboard.Average = total.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Failed to build dashboard")
		return entity.Dashboard{}, err
	}

	s.store(key, dashboard)

	return dashboard, nil
}

func (s *analyticsService) Summarize(ctx context.Context, userID string, query nlp.QueryRequest) (entity.Summary, error) {
	if !query.Range.Valid() {
		return entity.Summary{}, analytics.ErrInvalidRange
	}

	snapshot, err := s.ledgerService.Snapshot(ctx, userID)
	if err != nil {
		return entity.Summary{}, err
	}

	rows := Filter(snapshot.Transactions, entity.TransactionFilter{
		Categories: query.Categories,
		Range:      &query.Range,
	})

	summary := entity.Summary{
		Query:      query,
		Totals:     AggregateByCategory(rows, query.Range, s.registry),
		GrandTotal: decimal.Zero,
		Count:      len(rows),
		Currency:   s.currency,
	}
	for _, t := range rows {
		summary.GrandTotal = summary.GrandTotal.Add(t.Amount)
	}
	if len(summary.Totals) > 0 && summary.GrandTotal.IsPositive() {
		top := summary.Totals[0]
		summary.Top = &top
	}

	return summary, nil
}

func (s *analyticsService) cached(key string, version uint64) (entity.Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cache[key]
	if !ok || d.Version != version {
		return entity.Dashboard{}, false
	}
	return d, true
}

// store keeps only the latest dashboard per key. The whole cache is dropped
// once it reaches maxCachedDashboards entries.
func (s *analyticsService) store(key string, d entity.Dashboard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cache) >= maxCachedDashboards {
		s.cache = make(map[string]entity.Dashboard)
	}
	s.cache[key] = d
}

func cacheKey(userID string, req entity.DashboardRequest) string {
	categories := make([]string, len(req.Filter.Categories))
	for i, c := range req.Filter.Categories {
		categories[i] = string(c)
	}
	sort.Strings(categories)

	methods := make([]string, len(req.Filter.PaymentMethods))
	for i, m := range req.Filter.PaymentMethods {
		methods[i] = string(m)
	}
	sort.Strings(methods)

	return fmt.Sprintf("%s|%s|%s|%s|%s|%s", userID,
		calendar.Format(req.Range.From), calendar.Format(req.Range.To), req.BucketSize,
		strings.Join(categories, ","), strings.Join(methods, ","))
}
