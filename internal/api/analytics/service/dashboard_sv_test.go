package analyticsService

import (
	"ExpenseChat/internal/api/analytics"
	ledgerService "ExpenseChat/internal/api/ledger/service"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/amqp"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/nlp"
	"ExpenseChat/pkg/taxonomy"
	"ExpenseChat/pkg/utils"
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

func newTestServices(t *testing.T) (IAnalyticsService, ledgerService.ILedgerService) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	now := func() time.Time { return testNow }
	ledger := ledgerService.NewLedgerService(log, nil, amqp.NewNoop(), utils.New(), taxonomy.DefaultRegistry(), ledgerService.Options{
		ReportingCurrency: "MXN",
		Location:          time.UTC,
		Now:               now,
	})
	svc := NewAnalyticsService(log, ledger, taxonomy.DefaultRegistry(), Options{
		ReportingCurrency: "MXN",
		Location:          time.UTC,
		Now:               now,
	})

	return svc, ledger
}

func seed(t *testing.T, ledger ledgerService.ILedgerService, amount string, category taxonomy.CategoryKey, method taxonomy.PaymentMethodKey, occurred time.Time) entity.Transaction {
	t.Helper()

	created, err := ledger.Commit(context.Background(), entity.CommitRequest{
		UserID:        "u1",
		Amount:        decimal.RequireFromString(amount),
		Category:      category,
		PaymentMethod: method,
		OccurredAt:    occurred,
		Source:        entity.SourceChat,
	})
	require.NoError(t, err)
	return created
}

func TestDashboard_DefaultRangeAndBucket(t *testing.T) {
	svc, ledger := newTestServices(t)

	seed(t, ledger, "120", taxonomy.CategoryFoodDining, taxonomy.PaymentCash, day(3, 2))
	seed(t, ledger, "80", taxonomy.CategoryGroceries, taxonomy.PaymentDebitCard, day(3, 12))
	seed(t, ledger, "500", taxonomy.CategoryHousing, taxonomy.PaymentBankTransfer, day(2, 28))

	d, err := svc.Dashboard(context.Background(), "u1", entity.DashboardRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", calendar.Format(d.Range.From))
	assert.Equal(t, "2024-03-13", calendar.Format(d.Range.To))
	assert.Equal(t, entity.BucketDay, d.BucketSize)
	assert.Len(t, d.Series, 13)
	assert.Len(t, d.Rows, 2)
	assert.Equal(t, 2, d.Count)
	assert.True(t, decimal.RequireFromString("200").Equal(d.GrandTotal))
	assert.True(t, decimal.RequireFromString("100").Equal(d.Average))
	assert.Equal(t, "MXN", d.Currency)
	assert.Equal(t, uint64(3), d.Version)
	require.Len(t, d.Totals, 2)
	assert.Equal(t, "food_dining", d.Totals[0].Key)
}

func TestDashboard_FilterApplies(t *testing.T) {
	svc, ledger := newTestServices(t)

	seed(t, ledger, "120", taxonomy.CategoryFoodDining, taxonomy.PaymentCash, day(3, 2))
	seed(t, ledger, "80", taxonomy.CategoryGroceries, taxonomy.PaymentDebitCard, day(3, 12))

	d, err := svc.Dashboard(context.Background(), "u1", entity.DashboardRequest{
		Range:  mustRange(t, day(3, 1), day(3, 31)),
		Filter: entity.TransactionFilter{PaymentMethods: []taxonomy.PaymentMethodKey{taxonomy.PaymentCash}},
	})
	require.NoError(t, err)

	require.Len(t, d.Rows, 1)
	assert.Equal(t, taxonomy.CategoryFoodDining, d.Rows[0].Category)
	require.Len(t, d.Totals, 1)
	assert.True(t, decimal.RequireFromString("100").Equal(d.Totals[0].PercentOfTotal))
}

func TestDashboard_CacheFollowsVersion(t *testing.T) {
	svc, ledger := newTestServices(t)
	req := entity.DashboardRequest{Range: mustRange(t, day(3, 1), day(3, 31))}

	seed(t, ledger, "10", taxonomy.CategoryFoodDining, "", day(3, 2))
	first, err := svc.Dashboard(context.Background(), "u1", req)
	require.NoError(t, err)

	seed(t, ledger, "15", taxonomy.CategoryFoodDining, "", day(3, 3))
	second, err := svc.Dashboard(context.Background(), "u1", req)
	require.NoError(t, err)

	assert.Equal(t, first.Version+1, second.Version)
	assert.True(t, decimal.RequireFromString("25").Equal(second.GrandTotal))
	assert.True(t, decimal.RequireFromString("12.5").Equal(second.Average))
}

func TestDashboard_AverageRoundsAndHandlesEmpty(t *testing.T) {
	svc, ledger := newTestServices(t)
	req := entity.DashboardRequest{Range: mustRange(t, day(3, 1), day(3, 31))}

	empty, err := svc.Dashboard(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.True(t, empty.Average.IsZero())

	for _, amount := range []string{"10", "10", "20"} {
		seed(t, ledger, amount, taxonomy.CategoryFoodDining, "", day(3, 2))
	}

	d, err := svc.Dashboard(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, "13.33", d.Average.StringFixed(2))
	assert.True(t, decimal.RequireFromString("13.33").Equal(d.Average))
}

func TestDashboard_Errors(t *testing.T) {
	svc, _ := newTestServices(t)

	_, err := svc.Dashboard(context.Background(), "u1", entity.DashboardRequest{
		Range: calendar.Range{From: day(3, 10), To: day(3, 1)},
	})
	assert.ErrorIs(t, err, analytics.ErrInvalidRange)

	_, err = svc.Dashboard(context.Background(), "u1", entity.DashboardRequest{
		Range:      mustRange(t, day(3, 1), day(3, 2)),
		BucketSize: entity.BucketSize("quarter"),
	})
	assert.ErrorIs(t, err, analytics.ErrInvalidBucketSize)

	_, err = svc.Dashboard(context.Background(), "u1", entity.DashboardRequest{
		Range:      mustRange(t, day(1, 1), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		BucketSize: entity.BucketDay,
	})
	assert.ErrorIs(t, err, analytics.ErrRangeTooLarge)
}

func TestSummarize(t *testing.T) {
	svc, ledger := newTestServices(t)

	seed(t, ledger, "300", taxonomy.CategoryFoodDining, "", day(3, 11))
	seed(t, ledger, "100", taxonomy.CategoryTransportation, "", day(3, 12))
	seed(t, ledger, "900", taxonomy.CategoryHousing, "", day(3, 1))

	week := nlp.QueryRequest{
		Range:      mustRange(t, day(3, 11), day(3, 13)),
		RangeLabel: "this week",
		Focus:      nlp.FocusTop,
	}

	summary, err := svc.Summarize(context.Background(), "u1", week)
	require.NoError(t, err)
	require.NotNil(t, summary.Top)
	assert.Equal(t, "food_dining", summary.Top.Key)
	assert.True(t, decimal.RequireFromString("400").Equal(summary.GrandTotal))
	assert.Equal(t, 2, summary.Count)

	week.Categories = []taxonomy.CategoryKey{taxonomy.CategoryTransportation}
	summary, err = svc.Summarize(context.Background(), "u1", week)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(summary.GrandTotal))

	empty := nlp.QueryRequest{Range: mustRange(t, day(2, 1), day(2, 2))}
	summary, err = svc.Summarize(context.Background(), "u1", empty)
	require.NoError(t, err)
	assert.Nil(t, summary.Top)
	assert.True(t, summary.GrandTotal.IsZero())
}
