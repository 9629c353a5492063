package analyticsService

import (
	"ExpenseChat/internal/api/analytics"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(amount string, category taxonomy.CategoryKey, occurred time.Time) entity.Transaction {
	return entity.Transaction{
		ID:         amount + string(category),
		Amount:     decimal.RequireFromString(amount),
		Currency:   "MXN",
		Category:   category,
		OccurredAt: occurred,
		CreatedAt:  occurred,
		Source:     entity.SourceChat,
	}
}

func mustRange(t *testing.T, from, to time.Time) calendar.Range {
	t.Helper()
	r, err := calendar.NewRange(from, to)
	require.NoError(t, err)
	return r
}

func TestAggregateByCategory(t *testing.T) {
	txs := []entity.Transaction{
		tx("300", taxonomy.CategoryFoodDining, day(3, 4)),
		tx("200", taxonomy.CategoryGroceries, day(3, 5)),
		tx("200", taxonomy.CategoryEntertainment, day(3, 6)),
		tx("300", taxonomy.CategoryFoodDining, day(3, 7)),
		tx("999", taxonomy.CategoryHousing, day(2, 1)),
	}

	buckets := AggregateByCategory(txs, mustRange(t, day(3, 1), day(3, 31)), taxonomy.DefaultRegistry())

	require.Len(t, buckets, 3)
	assert.Equal(t, "food_dining", buckets[0].Key)
	assert.Equal(t, "Food & Dining", buckets[0].DisplayName)
	assert.Equal(t, 2, buckets[0].Count)
	assert.True(t, decimal.RequireFromString("600").Equal(buckets[0].Total))
	assert.True(t, decimal.RequireFromString("60").Equal(buckets[0].PercentOfTotal))

	// equal totals fall back to key order
	assert.Equal(t, "entertainment", buckets[1].Key)
	assert.Equal(t, "groceries", buckets[2].Key)
	assert.True(t, decimal.RequireFromString("20").Equal(buckets[2].PercentOfTotal))
}

func TestAggregateByCategory_PercentRounding(t *testing.T) {
	txs := []entity.Transaction{
		tx("1", taxonomy.CategoryFoodDining, day(3, 1)),
		tx("1", taxonomy.CategoryGroceries, day(3, 1)),
		tx("1", taxonomy.CategoryHealth, day(3, 1)),
	}

	buckets := AggregateByCategory(txs, mustRange(t, day(3, 1), day(3, 1)), taxonomy.DefaultRegistry())

	require.Len(t, buckets, 3)
	for _, b := range buckets {
		assert.Equal(t, "33.3", b.PercentOfTotal.String())
	}
}

func TestAggregateByCategory_EmptyRange(t *testing.T) {
	buckets := AggregateByCategory(nil, mustRange(t, day(3, 1), day(3, 31)), taxonomy.DefaultRegistry())
	assert.Empty(t, buckets)
}

func TestTimeSeries_ZeroFilledDays(t *testing.T) {
	txs := []entity.Transaction{
		tx("100", taxonomy.CategoryFoodDining, day(3, 5)),
		tx("50", taxonomy.CategoryGroceries, day(3, 5)),
		tx("20", taxonomy.CategoryHealth, day(3, 9)),
		tx("70", taxonomy.CategoryHealth, day(3, 20)),
	}

	points, err := TimeSeries(txs, mustRange(t, day(3, 4), day(3, 10)), entity.BucketDay)
	require.NoError(t, err)
	require.Len(t, points, 7)

	zeros := 0
	for _, p := range points {
		if p.Total.IsZero() {
			zeros++
		}
	}
	assert.Equal(t, 5, zeros)
	assert.Equal(t, "2024-03-04", points[0].BucketLabel)
	assert.Equal(t, "2024-03-05", points[1].BucketLabel)
	assert.True(t, decimal.RequireFromString("150").Equal(points[1].Total))
	assert.Equal(t, 2, points[1].Count)
	assert.Equal(t, "2024-03-10", points[6].BucketLabel)
}

func TestTimeSeries_WeeksAndMonths(t *testing.T) {
	txs := []entity.Transaction{
		tx("10", taxonomy.CategoryFoodDining, day(3, 13)),
		tx("15", taxonomy.CategoryFoodDining, day(3, 17)),
		tx("40", taxonomy.CategoryFoodDining, day(1, 2)),
	}

	weeks, err := TimeSeries(txs, mustRange(t, day(3, 6), day(3, 20)), entity.BucketWeek)
	require.NoError(t, err)
	require.Len(t, weeks, 3)
	assert.Equal(t, "2024-03-04", weeks[0].BucketLabel)
	assert.Equal(t, "2024-03-11", weeks[1].BucketLabel)
	assert.True(t, decimal.RequireFromString("25").Equal(weeks[1].Total))
	assert.Equal(t, "2024-03-18", weeks[2].BucketLabel)

	months, err := TimeSeries(txs, mustRange(t, day(1, 15), day(3, 31)), entity.BucketMonth)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"},
		[]string{months[0].BucketLabel, months[1].BucketLabel, months[2].BucketLabel})
	// Jan 2 is outside the range even though its month bucket is not
	assert.True(t, months[0].Total.IsZero())
	assert.True(t, decimal.RequireFromString("25").Equal(months[2].Total))
}

func TestTimeSeries_Errors(t *testing.T) {
	_, err := TimeSeries(nil, calendar.Range{From: day(3, 10), To: day(3, 1)}, entity.BucketDay)
	assert.ErrorIs(t, err, analytics.ErrInvalidRange)

	_, err = TimeSeries(nil, mustRange(t, day(3, 1), day(3, 2)), entity.BucketSize("hour"))
	assert.ErrorIs(t, err, analytics.ErrInvalidBucketSize)

	long := mustRange(t, day(1, 1), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err = TimeSeries(nil, long, entity.BucketDay)
	assert.ErrorIs(t, err, analytics.ErrRangeTooLarge)

	leapYear := mustRange(t, day(1, 1), day(12, 31))
	points, err := TimeSeries(nil, leapYear, entity.BucketDay)
	require.NoError(t, err)
	assert.Len(t, points, 366)
}

func TestDefaultBucketSize(t *testing.T) {
	assert.Equal(t, entity.BucketDay, DefaultBucketSize(mustRange(t, day(3, 1), day(3, 31))))
	assert.Equal(t, entity.BucketWeek, DefaultBucketSize(mustRange(t, day(1, 1), day(6, 1))))
	assert.Equal(t, entity.BucketMonth, DefaultBucketSize(mustRange(t, day(1, 1), day(12, 31))))
}
