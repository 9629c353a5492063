package analyticsService

import (
	"ExpenseChat/internal/api/analytics"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MaxSeriesBuckets bounds a time series to about one year of days.
const MaxSeriesBuckets = 366

var hundred = decimal.NewFromInt(100)

// AggregateByCategory totals the transactions that fall inside r, one bucket
// per category that has any spend. Buckets are ordered by total descending,
// then by key.
func AggregateByCategory(txs []entity.Transaction, r calendar.Range, registry *taxonomy.Registry) []entity.AggregateBucket {
	byKey := make(map[taxonomy.CategoryKey]*entity.AggregateBucket)
	grand := decimal.Zero

	for _, t := range txs {
		if !r.Contains(t.OccurredAt) {
			continue
		}

		b, ok := byKey[t.Category]
		if !ok {
			b = &entity.AggregateBucket{
				Key:         string(t.Category),
				DisplayName: registry.CategoryName(t.Category),
				Total:       decimal.Zero,
			}
			byKey[t.Category] = b
		}
		b.Total = b.Total.Add(t.Amount)
		b.Count++
		grand = grand.Add(t.Amount)
	}

	buckets := make([]entity.AggregateBucket, 0, len(byKey))
	for _, b := range byKey {
		b.PercentOfTotal = decimal.Zero
		if grand.IsPositive() {
			b.PercentOfTotal = b.Total.Mul(hundred).Div(grand).Round(1)
		}
		buckets = append(buckets, *b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if c := buckets[i].Total.Cmp(buckets[j].Total); c != 0 {
			return c > 0
		}
		return buckets[i].Key < buckets[j].Key
	})

	return buckets
}

// TimeSeries returns one point per bucket in r, including empty ones.
func TimeSeries(txs []entity.Transaction, r calendar.Range, size entity.BucketSize) ([]entity.SeriesPoint, error) {
	if !r.Valid() {
		return nil, analytics.ErrInvalidRange
	}
	if !size.Valid() {
		return nil, analytics.ErrInvalidBucketSize
	}

	starts := bucketStarts(r, size)
	if starts == nil {
		return nil, analytics.ErrRangeTooLarge
	}

	points := make([]entity.SeriesPoint, len(starts))
	index := make(map[string]int, len(starts))
	for i, start := range starts {
		label := bucketLabel(start, size)
		points[i] = entity.SeriesPoint{BucketLabel: label, Total: decimal.Zero}
		index[label] = i
	}

	for _, t := range txs {
		if !r.Contains(t.OccurredAt) {
			continue
		}
		i := index[bucketLabel(bucketStart(t.OccurredAt, size), size)]
		points[i].Total = points[i].Total.Add(t.Amount)
		points[i].Count++
	}

	return points, nil
}

// Filter applies f and returns the result in ledger list order.
func Filter(txs []entity.Transaction, f entity.TransactionFilter) []entity.Transaction {
	return entity.FilterTransactions(txs, f)
}

// DefaultBucketSize keeps charts readable: days up to a month, weeks up to
// half a year, months beyond.
func DefaultBucketSize(r calendar.Range) entity.BucketSize {
	switch days := r.Days(); {
	case days <= 31:
		return entity.BucketDay
	case days <= 182:
		return entity.BucketWeek
	default:
		return entity.BucketMonth
	}
}

func bucketStart(d time.Time, size entity.BucketSize) time.Time {
	switch size {
	case entity.BucketWeek:
		return calendar.StartOfWeek(d)
	case entity.BucketMonth:
		return calendar.StartOfMonth(d)
	default:
		return calendar.Day(d)
	}
}

func bucketLabel(start time.Time, size entity.BucketSize) string {
	if size == entity.BucketMonth {
		return start.Format("2006-01")
	}
	return calendar.Format(start)
}

// bucketStarts returns nil when r needs more than MaxSeriesBuckets buckets.
func bucketStarts(r calendar.Range, size entity.BucketSize) []time.Time {
	var starts []time.Time
	for cur := bucketStart(r.From, size); !cur.After(r.To); cur = nextBucket(cur, size) {
		if len(starts) == MaxSeriesBuckets {
			return nil
		}
		starts = append(starts, cur)
	}
	return starts
}

func nextBucket(start time.Time, size entity.BucketSize) time.Time {
	switch size {
	case entity.BucketWeek:
		return start.AddDate(0, 0, 7)
	case entity.BucketMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}
