package entity

import (
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/nlp"

	"github.com/shopspring/decimal"
)

type BucketSize string

const (
	BucketDay   BucketSize = "day"
	BucketWeek  BucketSize = "week"
	BucketMonth BucketSize = "month"
)

func (b BucketSize) Valid() bool {
	return b == BucketDay || b == BucketWeek || b == BucketMonth
}

// AggregateBucket is derived on demand and never stored.
type AggregateBucket struct {
	Key            string          `json:"key"`
	DisplayName    string          `json:"displayName"`
	Total          decimal.Decimal `json:"total"`
	Count          int             `json:"count"`
	PercentOfTotal decimal.Decimal `json:"percentOfTotal"`
}

type SeriesPoint struct {
	BucketLabel string          `json:"bucketLabel"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
}

type DashboardRequest struct {
	Range      calendar.Range
	Filter     TransactionFilter
	BucketSize BucketSize
}

type Dashboard struct {
	Range      calendar.Range    `json:"range"`
	BucketSize BucketSize        `json:"bucketSize"`
	Totals     []AggregateBucket `json:"totals"`
	Series     []SeriesPoint     `json:"series"`
	Rows       []Transaction     `json:"rows"`
	GrandTotal decimal.Decimal   `json:"grandTotal"`
	Count      int               `json:"count"`
	Average    decimal.Decimal   `json:"average"`
	Currency   string            `json:"currency"`
	Version    uint64            `json:"version"`
}

// Summary answers a conversational query. Top is nil when nothing was spent.
type Summary struct {
	Query      nlp.QueryRequest  `json:"query"`
	Totals     []AggregateBucket `json:"totals"`
	Top        *AggregateBucket  `json:"top,omitempty"`
	GrandTotal decimal.Decimal   `json:"grandTotal"`
	Count      int               `json:"count"`
	Currency   string            `json:"currency"`
}
