package chatService

import (
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/nlp"
	"ExpenseChat/pkg/taxonomy"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1200", "MXN", "$1,200.00 MXN"},
		{"0.5", "MXN", "$0.50 MXN"},
		{"1234567.891", "USD", "$1,234,567.89 USD"},
		{"-15", "MXN", "-$15.00 MXN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestDateLabel(t *testing.T) {
	today := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Today", dateLabel(today, today))
	assert.Equal(t, "Yesterday", dateLabel(calendar.AddDays(today, -1), today))
	assert.Equal(t, "Mar 1, 2024", dateLabel(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), today))
}

func TestAnswerText(t *testing.T) {
	s := &chatService{registry: taxonomy.DefaultRegistry()}
	food := entity.AggregateBucket{
		Key:            "food_dining",
		DisplayName:    "Food & Dining",
		Total:          decimal.RequireFromString("1200"),
		Count:          3,
		PercentOfTotal: decimal.RequireFromString("42"),
	}
	other := entity.AggregateBucket{
		Key:            "transportation",
		DisplayName:    "Transportation",
		Total:          decimal.RequireFromString("1657.14"),
		Count:          2,
		PercentOfTotal: decimal.RequireFromString("58"),
	}
	summary := entity.Summary{
		Query:      nlp.QueryRequest{RangeLabel: "this week", Focus: nlp.FocusBreakdown},
		Totals:     []entity.AggregateBucket{other, food},
		Top:        &other,
		GrandTotal: decimal.RequireFromString("2857.14"),
		Count:      5,
		Currency:   "MXN",
	}

	assert.Equal(t, "Here's your spending this week:\n"+
		"**Transportation** - $1,657.14 MXN (58.0%)\n"+
		"**Food & Dining** - $1,200.00 MXN (42.0%)\n"+
		"Total: $2,857.14 MXN", s.answerText(summary))

	summary.Query.Focus = nlp.FocusTop
	assert.Equal(t, "Transportation is your biggest category this week, with $1,657.14 MXN (58.0% of your spending).",
		s.answerText(summary))

	summary.Query.Focus = nlp.FocusTotal
	summary.Query.Categories = []taxonomy.CategoryKey{taxonomy.CategoryFoodDining}
	assert.Equal(t, "You spent $2,857.14 MXN on Food & Dining this week.", s.answerText(summary))
}
