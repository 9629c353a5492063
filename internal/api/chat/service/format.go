package chatService

import (
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/nlp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatMoney renders "$1,200.00 MXN".
func formatMoney(amount decimal.Decimal, currency string) string {
	fixed := amount.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = printer.Sprintf("%d", n)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return strings.TrimSpace(sign + "$" + whole + "." + cents + " " + currency)
}

func formatPercent(p decimal.Decimal) string {
	return p.StringFixed(1) + "%"
}

func dateLabel(d, today time.Time) string {
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(calendar.AddDays(today, -1)):
		return "Yesterday"
	default:
		return d.Format("Jan 2, 2006")
	}
}

func (s *chatService) confirmationText(t entity.Transaction, today time.Time) string {
	parts := []string{
		formatMoney(t.Amount, t.Currency),
		dateLabel(calendar.Day(t.OccurredAt), today),
	}
	if t.PaymentMethod != "" {
		parts = append(parts, s.registry.PaymentMethodName(t.PaymentMethod))
	}

	return fmt.Sprintf("Got it! I've recorded your expense: **%s** - %s",
		s.registry.CategoryName(t.Category), strings.Join(parts, ", "))
}

func (s *chatService) questionText(c entity.PendingCapture) string {
	ambiguous := containsSlot(c.AmbiguousSlots, c.AskedSlot)

	var question string
	switch c.AskedSlot {
	case nlp.SlotAmount:
		question = "How much did you spend?"
		if ambiguous {
			question = "I found more than one amount. Which one did you mean?"
		}
	case nlp.SlotCategory:
		question = "What category should I file this under?"
		if ambiguous {
			question = "Which category fits best?"
		}
	case nlp.SlotPaymentMethod:
		question = "How did you pay?"
	case nlp.SlotOccurredAt:
		question = "When was this expense?"
		if ambiguous {
			question = "Which date did you mean?"
		}
	default:
		question = "Could you tell me a bit more about this expense?"
	}

	if len(c.Options) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString(question)
	for i, o := range c.Options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, o.Label)
	}
	return b.String()
}

func rangeLabel(q nlp.QueryRequest) string {
	if q.RangeLabel != "" {
		return q.RangeLabel
	}
	return fmt.Sprintf("from %s to %s", calendar.Format(q.Range.From), calendar.Format(q.Range.To))
}

func (s *chatService) answerText(summary entity.Summary) string {
	label := rangeLabel(summary.Query)

	if summary.Count == 0 {
		return fmt.Sprintf("You haven't recorded any expenses %s.", label)
	}

	switch summary.Query.Focus {
	case nlp.FocusTop:
		if summary.Top == nil {
			return fmt.Sprintf("You haven't recorded any expenses %s.", label)
		}
		return fmt.Sprintf("%s is your biggest category %s, with %s (%s of your spending).",
			summary.Top.DisplayName, label,
			formatMoney(summary.Top.Total, summary.Currency), formatPercent(summary.Top.PercentOfTotal))

	case nlp.FocusTotal:
		on := ""
		if len(summary.Query.Categories) > 0 {
			names := make([]string, 0, len(summary.Query.Categories))
			for _, key := range summary.Query.Categories {
				names = append(names, s.registry.CategoryName(key))
			}
			on = " on " + strings.Join(names, " and ")
		}
		return fmt.Sprintf("You spent %s%s %s.", formatMoney(summary.GrandTotal, summary.Currency), on, label)

	default:
		var b strings.Builder
		fmt.Fprintf(&b, "Here's your spending %s:", label)
		for _, bucket := range summary.Totals {
			fmt.Fprintf(&b, "\n**%s** - %s (%s)",
				bucket.DisplayName, formatMoney(bucket.Total, summary.Currency), formatPercent(bucket.PercentOfTotal))
		}
		fmt.Fprintf(&b, "\nTotal: %s", formatMoney(summary.GrandTotal, summary.Currency))
		return b.String()
	}
}
