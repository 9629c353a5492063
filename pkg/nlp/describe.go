package nlp

import (
	"ExpenseChat/pkg/calendar"
	"strings"
)

// Describe renders a parse result as a single line, for example
// "amount=250.00 MXN category=Transportation | missing: paymentMethod".
func (p *Parser) Describe(r ParseResult) string {
	var parts []string

	if r.Partial.Amount != nil {
		parts = append(parts, "amount="+r.Partial.Amount.StringFixed(2)+" "+r.Partial.Currency)
	}
	if r.Partial.Category != "" {
		parts = append(parts, "category="+p.registry.CategoryName(r.Partial.Category))
	}
	if r.Partial.PaymentMethod != "" {
		parts = append(parts, "paymentMethod="+p.registry.PaymentMethodName(r.Partial.PaymentMethod))
	}
	if r.Partial.OccurredAt != nil {
		parts = append(parts, "occurredAt="+calendar.Format(*r.Partial.OccurredAt))
	}
	if r.Partial.Note != nil {
		parts = append(parts, "note="+*r.Partial.Note)
	}

	var sb strings.Builder
	if len(parts) == 0 {
		sb.WriteString("nothing recognised")
	} else {
		sb.WriteString(strings.Join(parts, " "))
	}

	if len(r.MissingSlots) > 0 {
		sb.WriteString(" | missing: ")
		sb.WriteString(joinSlots(r.MissingSlots))
	}

	for _, slot := range r.AmbiguousSlots {
		labels := make([]string, 0, len(r.Candidates[slot]))
		for _, c := range r.Candidates[slot] {
			labels = append(labels, c.Label)
		}
		sb.WriteString(" | " + string(slot) + "? " + strings.Join(labels, " / "))
	}

	return sb.String()
}

func joinSlots(slots []Slot) string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
