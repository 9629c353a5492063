package chatService

import (
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/nlp"
	"ExpenseChat/pkg/taxonomy"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func (s *chatService) requiredSlots() []nlp.Slot {
	slots := []nlp.Slot{nlp.SlotAmount, nlp.SlotCategory}
	if s.requirePaymentMethod {
		slots = append(slots, nlp.SlotPaymentMethod)
	}
	if s.requireDate {
		slots = append(slots, nlp.SlotOccurredAt)
	}
	return slots
}

// reconcile recomputes missing and ambiguous slots from what the capture
// currently holds. Filled slots are never ambiguous.
func (s *chatService) reconcile(c *entity.PendingCapture) {
	var ambiguous []nlp.Slot
	for _, slot := range c.AmbiguousSlots {
		if c.Partial.Has(slot) || len(c.Candidates[slot]) < 2 {
			delete(c.Candidates, slot)
			continue
		}
		if !containsSlot(ambiguous, slot) {
			ambiguous = append(ambiguous, slot)
		}
	}
	c.AmbiguousSlots = ambiguous

	c.MissingSlots = nil
	for _, slot := range s.requiredSlots() {
		if !c.Partial.Has(slot) && !containsSlot(ambiguous, slot) {
			c.MissingSlots = append(c.MissingSlots, slot)
		}
	}
}

// nextQuestion picks the highest priority open slot: amount, category,
// remaining ambiguities in the order they were met, then the optional
// required slots.
func (s *chatService) nextQuestion(c entity.PendingCapture) (nlp.Slot, []nlp.Candidate) {
	open := func(slot nlp.Slot) bool {
		return containsSlot(c.MissingSlots, slot) || containsSlot(c.AmbiguousSlots, slot)
	}

	var order []nlp.Slot
	for _, slot := range []nlp.Slot{nlp.SlotAmount, nlp.SlotCategory} {
		if open(slot) {
			order = append(order, slot)
		}
	}
	for _, slot := range c.AmbiguousSlots {
		if slot != nlp.SlotAmount && slot != nlp.SlotCategory {
			order = append(order, slot)
		}
	}
	for _, slot := range []nlp.Slot{nlp.SlotPaymentMethod, nlp.SlotOccurredAt} {
		if containsSlot(c.MissingSlots, slot) {
			order = append(order, slot)
		}
	}
	if len(order) == 0 {
		return "", nil
	}

	slot := order[0]
	if containsSlot(c.AmbiguousSlots, slot) {
		return slot, append([]nlp.Candidate(nil), c.Candidates[slot]...)
	}

	switch slot {
	case nlp.SlotCategory:
		return slot, taxonomyOptions(s.registry.Categories)
	case nlp.SlotPaymentMethod:
		return slot, taxonomyOptions(s.registry.PaymentMethods)
	default:
		return slot, nil
	}
}

func taxonomyOptions(tax *taxonomy.Taxonomy) []nlp.Candidate {
	entries := tax.Entries()
	options := make([]nlp.Candidate, 0, len(entries))
	for _, e := range entries {
		options = append(options, nlp.Candidate{Value: e.Key, Label: e.DisplayName})
	}
	return options
}

// fill is the fast path for a reply to the asked slot: an option picked by
// number or name, or a bare value of the slot's type.
func (s *chatService) fill(c *entity.PendingCapture, text string, now time.Time) bool {
	slot := c.AskedSlot
	if slot == "" {
		return false
	}

	if option, ok := chooseOption(c.Options, text); ok {
		return applyCandidate(c, slot, option)
	}

	switch slot {
	case nlp.SlotAmount:
		value, currency, ok := s.parser.ParseBareAmount(text)
		if !ok {
			return false
		}
		c.Partial.Amount = &value
		c.Partial.Currency = currency
	case nlp.SlotCategory:
		key, ok := s.parser.ResolveBare(text, taxonomy.KindCategory)
		if !ok {
			return false
		}
		c.Partial.Category = taxonomy.CategoryKey(key)
	case nlp.SlotPaymentMethod:
		key, ok := s.parser.ResolveBare(text, taxonomy.KindPaymentMethod)
		if !ok {
			return false
		}
		c.Partial.PaymentMethod = taxonomy.PaymentMethodKey(key)
	case nlp.SlotOccurredAt:
		date, ok := s.parser.ParseBareDate(text, now)
		if !ok {
			return false
		}
		c.Partial.OccurredAt = &date
	default:
		return false
	}
	return true
}

func chooseOption(options []nlp.Candidate, text string) (nlp.Candidate, bool) {
	if len(options) == 0 {
		return nlp.Candidate{}, false
	}

	normalized := taxonomy.Normalize(text)
	for _, o := range options {
		if normalized == taxonomy.Normalize(o.Label) || normalized == taxonomy.Normalize(o.Value) {
			return o, true
		}
	}

	trimmed := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(text), "#"), ".")
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	return nlp.Candidate{}, false
}

func applyCandidate(c *entity.PendingCapture, slot nlp.Slot, candidate nlp.Candidate) bool {
	switch slot {
	case nlp.SlotAmount:
		value, err := decimal.NewFromString(candidate.Value)
		if err != nil {
			return false
		}
		c.Partial.Amount = &value
		c.Partial.Currency = candidate.Currency
	case nlp.SlotCategory:
		c.Partial.Category = taxonomy.CategoryKey(candidate.Value)
	case nlp.SlotPaymentMethod:
		c.Partial.PaymentMethod = taxonomy.PaymentMethodKey(candidate.Value)
	case nlp.SlotOccurredAt:
		date, err := calendar.Parse(candidate.Value)
		if err != nil {
			return false
		}
		c.Partial.OccurredAt = &date
	default:
		return false
	}
	return true
}

// merge folds a full re-parse of a reply into the capture. Found values
// overwrite. New ambiguities only count for slots that are still unset.
func (s *chatService) merge(c *entity.PendingCapture, result nlp.ParseResult) {
	p := result.Partial
	filled := false

	if p.Amount != nil {
		c.Partial.Amount = p.Amount
		c.Partial.Currency = p.Currency
		filled = true
	}
	if p.Category != "" {
		c.Partial.Category = p.Category
		filled = true
	}
	if p.PaymentMethod != "" {
		c.Partial.PaymentMethod = p.PaymentMethod
		filled = true
	}
	if p.OccurredAt != nil {
		c.Partial.OccurredAt = p.OccurredAt
		filled = true
	}
	if filled && c.Partial.Note == nil && p.Note != nil {
		c.Partial.Note = p.Note
	}

	for _, slot := range result.AmbiguousSlots {
		if c.Partial.Has(slot) {
			continue
		}
		if c.Candidates == nil {
			c.Candidates = make(map[nlp.Slot][]nlp.Candidate)
		}
		c.Candidates[slot] = append([]nlp.Candidate(nil), result.Candidates[slot]...)
		if !containsSlot(c.AmbiguousSlots, slot) {
			c.AmbiguousSlots = append(c.AmbiguousSlots, slot)
		}
	}
}

func containsSlot(slots []nlp.Slot, slot nlp.Slot) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
