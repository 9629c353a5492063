package chatHandler

import (
	"ExpenseChat/internal/api/chat"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/nlp"
	"time"
)

func (h *ChatHandler) toReplyResponse(r entity.Reply) chat.ReplyResponse {
	res := chat.ReplyResponse{
		Kind:    string(r.Kind),
		Text:    r.Text,
		Slot:    string(r.Slot),
		Options: toCandidates(r.Options),
		Reason:  string(r.Reason),
	}

	if t := r.Transaction; t != nil {
		tx := &chat.TransactionResponse{
			ID:           t.ID,
			Amount:       t.Amount.StringFixed(2),
			Currency:     t.Currency,
			Category:     string(t.Category),
			CategoryName: h.registry.CategoryName(t.Category),
			Note:         t.Note,
			OccurredAt:   calendar.Format(t.OccurredAt),
			Source:       string(t.Source),
		}
		if t.PaymentMethod != "" {
			tx.PaymentMethod = string(t.PaymentMethod)
			tx.PaymentMethodName = h.registry.PaymentMethodName(t.PaymentMethod)
		}
		res.Transaction = tx
	}

	if s := r.Answer; s != nil {
		answer := &chat.AnswerResponse{
			From:       calendar.Format(s.Query.Range.From),
			To:         calendar.Format(s.Query.Range.To),
			RangeLabel: s.Query.RangeLabel,
			Focus:      string(s.Query.Focus),
			Totals:     make([]chat.BucketResponse, 0, len(s.Totals)),
			GrandTotal: s.GrandTotal.StringFixed(2),
			Count:      s.Count,
			Currency:   s.Currency,
		}
		for _, b := range s.Totals {
			answer.Totals = append(answer.Totals, toBucket(b))
		}
		if s.Top != nil {
			top := toBucket(*s.Top)
			answer.Top = &top
		}
		res.Answer = answer
	}

	return res
}

func toBucket(b entity.AggregateBucket) chat.BucketResponse {
	return chat.BucketResponse{
		Key:            b.Key,
		DisplayName:    b.DisplayName,
		Total:          b.Total.StringFixed(2),
		Count:          b.Count,
		PercentOfTotal: b.PercentOfTotal.StringFixed(1),
	}
}

func toCandidates(candidates []nlp.Candidate) []chat.CandidateResponse {
	if len(candidates) == 0 {
		return nil
	}
	out := make([]chat.CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, chat.CandidateResponse{Value: c.Value, Label: c.Label, Currency: c.Currency})
	}
	return out
}

func toParseResponse(result nlp.ParseResult, intent nlp.Intent, description string) chat.ParseResponse {
	res := chat.ParseResponse{
		Partial:        make(map[string]any),
		MissingSlots:   make([]string, 0, len(result.MissingSlots)),
		AmbiguousSlots: make([]string, 0, len(result.AmbiguousSlots)),
		Confidence:     result.Confidence,
		Intent:         string(intent.Kind),
		Description:    description,
	}

	p := result.Partial
	if p.Amount != nil {
		res.Partial["amount"] = p.Amount.StringFixed(2)
	}
	if p.Currency != "" {
		res.Partial["currency"] = p.Currency
	}
	if p.Category != "" {
		res.Partial["category"] = string(p.Category)
	}
	if p.PaymentMethod != "" {
		res.Partial["payment_method"] = string(p.PaymentMethod)
	}
	if p.Note != nil {
		res.Partial["note"] = *p.Note
	}
	if p.OccurredAt != nil {
		res.Partial["occurred_at"] = calendar.Format(*p.OccurredAt)
	}

	for _, s := range result.MissingSlots {
		res.MissingSlots = append(res.MissingSlots, string(s))
	}
	for _, s := range result.AmbiguousSlots {
		res.AmbiguousSlots = append(res.AmbiguousSlots, string(s))
	}
	if len(result.Candidates) > 0 {
		res.Candidates = make(map[string][]chat.CandidateResponse, len(result.Candidates))
		for slot, candidates := range result.Candidates {
			res.Candidates[string(slot)] = toCandidates(candidates)
		}
	}

	return res
}

// clock returns the client supplied instant, or the server clock when none
// was sent. The value has already passed validation.
func (h *ChatHandler) clock(raw string) time.Time {
	if raw == "" {
		return h.now()
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return h.now()
	}
	return t
}
