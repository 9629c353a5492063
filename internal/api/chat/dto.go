package chat

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=500"`
	Now  string `json:"now" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type ParseRequest struct {
	Text string `json:"text" validate:"required,max=500"`
	Now  string `json:"now" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type CandidateResponse struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Currency string `json:"currency,omitempty"`
}

type TransactionResponse struct {
	ID                string  `json:"id"`
	Amount            string  `json:"amount"`
	Currency          string  `json:"currency"`
	Category          string  `json:"category"`
	CategoryName      string  `json:"category_name"`
	PaymentMethod     string  `json:"payment_method,omitempty"`
	PaymentMethodName string  `json:"payment_method_name,omitempty"`
	Note              *string `json:"note,omitempty"`
	OccurredAt        string  `json:"occurred_at"`
	Source            string  `json:"source"`
}

type BucketResponse struct {
	Key            string `json:"key"`
	DisplayName    string `json:"display_name"`
	Total          string `json:"total"`
	Count          int    `json:"count"`
	PercentOfTotal string `json:"percent_of_total"`
}

type AnswerResponse struct {
	From       string           `json:"from"`
	To         string           `json:"to"`
	RangeLabel string           `json:"range_label"`
	Focus      string           `json:"focus"`
	Totals     []BucketResponse `json:"totals"`
	Top        *BucketResponse  `json:"top,omitempty"`
	GrandTotal string           `json:"grand_total"`
	Count      int              `json:"count"`
	Currency   string           `json:"currency"`
}

type ReplyResponse struct {
	Kind        string               `json:"kind"`
	Text        string               `json:"text"`
	Slot        string               `json:"slot,omitempty"`
	Options     []CandidateResponse  `json:"options,omitempty"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Answer      *AnswerResponse      `json:"answer,omitempty"`
	Reason      string               `json:"reason,omitempty"`
}

type ParseResponse struct {
	Partial        map[string]any                 `json:"partial"`
	MissingSlots   []string                       `json:"missing_slots"`
	AmbiguousSlots []string                       `json:"ambiguous_slots"`
	Candidates     map[string][]CandidateResponse `json:"candidates,omitempty"`
	Confidence     float64                        `json:"confidence"`
	Intent         string                         `json:"intent"`
	Description    string                         `json:"description"`
}
