package analytics

type DashboardQuery struct {
	From          string   `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string   `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Bucket        string   `query:"bucket" validate:"omitempty,oneof=day week month"`
	Category      []string `query:"category"`
	PaymentMethod []string `query:"payment_method"`
}

type AggregateBucketResponse struct {
	Key            string `json:"key"`
	DisplayName    string `json:"display_name"`
	Total          string `json:"total"`
	Count          int    `json:"count"`
	PercentOfTotal string `json:"percent_of_total"`
}

type SeriesPointResponse struct {
	BucketLabel string `json:"bucket_label"`
	Total       string `json:"total"`
	Count       int    `json:"count"`
}

type DashboardRowResponse struct {
	ID            string  `json:"id"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Note          *string `json:"note,omitempty"`
	OccurredAt    string  `json:"occurred_at"`
}

type DashboardResponse struct {
	From       string                    `json:"from"`
	To         string                    `json:"to"`
	BucketSize string                    `json:"bucket_size"`
	Currency   string                    `json:"currency"`
	GrandTotal string                    `json:"grand_total"`
	Count      int                       `json:"count"`
	Average    string                    `json:"average"`
	Version    uint64                    `json:"version"`
	Totals     []AggregateBucketResponse `json:"totals"`
	Series     []SeriesPointResponse     `json:"series"`
	Rows       []DashboardRowResponse    `json:"rows"`
}
