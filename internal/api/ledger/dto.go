package ledger

type CreateTransactionRequest struct {
	Amount        string  `json:"amount" validate:"required,numeric"`
	Currency      string  `json:"currency" validate:"omitempty,len=3,uppercase"`
	Category      string  `json:"category" validate:"required"`
	PaymentMethod string  `json:"payment_method"`
	Note          *string `json:"note" validate:"omitempty,max=280"`
	OccurredAt    string  `json:"occurred_at" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateTransactionRequest struct {
	Amount        *string `json:"amount" validate:"omitempty,numeric"`
	Currency      *string `json:"currency" validate:"omitempty,len=3,uppercase"`
	Category      *string `json:"category"`
	PaymentMethod *string `json:"payment_method"`
	Note          *string `json:"note" validate:"omitempty,max=280"`
	ClearNote     bool    `json:"clear_note"`
	OccurredAt    *string `json:"occurred_at" validate:"omitempty,datetime=2006-01-02"`
}

type ListTransactionsQuery struct {
	Category      []string `query:"category"`
	PaymentMethod []string `query:"payment_method"`
	From          string   `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string   `query:"to" validate:"omitempty,datetime=2006-01-02"`
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
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Total        string                `json:"total"`
}
