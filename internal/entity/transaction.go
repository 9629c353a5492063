package entity

import (
	"ExpenseChat/internal/api/ledger"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionSource string

const (
	SourceChat   TransactionSource = "chat"
	SourceManual TransactionSource = "manual"
)

func (s TransactionSource) Valid() bool {
	return s == SourceChat || s == SourceManual
}

type Transaction struct {
	ID            string                    `json:"id"`
	UserID        string                    `json:"userId"`
	Amount        decimal.Decimal           `json:"amount"`
	Currency      string                    `json:"currency"`
	Category      taxonomy.CategoryKey      `json:"category"`
	PaymentMethod taxonomy.PaymentMethodKey `json:"paymentMethod,omitempty"`
	Note          *string                   `json:"note,omitempty"`
	OccurredAt    time.Time                 `json:"occurredAt"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
	Source        TransactionSource         `json:"source"`
}

// Validate enforces the rules every committed transaction satisfies. An empty payment method means the
// user never said how they paid.
func (t *Transaction) Validate(reg *taxonomy.Registry) error {
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ledger.ErrInvalidTransaction)
	}

	if !t.Category.Valid() || !reg.HasCategory(t.Category) {
		return fmt.Errorf("%w: unknown category %q", ledger.ErrInvalidTransaction, t.Category)
	}

	if t.PaymentMethod != "" && (!t.PaymentMethod.Valid() || !reg.HasPaymentMethod(t.PaymentMethod)) {
		return fmt.Errorf("%w: unknown payment method %q", ledger.ErrInvalidTransaction, t.PaymentMethod)
	}

	if !validCurrency(t.Currency) {
		return fmt.Errorf("%w: currency must be a three letter ISO code", ledger.ErrInvalidTransaction)
	}

	if t.OccurredAt.IsZero() {
		return fmt.Errorf("%w: occurred date is required", ledger.ErrInvalidTransaction)
	}

	if !t.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", ledger.ErrInvalidTransaction, t.Source)
	}

	return nil
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

type CommitRequest struct {
	UserID         string
	IdempotencyKey string
	Amount         decimal.Decimal
	Currency       string
	Category       taxonomy.CategoryKey
	PaymentMethod  taxonomy.PaymentMethodKey
	Note           *string
	OccurredAt     time.Time
	Source         TransactionSource
}

// TransactionPatch carries only the fields an edit changes.
type TransactionPatch struct {
	Amount        *decimal.Decimal
	Currency      *string
	Category      *taxonomy.CategoryKey
	PaymentMethod *taxonomy.PaymentMethodKey
	Note          *string
	ClearNote     bool
	OccurredAt    *time.Time
}

func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = p.Amount.Round(2)
	}
	if p.Currency != nil {
		t.Currency = *p.Currency
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.PaymentMethod != nil {
		t.PaymentMethod = *p.PaymentMethod
	}
	if p.ClearNote {
		t.Note = nil
	} else if p.Note != nil {
		note := *p.Note
		t.Note = &note
	}
	if p.OccurredAt != nil {
		t.OccurredAt = calendar.Day(*p.OccurredAt)
	}
	return t
}

type TransactionFilter struct {
	Categories     []taxonomy.CategoryKey
	PaymentMethods []taxonomy.PaymentMethodKey
	Range          *calendar.Range
}

func (f TransactionFilter) Match(t Transaction) bool {
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if c == t.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.PaymentMethods) > 0 {
		found := false
		for _, pm := range f.PaymentMethods {
			if pm == t.PaymentMethod {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Range != nil && !f.Range.Contains(t.OccurredAt) {
		return false
	}

	return true
}

// SortTransactions orders newest first by occurred date, then by creation
// time. The sort is stable so insertion order breaks any remaining tie.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		di, dj := calendar.Day(txs[i].OccurredAt), calendar.Day(txs[j].OccurredAt)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// FilterTransactions returns the matching transactions in list order.
func FilterTransactions(txs []Transaction, f TransactionFilter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	SortTransactions(out)
	return out
}

type LedgerSnapshot struct {
	Version      uint64
	Transactions []Transaction
}
