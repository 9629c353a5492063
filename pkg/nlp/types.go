package nlp

import (
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"time"

	"github.com/shopspring/decimal"
)

type Slot string

const (
	SlotAmount        Slot = "amount"
	SlotCategory      Slot = "category"
	SlotPaymentMethod Slot = "paymentMethod"
	SlotOccurredAt    Slot = "occurredAt"
	SlotNote          Slot = "note"
)

// PartialTransaction holds whatever slots an utterance managed to fill.
type PartialTransaction struct {
	Amount        *decimal.Decimal          `json:"amount,omitempty"`
	Currency      string                    `json:"currency,omitempty"`
	Category      taxonomy.CategoryKey      `json:"category,omitempty"`
	PaymentMethod taxonomy.PaymentMethodKey `json:"paymentMethod,omitempty"`
	Note          *string                   `json:"note,omitempty"`
	OccurredAt    *time.Time                `json:"occurredAt,omitempty"`
}

func (p PartialTransaction) Has(slot Slot) bool {
	switch slot {
	case SlotAmount:
		return p.Amount != nil
	case SlotCategory:
		return p.Category != ""
	case SlotPaymentMethod:
		return p.PaymentMethod != ""
	case SlotOccurredAt:
		return p.OccurredAt != nil
	case SlotNote:
		return p.Note != nil
	default:
		return false
	}
}

func (p *PartialTransaction) Clear(slot Slot) {
	switch slot {
	case SlotAmount:
		p.Amount = nil
		p.Currency = ""
	case SlotCategory:
		p.Category = ""
	case SlotPaymentMethod:
		p.PaymentMethod = ""
	case SlotOccurredAt:
		p.OccurredAt = nil
	case SlotNote:
		p.Note = nil
	}
}

// Candidate is one of several competing values for an ambiguous slot.
// Value is machine readable: a decimal string, a taxonomy key or a
// calendar date.
type Candidate struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Currency string `json:"currency,omitempty"`
}

type ParseResult struct {
	Partial        PartialTransaction   `json:"partial"`
	MissingSlots   []Slot               `json:"missingSlots"`
	AmbiguousSlots []Slot               `json:"ambiguousSlots"`
	Candidates     map[Slot][]Candidate `json:"candidates,omitempty"`
	Confidence     float64              `json:"confidence"`
}

func (r ParseResult) Complete() bool {
	return len(r.MissingSlots) == 0 && len(r.AmbiguousSlots) == 0
}

type IntentKind string

const (
	IntentCapture IntentKind = "capture"
	IntentQuery   IntentKind = "query"
	IntentCancel  IntentKind = "cancel"
)

type QueryFocus string

const (
	FocusBreakdown QueryFocus = "breakdown"
	FocusTotal     QueryFocus = "total"
	FocusTop       QueryFocus = "top"
)

type QueryRequest struct {
	Range      calendar.Range         `json:"range"`
	RangeLabel string                 `json:"rangeLabel"`
	Categories []taxonomy.CategoryKey `json:"categories,omitempty"`
	Focus      QueryFocus             `json:"focus"`
}

type Intent struct {
	Kind  IntentKind    `json:"kind"`
	Query *QueryRequest `json:"query,omitempty"`
}

type Options struct {
	ReportingCurrency string
	Location          *time.Location
}

type IParser interface {
	Parse(utterance string, now time.Time) ParseResult
	ClassifyIntent(utterance string, now time.Time) Intent
	ParseBareAmount(text string) (decimal.Decimal, string, bool)
	ParseBareDate(text string, now time.Time) (time.Time, bool)
	ResolveBare(text string, kind taxonomy.Kind) (string, bool)
	Describe(r ParseResult) string
}
