package ledgerHandler

import (
	"ExpenseChat/internal/api/ledger"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func (h *LedgerHandler) toResponse(t entity.Transaction) ledger.TransactionResponse {
	res := ledger.TransactionResponse{
		ID:           t.ID,
		Amount:       t.Amount.StringFixed(2),
		Currency:     t.Currency,
		Category:     string(t.Category),
		CategoryName: h.registry.CategoryName(t.Category),
		Note:         t.Note,
		OccurredAt:   calendar.Format(t.OccurredAt),
		Source:       string(t.Source),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
	if t.PaymentMethod != "" {
		res.PaymentMethod = string(t.PaymentMethod)
		res.PaymentMethodName = h.registry.PaymentMethodName(t.PaymentMethod)
	}
	return res
}

func (h *LedgerHandler) toListResponse(txs []entity.Transaction) ledger.TransactionListResponse {
	res := ledger.TransactionListResponse{
		Transactions: make([]ledger.TransactionResponse, 0, len(txs)),
		Count:        len(txs),
	}

	total := decimal.Zero
	for _, t := range txs {
		res.Transactions = append(res.Transactions, h.toResponse(t))
		total = total.Add(t.Amount)
	}
	res.Total = total.StringFixed(2)

	return res
}

// category accepts a key or any synonym the taxonomy knows.
func (h *LedgerHandler) category(value string) (taxonomy.CategoryKey, error) {
	key, ok := h.registry.ResolveCategory(value)
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q", ledger.ErrInvalidTransaction, value)
	}
	return key, nil
}

func (h *LedgerHandler) paymentMethod(value string) (taxonomy.PaymentMethodKey, error) {
	if value == "" {
		return "", nil
	}
	key, ok := h.registry.ResolvePaymentMethod(value)
	if !ok {
		return "", fmt.Errorf("%w: unknown payment method %q", ledger.ErrInvalidTransaction, value)
	}
	return key, nil
}

func (h *LedgerHandler) toCommitRequest(userID, idempotencyKey string, req ledger.CreateTransactionRequest) (entity.CommitRequest, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return entity.CommitRequest{}, fmt.Errorf("%w: amount %q is not a number", ledger.ErrInvalidTransaction, req.Amount)
	}

	category, err := h.category(req.Category)
	if err != nil {
		return entity.CommitRequest{}, err
	}

	paymentMethod, err := h.paymentMethod(req.PaymentMethod)
	if err != nil {
		return entity.CommitRequest{}, err
	}

	commit := entity.CommitRequest{
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		Amount:         amount,
		Currency:       req.Currency,
		Category:       category,
		PaymentMethod:  paymentMethod,
		Note:           req.Note,
		Source:         entity.SourceManual,
	}

	if req.OccurredAt != "" {
		occurredAt, err := calendar.Parse(req.OccurredAt)
		if err != nil {
			return entity.CommitRequest{}, fmt.Errorf("%w: occurred_at must be YYYY-MM-DD", ledger.ErrInvalidTransaction)
		}
		commit.OccurredAt = occurredAt
	}

	return commit, nil
}

func (h *LedgerHandler) toPatch(req ledger.UpdateTransactionRequest) (entity.TransactionPatch, error) {
	patch := entity.TransactionPatch{
		Currency:  req.Currency,
		Note:      req.Note,
		ClearNote: req.ClearNote,
	}

	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return entity.TransactionPatch{}, fmt.Errorf("%w: amount %q is not a number", ledger.ErrInvalidTransaction, *req.Amount)
		}
		patch.Amount = &amount
	}

	if req.Category != nil {
		category, err := h.category(*req.Category)
		if err != nil {
			return entity.TransactionPatch{}, err
		}
		patch.Category = &category
	}

	if req.PaymentMethod != nil {
		paymentMethod, err := h.paymentMethod(*req.PaymentMethod)
		if err != nil {
			return entity.TransactionPatch{}, err
		}
		patch.PaymentMethod = &paymentMethod
	}

	if req.OccurredAt != nil {
		occurredAt, err := calendar.Parse(*req.OccurredAt)
		if err != nil {
			return entity.TransactionPatch{}, fmt.Errorf("%w: occurred_at must be YYYY-MM-DD", ledger.ErrInvalidTransaction)
		}
		patch.OccurredAt = &occurredAt
	}

	return patch, nil
}

func (h *LedgerHandler) toFilter(query ledger.ListTransactionsQuery) (entity.TransactionFilter, error) {
	var filter entity.TransactionFilter

	for _, value := range query.Category {
		key, ok := h.registry.ResolveCategory(value)
		if !ok {
			return entity.TransactionFilter{}, fmt.Errorf("%w: unknown category %q", ledger.ErrInvalidFilter, value)
		}
		filter.Categories = append(filter.Categories, key)
	}

	for _, value := range query.PaymentMethod {
		key, ok := h.registry.ResolvePaymentMethod(value)
		if !ok {
			return entity.TransactionFilter{}, fmt.Errorf("%w: unknown payment method %q", ledger.ErrInvalidFilter, value)
		}
		filter.PaymentMethods = append(filter.PaymentMethods, key)
	}

	if query.From == "" && query.To == "" {
		return filter, nil
	}
	if query.From == "" || query.To == "" {
		return entity.TransactionFilter{}, fmt.Errorf("%w: from and to must be given together", ledger.ErrInvalidFilter)
	}

	from, err := calendar.Parse(query.From)
	if err != nil {
		return entity.TransactionFilter{}, fmt.Errorf("%w: from must be YYYY-MM-DD", ledger.ErrInvalidFilter)
	}
	to, err := calendar.Parse(query.To)
	if err != nil {
		return entity.TransactionFilter{}, fmt.Errorf("%w: to must be YYYY-MM-DD", ledger.ErrInvalidFilter)
	}

	r, err := calendar.NewRange(from, to)
	if err != nil {
		return entity.TransactionFilter{}, fmt.Errorf("%w: %v", ledger.ErrInvalidFilter, err)
	}
	filter.Range = &r

	return filter, nil
}
