package ledger

import "ExpenseChat/pkg/response"

var (
	ErrTransactionNotFound = response.NewError(404, "transaction not found")
	ErrInvalidTransaction  = response.NewError(400, "invalid transaction")
	ErrInvalidUserID       = response.NewError(400, "invalid user id")
	ErrInvalidFilter       = response.NewError(400, "invalid transaction filter")
	ErrCreateTransaction   = response.NewError(500, "failed to create transaction")
	ErrUpdateTransaction   = response.NewError(500, "failed to update transaction")
	ErrDeleteTransaction   = response.NewError(500, "failed to delete transaction")
	ErrLoadLedger          = response.NewError(500, "failed to load ledger")
)
