package chat

import "ExpenseChat/pkg/response"

var (
	ErrConversationExpired   = response.NewError(410, "conversation expired")
	ErrPendingNotFound       = response.NewError(404, "no pending capture for conversation")
	ErrEmptyUtterance        = response.NewError(400, "utterance is empty")
	ErrInvalidConversationID = response.NewError(400, "invalid conversation id")
	ErrPendingStore          = response.NewError(500, "failed to access pending captures")
)
