package entity

import "ExpenseChat/pkg/nlp"

type ReplyKind string

const (
	ReplyQuestion     ReplyKind = "question"
	ReplyConfirmation ReplyKind = "confirmation"
	ReplyAnswer       ReplyKind = "answer"
	ReplyCancelled    ReplyKind = "cancelled"
)

type CancelReason string

const (
	ReasonUserCancelled       CancelReason = "user_cancelled"
	ReasonNothingPending      CancelReason = "nothing_pending"
	ReasonConversationExpired CancelReason = "conversation_expired"
)

// Reply is the single outcome of one chat turn. Slot and Options are set for
// questions, Transaction for confirmations, Answer for answers and Reason
// for cancellations.
type Reply struct {
	Kind        ReplyKind       `json:"kind"`
	Text        string          `json:"text"`
	Slot        nlp.Slot        `json:"slot,omitempty"`
	Options     []nlp.Candidate `json:"options,omitempty"`
	Transaction *Transaction    `json:"transaction,omitempty"`
	Answer      *Summary        `json:"answer,omitempty"`
	Reason      CancelReason    `json:"reason,omitempty"`
}
