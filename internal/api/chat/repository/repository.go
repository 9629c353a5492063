package chatRepository

import (
	"ExpenseChat/internal/entity"

	"golang.org/x/net/context"
)

// IPendingRepository holds at most one pending capture per user and
// conversation.
type IPendingRepository interface {
	Get(c context.Context, userID, conversationID string) (entity.PendingCapture, bool, error)
	Save(c context.Context, capture entity.PendingCapture) error
	Delete(c context.Context, userID, conversationID string) error
}

func pendingKey(userID, conversationID string) string {
	return "chat:pending:" + userID + ":" + conversationID
}
