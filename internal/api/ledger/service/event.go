package ledgerService

import (
	"ExpenseChat/internal/entity"
	contextPkg "ExpenseChat/pkg/context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	EventCommitted = "transaction.committed"
	EventEdited    = "transaction.edited"
	EventDeleted   = "transaction.deleted"
)

type TransactionEvent struct {
	Type          string              `json:"type"`
	UserID        string              `json:"userId"`
	TransactionID string              `json:"transactionId"`
	Version       uint64              `json:"version"`
	Transaction   *entity.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

// publish never fails the mutation that triggered it.
func (s *ledgerService) publish(ctx context.Context, eventType, userID, transactionID string, version uint64, transaction *entity.Transaction) {
	event := TransactionEvent{
		Type:          eventType,
		UserID:        userID,
		TransactionID: transactionID,
		Version:       version,
		Transaction:   transaction,
		Timestamp:     s.now(),
	}

	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":     contextPkg.GetRequestID(ctx),
			"event":          eventType,
			"transaction_id": transactionID,
			"error":          err.Error(),
		}).Warn("Failed to publish ledger event")
	}
}
