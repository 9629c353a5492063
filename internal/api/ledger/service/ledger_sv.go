package ledgerService

import (
	"ExpenseChat/internal/api/ledger"
	ledgerRepository "ExpenseChat/internal/api/ledger/repository"
	"ExpenseChat/internal/entity"
	"ExpenseChat/pkg/calendar"
	contextPkg "ExpenseChat/pkg/context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *ledgerService) Commit(ctx context.Context, req entity.CommitRequest) (entity.Transaction, error) {
	requestID := contextPkg.GetRequestID(ctx)

	b, err := s.book(ctx, req.UserID)
	if err != nil {
		return entity.Transaction{}, err
	}

	now := s.now()
	transaction := entity.Transaction{
		UserID:        req.UserID,
		Amount:        req.Amount.Round(2),
		Currency:      strings.ToUpper(req.Currency),
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		OccurredAt:    calendar.Today(now, s.location),
		Source:        req.Source,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if transaction.Currency == "" {
		transaction.Currency = s.currency
	}
	if !req.OccurredAt.IsZero() {
		transaction.OccurredAt = calendar.Day(req.OccurredAt)
	}

	if err := transaction.Validate(s.registry); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		}).Warn("Invalid transaction data")
		return entity.Transaction{}, err
	}

	b.mu.Lock()

	if existing, ok := b.byKey(req.IdempotencyKey); ok {
		b.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"user_id":         req.UserID,
			"transaction_id":  existing.ID,
			"idempotency_key": req.IdempotencyKey,
		}).Info("Duplicate commit, returning existing transaction")
		return existing, nil
	}

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		b.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return entity.Transaction{}, fmt.Errorf("%w: %v", ledger.ErrCreateTransaction, err)
	}
	transaction.ID = id

	if s.repository != nil {
		if err := s.persist(ctx, func(client ledgerRepository.Client) error {
			return client.Ledger.CreateTransaction(ctx, ledgerRepository.Record{
				Transaction:    transaction,
				IdempotencyKey: req.IdempotencyKey,
			})
		}); err != nil {
			b.mu.Unlock()
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to persist transaction")
			return entity.Transaction{}, fmt.Errorf("%w: %v", ledger.ErrCreateTransaction, err)
		}
	}

	b.insert(transaction, req.IdempotencyKey)
	b.version++
	version := b.version
	b.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"user_id":        req.UserID,
		"transaction_id": transaction.ID,
		"source":         transaction.Source,
	}).Info("Transaction committed")

	s.publish(ctx, EventCommitted, transaction.UserID, transaction.ID, version, &transaction)

	return transaction, nil
}

func (s *ledgerService) Edit(ctx context.Context, userID string, id string, patch entity.TransactionPatch) (entity.Transaction, error) {
	requestID := contextPkg.GetRequestID(ctx)

	b, err := s.book(ctx, userID)
	if err != nil {
		return entity.Transaction{}, err
	}

	b.mu.Lock()

	current, ok := b.get(id)
	if !ok {
		b.mu.Unlock()
		return entity.Transaction{}, ledger.ErrTransactionNotFound
	}

	if patch.Currency != nil {
		upper := strings.ToUpper(*patch.Currency)
		patch.Currency = &upper
	}

	updated := patch.Apply(current)
	updated.UpdatedAt = s.now()
	if !updated.UpdatedAt.After(current.CreatedAt) {
		updated.UpdatedAt = current.CreatedAt
	}

	if err := updated.Validate(s.registry); err != nil {
		b.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"transaction_id": id,
			"error":          err.Error(),
		}).Warn("Invalid transaction edit")
		return entity.Transaction{}, err
	}

	if s.repository != nil {
		if err := s.persist(ctx, func(client ledgerRepository.Client) error {
			return client.Ledger.UpdateTransaction(ctx, updated)
		}); err != nil {
			b.mu.Unlock()
			s.log.WithFields(logrus.Fields{
				"request_id":     requestID,
				"transaction_id": id,
				"error":          err.Error(),
			}).Error("Failed to persist transaction edit")
			if errors.Is(err, ledger.ErrTransactionNotFound) {
				return entity.Transaction{}, err
			}
			return entity.Transaction{}, fmt.Errorf("%w: %v", ledger.ErrUpdateTransaction, err)
		}
	}

	b.replace(updated)
	b.version++
	version := b.version
	b.mu.Unlock()

	s.publish(ctx, EventEdited, userID, id, version, &updated)

	return updated, nil
}

func (s *ledgerService) Delete(ctx context.Context, userID string, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	b, err := s.book(ctx, userID)
	if err != nil {
		return err
	}

	b.mu.Lock()

	if _, ok := b.get(id); !ok {
		b.mu.Unlock()
		return ledger.ErrTransactionNotFound
	}

	if s.repository != nil {
		if err := s.persist(ctx, func(client ledgerRepository.Client) error {
			return client.Ledger.DeleteTransaction(ctx, userID, id)
		}); err != nil {
			b.mu.Unlock()
			s.log.WithFields(logrus.Fields{
				"request_id":     requestID,
				"transaction_id": id,
				"error":          err.Error(),
			}).Error("Failed to persist transaction delete")
			if errors.Is(err, ledger.ErrTransactionNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", ledger.ErrDeleteTransaction, err)
		}
	}

	b.remove(id)
	b.version++
	version := b.version
	b.mu.Unlock()

	s.publish(ctx, EventDeleted, userID, id, version, nil)

	return nil
}

func (s *ledgerService) Get(ctx context.Context, userID string, id string) (entity.Transaction, error) {
	b, err := s.book(ctx, userID)
	if err != nil {
		return entity.Transaction{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	transaction, ok := b.get(id)
	if !ok {
		return entity.Transaction{}, ledger.ErrTransactionNotFound
	}

	return transaction, nil
}

func (s *ledgerService) List(ctx context.Context, userID string, filter entity.TransactionFilter) ([]entity.Transaction, error) {
	if filter.Range != nil && !filter.Range.Valid() {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidFilter, calendar.ErrInvalidRange)
	}

	b, err := s.book(ctx, userID)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	return entity.FilterTransactions(b.transactions, filter), nil
}

func (s *ledgerService) Snapshot(ctx context.Context, userID string) (entity.LedgerSnapshot, error) {
	b, err := s.book(ctx, userID)
	if err != nil {
		return entity.LedgerSnapshot{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.snapshot(), nil
}

// book returns the user's ledger, loading it from the repository the first
// time it is touched.
func (s *ledgerService) book(ctx context.Context, userID string) (*book, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ledger.ErrInvalidUserID
	}

	s.mu.Lock()
	b, ok := s.books[userID]
	if !ok {
		b = newBook()
		s.books[userID] = b
	}
	s.mu.Unlock()

	b.mu.RLock()
	loaded := b.loaded
	b.mu.RUnlock()
	if loaded {
		return b, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loaded {
		return b, nil
	}

	if s.repository != nil {
		if err := s.load(ctx, userID, b); err != nil {
			return nil, err
		}
	}
	b.loaded = true

	return b, nil
}

func (s *ledgerService) load(ctx context.Context, userID string, b *book) error {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.repository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return fmt.Errorf("%w: %v", ledger.ErrLoadLedger, err)
	}

	records, err := client.Ledger.GetTransactionsByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrLoadLedger, err)
	}

	for _, record := range records {
		b.insert(record.Transaction, record.IdempotencyKey)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
		"count":      len(records),
	}).Debug("Ledger loaded")

	return nil
}

// persist runs fn inside a repository transaction.
func (s *ledgerService) persist(ctx context.Context, fn func(client ledgerRepository.Client) error) error {
	client, err := s.repository.NewClient(true)
	if err != nil {
		return err
	}

	if err := fn(client); err != nil {
		if rbErr := client.Rollback(); rbErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"error":      rbErr.Error(),
			}).Error("Failed to rollback transaction")
		}
		return err
	}

	return client.Commit()
}
