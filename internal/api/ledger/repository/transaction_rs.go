package ledgerRepository

import (
	"ExpenseChat/internal/api/ledger"
	"ExpenseChat/internal/entity"
	contextPkg "ExpenseChat/pkg/context"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type TransactionDB struct {
	ID             sql.NullString  `db:"id"`
	UserID         sql.NullString  `db:"user_id"`
	Amount         decimal.Decimal `db:"amount"`
	Currency       sql.NullString  `db:"currency"`
	Category       sql.NullString  `db:"category"`
	PaymentMethod  sql.NullString  `db:"payment_method"`
	Note           sql.NullString  `db:"note"`
	OccurredOn     sql.NullString  `db:"occurred_on"`
	Source         sql.NullString  `db:"source"`
	IdempotencyKey sql.NullString  `db:"idempotency_key"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r *ledgerRepository) CreateTransaction(c context.Context, record Record) error {
	requestID := contextPkg.GetRequestID(c)
	transaction := record.Transaction

	argsKV := map[string]interface{}{
		"id":              transaction.ID,
		"user_id":         transaction.UserID,
		"amount":          transaction.Amount.StringFixed(2),
		"currency":        transaction.Currency,
		"category":        string(transaction.Category),
		"payment_method":  string(transaction.PaymentMethod),
		"note":            nullString(transaction.Note),
		"occurred_on":     calendar.Format(transaction.OccurredAt),
		"source":          string(transaction.Source),
		"idempotency_key": sql.NullString{String: record.IdempotencyKey, Valid: record.IdempotencyKey != ""},
		"created_at":      transaction.CreatedAt.UTC(),
		"updated_at":      transaction.UpdatedAt.UTC(),
	}

	query, args, err := sqlx.Named(queryCreateTransaction, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateTransaction")
		return err
	}
	query = r.q.Rebind(query)

	if _, err = r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating transaction")
		return err
	}

	return nil
}

func (r *ledgerRepository) GetTransactionsByUserID(c context.Context, userID string) ([]Record, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []TransactionDB

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryGetTransactionsByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTransactionsByUserID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTransactionsByUserID execution err")
		return nil, err
	}

	result := make([]Record, 0, len(rows))
	for _, row := range rows {
		record, err := r.makeRecord(row)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id":     requestID,
				"transaction_id": row.ID.String,
				"error":          err.Error(),
			}).Error("GetTransactionsByUserID corrupt row")
			return nil, err
		}
		result = append(result, record)
	}

	return result, nil
}

func (r *ledgerRepository) UpdateTransaction(c context.Context, transaction entity.Transaction) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":             transaction.ID,
		"user_id":        transaction.UserID,
		"amount":         transaction.Amount.StringFixed(2),
		"currency":       transaction.Currency,
		"category":       string(transaction.Category),
		"payment_method": string(transaction.PaymentMethod),
		"note":           nullString(transaction.Note),
		"occurred_on":    calendar.Format(transaction.OccurredAt),
		"updated_at":     transaction.UpdatedAt.UTC(),
	}

	query, args, err := sqlx.Named(queryUpdateTransaction, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateTransaction named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateTransaction execution err")
		return err
	}

	return r.expectAffected(requestID, "UpdateTransaction", result)
}

func (r *ledgerRepository) DeleteTransaction(c context.Context, userID string, id string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":      id,
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryDeleteTransaction, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteTransaction named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteTransaction execution err")
		return err
	}

	return r.expectAffected(requestID, "DeleteTransaction", result)
}

func (r *ledgerRepository) expectAffected(requestID, op string, result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn(op + " no rows affected")
		return ledger.ErrTransactionNotFound
	}

	return nil
}

func (r *ledgerRepository) makeRecord(row TransactionDB) (Record, error) {
	occurredAt, err := calendar.Parse(row.OccurredOn.String)
	if err != nil {
		return Record{}, err
	}

	transaction := entity.Transaction{
		ID:            row.ID.String,
		UserID:        row.UserID.String,
		Amount:        row.Amount,
		Currency:      row.Currency.String,
		Category:      taxonomy.CategoryKey(row.Category.String),
		PaymentMethod: taxonomy.PaymentMethodKey(row.PaymentMethod.String),
		OccurredAt:    occurredAt,
		Source:        entity.TransactionSource(row.Source.String),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Note.Valid {
		note := row.Note.String
		transaction.Note = &note
	}

	return Record{
		Transaction:    transaction,
		IdempotencyKey: row.IdempotencyKey.String,
	}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
