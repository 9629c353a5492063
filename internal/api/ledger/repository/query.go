package ledgerRepository

const (
	queryCreateTransaction = `
		INSERT INTO ledger_transactions (
			id,
			user_id,
			amount,
			currency,
			category,
			payment_method,
			note,
			occurred_on,
			source,
			idempotency_key,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:amount,
			:currency,
			:category,
			:payment_method,
			:note,
			:occurred_on,
			:source,
			:idempotency_key,
			:created_at,
			:updated_at
		)
	`

	queryGetTransactionsByUserID = `
		SELECT
			id,
			user_id,
			amount,
			currency,
			category,
			payment_method,
			note,
			occurred_on,
			source,
			idempotency_key,
			created_at,
			updated_at
		FROM ledger_transactions
		WHERE user_id = :user_id
		ORDER BY created_at ASC, id ASC
	`

	queryUpdateTransaction = `
		UPDATE ledger_transactions
		SET
			amount = :amount,
			currency = :currency,
			category = :category,
			payment_method = :payment_method,
			note = :note,
			occurred_on = :occurred_on,
			updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id
	`

	queryDeleteTransaction = `
		DELETE FROM ledger_transactions
		WHERE id = :id AND user_id = :user_id
	`
)
