package repositories

import (
	"context"
	"database/sql"

	"goaltips/internal/models"
)

type TransactionRepository struct {
	DB *sql.DB
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	query := `INSERT INTO transactions (reference, user_id, package_id, amount, phone, status, description) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, txn.Reference, txn.UserID, txn.PackageID, txn.Amount, txn.Phone, models.TransactionStatusPending, txn.Description)
	if err != nil {
		return models.Transaction{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Transaction{}, err
	}
	return r.GetTransactionByID(ctx, int(id))
}

func (r *TransactionRepository) GetTransactionByID(ctx context.Context, id int) (models.Transaction, error) {
	query := `SELECT id, reference, user_id, package_id, amount, phone, status, description, created_at, updated_at FROM transactions WHERE id = ?`
	row := r.DB.QueryRowContext(ctx, query, id)
	return scanTransaction(row)
}

// GetByReference matches a callback to its pending transaction. The lookup is
// exact, case-sensitive equality against the unique reference column.
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (models.Transaction, error) {
	query := `SELECT id, reference, user_id, package_id, amount, phone, status, description, created_at, updated_at FROM transactions WHERE reference = ?`
	row := r.DB.QueryRowContext(ctx, query, reference)
	return scanTransaction(row)
}

func scanTransaction(row *sql.Row) (models.Transaction, error) {
	var txn models.Transaction
	var updated sql.NullTime
	err := row.Scan(&txn.ID, &txn.Reference, &txn.UserID, &txn.PackageID, &txn.Amount, &txn.Phone, &txn.Status, &txn.Description, &txn.CreatedAt, &updated)
	if err == sql.ErrNoRows {
		return models.Transaction{}, models.ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}
	if updated.Valid {
		t := updated.Time
		txn.UpdatedAt = &t
	}
	return txn, nil
}

// UpdateResult applies the provider's verdict to a matched transaction and
// persists it synchronously.
func (r *TransactionRepository) UpdateResult(ctx context.Context, id int, status, description string) error {
	query := `UPDATE transactions SET status = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, query, status, description, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) GetTransactionsByUser(ctx context.Context, userID int) ([]models.Transaction, error) {
	query := `SELECT id, reference, user_id, package_id, amount, phone, status, description, created_at, updated_at FROM transactions WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var updated sql.NullTime
		if err := rows.Scan(&txn.ID, &txn.Reference, &txn.UserID, &txn.PackageID, &txn.Amount, &txn.Phone, &txn.Status, &txn.Description, &txn.CreatedAt, &updated); err != nil {
			return nil, err
		}
		if updated.Valid {
			t := updated.Time
			txn.UpdatedAt = &t
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}
