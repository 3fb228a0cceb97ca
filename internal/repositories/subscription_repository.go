package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"goaltips/internal/models"
)

type SubscriptionRepository struct {
	DB *sql.DB
}

// CreateSubscription inserts an activation row. The subscriptions table keeps
// a unique key on transaction_id, so a second activation for the same
// transaction surfaces as ErrSubscriptionExists instead of a duplicate row;
// replayed callbacks and the concurrent-delivery race both land here.
func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	query := `INSERT INTO subscriptions (user_id, package_id, transaction_id, start_date, end_date, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, sub.UserID, sub.PackageID, sub.TransactionID, sub.StartDate, sub.EndDate, sub.Status)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return models.Subscription{}, models.ErrSubscriptionExists
		}
		return models.Subscription{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Subscription{}, err
	}
	sub.ID = int(id)
	return sub, nil
}

func (r *SubscriptionRepository) ExistsForTransaction(ctx context.Context, transactionID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE transaction_id = ?)`, transactionID).Scan(&exists)
	return exists, err
}

// GetActiveByUserID returns the subscription covering today for the user, the
// one expiring last if several overlap.
func (r *SubscriptionRepository) GetActiveByUserID(ctx context.Context, userID int) (models.Subscription, error) {
	query := `SELECT id, user_id, package_id, transaction_id, start_date, end_date, status, created_at, updated_at
		FROM subscriptions WHERE user_id = ? AND status = ? AND end_date >= ? ORDER BY end_date DESC LIMIT 1`
	today := truncateToDay(time.Now())
	var sub models.Subscription
	var updated sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID, models.SubscriptionStatusActive, today).
		Scan(&sub.ID, &sub.UserID, &sub.PackageID, &sub.TransactionID, &sub.StartDate, &sub.EndDate, &sub.Status, &sub.CreatedAt, &updated)
	if err == sql.ErrNoRows {
		return models.Subscription{}, models.ErrNoActiveSubscription
	}
	if err != nil {
		return models.Subscription{}, err
	}
	if updated.Valid {
		t := updated.Time
		sub.UpdatedAt = &t
	}
	return sub, nil
}

func (r *SubscriptionRepository) HasActiveSubscription(ctx context.Context, userID int) (bool, error) {
	_, err := r.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNoActiveSubscription) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ExpireOverdue flips active subscriptions whose end_date has passed. Returns
// the number of rows expired; the daily cleaner reports it.
func (r *SubscriptionRepository) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscriptions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE status = ? AND end_date < ?`,
		models.SubscriptionStatusExpired, models.SubscriptionStatusActive, truncateToDay(now))
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
