package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"goaltips/internal/models"
)

// ErrInvalidCallback marks a webhook body that could not be normalized.
var ErrInvalidCallback = errors.New("invalid callback format")

type TransactionStore interface {
	GetByReference(ctx context.Context, reference string) (models.Transaction, error)
	UpdateResult(ctx context.Context, id int, status, description string) error
}

type PackageStore interface {
	GetPackageByID(ctx context.Context, id int) (models.Package, error)
}

type SubscriptionStore interface {
	ExistsForTransaction(ctx context.Context, transactionID int) (bool, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error)
}

// PaymentWebhookService reconciles inbound gateway callbacks with pending
// transactions: normalize the payload, match the transaction by reference,
// record the verdict, and on success activate a subscription. A transaction
// already in a terminal state is treated as a replayed delivery and left
// untouched, so processing the same callback twice changes nothing.
type PaymentWebhookService struct {
	Transactions  TransactionStore
	Packages      PackageStore
	Subscriptions SubscriptionStore
	InfoLog       *log.Logger
	ErrorLog      *log.Logger
}

func (s *PaymentWebhookService) ProcessCallback(ctx context.Context, body []byte) error {
	s.InfoLog.Printf("payment callback received: %s", body)

	result := ParseCallback(body)
	if result == nil {
		s.ErrorLog.Printf("payment callback: unparseable body")
		return ErrInvalidCallback
	}

	txn, err := s.Transactions.GetByReference(ctx, result.ExternalReference)
	if err != nil {
		if errors.Is(err, models.ErrTransactionNotFound) {
			s.ErrorLog.Printf("payment callback: no transaction for reference %q", result.ExternalReference)
		}
		return err
	}

	if txn.Status != models.TransactionStatusPending {
		s.InfoLog.Printf("payment callback: transaction %d already %s, replay ignored", txn.ID, txn.Status)
		return nil
	}

	status := models.TransactionStatusFailed
	if result.ResultCode == 0 {
		status = models.TransactionStatusSuccessful
	}

	// The full normalized result is appended to the description as a raw
	// audit trail; intentionally verbose, not structured.
	blob, _ := json.Marshal(result)
	description := result.ResultDesc + " | " + string(blob)

	if err := s.Transactions.UpdateResult(ctx, txn.ID, status, description); err != nil {
		return err
	}

	if result.ResultCode != 0 {
		return nil
	}
	return s.activateSubscription(ctx, txn)
}

func (s *PaymentWebhookService) activateSubscription(ctx context.Context, txn models.Transaction) error {
	pkg, err := s.Packages.GetPackageByID(ctx, txn.PackageID)
	if err != nil {
		if errors.Is(err, models.ErrPackageNotFound) {
			// Data inconsistency: a paid transaction pointing at a missing
			// package. Skipped rather than failed so the provider is not
			// told to retry, but logged loudly.
			s.ErrorLog.Printf("payment callback: package %d missing for transaction %d, subscription skipped", txn.PackageID, txn.ID)
			return nil
		}
		return err
	}

	exists, err := s.Subscriptions.ExistsForTransaction(ctx, txn.ID)
	if err != nil {
		return err
	}
	if exists {
		s.InfoLog.Printf("payment callback: subscription already active for transaction %d", txn.ID)
		return nil
	}

	start := truncateToDate(time.Now())
	sub := models.Subscription{
		UserID:        txn.UserID,
		PackageID:     txn.PackageID,
		TransactionID: txn.ID,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, pkg.Period),
		Status:        models.SubscriptionStatusActive,
	}
	if _, err := s.Subscriptions.CreateSubscription(ctx, sub); err != nil {
		if errors.Is(err, models.ErrSubscriptionExists) {
			// lost the race against a concurrent delivery; the unique key
			// on transaction_id makes that a no-op
			return nil
		}
		return err
	}
	s.InfoLog.Printf("subscription activated: user %d package %d until %s", sub.UserID, sub.PackageID, sub.EndDate.Format("2006-01-02"))
	return nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
