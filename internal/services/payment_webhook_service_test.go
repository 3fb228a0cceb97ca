package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"goaltips/internal/models"
)

type fakeTransactionStore struct {
	transactions map[string]models.Transaction
	updates      int
}

func (f *fakeTransactionStore) GetByReference(_ context.Context, reference string) (models.Transaction, error) {
	txn, ok := f.transactions[reference]
	if !ok {
		return models.Transaction{}, models.ErrTransactionNotFound
	}
	return txn, nil
}

func (f *fakeTransactionStore) UpdateResult(_ context.Context, id int, status, description string) error {
	for ref, txn := range f.transactions {
		if txn.ID == id {
			txn.Status = status
			txn.Description = description
			f.transactions[ref] = txn
			f.updates++
			return nil
		}
	}
	return models.ErrTransactionNotFound
}

type fakePackageStore struct {
	packages map[int]models.Package
}

func (f *fakePackageStore) GetPackageByID(_ context.Context, id int) (models.Package, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return models.Package{}, models.ErrPackageNotFound
	}
	return pkg, nil
}

type fakeSubscriptionStore struct {
	subscriptions []models.Subscription
}

func (f *fakeSubscriptionStore) ExistsForTransaction(_ context.Context, transactionID int) (bool, error) {
	for _, sub := range f.subscriptions {
		if sub.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubscriptionStore) CreateSubscription(_ context.Context, sub models.Subscription) (models.Subscription, error) {
	for _, existing := range f.subscriptions {
		if existing.TransactionID == sub.TransactionID {
			return models.Subscription{}, models.ErrSubscriptionExists
		}
	}
	sub.ID = len(f.subscriptions) + 1
	f.subscriptions = append(f.subscriptions, sub)
	return sub, nil
}

func newWebhookFixture(txns ...models.Transaction) (*PaymentWebhookService, *fakeTransactionStore, *fakePackageStore, *fakeSubscriptionStore) {
	store := &fakeTransactionStore{transactions: map[string]models.Transaction{}}
	for _, txn := range txns {
		store.transactions[txn.Reference] = txn
	}
	packages := &fakePackageStore{packages: map[int]models.Package{}}
	subs := &fakeSubscriptionStore{}
	quiet := log.New(io.Discard, "", 0)
	svc := &PaymentWebhookService{
		Transactions:  store,
		Packages:      packages,
		Subscriptions: subs,
		InfoLog:       quiet,
		ErrorLog:      quiet,
	}
	return svc, store, packages, subs
}

func successBody(reference string) []byte {
	return []byte(`["{\"Body\":{\"stkCallback\":{\"ExternalReference\":\"` + reference + `\",\"ResultCode\":0,\"ResultDesc\":\"Success\"}}}"]`)
}

func failureBody(reference string) []byte {
	return []byte(`["{\"Body\":{\"stkCallback\":{\"ExternalReference\":\"` + reference + `\",\"ResultCode\":1,\"ResultDesc\":\"Cancelled by user\"}}}"]`)
}

func TestProcessCallback_MalformedBodiesMutateNothing(t *testing.T) {
	cases := []string{`[]`, `garbage`, `[{"a":1}]`, `["{\"Body\":{}}"]`}
	for _, body := range cases {
		svc, store, _, subs := newWebhookFixture(models.Transaction{
			ID: 1, Reference: "REF123", Status: models.TransactionStatusPending,
		})
		err := svc.ProcessCallback(context.Background(), []byte(body))
		if !errors.Is(err, ErrInvalidCallback) {
			t.Fatalf("body %q: expected ErrInvalidCallback, got %v", body, err)
		}
		if store.updates != 0 {
			t.Errorf("body %q: transaction was mutated", body)
		}
		if len(subs.subscriptions) != 0 {
			t.Errorf("body %q: subscription was created", body)
		}
	}
}

func TestProcessCallback_UnknownReference(t *testing.T) {
	svc, store, _, subs := newWebhookFixture()
	err := svc.ProcessCallback(context.Background(), successBody("NOPE"))
	if !errors.Is(err, models.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
	if store.updates != 0 || len(subs.subscriptions) != 0 {
		t.Error("expected no mutations for unknown reference")
	}
}

func TestProcessCallback_SuccessActivatesSubscription(t *testing.T) {
	svc, store, packages, subs := newWebhookFixture(models.Transaction{
		ID: 10, Reference: "REF123", UserID: 42, PackageID: 7, Status: models.TransactionStatusPending,
	})
	packages.packages[7] = models.Package{ID: 7, Name: "Monthly", Period: 30}

	if err := svc.ProcessCallback(context.Background(), successBody("REF123")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txn := store.transactions["REF123"]
	if txn.Status != models.TransactionStatusSuccessful {
		t.Errorf("transaction status: %q", txn.Status)
	}
	if !strings.HasPrefix(txn.Description, "Success | ") {
		t.Errorf("description should carry the audit blob: %q", txn.Description)
	}

	if len(subs.subscriptions) != 1 {
		t.Fatalf("expected exactly one subscription, got %d", len(subs.subscriptions))
	}
	sub := subs.subscriptions[0]
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !sub.StartDate.Equal(today) {
		t.Errorf("start date: %v, want %v", sub.StartDate, today)
	}
	if !sub.EndDate.Equal(today.AddDate(0, 0, 30)) {
		t.Errorf("end date: %v, want %v", sub.EndDate, today.AddDate(0, 0, 30))
	}
	if sub.UserID != 42 || sub.PackageID != 7 || sub.TransactionID != 10 {
		t.Errorf("subscription row mismatch: %+v", sub)
	}
	if sub.Status != models.SubscriptionStatusActive {
		t.Errorf("subscription status: %q", sub.Status)
	}
}

func TestProcessCallback_FailureCodeCreatesNoSubscription(t *testing.T) {
	svc, store, packages, subs := newWebhookFixture(models.Transaction{
		ID: 11, Reference: "REF456", UserID: 5, PackageID: 7, Status: models.TransactionStatusPending,
	})
	packages.packages[7] = models.Package{ID: 7, Period: 30}

	if err := svc.ProcessCallback(context.Background(), failureBody("REF456")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.transactions["REF456"].Status; got != models.TransactionStatusFailed {
		t.Errorf("transaction status: %q", got)
	}
	if len(subs.subscriptions) != 0 {
		t.Errorf("expected no subscription, got %d", len(subs.subscriptions))
	}
}

func TestProcessCallback_ReplayActivatesOnce(t *testing.T) {
	svc, store, packages, subs := newWebhookFixture(models.Transaction{
		ID: 12, Reference: "REF789", UserID: 9, PackageID: 3, Status: models.TransactionStatusPending,
	})
	packages.packages[3] = models.Package{ID: 3, Period: 14}

	body := successBody("REF789")
	if err := svc.ProcessCallback(context.Background(), body); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.ProcessCallback(context.Background(), body); err != nil {
		t.Fatalf("replayed delivery: %v", err)
	}

	if len(subs.subscriptions) != 1 {
		t.Fatalf("expected exactly one subscription after replay, got %d", len(subs.subscriptions))
	}
	if store.updates != 1 {
		t.Errorf("expected exactly one transaction update after replay, got %d", store.updates)
	}
}

func TestProcessCallback_MissingPackageSkipsActivation(t *testing.T) {
	svc, store, _, subs := newWebhookFixture(models.Transaction{
		ID: 13, Reference: "REF000", UserID: 4, PackageID: 99, Status: models.TransactionStatusPending,
	})

	if err := svc.ProcessCallback(context.Background(), successBody("REF000")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.transactions["REF000"].Status; got != models.TransactionStatusSuccessful {
		t.Errorf("transaction status: %q", got)
	}
	if len(subs.subscriptions) != 0 {
		t.Errorf("expected activation to be skipped, got %d subscriptions", len(subs.subscriptions))
	}
}
