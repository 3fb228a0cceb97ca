package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"goaltips/internal/models"
	"goaltips/internal/services"
)

type stubTransactionStore struct {
	transactions map[string]models.Transaction
}

func (s *stubTransactionStore) GetByReference(_ context.Context, reference string) (models.Transaction, error) {
	txn, ok := s.transactions[reference]
	if !ok {
		return models.Transaction{}, models.ErrTransactionNotFound
	}
	return txn, nil
}

func (s *stubTransactionStore) UpdateResult(_ context.Context, id int, status, description string) error {
	for ref, txn := range s.transactions {
		if txn.ID == id {
			txn.Status = status
			txn.Description = description
			s.transactions[ref] = txn
			return nil
		}
	}
	return models.ErrTransactionNotFound
}

type stubPackageStore struct {
	packages map[int]models.Package
}

func (s *stubPackageStore) GetPackageByID(_ context.Context, id int) (models.Package, error) {
	pkg, ok := s.packages[id]
	if !ok {
		return models.Package{}, models.ErrPackageNotFound
	}
	return pkg, nil
}

type stubSubscriptionStore struct {
	subscriptions []models.Subscription
}

func (s *stubSubscriptionStore) ExistsForTransaction(_ context.Context, transactionID int) (bool, error) {
	for _, sub := range s.subscriptions {
		if sub.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubSubscriptionStore) CreateSubscription(_ context.Context, sub models.Subscription) (models.Subscription, error) {
	for _, existing := range s.subscriptions {
		if existing.TransactionID == sub.TransactionID {
			return models.Subscription{}, models.ErrSubscriptionExists
		}
	}
	sub.ID = len(s.subscriptions) + 1
	s.subscriptions = append(s.subscriptions, sub)
	return sub, nil
}

func newCallbackServer(txns ...models.Transaction) (*httptest.Server, *stubTransactionStore, *stubPackageStore, *stubSubscriptionStore) {
	store := &stubTransactionStore{transactions: map[string]models.Transaction{}}
	for _, txn := range txns {
		store.transactions[txn.Reference] = txn
	}
	packages := &stubPackageStore{packages: map[int]models.Package{}}
	subs := &stubSubscriptionStore{}
	quiet := log.New(io.Discard, "", 0)
	handler := &PaymentHandler{
		Webhook: &services.PaymentWebhookService{
			Transactions:  store,
			Packages:      packages,
			Subscriptions: subs,
			InfoLog:       quiet,
			ErrorLog:      quiet,
		},
	}
	ts := httptest.NewServer(http.HandlerFunc(handler.Callback))
	return ts, store, packages, subs
}

func postCallback(t *testing.T, ts *httptest.Server, body string) (int, map[string]string) {
	t.Helper()
	resp, err := http.Post(ts.URL, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post callback: %v", err)
	}
	defer resp.Body.Close()
	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, payload
}

func TestCallbackEndpoint_InvalidFormat(t *testing.T) {
	ts, _, _, _ := newCallbackServer()
	defer ts.Close()

	status, payload := postCallback(t, ts, `not even json`)
	if status != http.StatusBadRequest {
		t.Errorf("status: %d, want %d", status, http.StatusBadRequest)
	}
	if payload["message"] != "Invalid format" {
		t.Errorf("message: %q", payload["message"])
	}
}

func TestCallbackEndpoint_UnknownReference(t *testing.T) {
	ts, _, _, _ := newCallbackServer()
	defer ts.Close()

	body := `["{\"Body\":{\"stkCallback\":{\"ExternalReference\":\"MISSING\",\"ResultCode\":0,\"ResultDesc\":\"Success\"}}}"]`
	status, payload := postCallback(t, ts, body)
	if status != http.StatusNotFound {
		t.Errorf("status: %d, want %d", status, http.StatusNotFound)
	}
	if payload["message"] != "Transaction not found" {
		t.Errorf("message: %q", payload["message"])
	}
}

func TestCallbackEndpoint_SuccessfulPayment(t *testing.T) {
	ts, store, packages, subs := newCallbackServer(models.Transaction{
		ID: 10, Reference: "REF123", UserID: 42, PackageID: 7, Status: models.TransactionStatusPending,
	})
	defer ts.Close()
	packages.packages[7] = models.Package{ID: 7, Name: "Weekly", Period: 7}

	body := `["{\"Body\":{\"stkCallback\":{\"ExternalReference\":\"REF123\",\"ResultCode\":0,\"ResultDesc\":\"Success\"}}}"]`
	status, payload := postCallback(t, ts, body)
	if status != http.StatusOK {
		t.Fatalf("status: %d, want %d", status, http.StatusOK)
	}
	if payload["message"] != "Processed" {
		t.Errorf("message: %q", payload["message"])
	}

	if got := store.transactions["REF123"].Status; got != models.TransactionStatusSuccessful {
		t.Errorf("transaction status: %q", got)
	}
	if len(subs.subscriptions) != 1 {
		t.Fatalf("expected one subscription, got %d", len(subs.subscriptions))
	}
	sub := subs.subscriptions[0]
	if sub.UserID != 42 || sub.TransactionID != 10 {
		t.Errorf("subscription row mismatch: %+v", sub)
	}
	if !sub.EndDate.Equal(sub.StartDate.AddDate(0, 0, 7)) {
		t.Errorf("subscription span: %v to %v", sub.StartDate, sub.EndDate)
	}
}

func TestCallbackEndpoint_ReplayedDelivery(t *testing.T) {
	ts, _, packages, subs := newCallbackServer(models.Transaction{
		ID: 11, Reference: "REF456", UserID: 8, PackageID: 3, Status: models.TransactionStatusPending,
	})
	defer ts.Close()
	packages.packages[3] = models.Package{ID: 3, Period: 30}

	body := `["{\"Body\":{\"stkCallback\":{\"ExternalReference\":\"REF456\",\"ResultCode\":0,\"ResultDesc\":\"Success\"}}}"]`
	for i := 0; i < 2; i++ {
		status, payload := postCallback(t, ts, body)
		if status != http.StatusOK || payload["message"] != "Processed" {
			t.Fatalf("delivery %d: status %d message %q", i+1, status, payload["message"])
		}
	}
	if len(subs.subscriptions) != 1 {
		t.Errorf("expected one subscription after replay, got %d", len(subs.subscriptions))
	}
}
