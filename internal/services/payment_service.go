package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"goaltips/internal/models"
	"goaltips/internal/repositories"
)

type CheckoutRequest struct {
	PackageID int    `json:"package_id"`
	Phone     string `json:"phone"`
}

// PaymentService drives the checkout flow: create a pending transaction and
// ask the gateway to prompt the customer's phone. It owns the gateway token
// explicitly; the client itself stays stateless.
type PaymentService struct {
	Gateway      *MpesaService
	Transactions *repositories.TransactionRepository
	Packages     *repositories.PackageRepository

	mu    sync.Mutex
	token AccessToken
}

func (s *PaymentService) gatewayToken(ctx context.Context) (AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Valid() {
		return s.token, nil
	}
	token, err := s.Gateway.Authenticate(ctx)
	if err != nil {
		return AccessToken{}, err
	}
	s.token = token
	return token, nil
}

// Checkout creates the pending transaction keyed by a fresh reference and
// fires the STK push. The transaction stays pending until the provider posts
// the result to the callback endpoint.
func (s *PaymentService) Checkout(ctx context.Context, userID int, req CheckoutRequest) (models.Transaction, error) {
	pkg, err := s.Packages.GetPackageByID(ctx, req.PackageID)
	if err != nil {
		return models.Transaction{}, err
	}

	txn := models.Transaction{
		Reference:   uuid.NewString(),
		UserID:      userID,
		PackageID:   pkg.ID,
		Amount:      pkg.Price,
		Phone:       req.Phone,
		Description: fmt.Sprintf("Subscription: %s", pkg.Name),
	}
	txn, err = s.Transactions.CreateTransaction(ctx, txn)
	if err != nil {
		return models.Transaction{}, err
	}

	token, err := s.gatewayToken(ctx)
	if err != nil {
		return models.Transaction{}, err
	}
	_, err = s.Gateway.STKPush(ctx, token, STKPushRequest{
		Reference:   txn.Reference,
		Amount:      txn.Amount,
		Phone:       txn.Phone,
		Description: txn.Description,
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

func (s *PaymentService) GetHistory(ctx context.Context, userID int) ([]models.Transaction, error) {
	return s.Transactions.GetTransactionsByUser(ctx, userID)
}
