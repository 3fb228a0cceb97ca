package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"goaltips/internal/models"
	"goaltips/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
	Webhook *services.PaymentWebhookService
}

// Checkout starts a payment for the authenticated user: a pending transaction
// is created and the gateway prompts the customer's phone.
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PackageID == 0 || req.Phone == "" {
		http.Error(w, "package_id and phone are required", http.StatusBadRequest)
		return
	}

	txn, err := h.Service.Checkout(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrPackageNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var gatewayErr *services.MpesaError
		if errors.As(err, &gatewayErr) {
			http.Error(w, gatewayErr.Error(), http.StatusBadGateway)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(txn)
}

// Callback receives the gateway's payment verdict. The provider retries on
// non-2xx, so only a body we could never process (bad format) or a reference
// we never issued gets an error status back.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Unable to read request body", http.StatusBadRequest)
		return
	}

	if err := h.Webhook.ProcessCallback(r.Context(), body); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCallback):
			writeMessage(w, http.StatusBadRequest, "Invalid format")
		case errors.Is(err, models.ErrTransactionNotFound):
			writeMessage(w, http.StatusNotFound, "Transaction not found")
		default:
			writeMessage(w, http.StatusInternalServerError, "Processing failed")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Processed")
}

func (h *PaymentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	txns, err := h.Service.GetHistory(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(txns)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
