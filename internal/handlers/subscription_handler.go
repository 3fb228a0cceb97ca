package handlers

import (
	"encoding/json"
	"net/http"

	"goaltips/internal/services"
)

type SubscriptionHandler struct {
	Service *services.SubscriptionService
}

// GetMySubscription reports the caller's subscription state. An inactive user
// gets {"active": false} rather than an error.
func (h *SubscriptionHandler) GetMySubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summary, err := h.Service.GetSummary(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
