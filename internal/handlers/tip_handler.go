package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"goaltips/internal/models"
	"goaltips/internal/services"
	"goaltips/utils"
)

type TipHandler struct {
	Service *services.TipService
	FCM     *FCMHandler

	// Broadcast pushes a freshly published tip to connected websocket
	// clients; wired in from the server bootstrap.
	Broadcast func(models.Tip)
}

// GetFeed serves the public tip feed; premium content is masked unless the
// caller holds an active subscription.
func (h *TipHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := contextUserID(r)

	tips, err := h.Service.GetFeed(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tips)
}

func (h *TipHandler) GetTipByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid tip ID", http.StatusBadRequest)
		return
	}
	userID, _ := contextUserID(r)

	tip, err := h.Service.GetTipByID(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, models.ErrTipNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tip)
}

func (h *TipHandler) CreateTip(w http.ResponseWriter, r *http.Request) {
	var tip models.Tip
	if err := json.NewDecoder(r.Body).Decode(&tip); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateTip(r.Context(), tip)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "unknown match_id", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// PublishTip flips the tip live, notifies push subscribers and the live feed.
func (h *TipHandler) PublishTip(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid tip ID", http.StatusBadRequest)
		return
	}

	tip, err := h.Service.Publish(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrTipNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.FCM != nil {
		h.FCM.SendTipAlert(r.Context(), tip)
	}
	if h.Broadcast != nil {
		h.Broadcast(tip)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tip)
}

func (h *TipHandler) GetAllTips(w http.ResponseWriter, r *http.Request) {
	tips, err := h.Service.GetAllTips(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tips)
}

func (h *TipHandler) UpdateTip(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid tip ID", http.StatusBadRequest)
		return
	}

	var tip models.Tip
	if err := json.NewDecoder(r.Body).Decode(&tip); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	tip.ID = id

	updated, err := h.Service.UpdateTip(r.Context(), tip)
	if err != nil {
		if errors.Is(err, models.ErrTipNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *TipHandler) SetTipResult(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid tip ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	switch req.Result {
	case models.TipResultWon, models.TipResultLost, models.TipResultPending:
	default:
		http.Error(w, "invalid result", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetTipResult(r.Context(), id, req.Result); err != nil {
		if errors.Is(err, models.ErrTipNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// UploadImage stores a promo image for the tip in object storage and records
// its public URL.
func (h *TipHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid tip ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Failed to get image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read image", http.StatusInternalServerError)
		return
	}

	ext := filepath.Ext(header.Filename)
	fileName := fmt.Sprintf("tip_%d_%d%s", id, time.Now().UnixNano(), ext)
	url, err := utils.UploadFileToS3(data, fileName, utils.TipImagesFolder)
	if err != nil {
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	if err := h.Service.SetTipImage(r.Context(), id, url); err != nil {
		if errors.Is(err, models.ErrTipNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"image_url": url})
}

func (h *TipHandler) DeleteTip(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid tip ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteTip(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrTipNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
