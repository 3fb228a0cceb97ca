package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"goaltips/internal/models"
	"goaltips/internal/services"
)

type MatchHandler struct {
	Service *services.MatchService
}

func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var match models.Match
	if err := json.NewDecoder(r.Body).Decode(&match); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateMatch(r.Context(), match)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *MatchHandler) GetMatchByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	match, err := h.Service.GetMatchByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrMatchNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(match)
}

func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Service.GetMatches(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}

func (h *MatchHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	var match models.Match
	if err := json.NewDecoder(r.Body).Decode(&match); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	match.ID = id

	updated, err := h.Service.UpdateMatch(r.Context(), match)
	if err != nil {
		if errors.Is(err, models.ErrMatchNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteMatch(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrMatchNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
