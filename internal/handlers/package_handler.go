package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"goaltips/internal/models"
	"goaltips/internal/services"
)

type PackageHandler struct {
	Service *services.PackageService
}

func (h *PackageHandler) GetPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Service.GetActivePackages(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(packages)
}

func (h *PackageHandler) GetPackageByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid package ID", http.StatusBadRequest)
		return
	}

	pkg, err := h.Service.GetPackageByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrPackageNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pkg)
}

func (h *PackageHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var pkg models.Package
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if pkg.Name == "" || pkg.Price <= 0 || pkg.Period <= 0 {
		http.Error(w, "name, price and period are required", http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreatePackage(r.Context(), pkg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *PackageHandler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid package ID", http.StatusBadRequest)
		return
	}

	var pkg models.Package
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	pkg.ID = id

	updated, err := h.Service.UpdatePackage(r.Context(), pkg)
	if err != nil {
		if errors.Is(err, models.ErrPackageNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *PackageHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid package ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeletePackage(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrPackageNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if isForeignKeyConstraintError(err) {
			http.Error(w, "package has existing subscriptions", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
