package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"garage-backend/internal/cache"
	"garage-backend/internal/models"
	"garage-backend/internal/services"

	"github.com/gorilla/mux"
)

type CatalogHandler struct {
	Service *services.CatalogService
}

func NewCatalogHandler(s *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: s}
}

// CreateService adds a labour/service entry to the catalog
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var svc models.CatalogService
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.CreateService(r.Context(), &svc); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateCatalogCaches(r.Context())
	writeJSON(w, http.StatusCreated, svc)
}

// GetService retrieves a catalog service by ID
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	svc, err := h.Service.GetService(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, svc)
}

// ListServices returns catalog services matching an optional search
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.Service.ListServices(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, services)
}

// UpdateService updates a catalog service
func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var svc models.CatalogService
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	svc.ID = id

	if err := h.Service.UpdateService(r.Context(), &svc); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateCatalogCaches(r.Context())
	writeJSON(w, http.StatusOK, svc)
}

// DeleteService removes a catalog service
func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteService(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateCatalogCaches(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Service deleted",
	})
}

// CreatePart adds a spare part to the catalog
func (h *CatalogHandler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var part models.CatalogPart
	if err := json.NewDecoder(r.Body).Decode(&part); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.CreatePart(r.Context(), &part); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateCatalogCaches(r.Context())
	writeJSON(w, http.StatusCreated, part)
}

// GetPart retrieves a catalog part by ID
func (h *CatalogHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid part ID", http.StatusBadRequest)
		return
	}

	part, err := h.Service.GetPart(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, part)
}

// ListParts returns catalog parts matching an optional search
func (h *CatalogHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Service.ListParts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, parts)
}

// UpdatePart updates a catalog part
func (h *CatalogHandler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid part ID", http.StatusBadRequest)
		return
	}

	var part models.CatalogPart
	if err := json.NewDecoder(r.Body).Decode(&part); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	part.ID = id

	if err := h.Service.UpdatePart(r.Context(), &part); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateCatalogCaches(r.Context())
	writeJSON(w, http.StatusOK, part)
}

// DeletePart removes a catalog part
func (h *CatalogHandler) DeletePart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid part ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeletePart(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateCatalogCaches(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Part deleted",
	})
}
