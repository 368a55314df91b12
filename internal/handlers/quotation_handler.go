package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"garage-backend/internal/cache"
	"garage-backend/internal/middleware"
	"garage-backend/internal/models"
	"garage-backend/internal/services"

	"github.com/gorilla/mux"
)

type QuotationHandler struct {
	Service *services.QuotationService
}

func NewQuotationHandler(s *services.QuotationService) *QuotationHandler {
	return &QuotationHandler{Service: s}
}

// CreateQuotation creates a new quotation
func (h *QuotationHandler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	quotation, err := h.Service.CreateQuotation(r.Context(), &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateQuotationCaches(r.Context())
	writeJSON(w, http.StatusCreated, quotation)
}

// GetQuotation retrieves a quotation by ID
func (h *QuotationHandler) GetQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid quotation ID", http.StatusBadRequest)
		return
	}

	quotation, err := h.Service.GetQuotation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quotation)
}

// ListQuotations returns quotations, optionally filtered by status and client
func (h *QuotationHandler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	status := models.QuotationStatus(r.URL.Query().Get("status"))
	clientID := 0
	if c := r.URL.Query().Get("client_id"); c != "" {
		if n, err := strconv.Atoi(c); err == nil && n > 0 {
			clientID = n
		}
	}

	quotations, err := h.Service.ListQuotations(r.Context(), status, clientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quotations)
}

// UpdateQuotation replaces a pending quotation's content
func (h *QuotationHandler) UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid quotation ID", http.StatusBadRequest)
		return
	}

	var req models.CreateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	quotation, err := h.Service.UpdateQuotation(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateQuotationCaches(r.Context())
	writeJSON(w, http.StatusOK, quotation)
}

// DeleteQuotation removes a quotation
func (h *QuotationHandler) DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid quotation ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteQuotation(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateQuotationCaches(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Quotation deleted",
	})
}

// Accept marks a pending quotation as accepted
func (h *QuotationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Accept)
}

// Reject marks a pending quotation as rejected
func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Reject)
}

// Expire marks a pending quotation as expired
func (h *QuotationHandler) Expire(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Expire)
}

func (h *QuotationHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, id int) (*models.Quotation, error)) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid quotation ID", http.StatusBadRequest)
		return
	}

	quotation, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateQuotationCaches(r.Context())
	writeJSON(w, http.StatusOK, quotation)
}

// Convert materializes an accepted quotation into an invoice
func (h *QuotationHandler) Convert(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid quotation ID", http.StatusBadRequest)
		return
	}

	invoice, err := h.Service.Convert(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateQuotationCaches(r.Context())
	writeJSON(w, http.StatusCreated, invoice)
}

// CreateRevision copies a quotation into a new pending revision
func (h *QuotationHandler) CreateRevision(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid quotation ID", http.StatusBadRequest)
		return
	}

	revision, err := h.Service.CreateRevision(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateQuotationCaches(r.Context())
	writeJSON(w, http.StatusCreated, revision)
}

// ListRevisions returns the revision history of a quotation's number group
func (h *QuotationHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid quotation ID", http.StatusBadRequest)
		return
	}

	revisions, err := h.Service.ListRevisions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"versions": revisions,
		"count":    len(revisions),
	})
}

// GetStats returns quotation analytics, cached for a minute
func (h *QuotationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if cached, ok := cache.GetCached(r.Context(), cache.QuotationStatsKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if data, err := json.Marshal(stats); err == nil {
		cache.SetCached(r.Context(), cache.QuotationStatsKey, data, time.Minute)
	}
	writeJSON(w, http.StatusOK, stats)
}
