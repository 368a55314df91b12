package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"garage-backend/internal/cache"
	"garage-backend/internal/middleware"
	"garage-backend/internal/models"
	"garage-backend/internal/services"

	"github.com/gorilla/mux"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	PDF     *services.PDFService
	Archive *services.ArchiveService
}

func NewInvoiceHandler(s *services.InvoiceService, pdf *services.PDFService, archive *services.ArchiveService) *InvoiceHandler {
	return &InvoiceHandler{Service: s, PDF: pdf, Archive: archive}
}

// CreateInvoice creates a new invoice
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	invoice, err := h.Service.CreateInvoice(r.Context(), &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, invoice)
}

// GetInvoice retrieves an invoice by ID
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	invoice, err := h.Service.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invoice)
}

// ListInvoices returns invoices, optionally filtered by payment status and client
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	status := models.PaymentStatus(r.URL.Query().Get("status"))
	clientID := 0
	if c := r.URL.Query().Get("client_id"); c != "" {
		if n, err := strconv.Atoi(c); err == nil && n > 0 {
			clientID = n
		}
	}

	invoices, err := h.Service.ListInvoices(r.Context(), status, clientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invoices)
}

// UpdateInvoice replaces invoice content and recomputes amounts
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	invoice, err := h.Service.UpdateInvoice(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateInvoiceCaches(r.Context(), invoice.AccessCode)
	writeJSON(w, http.StatusOK, invoice)
}

// DeleteInvoice removes an invoice after re-verifying the caller's password
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	invoice, err := h.Service.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Service.DeleteInvoice(r.Context(), id, userID, req.Password); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateInvoiceCaches(r.Context(), invoice.AccessCode)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Invoice %s deleted", invoice.InvoiceNumber),
	})
}

// RecordPayment appends a payment to the invoice ledger
func (h *InvoiceHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	var req models.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	invoice, payment, err := h.Service.RecordPayment(r.Context(), id, &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateInvoiceCaches(r.Context(), invoice.AccessCode)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"invoice": invoice,
		"payment": payment,
	})
}

// GetPaymentHistory returns the payment ledger for an invoice
func (h *InvoiceHandler) GetPaymentHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	history, err := h.Service.GetPaymentHistory(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// UpdatePaymentStatus is the administrative payment status override
func (h *InvoiceHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateInvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	invoice, err := h.Service.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateInvoiceCaches(r.Context(), invoice.AccessCode)
	writeJSON(w, http.StatusOK, invoice)
}

// DownloadPDF streams the invoice as a PDF document
func (h *InvoiceHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	detail, err := h.Service.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := h.PDF.GenerateInvoicePDF(detail)
	if err != nil {
		log.Printf("[Invoices] PDF generation failed for %s: %v", detail.InvoiceNumber, err)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	if h.Archive != nil {
		h.Archive.ArchiveInvoicePDF(r.Context(), detail.InvoiceNumber, data)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, detail.InvoiceNumber))
	w.Write(data)
}

// GetPublicInvoice resolves an access code to the unauthenticated invoice view.
// Responses are cached briefly since shared links get refreshed repeatedly.
func (h *InvoiceHandler) GetPublicInvoice(w http.ResponseWriter, r *http.Request) {
	accessCode := mux.Vars(r)["accessCode"]
	if accessCode == "" {
		http.Error(w, "Access code is required", http.StatusBadRequest)
		return
	}

	if cached, ok := cache.GetCachedPublicInvoice(r.Context(), accessCode); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	view, err := h.Service.GetPublicView(r.Context(), accessCode)
	if err != nil {
		writeError(w, err)
		return
	}

	if data, err := json.Marshal(view); err == nil {
		cache.CachePublicInvoice(r.Context(), accessCode, data)
	}
	writeJSON(w, http.StatusOK, view)
}
