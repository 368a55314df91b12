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

type ClientHandler struct {
	Service *services.ClientService
}

func NewClientHandler(s *services.ClientService) *ClientHandler {
	return &ClientHandler{Service: s}
}

// CreateClient registers a new client
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	client, err := h.Service.CreateClient(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateClientCaches(r.Context())
	writeJSON(w, http.StatusCreated, client)
}

// GetClient retrieves a client by ID
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	client, err := h.Service.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// ListClients returns clients matching an optional name/phone search
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	clients, err := h.Service.ListClients(r.Context(), search)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, clients)
}

// UpdateClient updates client details
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var req models.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	client, err := h.Service.UpdateClient(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateClientCaches(r.Context())
	writeJSON(w, http.StatusOK, client)
}

// DeleteClient removes a client without billing documents
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteClient(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateClientCaches(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Client deleted",
	})
}
