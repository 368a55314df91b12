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

type VehicleHandler struct {
	Service *services.VehicleService
}

func NewVehicleHandler(s *services.VehicleService) *VehicleHandler {
	return &VehicleHandler{Service: s}
}

// CreateVehicle registers a vehicle under a client
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vehicle, err := h.Service.CreateVehicle(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateClientCaches(r.Context())
	writeJSON(w, http.StatusCreated, vehicle)
}

// GetVehicle retrieves a vehicle by ID
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	vehicle, err := h.Service.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

// ListVehicles returns vehicles, optionally filtered by client
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	clientID := 0
	if c := r.URL.Query().Get("client_id"); c != "" {
		if n, err := strconv.Atoi(c); err == nil && n > 0 {
			clientID = n
		}
	}

	vehicles, err := h.Service.ListVehicles(r.Context(), clientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicles)
}

// UpdateVehicle updates vehicle details
func (h *VehicleHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	var req models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vehicle, err := h.Service.UpdateVehicle(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateClientCaches(r.Context())
	writeJSON(w, http.StatusOK, vehicle)
}

// DeleteVehicle removes a vehicle
func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid vehicle ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteVehicle(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateClientCaches(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Vehicle deleted",
	})
}
