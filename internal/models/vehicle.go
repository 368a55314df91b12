package models

import "time"

type Vehicle struct {
	ID                 int        `json:"id"`
	ClientID           int        `json:"client_id"`
	RegistrationNumber string     `json:"registration_number"`
	Brand              string     `json:"brand,omitempty"`
	Model              string     `json:"model,omitempty"`
	Year               int        `json:"year,omitempty"`
	Color              string     `json:"color,omitempty"`
	FuelType           string     `json:"fuel_type,omitempty"`
	VINNumber          string     `json:"vin_number,omitempty"`
	EngineNumber       string     `json:"engine_number,omitempty"`
	KMReadingIn        int        `json:"km_reading_in,omitempty"`
	KMReadingOut       int        `json:"km_reading_out,omitempty"`
	InsuranceExpiry    *time.Time `json:"insurance_expiry,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type CreateVehicleRequest struct {
	ClientID           int    `json:"client_id"`
	RegistrationNumber string `json:"registration_number"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	Color              string `json:"color"`
	FuelType           string `json:"fuel_type"`
	VINNumber          string `json:"vin_number"`
	EngineNumber       string `json:"engine_number"`
	Notes              string `json:"notes"`
}
