package models

import "time"

type Client struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Mobile         string    `json:"mobile,omitempty"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	State          string    `json:"state,omitempty"`
	Pincode        string    `json:"pincode,omitempty"`
	GSTIN          string    `json:"gstin,omitempty"`
	BillingAddress string    `json:"billing_address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateClientRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Mobile         string `json:"mobile"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	Pincode        string `json:"pincode"`
	GSTIN          string `json:"gstin"`
	BillingAddress string `json:"billing_address"`
}
