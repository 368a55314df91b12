package models

import "github.com/shopspring/decimal"

// CatalogService is a priced service offering (SAC-coded).
type CatalogService struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	SACCode     string          `json:"sac_code"`
}

// CatalogPart is a stocked part (HSN-coded).
type CatalogPart struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	PartNumber string          `json:"part_number,omitempty"`
	Category   string          `json:"category,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	HSNCode    string          `json:"hsn_code"`
	StockQty   int             `json:"stock_quantity"`
}
