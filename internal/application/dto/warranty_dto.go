package dto

import "time"

// WarrantyResponse garantía derivada de un ticket completado.
type WarrantyResponse struct {
	TicketCode  string    `json:"ticket_code"`
	UserID      string    `json:"user_id"`
	ProductID   string    `json:"product_id"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Months      int       `json:"months"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Status      string    `json:"status"`
}
