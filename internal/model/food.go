package model

import (
	"time"

	"github.com/google/uuid"
)

// FoodItem is a logged food entry. ExpiryDate is the only field the
// notification policy looks at.
type FoodItem struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Quantity     int       `json:"quantity"`
	PurchaseDate time.Time `json:"purchase_date"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Notes        string    `json:"notes,omitempty"`
	Barcode      string    `json:"barcode,omitempty"`
}
