package api

import (
	"encoding/json"
	"strconv"

	"github.com/starford/orderlist/internal/models"
)

// AddItemRequest is the request body for adding an item. Quantity is kept
// raw so a non-integer value reaches the ledger as an invalid amount.
type AddItemRequest struct {
	Name     string          `json:"name" example:"Milk" validate:"required"`
	Quantity json.RawMessage `json:"quantity" swaggertype:"integer" example:"2" validate:"required"`
	Icon     string          `json:"icon" example:"Shopping" validate:"required"`
}

// quantityOf returns the integer held in raw, or 0 when raw is missing or not
// an integral number.
func quantityOf(raw json.RawMessage) int {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return 0
	}
	return v
}

// Item is a ledger entry (aliased from the domain layer).
type Item = models.Item

// ItemListResponse wraps the ordered ledger.
type ItemListResponse struct {
	Items []Item `json:"items" validate:"required"`
	Total int    `json:"total" example:"2" validate:"required"`
}

// NotificationResponse reports the pending notification, if any.
type NotificationResponse struct {
	Pending bool   `json:"pending" example:"true" validate:"required"`
	Message string `json:"message,omitempty" example:"Item added successfully"`
	Kind    string `json:"kind,omitempty" example:"success"`
}

// IconInfo describes one selectable icon.
type IconInfo struct {
	ID      string `json:"id" example:"Shopping" validate:"required"`
	Preview string `json:"preview" example:"/api/icons/Shopping.png" validate:"required"`
}

// IconListResponse wraps the icon catalog in presentation order.
type IconListResponse struct {
	Icons []IconInfo `json:"icons" validate:"required"`
}

// ExportFile describes a saved document (aliased from the domain layer).
type ExportFile = models.ExportFile

// ExportListResponse wraps the saved documents.
type ExportListResponse struct {
	Exports []ExportFile `json:"exports" validate:"required"`
}
