package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MedicineStock owns the available quantity of a medicine.
// AvailableQuantity never goes negative; the stock ledger enforces that
// under a row lock.
type MedicineStock struct {
	Base
	Name              string          `db:"name" json:"name"`
	Category          string          `db:"category" json:"category,omitempty"`
	Price             decimal.Decimal `db:"price" json:"price"`
	AvailableQuantity int             `db:"available_quantity" json:"available_quantity"`
	LowStockThreshold int             `db:"low_stock_threshold" json:"low_stock_threshold"`
	ExpiryDate        *time.Time      `db:"expiry_date" json:"expiry_date,omitempty"`
}

// LowStock reports whether the item is at or below its threshold.
func (m *MedicineStock) LowStock() bool {
	return m.AvailableQuantity <= m.LowStockThreshold
}

type CreateMedicineRequest struct {
	Name              string  `json:"name" binding:"required"`
	Category          string  `json:"category"`
	Price             string  `json:"price" binding:"required"`
	AvailableQuantity int     `json:"available_quantity" binding:"min=0"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	ExpiryDate        *string `json:"expiry_date"`
}

type UpdateStockRequest struct {
	AvailableQuantity *int `json:"available_quantity" binding:"required,min=0"`
}
