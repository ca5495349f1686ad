package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderPaymentStatus string

const (
	OrderPaymentPending OrderPaymentStatus = "Pending"
	OrderPaymentPaid    OrderPaymentStatus = "Paid"
)

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "Pending"
	DeliveryStatusPacked    DeliveryStatus = "Packed"
	DeliveryStatusOutForDel DeliveryStatus = "Out for Delivery"
	DeliveryStatusDelivered DeliveryStatus = "Delivered"
)

// MedicineOrder is one line item. MedicineID is nullable so the order
// survives a later stock deletion; MedicineName and TotalPrice carry
// the denormalized snapshot taken at order time.
type MedicineOrder struct {
	Base
	PatientName    string             `db:"patient_name" json:"patient_name"`
	MedicineID     *uuid.UUID         `db:"medicine_id" json:"medicine_id,omitempty"`
	MedicineName   string             `db:"medicine_name" json:"medicine_name"`
	Quantity       int                `db:"quantity" json:"quantity"`
	OrderDate      time.Time          `db:"order_date" json:"order_date"`
	PaymentStatus  OrderPaymentStatus `db:"payment_status" json:"payment_status"`
	DeliveryStatus DeliveryStatus     `db:"delivery_status" json:"delivery_status"`
	TotalPrice     decimal.Decimal    `db:"total_price" json:"total_price"`
}

// OrderItem is one (medicine, quantity) pair of an order batch.
type OrderItem struct {
	MedicineID uuid.UUID `json:"medicine_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Items []OrderItem `json:"items" binding:"required,min=1,dive"`
}

type UpdateDeliveryRequest struct {
	DeliveryStatus DeliveryStatus `json:"delivery_status" binding:"required,delivery_status"`
}

// NextDeliveryStatuses enumerates the legal transitions out of s.
func NextDeliveryStatuses(s DeliveryStatus) []DeliveryStatus {
	switch s {
	case DeliveryStatusPending:
		return []DeliveryStatus{DeliveryStatusPacked}
	case DeliveryStatusPacked:
		return []DeliveryStatus{DeliveryStatusOutForDel}
	case DeliveryStatusOutForDel:
		return []DeliveryStatus{DeliveryStatusDelivered}
	default:
		return nil
	}
}
