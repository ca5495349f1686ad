package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeConsultation PaymentType = "consultation"
	PaymentTypePharmacy     PaymentType = "pharmacy"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is an append-only ledger row. One per verified gateway
// callback, failed callbacks recorded too, never mutated afterwards.
type Payment struct {
	Base
	PatientID         uuid.UUID       `db:"patient_id" json:"patient_id"`
	PaymentType       PaymentType     `db:"payment_type" json:"payment_type"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Status            PaymentStatus   `db:"status" json:"status"`
	RazorpayOrderID   string          `db:"razorpay_order_id" json:"razorpay_order_id"`
	RazorpayPaymentID string          `db:"razorpay_payment_id" json:"razorpay_payment_id"`
	RelatedID         *uuid.UUID      `db:"related_id" json:"related_id,omitempty"`
	Description       string          `db:"description" json:"description,omitempty"`
}

type CreateGatewayOrderRequest struct {
	PaymentType PaymentType `json:"payment_type" binding:"required,oneof=consultation pharmacy"`
	Amount      *string     `json:"amount"`
	RelatedID   *string     `json:"related_id"`
	Items       []OrderItem `json:"items" binding:"omitempty,dive"`
}

type GatewayOrderResponse struct {
	OrderID string          `json:"order_id"`
	Key     string          `json:"key"`
	Amount  decimal.Decimal `json:"amount"`
}

type VerifyPaymentRequest struct {
	PaymentType       PaymentType `json:"payment_type" binding:"required,oneof=consultation pharmacy"`
	Amount            string      `json:"amount" binding:"required"`
	RelatedID         *string     `json:"related_id"`
	RazorpayOrderID   string      `json:"razorpay_order_id"`
	RazorpayPaymentID string      `json:"razorpay_payment_id"`
	Email             string      `json:"email" binding:"required,email"`
	Items             []OrderItem `json:"items" binding:"omitempty,dive"`
	Quantity          int         `json:"quantity"`
}

type VerifyPaymentResult struct {
	PaymentID uuid.UUID     `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
	OrderIDs  []uuid.UUID   `json:"orders,omitempty"`
}

type PaymentsSummary struct {
	Consultations PaymentBucket `json:"consultations"`
	Pharmacy      PaymentBucket `json:"pharmacy"`
}

type PaymentBucket struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
