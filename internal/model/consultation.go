package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ConsultationStatus string

const (
	ConsultationStatusPending  ConsultationStatus = "pending"
	ConsultationStatusApproved ConsultationStatus = "approved"
	ConsultationStatusRejected ConsultationStatus = "rejected"
)

type ConsultationPaymentStatus string

const (
	ConsultationPaymentPending ConsultationPaymentStatus = "Pending"
	ConsultationPaymentPaid    ConsultationPaymentStatus = "Paid"
	ConsultationPaymentFailed  ConsultationPaymentStatus = "Failed"
)

// ConsultationRequest is a patient's ask for a doctor appointment.
// Status is the doctor-driven axis, PaymentStatus the money-driven one;
// PaymentStatus=Paid implies Status=approved.
type ConsultationRequest struct {
	Base
	PatientID       uuid.UUID                 `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID                 `db:"doctor_id" json:"doctor_id"`
	Symptoms        string                    `db:"symptoms" json:"symptoms"`
	RequestedAt     time.Time                 `db:"requested_at" json:"requested_at"`
	PreferredDate   *time.Time                `db:"preferred_date" json:"preferred_date,omitempty"`
	PreferredTime   *string                   `db:"preferred_time" json:"preferred_time,omitempty"`
	Status          ConsultationStatus        `db:"status" json:"status"`
	ConsultationFee decimal.Decimal           `db:"consultation_fee" json:"consultation_fee"`
	PaymentStatus   ConsultationPaymentStatus `db:"payment_status" json:"payment_status"`
}

type CreateConsultationRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Department    string  `json:"department" binding:"required"`
	DoctorID      *string `json:"doctor_id"`
	Symptoms      string  `json:"symptoms" binding:"required"`
	PreferredDate *string `json:"preferred_date"`
	PreferredTime *string `json:"preferred_time"`
	Fee           *string `json:"fee"`
}
