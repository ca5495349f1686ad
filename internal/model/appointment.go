package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
)

// Appointment is a confirmed time slot. Created exactly once, by the
// approval transition of its consultation request, never before.
type Appointment struct {
	Base
	ConsultationID  uuid.UUID         `db:"consultation_id" json:"consultation_id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	DepartmentID    *uuid.UUID        `db:"department_id" json:"department_id,omitempty"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string            `db:"appointment_time" json:"appointment_time"`
	Status          AppointmentStatus `db:"status" json:"status"`
}
