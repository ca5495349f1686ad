package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"

	"github.com/allenjacob2003/telemed-api/internal/model"
)

func (r *appointmentRepository) GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, consultation_id, patient_id, doctor_id, department_id,
			   appointment_date, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE consultation_id = $1
	`
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, query, consultationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) ListConfirmedForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, consultation_id, patient_id, doctor_id, department_id,
			   appointment_date, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND status = 'confirmed'
		ORDER BY appointment_date ASC, appointment_time ASC
	`
	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, consultation_id, patient_id, doctor_id, department_id,
			   appointment_date, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_date ASC, appointment_time ASC
	`
	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}
