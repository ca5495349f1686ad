package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"

	"github.com/allenjacob2003/telemed-api/internal/model"
)

func (r *consultationRepository) Create(ctx context.Context, req *model.ConsultationRequest) error {
	query := `
		INSERT INTO consultation_requests (
			id, patient_id, doctor_id, symptoms, requested_at,
			preferred_date, preferred_time, status, consultation_fee,
			payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	if req.RequestedAt.IsZero() {
		req.RequestedAt = req.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.PatientID,
		req.DoctorID,
		req.Symptoms,
		req.RequestedAt,
		req.PreferredDate,
		req.PreferredTime,
		req.Status,
		req.ConsultationFee,
		req.PaymentStatus,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation request: %w", err)
	}
	return nil
}

func (r *consultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.ConsultationRequest, error) {
	query := `
		SELECT id, patient_id, doctor_id, symptoms, requested_at,
			   preferred_date, preferred_time, status, consultation_fee,
			   payment_status, created_at, updated_at
		FROM consultation_requests
		WHERE id = $1
	`
	var req model.ConsultationRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("consultation request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation request: %w", err)
	}
	return &req, nil
}

func (r *consultationRepository) ListPendingForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.ConsultationRequest, error) {
	query := `
		SELECT id, patient_id, doctor_id, symptoms, requested_at,
			   preferred_date, preferred_time, status, consultation_fee,
			   payment_status, created_at, updated_at
		FROM consultation_requests
		WHERE doctor_id = $1 AND status = 'pending'
		ORDER BY requested_at ASC
	`
	var reqs []*model.ConsultationRequest
	if err := r.db.SelectContext(ctx, &reqs, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list pending consultation requests: %w", err)
	}
	return reqs, nil
}

func (r *consultationRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ConsultationRequest, error) {
	query := `
		SELECT id, patient_id, doctor_id, symptoms, requested_at,
			   preferred_date, preferred_time, status, consultation_fee,
			   payment_status, created_at, updated_at
		FROM consultation_requests
		WHERE patient_id = $1
		ORDER BY requested_at DESC
	`
	var reqs []*model.ConsultationRequest
	if err := r.db.SelectContext(ctx, &reqs, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list consultation requests: %w", err)
	}
	return reqs, nil
}

// Approve moves pending → approved and inserts the appointment within
// one transaction. The row lock on the request serializes concurrent
// approvals so only the first one creates an appointment.
func (r *consultationRepository) Approve(ctx context.Context, id uuid.UUID, appt *model.Appointment) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		status, err := lockConsultationStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if status != model.ConsultationStatusPending {
			return apperrors.NewInvalidTransition(
				fmt.Sprintf("consultation request is already %s", status))
		}

		updateQuery := `
			UPDATE consultation_requests
			SET status = $1, updated_at = $2
			WHERE id = $3
		`
		if _, err := tx.ExecContext(ctx, updateQuery, model.ConsultationStatusApproved, time.Now(), id); err != nil {
			return fmt.Errorf("failed to approve consultation request: %w", err)
		}

		insertQuery := `
			INSERT INTO appointments (
				id, consultation_id, patient_id, doctor_id, department_id,
				appointment_date, appointment_time, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		appt.ID = uuid.New()
		appt.ConsultationID = id
		appt.CreatedAt = time.Now()
		appt.UpdatedAt = time.Now()

		_, err = tx.ExecContext(ctx, insertQuery,
			appt.ID,
			appt.ConsultationID,
			appt.PatientID,
			appt.DoctorID,
			appt.DepartmentID,
			appt.AppointmentDate,
			appt.AppointmentTime,
			appt.Status,
			appt.CreatedAt,
			appt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

func (r *consultationRepository) Reject(ctx context.Context, id uuid.UUID) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		status, err := lockConsultationStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if status != model.ConsultationStatusPending {
			return apperrors.NewInvalidTransition(
				fmt.Sprintf("consultation request is already %s", status))
		}

		query := `
			UPDATE consultation_requests
			SET status = $1, updated_at = $2
			WHERE id = $3
		`
		if _, err := tx.ExecContext(ctx, query, model.ConsultationStatusRejected, time.Now(), id); err != nil {
			return fmt.Errorf("failed to reject consultation request: %w", err)
		}
		return nil
	})
}

func lockConsultationStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (model.ConsultationStatus, error) {
	query := `
		SELECT status
		FROM consultation_requests
		WHERE id = $1
		FOR UPDATE
	`
	var status model.ConsultationStatus
	err := tx.GetContext(ctx, &status, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.NotFound("consultation request", err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock consultation request: %w", err)
	}
	return status, nil
}

func (r *consultationRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
