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

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, email, full_name, specialization, department_id, phone,
			   created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	query := `
		SELECT id, email, full_name, specialization, department_id, phone,
			   created_at, updated_at
		FROM doctors
		WHERE lower(email) = lower($1)
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor by email: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetDepartmentByName(ctx context.Context, name string) (*model.Department, error) {
	query := `
		SELECT id, name
		FROM departments
		WHERE lower(name) = lower($1)
	`
	var dept model.Department
	err := r.db.GetContext(ctx, &dept, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("department", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &dept, nil
}

func (r *doctorRepository) GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	query := `
		SELECT id, name
		FROM departments
		WHERE id = $1
	`
	var dept model.Department
	err := r.db.GetContext(ctx, &dept, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("department", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &dept, nil
}

// Ordering by created_at then id keeps the no-preference doctor pick
// deterministic instead of leaving it to storage iteration order.
func (r *doctorRepository) FirstInDepartment(ctx context.Context, departmentID uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, email, full_name, specialization, department_id, phone,
			   created_at, updated_at
		FROM doctors
		WHERE department_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, departmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor for department: %w", err)
	}
	return &doctor, nil
}
