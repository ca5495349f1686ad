package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"

	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/repository"
)

func (r *medicineRepository) Create(ctx context.Context, m *model.MedicineStock) error {
	query := `
		INSERT INTO medicine_stocks (
			id, name, category, price, available_quantity,
			low_stock_threshold, expiry_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.Name,
		m.Category,
		m.Price,
		m.AvailableQuantity,
		m.LowStockThreshold,
		m.ExpiryDate,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medicine: %w", err)
	}
	return nil
}

func (r *medicineRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicineStock, error) {
	query := `
		SELECT id, name, category, price, available_quantity,
			   low_stock_threshold, expiry_date, created_at, updated_at
		FROM medicine_stocks
		WHERE id = $1
	`
	var m model.MedicineStock
	err := r.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("medicine", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medicine: %w", err)
	}
	return &m, nil
}

func (r *medicineRepository) List(ctx context.Context, filter repository.MedicineFilter) ([]*model.MedicineStock, error) {
	query := `
		SELECT id, name, category, price, available_quantity,
			   low_stock_threshold, expiry_date, created_at, updated_at
		FROM medicine_stocks
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argCount)
		args = append(args, "%"+filter.Search+"%")
		argCount++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category ILIKE $%d", argCount)
		args = append(args, "%"+filter.Category+"%")
		argCount++
	}

	if filter.LowStock {
		query += " AND available_quantity <= low_stock_threshold"
	}

	query += " ORDER BY name ASC"

	var medicines []*model.MedicineStock
	if err := r.db.SelectContext(ctx, &medicines, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, nil
}

func (r *medicineRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE medicine_stocks
		SET available_quantity = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, quantity, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update stock quantity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("medicine", nil)
	}
	return nil
}

func (r *medicineRepository) CountLowStock(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM medicine_stocks
		WHERE available_quantity <= low_stock_threshold
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count low stock medicines: %w", err)
	}
	return count, nil
}
