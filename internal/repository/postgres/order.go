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

const orderColumns = `
	id, patient_name, medicine_id, medicine_name, quantity, order_date,
	payment_status, delivery_status, total_price, created_at, updated_at
`

func (r *orderRepository) CreateBatch(ctx context.Context, orders []*model.MedicineOrder) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
		INSERT INTO medicine_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, o := range orders {
		o.ID = uuid.New()
		o.CreatedAt = time.Now()
		o.UpdatedAt = time.Now()
		if o.OrderDate.IsZero() {
			o.OrderDate = o.CreatedAt
		}

		_, err := tx.ExecContext(ctx, query,
			o.ID,
			o.PatientName,
			o.MedicineID,
			o.MedicineName,
			o.Quantity,
			o.OrderDate,
			o.PaymentStatus,
			o.DeliveryStatus,
			o.TotalPrice,
			o.CreatedAt,
			o.UpdatedAt,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create order: %w", err)
		}
	}

	return tx.Commit()
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicineOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM medicine_orders WHERE id = $1`

	var order model.MedicineOrder
	err := r.db.GetContext(ctx, &order, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("order", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*model.MedicineOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM medicine_orders WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.PatientName != "" {
		query += fmt.Sprintf(" AND patient_name ILIKE $%d", argCount)
		args = append(args, "%"+filter.PatientName+"%")
		argCount++
	}

	if filter.DeliveryStatus != "" {
		query += fmt.Sprintf(" AND delivery_status = $%d", argCount)
		args = append(args, filter.DeliveryStatus)
		argCount++
	}

	if filter.OrderDate != nil {
		query += fmt.Sprintf(" AND order_date::date = $%d::date", argCount)
		args = append(args, *filter.OrderDate)
		argCount++
	}

	query += " ORDER BY order_date DESC, created_at DESC"

	var orders []*model.MedicineOrder
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) Stats(ctx context.Context) (*repository.OrderStats, error) {
	query := `
		SELECT COUNT(*) AS total_orders,
			   COUNT(*) FILTER (WHERE delivery_status <> 'Delivered') AS pending_deliveries,
			   COUNT(*) FILTER (WHERE delivery_status = 'Delivered') AS delivered_orders,
			   COALESCE(SUM(total_price), 0) AS total_revenue
		FROM medicine_orders
	`
	var stats repository.OrderStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get order stats: %w", err)
	}
	return &stats, nil
}

func (r *orderRepository) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) error {
	query := `
		UPDATE medicine_orders
		SET delivery_status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("order", nil)
	}
	return nil
}
