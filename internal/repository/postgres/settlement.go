package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"

	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/repository"
)

// pgLockNotAvailable is raised when lock_timeout expires while waiting
// on a stock row held by a concurrent settlement.
const pgLockNotAvailable = "55P03"

type settlementStore struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

type settlementTx struct {
	tx *sqlx.Tx
}

func NewSettlementStore(db *sqlx.DB, lockTimeout time.Duration) repository.SettlementStore {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &settlementStore{db: db, lockTimeout: lockTimeout}
}

// WithTx opens the single atomic unit a payment settlement runs in.
// The lock_timeout bounds how long a stock row lock may be awaited, so
// a contended settlement surfaces as busy instead of deadlocking.
func (s *settlementStore) WithTx(ctx context.Context, fn func(tx repository.SettlementTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin settlement transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
	if _, err := tx.ExecContext(ctx, timeout); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if err := fn(&settlementTx{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (t *settlementTx) CreatePayment(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, patient_id, payment_type, amount, status,
			razorpay_order_id, razorpay_payment_id, related_id,
			description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := t.tx.ExecContext(ctx, query,
		p.ID,
		p.PatientID,
		p.PaymentType,
		p.Amount,
		p.Status,
		p.RazorpayOrderID,
		p.RazorpayPaymentID,
		p.RelatedID,
		p.Description,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (t *settlementTx) GetConsultation(ctx context.Context, id uuid.UUID) (*model.ConsultationRequest, error) {
	query := `
		SELECT id, patient_id, doctor_id, symptoms, requested_at,
			   preferred_date, preferred_time, status, consultation_fee,
			   payment_status, created_at, updated_at
		FROM consultation_requests
		WHERE id = $1
		FOR UPDATE
	`
	var req model.ConsultationRequest
	err := t.tx.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("consultation request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation request: %w", err)
	}
	return &req, nil
}

func (t *settlementTx) MarkConsultationPaid(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE consultation_requests
		SET payment_status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := t.tx.ExecContext(ctx, query, model.ConsultationPaymentPaid, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark consultation paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("consultation request", nil)
	}
	return nil
}

// ReserveAndDecrement takes the exclusive row lock for the whole
// check-and-decrement, so two settlements racing for the last unit
// cannot both pass the availability check. The returned snapshot
// carries the price the caller bills at.
func (t *settlementTx) ReserveAndDecrement(ctx context.Context, medicineID uuid.UUID, quantity int) (*model.MedicineStock, error) {
	lockQuery := `
		SELECT id, name, category, price, available_quantity,
			   low_stock_threshold, expiry_date, created_at, updated_at
		FROM medicine_stocks
		WHERE id = $1
		FOR UPDATE
	`
	var m model.MedicineStock
	err := t.tx.GetContext(ctx, &m, lockQuery, medicineID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("medicine", err)
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgLockNotAvailable {
			return nil, apperrors.NewBusy("medicine stock", err)
		}
		return nil, fmt.Errorf("failed to lock medicine stock: %w", err)
	}

	if m.AvailableQuantity < quantity {
		return nil, apperrors.NewInsufficientStock(m.Name)
	}

	updateQuery := `
		UPDATE medicine_stocks
		SET available_quantity = available_quantity - $1, updated_at = $2
		WHERE id = $3
	`
	if _, err := t.tx.ExecContext(ctx, updateQuery, quantity, time.Now(), medicineID); err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	m.AvailableQuantity -= quantity
	return &m, nil
}

func (t *settlementTx) CreateOrder(ctx context.Context, o *model.MedicineOrder) error {
	query := `
		INSERT INTO medicine_orders (
			id, patient_name, medicine_id, medicine_name, quantity,
			order_date, payment_status, delivery_status, total_price,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	if o.OrderDate.IsZero() {
		o.OrderDate = o.CreatedAt
	}

	_, err := t.tx.ExecContext(ctx, query,
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
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}
