package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/allenjacob2003/telemed-api/internal/model"
)

func (r *paymentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Payment, error) {
	query := `
		SELECT id, patient_id, payment_type, amount, status,
			   razorpay_order_id, razorpay_payment_id, related_id,
			   description, created_at, updated_at
		FROM payments
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var payments []*model.Payment
	if err := r.db.SelectContext(ctx, &payments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) Summary(ctx context.Context) (*model.PaymentsSummary, error) {
	query := `
		SELECT payment_type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM payments
		WHERE status = 'success'
		GROUP BY payment_type
	`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments summary: %w", err)
	}
	defer rows.Close()

	summary := &model.PaymentsSummary{
		Consultations: model.PaymentBucket{TotalAmount: decimal.Zero},
		Pharmacy:      model.PaymentBucket{TotalAmount: decimal.Zero},
	}

	for rows.Next() {
		var (
			paymentType model.PaymentType
			count       int
			total       decimal.Decimal
		)
		if err := rows.Scan(&paymentType, &count, &total); err != nil {
			return nil, fmt.Errorf("failed to scan payments summary: %w", err)
		}

		bucket := model.PaymentBucket{Count: count, TotalAmount: total}
		switch paymentType {
		case model.PaymentTypeConsultation:
			summary.Consultations = bucket
		case model.PaymentTypePharmacy:
			summary.Pharmacy = bucket
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments summary: %w", err)
	}

	return summary, nil
}
