package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"
	"github.com/allenjacob2003/telemed-api/pkg/logger"
	"github.com/allenjacob2003/telemed-api/pkg/messaging"
	"github.com/allenjacob2003/telemed-api/pkg/metrics"

	"github.com/allenjacob2003/telemed-api/internal/gateway"
	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/repository"
	"github.com/allenjacob2003/telemed-api/internal/service/notification"
)

// EventsChannel carries the settled-payment events published after
// each successful verification.
const EventsChannel = "payments"

// Service reconciles gateway callbacks into durable domain state. All
// mutations of one callback happen in a single settlement transaction;
// notification and event publishing run only after commit.
type Service struct {
	settlement   repository.SettlementStore
	patientRepo  repository.PatientRepository
	doctorRepo   repository.DoctorRepository
	consultRepo  repository.ConsultationRepository
	medicineRepo repository.MedicineRepository
	paymentRepo  repository.PaymentRepository
	gateway      gateway.Client
	notifier     notification.Service
	broker       messaging.Broker
	logger       *logger.Logger
	metrics      *metrics.Metrics
	currency     string
}

type Deps struct {
	Settlement   repository.SettlementStore
	PatientRepo  repository.PatientRepository
	DoctorRepo   repository.DoctorRepository
	ConsultRepo  repository.ConsultationRepository
	MedicineRepo repository.MedicineRepository
	PaymentRepo  repository.PaymentRepository
	Gateway      gateway.Client
	Notifier     notification.Service
	Broker       messaging.Broker
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
	Currency     string
}

func NewService(d Deps) *Service {
	currency := d.Currency
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		settlement:   d.Settlement,
		patientRepo:  d.PatientRepo,
		doctorRepo:   d.DoctorRepo,
		consultRepo:  d.ConsultRepo,
		medicineRepo: d.MedicineRepo,
		paymentRepo:  d.PaymentRepo,
		gateway:      d.Gateway,
		notifier:     d.Notifier,
		broker:       d.Broker,
		logger:       d.Logger,
		metrics:      d.Metrics,
		currency:     currency,
	}
}

// CreateGatewayOrder computes the amount due (fixed consultation fee or
// sum of line items) and registers an order with the gateway. Amounts
// convert to minor units here and nowhere else.
func (s *Service) CreateGatewayOrder(ctx context.Context, req *model.CreateGatewayOrderRequest) (*model.GatewayOrderResponse, error) {
	amount, err := s.resolveOrderAmount(ctx, req)
	if err != nil {
		return nil, err
	}

	minor := amount.Shift(2).IntPart()
	if minor <= 0 {
		return nil, apperrors.BadRequest("amount must be a positive number", nil)
	}

	receiptRef := "na"
	if req.RelatedID != nil && *req.RelatedID != "" {
		receiptRef = *req.RelatedID
	}
	receipt := fmt.Sprintf("%s-%s", req.PaymentType, receiptRef)

	orderID, err := s.gateway.CreateOrder(ctx, minor, s.currency, receipt)
	if err != nil {
		return nil, err
	}

	return &model.GatewayOrderResponse{
		OrderID: orderID,
		Key:     s.gateway.KeyID(),
		Amount:  amount,
	}, nil
}

func (s *Service) resolveOrderAmount(ctx context.Context, req *model.CreateGatewayOrderRequest) (decimal.Decimal, error) {
	if req.PaymentType == model.PaymentTypePharmacy && len(req.Items) > 0 {
		total := decimal.Zero
		for _, item := range req.Items {
			medicine, err := s.medicineRepo.Get(ctx, item.MedicineID)
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to resolve medicine %s: %w", item.MedicineID, err)
			}
			total = total.Add(medicine.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		return total, nil
	}

	if req.PaymentType == model.PaymentTypeConsultation {
		if req.RelatedID == nil || *req.RelatedID == "" {
			return decimal.Zero, apperrors.BadRequest("related_id (consultation id) is required", nil)
		}
		id, err := uuid.Parse(*req.RelatedID)
		if err != nil {
			return decimal.Zero, apperrors.BadRequest("invalid related_id", err)
		}
		consultation, err := s.consultRepo.Get(ctx, id)
		if err != nil {
			return decimal.Zero, err
		}
		if consultation.Status == model.ConsultationStatusRejected {
			return decimal.Zero, apperrors.NewInvalidTransition("consultation request is rejected")
		}
		if req.Amount == nil || *req.Amount == "" {
			return consultation.ConsultationFee, nil
		}
	}

	if req.Amount == nil || *req.Amount == "" {
		return decimal.Zero, apperrors.BadRequest("amount is required", nil)
	}
	amount, err := decimal.NewFromString(*req.Amount)
	if err != nil {
		return decimal.Zero, apperrors.BadRequest("amount must be a number", err)
	}
	return amount, nil
}

// Verify settles one gateway callback. The Payment row, the
// consultation/stock/order mutations and nothing else share one
// transaction; a failure on any item rolls back everything including
// the Payment row. A callback without a payment reference is recorded
// as a failed payment and touches nothing downstream.
func (s *Service) Verify(ctx context.Context, req *model.VerifyPaymentRequest) (*model.VerifyPaymentResult, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, apperrors.BadRequest("amount must be a number", err)
	}

	patient, err := s.patientRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	// The callback payload is trusted as-is: a non-empty payment
	// reference marks success, no signature re-verification happens.
	status := model.PaymentStatusFailed
	if req.RazorpayPaymentID != "" {
		status = model.PaymentStatusSuccess
	}

	var relatedID *uuid.UUID
	if req.RelatedID != nil && *req.RelatedID != "" {
		id, err := uuid.Parse(*req.RelatedID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid related_id", err)
		}
		relatedID = &id
	}

	payment := &model.Payment{
		PatientID:         patient.ID,
		PaymentType:       req.PaymentType,
		Amount:            amount,
		Status:            status,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RelatedID:         relatedID,
	}

	var (
		settledConsultation *model.ConsultationRequest
		createdOrders       []*model.MedicineOrder
	)

	start := time.Now()
	err = s.settlement.WithTx(ctx, func(tx repository.SettlementTx) error {
		if status != model.PaymentStatusSuccess {
			// Non-success callbacks are audited, not dropped.
			payment.Description = "Payment failed at gateway"
			return tx.CreatePayment(ctx, payment)
		}

		switch req.PaymentType {
		case model.PaymentTypeConsultation:
			consultation, err := s.settleConsultation(ctx, tx, payment, relatedID)
			if err != nil {
				return err
			}
			settledConsultation = consultation
		case model.PaymentTypePharmacy:
			orders, err := s.settlePharmacy(ctx, tx, payment, patient, req)
			if err != nil {
				return err
			}
			createdOrders = orders
		default:
			return apperrors.BadRequest("payment_type must be consultation or pharmacy", nil)
		}
		return nil
	})
	if s.metrics != nil {
		s.metrics.SettlementLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.SettlementRollback.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PaymentsVerified.WithLabelValues(string(req.PaymentType), string(status)).Inc()
		amt, _ := amount.Float64()
		s.metrics.PaymentAmount.WithLabelValues(string(req.PaymentType)).Observe(amt)
	}

	if status == model.PaymentStatusSuccess {
		s.afterCommit(ctx, payment, settledConsultation, createdOrders)
	}

	result := &model.VerifyPaymentResult{
		PaymentID: payment.ID,
		Status:    status,
	}
	for _, o := range createdOrders {
		result.OrderIDs = append(result.OrderIDs, o.ID)
	}
	return result, nil
}

func (s *Service) settleConsultation(ctx context.Context, tx repository.SettlementTx, payment *model.Payment, relatedID *uuid.UUID) (*model.ConsultationRequest, error) {
	if relatedID == nil {
		return nil, apperrors.BadRequest("related_id (consultation id) is required", nil)
	}

	consultation, err := tx.GetConsultation(ctx, *relatedID)
	if err != nil {
		return nil, err
	}
	// Only approved consultations may become paid.
	if consultation.Status != model.ConsultationStatusApproved {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("consultation request is %s, not approved", consultation.Status))
	}

	payment.Description = s.consultationDescription(ctx, consultation)
	if err := tx.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	if err := tx.MarkConsultationPaid(ctx, consultation.ID); err != nil {
		return nil, err
	}

	consultation.PaymentStatus = model.ConsultationPaymentPaid
	return consultation, nil
}

func (s *Service) settlePharmacy(ctx context.Context, tx repository.SettlementTx, payment *model.Payment, patient *model.Patient, req *model.VerifyPaymentRequest) ([]*model.MedicineOrder, error) {
	items := req.Items
	if len(items) == 0 {
		// Single-item callbacks carry the medicine id in related_id.
		if payment.RelatedID == nil {
			return nil, apperrors.BadRequest("related_id (medicine id) is required", nil)
		}
		quantity := req.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = []model.OrderItem{{MedicineID: *payment.RelatedID, Quantity: quantity}}
	}

	payment.Description = "Medicine Order Payment"
	if err := tx.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	orders := make([]*model.MedicineOrder, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.BadRequest("quantity must be positive", nil)
		}

		lockStart := time.Now()
		snapshot, err := tx.ReserveAndDecrement(ctx, item.MedicineID, item.Quantity)
		if s.metrics != nil {
			// The decrement call is where the row lock is awaited.
			s.metrics.StockLockWait.Observe(time.Since(lockStart).Seconds())
		}
		if err != nil {
			if s.metrics != nil {
				s.metrics.StockDecrements.WithLabelValues(decrementOutcome(err)).Inc()
			}
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.StockDecrements.WithLabelValues("ok").Inc()
		}

		medicineID := snapshot.ID
		order := &model.MedicineOrder{
			PatientName:    patient.FullName,
			MedicineID:     &medicineID,
			MedicineName:   snapshot.Name,
			Quantity:       item.Quantity,
			PaymentStatus:  model.OrderPaymentPaid,
			DeliveryStatus: model.DeliveryStatusPending,
			TotalPrice:     snapshot.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// afterCommit runs the non-transactional side effects. One attempt
// each, outcomes logged, never propagated to the payment result.
func (s *Service) afterCommit(ctx context.Context, payment *model.Payment, consultation *model.ConsultationRequest, orders []*model.MedicineOrder) {
	switch payment.PaymentType {
	case model.PaymentTypeConsultation:
		if consultation != nil {
			s.notifier.NotifyConsultationPaid(ctx, payment, consultation)
		}
	case model.PaymentTypePharmacy:
		if len(orders) > 0 {
			s.notifier.NotifyPharmacyOrderPaid(ctx, payment, orders)
		}
	}

	if s.broker == nil {
		return
	}
	event := messaging.Message{
		Type: fmt.Sprintf("payment.%s.settled", payment.PaymentType),
		Payload: map[string]interface{}{
			"payment_id": payment.ID,
			"amount":     payment.Amount,
			"status":     payment.Status,
		},
	}
	if err := s.broker.Publish(ctx, EventsChannel, event); err != nil {
		s.logger.Error(err, "failed to publish payment event", "payment_id", payment.ID)
	}
}

func (s *Service) consultationDescription(ctx context.Context, consultation *model.ConsultationRequest) string {
	doctor, err := s.doctorRepo.Get(ctx, consultation.DoctorID)
	if err != nil {
		return "Consultation Payment"
	}

	departmentName := "General"
	if doctor.DepartmentID != nil {
		if dept, err := s.doctorRepo.GetDepartment(ctx, *doctor.DepartmentID); err == nil {
			departmentName = dept.Name
		}
	}
	return fmt.Sprintf("Consultation with Dr. %s - %s", doctor.FullName, departmentName)
}

func (s *Service) ListForPatient(ctx context.Context, patientEmail string) ([]*model.Payment, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, patientEmail)
	if err != nil {
		return nil, err
	}
	return s.paymentRepo.ListForPatient(ctx, patient.ID)
}

func (s *Service) Summary(ctx context.Context) (*model.PaymentsSummary, error) {
	return s.paymentRepo.Summary(ctx)
}

func decrementOutcome(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrInsufficientStock:
		return "insufficient"
	case apperrors.ErrNotFound:
		return "not_found"
	case apperrors.ErrBusy:
		return "busy"
	default:
		return "error"
	}
}
