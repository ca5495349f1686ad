package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"
	"github.com/allenjacob2003/telemed-api/pkg/metrics"

	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/repository"
)

type Service struct {
	medicineRepo repository.MedicineRepository
	orderRepo    repository.OrderRepository
	patientRepo  repository.PatientRepository
	metrics      *metrics.Metrics
}

func NewService(
	medicineRepo repository.MedicineRepository,
	orderRepo repository.OrderRepository,
	patientRepo repository.PatientRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		medicineRepo: medicineRepo,
		orderRepo:    orderRepo,
		patientRepo:  patientRepo,
		metrics:      m,
	}
}

func (s *Service) AddMedicine(ctx context.Context, req *model.CreateMedicineRequest) (*model.MedicineStock, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, apperrors.BadRequest("price must be a non-negative number", err)
	}

	m := &model.MedicineStock{
		Name:              req.Name,
		Category:          req.Category,
		Price:             price,
		AvailableQuantity: req.AvailableQuantity,
		LowStockThreshold: req.LowStockThreshold,
	}
	if m.LowStockThreshold == 0 {
		m.LowStockThreshold = 10
	}

	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		d, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return nil, apperrors.BadRequest("expiry_date must be YYYY-MM-DD", err)
		}
		m.ExpiryDate = &d
	}

	if err := s.medicineRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to add medicine: %w", err)
	}
	return m, nil
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*model.MedicineStock, error) {
	return s.medicineRepo.Get(ctx, id)
}

func (s *Service) ListStock(ctx context.Context, filter repository.MedicineFilter) ([]*model.MedicineStock, error) {
	return s.medicineRepo.List(ctx, filter)
}

func (s *Service) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*model.MedicineStock, error) {
	if quantity < 0 {
		return nil, apperrors.BadRequest("available_quantity must not be negative", nil)
	}
	if err := s.medicineRepo.UpdateQuantity(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.medicineRepo.Get(ctx, id)
}

// PlaceOrder is the pre-payment path: it records Pending/Pending line
// items without touching stock. Unknown medicines fail the whole
// request; stock is reserved only at payment settlement.
func (s *Service) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) ([]*model.MedicineOrder, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}

	orders := make([]*model.MedicineOrder, 0, len(req.Items))
	for _, item := range req.Items {
		medicine, err := s.medicineRepo.Get(ctx, item.MedicineID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve medicine %s: %w", item.MedicineID, err)
		}

		medicineID := medicine.ID
		orders = append(orders, &model.MedicineOrder{
			PatientName:    patient.FullName,
			MedicineID:     &medicineID,
			MedicineName:   medicine.Name,
			Quantity:       item.Quantity,
			PaymentStatus:  model.OrderPaymentPending,
			DeliveryStatus: model.DeliveryStatusPending,
			TotalPrice:     medicine.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	if err := s.orderRepo.CreateBatch(ctx, orders); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	return orders, nil
}

func (s *Service) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*model.MedicineOrder, error) {
	return s.orderRepo.List(ctx, filter)
}

func (s *Service) OrdersForPatient(ctx context.Context, patientEmail string) ([]*model.MedicineOrder, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}
	return s.orderRepo.List(ctx, repository.OrderFilter{PatientName: patient.FullName})
}

// UpdateDelivery enforces the Pending → Packed → Out for Delivery →
// Delivered progression.
func (s *Service) UpdateDelivery(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) (*model.MedicineOrder, error) {
	order, err := s.orderRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range model.NextDeliveryStatuses(order.DeliveryStatus) {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot move delivery from %s to %s", order.DeliveryStatus, status))
	}

	if err := s.orderRepo.UpdateDeliveryStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.DeliveryStatus = status
	return order, nil
}

type DashboardSummary struct {
	TotalOrders       int             `json:"total_orders"`
	PendingDeliveries int             `json:"pending_deliveries"`
	DeliveredOrders   int             `json:"delivered_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	LowStockMedicines int             `json:"low_stock_medicines"`
}

func (s *Service) Summary(ctx context.Context) (*DashboardSummary, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.medicineRepo.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.LowStockItems.Set(float64(lowStock))
	}

	return &DashboardSummary{
		TotalOrders:       stats.TotalOrders,
		PendingDeliveries: stats.PendingDeliveries,
		DeliveredOrders:   stats.DeliveredOrders,
		TotalRevenue:      stats.TotalRevenue,
		LowStockMedicines: lowStock,
	}, nil
}
