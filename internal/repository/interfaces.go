package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/allenjacob2003/telemed-api/internal/model"
)

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByEmail(ctx context.Context, email string) (*model.Patient, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
	GetDepartmentByName(ctx context.Context, name string) (*model.Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error)
	// FirstInDepartment returns the earliest-created doctor of the
	// department (ties broken by id). Deterministic fallback when the
	// patient picked no doctor.
	FirstInDepartment(ctx context.Context, departmentID uuid.UUID) (*model.Doctor, error)
}

type ConsultationRepository interface {
	Create(ctx context.Context, req *model.ConsultationRequest) error
	Get(ctx context.Context, id uuid.UUID) (*model.ConsultationRequest, error)
	ListPendingForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.ConsultationRequest, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ConsultationRequest, error)
	// Approve flips pending → approved and creates the appointment in
	// one transaction. A request not in pending state yields an
	// invalid-transition error and no appointment.
	Approve(ctx context.Context, id uuid.UUID, appt *model.Appointment) error
	// Reject flips pending → rejected under the same guard.
	Reject(ctx context.Context, id uuid.UUID) error
}

type AppointmentRepository interface {
	GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*model.Appointment, error)
	ListConfirmedForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
}

type MedicineFilter struct {
	Search   string
	Category string
	LowStock bool
}

type MedicineRepository interface {
	Create(ctx context.Context, m *model.MedicineStock) error
	Get(ctx context.Context, id uuid.UUID) (*model.MedicineStock, error)
	List(ctx context.Context, filter MedicineFilter) ([]*model.MedicineStock, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	CountLowStock(ctx context.Context) (int, error)
}

type OrderFilter struct {
	PatientName    string
	DeliveryStatus model.DeliveryStatus
	OrderDate      *time.Time
}

type OrderStats struct {
	TotalOrders       int             `db:"total_orders"`
	PendingDeliveries int             `db:"pending_deliveries"`
	DeliveredOrders   int             `db:"delivered_orders"`
	TotalRevenue      decimal.Decimal `db:"total_revenue"`
}

type OrderRepository interface {
	CreateBatch(ctx context.Context, orders []*model.MedicineOrder) error
	Get(ctx context.Context, id uuid.UUID) (*model.MedicineOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]*model.MedicineOrder, error)
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) error
	Stats(ctx context.Context) (*OrderStats, error)
}

type PaymentRepository interface {
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Payment, error)
	Summary(ctx context.Context) (*model.PaymentsSummary, error)
}

// SettlementTx is the write surface available inside one settlement
// transaction. Everything succeeds or everything rolls back, the
// Payment row included.
type SettlementTx interface {
	CreatePayment(ctx context.Context, p *model.Payment) error
	GetConsultation(ctx context.Context, id uuid.UUID) (*model.ConsultationRequest, error)
	MarkConsultationPaid(ctx context.Context, id uuid.UUID) error
	// ReserveAndDecrement locks the stock row, checks availability and
	// decrements in one step, returning the post-decrement snapshot
	// whose price is the billing price for this settlement.
	ReserveAndDecrement(ctx context.Context, medicineID uuid.UUID, quantity int) (*model.MedicineStock, error)
	CreateOrder(ctx context.Context, o *model.MedicineOrder) error
}

// SettlementStore opens the atomic unit the payment reconciler runs in.
type SettlementStore interface {
	WithTx(ctx context.Context, fn func(tx SettlementTx) error) error
}
