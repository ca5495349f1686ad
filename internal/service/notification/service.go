package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/allenjacob2003/telemed-api/pkg/logger"
	"github.com/allenjacob2003/telemed-api/pkg/metrics"

	"github.com/allenjacob2003/telemed-api/internal/email"
	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/repository"
)

// Service dispatches admin-facing payment notifications. Best effort:
// one attempt, failures are logged and reported as false, never raised.
// Callers must invoke it only after the settlement has committed.
type Service interface {
	NotifyConsultationPaid(ctx context.Context, payment *model.Payment, consultation *model.ConsultationRequest) bool
	NotifyPharmacyOrderPaid(ctx context.Context, payment *model.Payment, orders []*model.MedicineOrder) bool
}

type service struct {
	emailSvc    email.Service
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	adminEmail  string
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

func NewService(
	emailSvc email.Service,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	adminEmail string,
	log *logger.Logger,
	m *metrics.Metrics,
) Service {
	return &service{
		emailSvc:    emailSvc,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		adminEmail:  adminEmail,
		logger:      log,
		metrics:     m,
	}
}

func (s *service) NotifyConsultationPaid(ctx context.Context, payment *model.Payment, consultation *model.ConsultationRequest) bool {
	subject, body := s.consultationMessage(ctx, payment, consultation)
	return s.dispatch(ctx, "consultation_paid", subject, body)
}

func (s *service) NotifyPharmacyOrderPaid(ctx context.Context, payment *model.Payment, orders []*model.MedicineOrder) bool {
	subject, body := pharmacyMessage(payment, orders)
	return s.dispatch(ctx, "pharmacy_order_paid", subject, body)
}

func (s *service) dispatch(ctx context.Context, kind, subject, body string) bool {
	if s.adminEmail == "" {
		s.logger.Warn("admin email not configured, skipping notification", "kind", kind)
		return false
	}

	if err := s.emailSvc.SendCustom(ctx, s.adminEmail, subject, body); err != nil {
		s.logger.Error(err, "failed to send payment notification", "kind", kind)
		if s.metrics != nil {
			s.metrics.NotificationsFailed.WithLabelValues(kind).Inc()
		}
		return false
	}

	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(kind).Inc()
	}
	return true
}

func (s *service) consultationMessage(ctx context.Context, payment *model.Payment, consultation *model.ConsultationRequest) (string, string) {
	patientName := "Unknown"
	patientEmail := ""
	if patient, err := s.patientRepo.Get(ctx, consultation.PatientID); err == nil {
		patientName = patient.FullName
		patientEmail = patient.Email
	}

	doctorName := "Unknown"
	departmentName := "General"
	if doctor, err := s.doctorRepo.Get(ctx, consultation.DoctorID); err == nil {
		doctorName = doctor.FullName
		if doctor.DepartmentID != nil {
			if dept, err := s.doctorRepo.GetDepartment(ctx, *doctor.DepartmentID); err == nil {
				departmentName = dept.Name
			}
		}
	}

	subject := fmt.Sprintf("New Payment Received - Consultation with Dr. %s", doctorName)

	var b strings.Builder
	fmt.Fprintf(&b, "A new payment has been received for a consultation.\n\n")
	fmt.Fprintf(&b, "Payment ID: %s\n", payment.ID)
	fmt.Fprintf(&b, "Gateway Payment ID: %s\n", payment.RazorpayPaymentID)
	fmt.Fprintf(&b, "Gateway Order ID: %s\n", payment.RazorpayOrderID)
	fmt.Fprintf(&b, "Amount: %s\n", payment.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Status: %s\n\n", strings.ToUpper(string(payment.Status)))
	fmt.Fprintf(&b, "Consultation ID: %s\n", consultation.ID)
	fmt.Fprintf(&b, "Patient: %s (%s)\n", patientName, patientEmail)
	fmt.Fprintf(&b, "Doctor: Dr. %s\n", doctorName)
	fmt.Fprintf(&b, "Department: %s\n", departmentName)
	fmt.Fprintf(&b, "Consultation Status: %s\n", strings.ToUpper(string(consultation.Status)))
	fmt.Fprintf(&b, "Payment Status: %s\n", consultation.PaymentStatus)

	return subject, b.String()
}

func pharmacyMessage(payment *model.Payment, orders []*model.MedicineOrder) (string, string) {
	patientName := "Unknown"
	if len(orders) > 0 {
		patientName = orders[0].PatientName
	}

	subject := fmt.Sprintf("New Pharmacy Order Payment Received - %d Item(s)", len(orders))

	var b strings.Builder
	fmt.Fprintf(&b, "A new payment has been received for a pharmacy order.\n\n")
	fmt.Fprintf(&b, "Payment ID: %s\n", payment.ID)
	fmt.Fprintf(&b, "Gateway Payment ID: %s\n", payment.RazorpayPaymentID)
	fmt.Fprintf(&b, "Gateway Order ID: %s\n", payment.RazorpayOrderID)
	fmt.Fprintf(&b, "Amount: %s\n", payment.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Status: %s\n\n", strings.ToUpper(string(payment.Status)))
	fmt.Fprintf(&b, "Patient: %s\n", patientName)
	fmt.Fprintf(&b, "Total Items: %d\n\n", len(orders))
	fmt.Fprintf(&b, "Medicines Ordered:\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "  - %s, qty %d, %s\n", o.MedicineName, o.Quantity, o.TotalPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nDelivery Status: Pending\n")

	return subject, b.String()
}
