package consultation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"

	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/repository"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// DefaultConsultationFee applies when the patient's request carries no
// explicit fee.
var DefaultConsultationFee = decimal.NewFromInt(300)

type Service struct {
	repo        repository.ConsultationRepository
	apptRepo    repository.AppointmentRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
}

func NewService(
	repo repository.ConsultationRepository,
	apptRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
) *Service {
	return &Service{
		repo:        repo,
		apptRepo:    apptRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
	}
}

// Create registers a pending consultation request. When no doctor is
// picked, the earliest-created doctor of the department is assigned.
func (s *Service) Create(ctx context.Context, req *model.CreateConsultationRequest) (*model.ConsultationRequest, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}

	dept, err := s.doctorRepo.GetDepartmentByName(ctx, req.Department)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve department: %w", err)
	}

	doctor, err := s.resolveDoctor(ctx, req.DoctorID, dept)
	if err != nil {
		return nil, err
	}

	fee := DefaultConsultationFee
	if req.Fee != nil {
		parsed, err := decimal.NewFromString(*req.Fee)
		if err != nil || parsed.IsNegative() {
			return nil, apperrors.BadRequest("fee must be a non-negative number", err)
		}
		fee = parsed
	}

	consultation := &model.ConsultationRequest{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		Symptoms:        req.Symptoms,
		RequestedAt:     time.Now(),
		Status:          model.ConsultationStatusPending,
		ConsultationFee: fee,
		PaymentStatus:   model.ConsultationPaymentPending,
	}

	if req.PreferredDate != nil && *req.PreferredDate != "" {
		d, err := time.Parse(dateLayout, *req.PreferredDate)
		if err != nil {
			return nil, apperrors.BadRequest("preferred_date must be YYYY-MM-DD", err)
		}
		consultation.PreferredDate = &d
	}
	if req.PreferredTime != nil && *req.PreferredTime != "" {
		if _, err := time.Parse(timeLayout, *req.PreferredTime); err != nil {
			return nil, apperrors.BadRequest("preferred_time must be HH:MM", err)
		}
		consultation.PreferredTime = req.PreferredTime
	}

	if err := s.repo.Create(ctx, consultation); err != nil {
		return nil, fmt.Errorf("failed to create consultation request: %w", err)
	}
	return consultation, nil
}

func (s *Service) resolveDoctor(ctx context.Context, doctorID *string, dept *model.Department) (*model.Doctor, error) {
	if doctorID != nil && *doctorID != "" {
		id, err := uuid.Parse(*doctorID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid doctor id", err)
		}
		doctor, err := s.doctorRepo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve doctor: %w", err)
		}
		if doctor.DepartmentID == nil || *doctor.DepartmentID != dept.ID {
			return nil, apperrors.NotFound("doctor in the selected department", nil)
		}
		return doctor, nil
	}

	doctor, err := s.doctorRepo.FirstInDepartment(ctx, dept.ID)
	if err != nil {
		return nil, fmt.Errorf("no doctor available for department: %w", err)
	}
	return doctor, nil
}

// Approve transitions pending → approved and creates the confirmed
// appointment. The appointment slot prefers the patient's preferred
// date/time, falls back to the request timestamp, and uses the current
// time only when both are absent.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation request: %w", err)
	}

	doctor, err := s.doctorRepo.Get(ctx, consultation.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	date, clock := deriveSlot(consultation)
	appt := &model.Appointment{
		PatientID:       consultation.PatientID,
		DoctorID:        consultation.DoctorID,
		DepartmentID:    doctor.DepartmentID,
		AppointmentDate: date,
		AppointmentTime: clock,
		Status:          model.AppointmentStatusConfirmed,
	}

	if err := s.repo.Approve(ctx, id, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reject(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ConsultationRequest, error) {
	return s.repo.Get(ctx, id)
}

// AppointmentFor returns the confirmed appointment created when the
// consultation request was approved.
func (s *Service) AppointmentFor(ctx context.Context, consultationID uuid.UUID) (*model.Appointment, error) {
	if _, err := s.repo.Get(ctx, consultationID); err != nil {
		return nil, err
	}
	return s.apptRepo.GetByConsultation(ctx, consultationID)
}

func (s *Service) PendingForDoctor(ctx context.Context, doctorEmail string) ([]*model.ConsultationRequest, error) {
	doctor, err := s.doctorRepo.GetByEmail(ctx, doctorEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctor: %w", err)
	}
	return s.repo.ListPendingForDoctor(ctx, doctor.ID)
}

func (s *Service) ListForPatient(ctx context.Context, patientEmail string) ([]*model.ConsultationRequest, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}
	return s.repo.ListForPatient(ctx, patient.ID)
}

func (s *Service) AppointmentsForDoctor(ctx context.Context, doctorEmail string) ([]*model.Appointment, error) {
	doctor, err := s.doctorRepo.GetByEmail(ctx, doctorEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctor: %w", err)
	}
	return s.apptRepo.ListConfirmedForDoctor(ctx, doctor.ID)
}

func (s *Service) AppointmentsForPatient(ctx context.Context, patientEmail string) ([]*model.Appointment, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}
	return s.apptRepo.ListForPatient(ctx, patient.ID)
}

func deriveSlot(c *model.ConsultationRequest) (time.Time, string) {
	date := c.RequestedAt
	clock := c.RequestedAt.Format(timeLayout)
	if c.RequestedAt.IsZero() {
		now := time.Now()
		date = now
		clock = now.Format(timeLayout)
	}

	if c.PreferredDate != nil {
		date = *c.PreferredDate
	}
	if c.PreferredTime != nil && *c.PreferredTime != "" {
		clock = *c.PreferredTime
	}

	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), clock
}
