package payment

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"
	"github.com/allenjacob2003/telemed-api/pkg/logger"
	"github.com/allenjacob2003/telemed-api/pkg/metrics"

	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/repository"
)

// memState is the durable state behind the fake settlement store. WithTx
// stages a copy and commits it only when the callback returns nil, so
// rollback semantics match the real store. A mutex serializes whole
// transactions the way the row lock serializes settlements.
type memState struct {
	medicines     map[uuid.UUID]*model.MedicineStock
	consultations map[uuid.UUID]*model.ConsultationRequest
	payments      []*model.Payment
	orders        []*model.MedicineOrder
}

func newMemState() *memState {
	return &memState{
		medicines:     make(map[uuid.UUID]*model.MedicineStock),
		consultations: make(map[uuid.UUID]*model.ConsultationRequest),
	}
}

func (s *memState) clone() *memState {
	out := newMemState()
	for id, m := range s.medicines {
		copied := *m
		out.medicines[id] = &copied
	}
	for id, c := range s.consultations {
		copied := *c
		out.consultations[id] = &copied
	}
	out.payments = append(out.payments, s.payments...)
	out.orders = append(out.orders, s.orders...)
	return out
}

type fakeSettlementStore struct {
	mu    sync.Mutex
	state *memState
}

func (f *fakeSettlementStore) WithTx(_ context.Context, fn func(tx repository.SettlementTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	staged := f.state.clone()
	if err := fn(&fakeSettlementTx{state: staged}); err != nil {
		return err
	}
	f.state = staged
	return nil
}

type fakeSettlementTx struct {
	state *memState
}

func (t *fakeSettlementTx) CreatePayment(_ context.Context, p *model.Payment) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	t.state.payments = append(t.state.payments, p)
	return nil
}

func (t *fakeSettlementTx) GetConsultation(_ context.Context, id uuid.UUID) (*model.ConsultationRequest, error) {
	c, ok := t.state.consultations[id]
	if !ok {
		return nil, apperrors.NotFound("consultation request", nil)
	}
	return c, nil
}

func (t *fakeSettlementTx) MarkConsultationPaid(_ context.Context, id uuid.UUID) error {
	c, ok := t.state.consultations[id]
	if !ok {
		return apperrors.NotFound("consultation request", nil)
	}
	c.PaymentStatus = model.ConsultationPaymentPaid
	return nil
}

func (t *fakeSettlementTx) ReserveAndDecrement(_ context.Context, medicineID uuid.UUID, quantity int) (*model.MedicineStock, error) {
	m, ok := t.state.medicines[medicineID]
	if !ok {
		return nil, apperrors.NotFound("medicine", nil)
	}
	if m.AvailableQuantity < quantity {
		return nil, apperrors.NewInsufficientStock(m.Name)
	}
	m.AvailableQuantity -= quantity
	snapshot := *m
	return &snapshot, nil
}

func (t *fakeSettlementTx) CreateOrder(_ context.Context, o *model.MedicineOrder) error {
	o.ID = uuid.New()
	o.OrderDate = time.Now()
	t.state.orders = append(t.state.orders, o)
	return nil
}

type fakeGateway struct {
	amounts []int64
	err     error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinorUnits int64, _ string, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.amounts = append(g.amounts, amountMinorUnits)
	return "order_fake123", nil
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type fakeNotifier struct {
	consultationCalls int
	pharmacyCalls     int
	result            bool
}

func (n *fakeNotifier) NotifyConsultationPaid(_ context.Context, _ *model.Payment, _ *model.ConsultationRequest) bool {
	n.consultationCalls++
	return n.result
}

func (n *fakeNotifier) NotifyPharmacyOrderPaid(_ context.Context, _ *model.Payment, _ []*model.MedicineOrder) bool {
	n.pharmacyCalls++
	return n.result
}

type fakeBroker struct {
	published []string
	err       error
}

func (b *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, channel)
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

type fakePatientRepo struct {
	patient *model.Patient
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if f.patient != nil && f.patient.ID == id {
		return f.patient, nil
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (f *fakePatientRepo) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	if f.patient != nil && f.patient.Email == email {
		return f.patient, nil
	}
	return nil, apperrors.NotFound("patient", nil)
}

type fakeDoctorRepo struct {
	doctor     *model.Doctor
	department *model.Department
}

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	if f.doctor != nil && f.doctor.ID == id {
		return f.doctor, nil
	}
	return nil, apperrors.NotFound("doctor", nil)
}

func (f *fakeDoctorRepo) GetByEmail(_ context.Context, _ string) (*model.Doctor, error) {
	return nil, apperrors.NotFound("doctor", nil)
}

func (f *fakeDoctorRepo) GetDepartmentByName(_ context.Context, _ string) (*model.Department, error) {
	return nil, apperrors.NotFound("department", nil)
}

func (f *fakeDoctorRepo) GetDepartment(_ context.Context, id uuid.UUID) (*model.Department, error) {
	if f.department != nil && f.department.ID == id {
		return f.department, nil
	}
	return nil, apperrors.NotFound("department", nil)
}

func (f *fakeDoctorRepo) FirstInDepartment(_ context.Context, _ uuid.UUID) (*model.Doctor, error) {
	return nil, apperrors.NotFound("doctor", nil)
}

type fakeConsultationRepo struct {
	store *fakeSettlementStore
}

func (f *fakeConsultationRepo) Create(_ context.Context, _ *model.ConsultationRequest) error {
	return nil
}

func (f *fakeConsultationRepo) Get(_ context.Context, id uuid.UUID) (*model.ConsultationRequest, error) {
	c, ok := f.store.state.consultations[id]
	if !ok {
		return nil, apperrors.NotFound("consultation request", nil)
	}
	return c, nil
}

func (f *fakeConsultationRepo) ListPendingForDoctor(_ context.Context, _ uuid.UUID) ([]*model.ConsultationRequest, error) {
	return nil, nil
}

func (f *fakeConsultationRepo) ListForPatient(_ context.Context, _ uuid.UUID) ([]*model.ConsultationRequest, error) {
	return nil, nil
}

func (f *fakeConsultationRepo) Approve(_ context.Context, _ uuid.UUID, _ *model.Appointment) error {
	return nil
}

func (f *fakeConsultationRepo) Reject(_ context.Context, _ uuid.UUID) error {
	return nil
}

type fakeMedicineRepo struct {
	store *fakeSettlementStore
}

func (f *fakeMedicineRepo) Create(_ context.Context, _ *model.MedicineStock) error { return nil }

func (f *fakeMedicineRepo) Get(_ context.Context, id uuid.UUID) (*model.MedicineStock, error) {
	m, ok := f.store.state.medicines[id]
	if !ok {
		return nil, apperrors.NotFound("medicine", nil)
	}
	return m, nil
}

func (f *fakeMedicineRepo) List(_ context.Context, _ repository.MedicineFilter) ([]*model.MedicineStock, error) {
	return nil, nil
}

func (f *fakeMedicineRepo) UpdateQuantity(_ context.Context, _ uuid.UUID, _ int) error { return nil }

func (f *fakeMedicineRepo) CountLowStock(_ context.Context) (int, error) { return 0, nil }

type fakePaymentRepo struct {
	store *fakeSettlementStore
}

func (f *fakePaymentRepo) ListForPatient(_ context.Context, patientID uuid.UUID) ([]*model.Payment, error) {
	var out []*model.Payment
	for _, p := range f.store.state.payments {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Summary(_ context.Context) (*model.PaymentsSummary, error) {
	return &model.PaymentsSummary{}, nil
}

type fixture struct {
	svc      *Service
	store    *fakeSettlementStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	broker   *fakeBroker
	patient  *model.Patient
	doctor   *model.Doctor
	registry *prometheus.Registry
}

func setup(t *testing.T) *fixture {
	t.Helper()

	state := newMemState()
	deptID := uuid.New()
	doctor := &model.Doctor{
		Base:         model.Base{ID: uuid.New()},
		FullName:     "Asha Menon",
		DepartmentID: &deptID,
	}
	patient := &model.Patient{
		Base:     model.Base{ID: uuid.New()},
		Email:    "jane@example.com",
		FullName: "Jane Roe",
	}

	store := &fakeSettlementStore{state: state}
	gw := &fakeGateway{}
	notifier := &fakeNotifier{result: true}
	broker := &fakeBroker{}

	testLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})

	registry := prometheus.NewRegistry()

	svc := NewService(Deps{
		Settlement:   store,
		PatientRepo:  &fakePatientRepo{patient: patient},
		DoctorRepo:   &fakeDoctorRepo{doctor: doctor, department: &model.Department{ID: deptID, Name: "Cardiology"}},
		ConsultRepo:  &fakeConsultationRepo{store: store},
		MedicineRepo: &fakeMedicineRepo{store: store},
		PaymentRepo:  &fakePaymentRepo{store: store},
		Gateway:      gw,
		Notifier:     notifier,
		Broker:       broker,
		Logger:       testLogger,
		Metrics:      metrics.NewMetricsWith(registry, "telemed", "api"),
		Currency:     "INR",
	})

	return &fixture{
		svc:      svc,
		store:    store,
		gateway:  gw,
		notifier: notifier,
		broker:   broker,
		patient:  patient,
		doctor:   doctor,
		registry: registry,
	}
}

func (f *fixture) addMedicine(name string, price string, quantity int) *model.MedicineStock {
	m := &model.MedicineStock{
		Base:              model.Base{ID: uuid.New()},
		Name:              name,
		Price:             decimal.RequireFromString(price),
		AvailableQuantity: quantity,
		LowStockThreshold: 10,
	}
	f.store.state.medicines[m.ID] = m
	return m
}

func (f *fixture) addConsultation(status model.ConsultationStatus) *model.ConsultationRequest {
	c := &model.ConsultationRequest{
		Base:            model.Base{ID: uuid.New()},
		PatientID:       f.patient.ID,
		DoctorID:        f.doctor.ID,
		Status:          status,
		ConsultationFee: decimal.NewFromInt(300),
		PaymentStatus:   model.ConsultationPaymentPending,
	}
	f.store.state.consultations[c.ID] = c
	return c
}

func strPtr(s string) *string { return &s }

func TestVerifyPharmacySettlement(t *testing.T) {
	f := setup(t)
	m := f.addMedicine("Ibuprofen", "50.00", 5)

	result, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypePharmacy,
		Amount:            "100.00",
		Email:             f.patient.Email,
		RazorpayOrderID:   "order_fake123",
		RazorpayPaymentID: "pay_abc",
		Items:             []model.OrderItem{{MedicineID: m.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusSuccess, result.Status)
	require.Len(t, result.OrderIDs, 1)

	// Stock decremented exactly once.
	assert.Equal(t, 3, f.store.state.medicines[m.ID].AvailableQuantity)

	require.Len(t, f.store.state.orders, 1)
	order := f.store.state.orders[0]
	assert.Equal(t, model.OrderPaymentPaid, order.PaymentStatus)
	assert.Equal(t, model.DeliveryStatusPending, order.DeliveryStatus)
	assert.Equal(t, "Ibuprofen", order.MedicineName)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("100.00")))

	require.Len(t, f.store.state.payments, 1)
	assert.Equal(t, model.PaymentStatusSuccess, f.store.state.payments[0].Status)

	assert.Equal(t, 1, f.notifier.pharmacyCalls)
	assert.Equal(t, []string{"payments"}, f.broker.published)
}

func TestVerifyPharmacyBatchRollsBackOnShortage(t *testing.T) {
	f := setup(t)
	first := f.addMedicine("Amoxicillin", "30.00", 10)
	short := f.addMedicine("Insulin", "200.00", 1)
	third := f.addMedicine("Ibuprofen", "50.00", 10)

	_, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypePharmacy,
		Amount:            "560.00",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		Items: []model.OrderItem{
			{MedicineID: first.ID, Quantity: 2},
			{MedicineID: short.ID, Quantity: 2},
			{MedicineID: third.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientStock))

	// Nothing committed: stock untouched, no orders, no payment row.
	assert.Equal(t, 10, f.store.state.medicines[first.ID].AvailableQuantity)
	assert.Equal(t, 1, f.store.state.medicines[short.ID].AvailableQuantity)
	assert.Equal(t, 10, f.store.state.medicines[third.ID].AvailableQuantity)
	assert.Empty(t, f.store.state.orders)
	assert.Empty(t, f.store.state.payments)
	assert.Zero(t, f.notifier.pharmacyCalls)
	assert.Empty(t, f.broker.published)
}

func TestVerifySequentialDecrementsExhaustStock(t *testing.T) {
	f := setup(t)
	m := f.addMedicine("Insulin", "200.00", 1)

	req := func() *model.VerifyPaymentRequest {
		return &model.VerifyPaymentRequest{
			PaymentType:       model.PaymentTypePharmacy,
			Amount:            "200.00",
			Email:             f.patient.Email,
			RazorpayPaymentID: "pay_abc",
			Items:             []model.OrderItem{{MedicineID: m.ID, Quantity: 1}},
		}
	}

	_, err := f.svc.Verify(context.Background(), req())
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.state.medicines[m.ID].AvailableQuantity)

	_, err = f.svc.Verify(context.Background(), req())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientStock))
	assert.Len(t, f.store.state.payments, 1)
	assert.Len(t, f.store.state.orders, 1)
}

func TestVerifyConcurrentLastUnitSingleWinner(t *testing.T) {
	f := setup(t)
	m := f.addMedicine("Insulin", "200.00", 1)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(paymentRef string) {
			defer wg.Done()
			_, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
				PaymentType:       model.PaymentTypePharmacy,
				Amount:            "200.00",
				Email:             f.patient.Email,
				RazorpayPaymentID: paymentRef,
				Items:             []model.OrderItem{{MedicineID: m.ID, Quantity: 1}},
			})
			errs <- err
		}(fmt.Sprintf("pay_%d", i))
	}
	wg.Wait()
	close(errs)

	var wins, shortages int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case apperrors.Is(err, apperrors.ErrInsufficientStock):
			shortages++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The last unit goes to exactly one of the two settlements.
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, shortages)
	assert.Equal(t, 0, f.store.state.medicines[m.ID].AvailableQuantity)
	assert.Len(t, f.store.state.payments, 1)
	assert.Len(t, f.store.state.orders, 1)
}

func (f *fixture) histogramSamples(t *testing.T, name string) uint64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	return 0
}

func TestVerifyObservesStockLockWait(t *testing.T) {
	f := setup(t)
	first := f.addMedicine("Amoxicillin", "30.00", 10)
	second := f.addMedicine("Ibuprofen", "50.00", 10)

	_, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypePharmacy,
		Amount:            "80.00",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		Items: []model.OrderItem{
			{MedicineID: first.ID, Quantity: 1},
			{MedicineID: second.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// One lock wait observation per settled item.
	assert.Equal(t, uint64(2), f.histogramSamples(t, "telemed_api_stock_lock_wait_seconds"))
}

func TestVerifyFailedCallbackRecordsPaymentOnly(t *testing.T) {
	f := setup(t)
	m := f.addMedicine("Ibuprofen", "50.00", 5)

	result, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType: model.PaymentTypePharmacy,
		Amount:      "100.00",
		Email:       f.patient.Email,
		Items:       []model.OrderItem{{MedicineID: m.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusFailed, result.Status)
	assert.Empty(t, result.OrderIDs)

	require.Len(t, f.store.state.payments, 1)
	assert.Equal(t, model.PaymentStatusFailed, f.store.state.payments[0].Status)

	assert.Equal(t, 5, f.store.state.medicines[m.ID].AvailableQuantity)
	assert.Empty(t, f.store.state.orders)
	assert.Zero(t, f.notifier.pharmacyCalls)
	assert.Empty(t, f.broker.published)
}

func TestVerifyImplicitSingleItem(t *testing.T) {
	f := setup(t)
	m := f.addMedicine("Ibuprofen", "50.00", 5)

	id := m.ID.String()
	result, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypePharmacy,
		Amount:            "150.00",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		RelatedID:         &id,
		Quantity:          3,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusSuccess, result.Status)
	assert.Equal(t, 2, f.store.state.medicines[m.ID].AvailableQuantity)
	require.Len(t, f.store.state.orders, 1)
	assert.Equal(t, 3, f.store.state.orders[0].Quantity)
	assert.True(t, f.store.state.orders[0].TotalPrice.Equal(decimal.RequireFromString("150.00")))
}

func TestVerifyConsultationMarksPaid(t *testing.T) {
	f := setup(t)
	c := f.addConsultation(model.ConsultationStatusApproved)

	id := c.ID.String()
	result, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypeConsultation,
		Amount:            "300",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		RelatedID:         &id,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusSuccess, result.Status)
	assert.Equal(t, model.ConsultationPaymentPaid, f.store.state.consultations[c.ID].PaymentStatus)

	require.Len(t, f.store.state.payments, 1)
	payment := f.store.state.payments[0]
	assert.Equal(t, model.PaymentTypeConsultation, payment.PaymentType)
	assert.Equal(t, "Consultation with Dr. Asha Menon - Cardiology", payment.Description)

	assert.Equal(t, 1, f.notifier.consultationCalls)
	assert.Equal(t, []string{"payments"}, f.broker.published)
}

func TestVerifyRejectedConsultationRefused(t *testing.T) {
	f := setup(t)
	c := f.addConsultation(model.ConsultationStatusRejected)

	id := c.ID.String()
	_, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypeConsultation,
		Amount:            "300",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		RelatedID:         &id,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))

	assert.Empty(t, f.store.state.payments)
	assert.Equal(t, model.ConsultationPaymentPending, f.store.state.consultations[c.ID].PaymentStatus)
	assert.Zero(t, f.notifier.consultationCalls)
}

func TestVerifyPendingConsultationRefused(t *testing.T) {
	f := setup(t)
	c := f.addConsultation(model.ConsultationStatusPending)

	id := c.ID.String()
	_, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypeConsultation,
		Amount:            "300",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		RelatedID:         &id,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
	assert.Empty(t, f.store.state.payments)
}

func TestVerifyUnknownPatient(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypePharmacy,
		Amount:            "100.00",
		Email:             "stranger@example.com",
		RazorpayPaymentID: "pay_abc",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, f.store.state.payments)
}

func TestVerifyNotificationFailureDoesNotFailSettlement(t *testing.T) {
	f := setup(t)
	f.notifier.result = false
	m := f.addMedicine("Ibuprofen", "50.00", 5)

	result, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypePharmacy,
		Amount:            "50.00",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		Items:             []model.OrderItem{{MedicineID: m.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSuccess, result.Status)
	assert.Len(t, f.store.state.orders, 1)
}

func TestVerifyBrokerFailureDoesNotFailSettlement(t *testing.T) {
	f := setup(t)
	f.broker.err = assert.AnError
	m := f.addMedicine("Ibuprofen", "50.00", 5)

	result, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypePharmacy,
		Amount:            "50.00",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		Items:             []model.OrderItem{{MedicineID: m.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSuccess, result.Status)
}

func TestCreateGatewayOrderUsesConsultationFee(t *testing.T) {
	f := setup(t)
	c := f.addConsultation(model.ConsultationStatusApproved)

	id := c.ID.String()
	resp, err := f.svc.CreateGatewayOrder(context.Background(), &model.CreateGatewayOrderRequest{
		PaymentType: model.PaymentTypeConsultation,
		RelatedID:   &id,
	})
	require.NoError(t, err)

	assert.Equal(t, "order_fake123", resp.OrderID)
	assert.Equal(t, "rzp_test_key", resp.Key)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(300)))

	// Minor units cross the boundary exactly once.
	require.Len(t, f.gateway.amounts, 1)
	assert.Equal(t, int64(30000), f.gateway.amounts[0])
}

func TestCreateGatewayOrderSumsItems(t *testing.T) {
	f := setup(t)
	a := f.addMedicine("Amoxicillin", "30.00", 10)
	b := f.addMedicine("Ibuprofen", "50.25", 10)

	resp, err := f.svc.CreateGatewayOrder(context.Background(), &model.CreateGatewayOrderRequest{
		PaymentType: model.PaymentTypePharmacy,
		Items: []model.OrderItem{
			{MedicineID: a.ID, Quantity: 2},
			{MedicineID: b.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Amount.Equal(decimal.RequireFromString("110.25")))
	require.Len(t, f.gateway.amounts, 1)
	assert.Equal(t, int64(11025), f.gateway.amounts[0])
}

func TestCreateGatewayOrderRejectedConsultation(t *testing.T) {
	f := setup(t)
	c := f.addConsultation(model.ConsultationStatusRejected)

	id := c.ID.String()
	_, err := f.svc.CreateGatewayOrder(context.Background(), &model.CreateGatewayOrderRequest{
		PaymentType: model.PaymentTypeConsultation,
		RelatedID:   &id,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
	assert.Empty(t, f.gateway.amounts)
}

func TestCreateGatewayOrderRequiresAmountForPharmacy(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateGatewayOrder(context.Background(), &model.CreateGatewayOrderRequest{
		PaymentType: model.PaymentTypePharmacy,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestCreateGatewayOrderRejectsZeroAmount(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateGatewayOrder(context.Background(), &model.CreateGatewayOrderRequest{
		PaymentType: model.PaymentTypePharmacy,
		Amount:      strPtr("0"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestListForPatient(t *testing.T) {
	f := setup(t)
	m := f.addMedicine("Ibuprofen", "50.00", 5)

	_, err := f.svc.Verify(context.Background(), &model.VerifyPaymentRequest{
		PaymentType:       model.PaymentTypePharmacy,
		Amount:            "50.00",
		Email:             f.patient.Email,
		RazorpayPaymentID: "pay_abc",
		Items:             []model.OrderItem{{MedicineID: m.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	payments, err := f.svc.ListForPatient(context.Background(), f.patient.Email)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}
