package consultation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allenjacob2003/telemed-api/internal/handler"
	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/service/consultation"
)

type Handler struct {
	service *consultation.Service
}

func NewHandler(service *consultation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consultations := r.Group("/consultations")
	{
		consultations.POST("", h.CreateConsultation)
		consultations.GET("", h.ListConsultations)
		consultations.GET("/pending", h.ListPendingConsultations)
		consultations.GET("/:id", h.GetConsultation)
		consultations.GET("/:id/appointment", h.GetAppointment)
		consultations.POST("/:id/approve", h.ApproveConsultation)
		consultations.POST("/:id/reject", h.RejectConsultation)
	}

	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
	}
}

func (h *Handler) CreateConsultation(c *gin.Context) {
	var req model.CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	consultation, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(consultation))
}

// ListConsultations returns the consultation history of the patient
// identified by the email query parameter.
func (h *Handler) ListConsultations(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("email query parameter is required"))
		return
	}

	consultations, err := h.service.ListForPatient(c.Request.Context(), email)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(consultations))
}

func (h *Handler) ListPendingConsultations(c *gin.Context) {
	doctorEmail := c.Query("doctor_email")
	if doctorEmail == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("doctor_email query parameter is required"))
		return
	}

	consultations, err := h.service.PendingForDoctor(c.Request.Context(), doctorEmail)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(consultations))
}

func (h *Handler) GetConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consultation ID"))
		return
	}

	consultation, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(consultation))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consultation ID"))
		return
	}

	appointment, err := h.service.AppointmentFor(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ApproveConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consultation ID"))
		return
	}

	appointment, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) RejectConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consultation ID"))
		return
	}

	if err := h.service.Reject(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"status": string(model.ConsultationStatusRejected)}))
}

// ListAppointments resolves appointments for either a doctor or a
// patient depending on which query parameter is present.
func (h *Handler) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()

	if doctorEmail := c.Query("doctor_email"); doctorEmail != "" {
		appointments, err := h.service.AppointmentsForDoctor(ctx, doctorEmail)
		if err != nil {
			handler.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
		return
	}

	if email := c.Query("email"); email != "" {
		appointments, err := h.service.AppointmentsForPatient(ctx, email)
		if err != nil {
			handler.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
		return
	}

	c.JSON(http.StatusBadRequest, handler.NewErrorResponse("email or doctor_email query parameter is required"))
}
