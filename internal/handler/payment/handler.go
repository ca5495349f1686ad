package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allenjacob2003/telemed-api/internal/handler"
	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/service/payment"
)

type Handler struct {
	service *payment.Service
}

func NewHandler(service *payment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/order", h.CreateGatewayOrder)
		payments.POST("/verify", h.VerifyPayment)
		payments.GET("", h.ListPayments)
		payments.GET("/summary", h.Summary)
	}
}

func (h *Handler) CreateGatewayOrder(c *gin.Context) {
	var req model.CreateGatewayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	order, err := h.service.CreateGatewayOrder(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(order))
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	var req model.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.Verify(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ListPayments(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("email query parameter is required"))
		return
	}

	payments, err := h.service.ListForPatient(c.Request.Context(), email)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(payments))
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary))
}
