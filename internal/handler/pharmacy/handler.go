package pharmacy

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allenjacob2003/telemed-api/pkg/validator"

	"github.com/allenjacob2003/telemed-api/internal/handler"
	"github.com/allenjacob2003/telemed-api/internal/model"
	"github.com/allenjacob2003/telemed-api/internal/repository"
	"github.com/allenjacob2003/telemed-api/internal/service/pharmacy"
)

type Handler struct {
	service  *pharmacy.Service
	validate *validator.Validator
}

func NewHandler(service *pharmacy.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	medicines := r.Group("/medicines")
	{
		medicines.POST("", h.AddMedicine)
		medicines.GET("", h.ListMedicines)
		medicines.GET("/:id", h.GetMedicine)
		medicines.PUT("/:id/stock", h.UpdateStock)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListOrders)
		orders.PUT("/:id/delivery", h.UpdateDelivery)
	}

	r.GET("/pharmacy/summary", h.Summary)
}

func (h *Handler) AddMedicine(c *gin.Context) {
	var req model.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	medicine, err := h.service.AddMedicine(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(medicine))
}

func (h *Handler) ListMedicines(c *gin.Context) {
	filter := repository.MedicineFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		LowStock: c.Query("low_stock") == "true",
	}

	medicines, err := h.service.ListStock(c.Request.Context(), filter)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicines))
}

func (h *Handler) GetMedicine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medicine ID"))
		return
	}

	medicine, err := h.service.GetMedicine(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicine))
}

func (h *Handler) UpdateStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medicine ID"))
		return
	}

	var req model.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	medicine, err := h.service.UpdateStock(c.Request.Context(), id, *req.AvailableQuantity)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicine))
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req model.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	orders, err := h.service.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(orders))
}

func (h *Handler) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()

	if email := c.Query("email"); email != "" {
		orders, err := h.service.OrdersForPatient(ctx, email)
		if err != nil {
			handler.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
		return
	}

	filter := repository.OrderFilter{
		PatientName: c.Query("patient_name"),
	}
	if status := c.Query("delivery_status"); status != "" {
		if err := h.validate.Var(status, "delivery_status"); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("delivery_status must be one of Pending, Packed, Out for Delivery, Delivered"))
			return
		}
		filter.DeliveryStatus = model.DeliveryStatus(status)
	}
	if raw := c.Query("order_date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("order_date must be YYYY-MM-DD"))
			return
		}
		filter.OrderDate = &date
	}

	orders, err := h.service.ListOrders(ctx, filter)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}

func (h *Handler) UpdateDelivery(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid order ID"))
		return
	}

	var req model.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	order, err := h.service.UpdateDelivery(c.Request.Context(), id, req.DeliveryStatus)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary))
}
