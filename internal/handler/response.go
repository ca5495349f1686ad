package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes err with the HTTP status its error code maps to.
// Unrecognized errors come out as 500 with a generic message.
func Error(c *gin.Context, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, NewErrorResponse(message))
}

func statusOf(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrInvalidTransition, apperrors.ErrInsufficientStock:
		return http.StatusConflict
	case apperrors.ErrBusy:
		return http.StatusServiceUnavailable
	case apperrors.ErrGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
