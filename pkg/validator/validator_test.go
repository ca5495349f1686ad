package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarDeliveryStatusAlias(t *testing.T) {
	v := New()

	for _, status := range []string{"Pending", "Packed", "Out for Delivery", "Delivered"} {
		assert.NoError(t, v.Var(status, "delivery_status"), status)
	}

	assert.Error(t, v.Var("Shipped", "delivery_status"))
	assert.Error(t, v.Var("", "delivery_status"))
}

func TestVarPaymentTypeAlias(t *testing.T) {
	v := New()

	assert.NoError(t, v.Var("consultation", "payment_type"))
	assert.NoError(t, v.Var("pharmacy", "payment_type"))
	assert.Error(t, v.Var("wire", "payment_type"))
}

func TestValidateReportsFirstFailedField(t *testing.T) {
	v := New()

	type paymentRequest struct {
		Email       string `validate:"required,email"`
		PaymentType string `validate:"required,payment_type"`
	}

	err := v.Validate(paymentRequest{Email: "jane@example.com", PaymentType: "pharmacy"})
	assert.NoError(t, err)

	err = v.Validate(paymentRequest{Email: "not-an-email", PaymentType: "pharmacy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
}
