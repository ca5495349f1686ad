package gateway

import (
	"context"

	"github.com/razorpay/razorpay-go"

	apperrors "github.com/allenjacob2003/telemed-api/pkg/errors"
)

// Client creates orders with the external payment gateway. Only the
// pre-payment order creation is driven here; callback verification is
// handled by the payment reconciler against the callback payload.
type Client interface {
	// CreateOrder registers an order for amount in minor units
	// (e.g. paise) and returns the gateway order id.
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency string, receipt string) (string, error)
	// KeyID exposes the publishable key the frontend checkout needs.
	KeyID() string
}

type Config struct {
	KeyID     string
	KeySecret string
}

type razorpayClient struct {
	client *razorpay.Client
	keyID  string
}

func NewRazorpayClient(cfg Config) (Client, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, apperrors.NewGateway("razorpay keys are not configured", nil)
	}
	return &razorpayClient{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keyID:  cfg.KeyID,
	}, nil
}

func (c *razorpayClient) CreateOrder(_ context.Context, amountMinorUnits int64, currency string, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":          amountMinorUnits,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	body, err := c.client.Order.Create(data, nil)
	if err != nil {
		return "", apperrors.NewGateway("failed to create gateway order", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", apperrors.NewGateway("gateway returned no order id", nil)
	}
	return orderID, nil
}

func (c *razorpayClient) KeyID() string {
	return c.keyID
}
