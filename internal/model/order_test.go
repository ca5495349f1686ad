package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextDeliveryStatuses(t *testing.T) {
	assert.Equal(t, []DeliveryStatus{DeliveryStatusPacked}, NextDeliveryStatuses(DeliveryStatusPending))
	assert.Equal(t, []DeliveryStatus{DeliveryStatusOutForDel}, NextDeliveryStatuses(DeliveryStatusPacked))
	assert.Equal(t, []DeliveryStatus{DeliveryStatusDelivered}, NextDeliveryStatuses(DeliveryStatusOutForDel))
	assert.Nil(t, NextDeliveryStatuses(DeliveryStatusDelivered))
}

func TestLowStock(t *testing.T) {
	m := MedicineStock{AvailableQuantity: 5, LowStockThreshold: 10}
	assert.True(t, m.LowStock())

	m.AvailableQuantity = 10
	assert.True(t, m.LowStock())

	m.AvailableQuantity = 11
	assert.False(t, m.LowStock())
}
