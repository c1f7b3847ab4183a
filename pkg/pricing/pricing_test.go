package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeliveryChargeThreshold(t *testing.T) {
	calc := NewCalculator(StandardConfig())

	tests := []struct {
		name             string
		subtotal         int64
		discount         int64
		expectedDelivery int64
	}{
		{name: "just above threshold is free", subtotal: 300, discount: 0, expectedDelivery: 0},
		{name: "at threshold pays flat fee", subtotal: 299, discount: 0, expectedDelivery: 40},
		{name: "discount pulls cart below threshold", subtotal: 350, discount: 100, expectedDelivery: 40},
		{name: "discounted cart still above threshold", subtotal: 400, discount: 100, expectedDelivery: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := calc.Compute(tt.subtotal, tt.discount, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedDelivery, b.DeliveryCharge)
		})
	}
}

func TestComputeMiniCartThreshold(t *testing.T) {
	calc := NewCalculator(MiniConfig())

	b, err := calc.Compute(41, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, b.DeliveryCharge)

	b, err = calc.Compute(40, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDeliveryCharge, b.DeliveryCharge)
}

func TestComputeGSTRoundsHalfUp(t *testing.T) {
	calc := NewCalculator(StandardConfig())

	// taxable 330, 5% = 16.5 -> rounds up to 17
	b, err := calc.Compute(330, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(17), b.GSTAmount)

	// taxable 320, 5% = 16.0 exactly
	b, err = calc.Compute(320, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(16), b.GSTAmount)
}

func TestComputeEndToEndScenario(t *testing.T) {
	// cart p1 250x1 + p2 40x2 = 330; above 299 so delivery is free;
	// gst 5% of 330 = 17 (rounded); tip 20 -> 367.
	calc := NewCalculator(StandardConfig())

	b, err := calc.Compute(330, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.DeliveryCharge)
	assert.Equal(t, int64(17), b.GSTAmount)
	assert.Equal(t, int64(367), b.Total)
}

func TestComputeTotalNeverNegative(t *testing.T) {
	calc := NewCalculator(StandardConfig())

	b, err := calc.Compute(100, 10000, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Total)
}

func TestComputeIsPure(t *testing.T) {
	calc := NewCalculator(StandardConfig())

	first, err := calc.Compute(523, 50, 30)
	require.NoError(t, err)
	second, err := calc.Compute(523, 50, 30)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeRejectsNegativeInputs(t *testing.T) {
	calc := NewCalculator(StandardConfig())

	_, err := calc.Compute(-1, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = calc.Compute(100, 0, -5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
