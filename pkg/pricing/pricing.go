// Package pricing computes the checkout money breakdown. All amounts are
// whole rupees; GST rounding is the only fractional intermediate.
package pricing

import (
	"errors"
	"math"
)

// ErrInvalidArgument rejects negative subtotal or tip inputs.
var ErrInvalidArgument = errors.New("pricing: negative subtotal or tip")

// The storefront uses two free-delivery thresholds: the full checkout screen
// waives the fee above 299, the mini-cart summary above 40. Call sites pick
// one; the calculator never hard-codes either.
const (
	FreeDeliveryThresholdStandard int64 = 299
	FreeDeliveryThresholdMini     int64 = 40

	DefaultDeliveryCharge int64   = 40
	DefaultGSTRatePercent float64 = 5
)

// Config parameterizes a Calculator.
type Config struct {
	DeliveryCharge        int64
	FreeDeliveryThreshold int64
	GSTRatePercent        float64
}

// StandardConfig is the checkout configuration.
func StandardConfig() Config {
	return Config{
		DeliveryCharge:        DefaultDeliveryCharge,
		FreeDeliveryThreshold: FreeDeliveryThresholdStandard,
		GSTRatePercent:        DefaultGSTRatePercent,
	}
}

// MiniConfig is the mini-cart summary configuration.
func MiniConfig() Config {
	cfg := StandardConfig()
	cfg.FreeDeliveryThreshold = FreeDeliveryThresholdMini
	return cfg
}

// Breakdown is the derived money view of a cart. It is computed fresh on
// every call and never mutated in place.
type Breakdown struct {
	Subtotal       int64   `json:"subtotal"`
	DeliveryCharge int64   `json:"delivery_charge"`
	DiscountAmount int64   `json:"discount_amount"`
	GSTRatePercent float64 `json:"gst_rate"`
	GSTAmount      int64   `json:"gst_amount"`
	Tip            int64   `json:"tip"`
	Total          int64   `json:"total"`
}

// Calculator is a pure pricing function over its Config.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	if cfg.DeliveryCharge == 0 {
		cfg.DeliveryCharge = DefaultDeliveryCharge
	}
	if cfg.GSTRatePercent == 0 {
		cfg.GSTRatePercent = DefaultGSTRatePercent
	}
	return &Calculator{cfg: cfg}
}

// Compute derives the full breakdown from subtotal, an externally supplied
// discount, and the tip. The total is clamped at zero: a discount larger than
// everything else never produces a negative total.
func (c *Calculator) Compute(subtotal, discountAmount, tip int64) (Breakdown, error) {
	if subtotal < 0 || tip < 0 {
		return Breakdown{}, ErrInvalidArgument
	}

	var deliveryCharge int64
	if subtotal-discountAmount <= c.cfg.FreeDeliveryThreshold {
		deliveryCharge = c.cfg.DeliveryCharge
	}

	taxable := subtotal - discountAmount + deliveryCharge
	gstAmount := roundHalfUp(float64(taxable) * c.cfg.GSTRatePercent / 100)

	total := subtotal - discountAmount + deliveryCharge + gstAmount + tip
	if total < 0 {
		total = 0
	}

	return Breakdown{
		Subtotal:       subtotal,
		DeliveryCharge: deliveryCharge,
		DiscountAmount: discountAmount,
		GSTRatePercent: c.cfg.GSTRatePercent,
		GSTAmount:      gstAmount,
		Tip:            tip,
		Total:          total,
	}, nil
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
