package models

import (
	"strconv"
	"strings"
	"time"
)

// DiscountType represents how a discount value is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount represents a platform discount as returned by the discounts API.
// ApplicableTimeStart/End are times of day ("HH:MM" or "HH:MM:SS"); the
// window may wrap past midnight.
type Discount struct {
	ID                  string       `json:"id"`
	Code                string       `json:"code"`
	Name                string       `json:"name"`
	DiscountType        DiscountType `json:"discountType"`
	DiscountValue       float64      `json:"discountValue"`
	MaxDiscountAmount   float64      `json:"maxDiscountAmount,omitempty"`
	MinOrderAmount      float64      `json:"minOrderAmount,omitempty"`
	ApplicableTimeStart string       `json:"applicableTimeStart,omitempty"`
	ApplicableTimeEnd   string       `json:"applicableTimeEnd,omitempty"`

	// Amounts precomputed by the server for the cart the discount was
	// fetched against.
	DiscountAmount float64 `json:"discountAmount,omitempty"`
	FinalAmount    float64 `json:"finalAmount,omitempty"`
	Savings        float64 `json:"savings,omitempty"`
}

// AppliedDiscount is the single discount attached to a cart. Both the
// auto-applicable list and the manual promo code path produce this value;
// at most one is applied at a time.
type AppliedDiscount struct {
	ID             string       `json:"id"`
	Code           string       `json:"code"`
	Name           string       `json:"name"`
	Cities         []string     `json:"cities,omitempty"`
	Type           DiscountType `json:"type"`
	Value          float64      `json:"value"`
	DiscountAmount float64      `json:"discountAmount"`
	OriginalAmount float64      `json:"originalAmount"`
	FinalAmount    float64      `json:"finalAmount"`
	Savings        float64      `json:"savings"`
	MinOrderAmount float64      `json:"minOrderAmount,omitempty"`
	MaxDiscount    float64      `json:"maxDiscountAmount,omitempty"`
}

// timeOfDaySeconds parses "HH:MM" or "HH:MM:SS" into seconds since
// midnight. Returns -1 for an empty or unparseable string, meaning
// "bound not set".
func timeOfDaySeconds(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return -1
	}
	parts := strings.Split(s, ":")
	var h, m, sec int
	var err error
	if h, err = strconv.Atoi(parts[0]); err != nil {
		return -1
	}
	if len(parts) > 1 {
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return -1
		}
	}
	if len(parts) > 2 {
		if sec, err = strconv.Atoi(parts[2]); err != nil {
			return -1
		}
	}
	return h*3600 + m*60 + sec
}

// ActiveAt reports whether the discount's time-of-day window covers now.
// With no bounds it is always active; with only a start it is active from
// the start onward; with only an end it is active until the end; when the
// end precedes the start the window wraps past midnight.
func (d *Discount) ActiveAt(now time.Time) bool {
	start := timeOfDaySeconds(d.ApplicableTimeStart)
	end := timeOfDaySeconds(d.ApplicableTimeEnd)
	nowSec := now.Hour()*3600 + now.Minute()*60 + now.Second()

	switch {
	case start < 0 && end < 0:
		return true
	case start >= 0 && end < 0:
		return nowSec >= start
	case start < 0 && end >= 0:
		return nowSec <= end
	case end < start:
		return nowSec >= start || nowSec <= end
	default:
		return nowSec >= start && nowSec <= end
	}
}

// SavingsFor computes the effective savings of the discount against an
// order amount. Percentage savings are capped at MaxDiscountAmount when
// one is configured.
func (d *Discount) SavingsFor(amount float64) float64 {
	var savings float64
	switch d.DiscountType {
	case DiscountPercentage:
		savings = amount * d.DiscountValue / 100
		if d.MaxDiscountAmount > 0 && savings > d.MaxDiscountAmount {
			savings = d.MaxDiscountAmount
		}
	case DiscountFixed:
		savings = d.DiscountValue
	}
	if savings > amount {
		savings = amount
	}
	if savings < 0 {
		savings = 0
	}
	return savings
}
