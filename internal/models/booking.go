package models

import (
	"errors"
	"strings"
	"time"
)

// BookingStatus tracks the client-side progress of a checkout attempt.
// The server keeps its own lifecycle; these are UI-facing states only.
type BookingStatus string

// A dismissed payment is not a terminal state: the flow returns to
// idle so the user can retry.
const (
	BookingIdle       BookingStatus = "idle"
	BookingProcessing BookingStatus = "processing"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingFailed     BookingStatus = "payment_failed"
)

// BookingItem is one (service, tier, quantity) line submitted with a
// booking-creation request.
type BookingItem struct {
	ServiceID string `json:"serviceId"`
	TierID    string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// BookingCreateRequest is the payload for POST /bookings.
type BookingCreateRequest struct {
	CategoryID    string        `json:"categoryId"`
	ProviderID    string        `json:"providerId"`
	BookingType   string        `json:"bookingType"`
	ScheduledTime time.Time     `json:"scheduledTime"`
	PaymentMode   string        `json:"paymentMode"`
	Items         []BookingItem `json:"items"`
	DiscountCode  string        `json:"discountCode,omitempty"`
	Cities        []string      `json:"cities,omitempty"`
}

// Validate validates the booking creation payload
func (r *BookingCreateRequest) Validate() error {
	if strings.TrimSpace(r.CategoryID) == "" {
		return errors.New("category ID is required")
	}
	if strings.TrimSpace(r.ProviderID) == "" {
		return errors.New("provider ID is required")
	}
	if r.ScheduledTime.IsZero() {
		return errors.New("scheduled time is required")
	}
	if len(r.Items) == 0 {
		return errors.New("at least one booking item is required")
	}
	for _, item := range r.Items {
		if item.ServiceID == "" || item.TierID == "" {
			return errors.New("booking items must carry service and variant IDs")
		}
		if item.Quantity <= 0 {
			return errors.New("booking item quantity must be positive")
		}
	}
	return nil
}

// PaymentOrder is the gateway order embedded in a booking-creation
// response: a server-prepared payment intent handed to the payment sheet.
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // smallest currency unit (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

// Booking is the server-side booking record as returned on creation.
type Booking struct {
	ID            string        `json:"id"`
	Code          string        `json:"bookingCode,omitempty"`
	Status        string        `json:"status,omitempty"`
	ScheduledTime time.Time     `json:"scheduledTime,omitempty"`
	PaymentOrder  *PaymentOrder `json:"paymentOrder,omitempty"`
}

// Confirmation is the locally stored record of a completed checkout,
// shown on the confirmation view.
type Confirmation struct {
	BookingID      string       `json:"bookingId"`
	BookingCode    string       `json:"bookingCode"`
	EventID        string       `json:"eventId"`
	EventTitle     string       `json:"eventTitle"`
	Venue          string       `json:"venue,omitempty"`
	ScheduledTime  time.Time    `json:"scheduledTime"`
	Lines          []TicketLine `json:"tickets"`
	Subtotal       float64      `json:"subtotal"`
	DiscountAmount float64      `json:"discount"`
	PlatformFee    float64      `json:"platformFee"`
	Total          float64      `json:"total"`
	PromoCode      string       `json:"promoCode,omitempty"`
	PaymentID      string       `json:"paymentId,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// TotalItems returns the number of tickets covered by the confirmation.
func (c *Confirmation) TotalItems() int {
	return TotalItems(c.Lines)
}
