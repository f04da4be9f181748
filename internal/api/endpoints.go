package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"lokonnect/internal/models"
)

// AuthResult is returned on successful OTP verification.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// DiscountBuckets holds the two server-computed discount lists for a cart.
type DiscountBuckets struct {
	Applicable     []models.Discount `json:"applicableDiscounts"`
	NearApplicable []models.Discount `json:"nearApplicableDiscounts"`
	Summary        DiscountSummary   `json:"summary"`
}

// DiscountSummary is the server's rollup over both buckets.
type DiscountSummary struct {
	TotalApplicable     int     `json:"totalApplicable"`
	TotalNearApplicable int     `json:"totalNearApplicable"`
	MaxSavings          float64 `json:"maxSavings"`
}

// DiscountContext is the cart context sent with discount requests.
type DiscountContext struct {
	ProviderID    string   `json:"providerId"`
	CategoryID    string   `json:"categoryId"`
	BookingAmount float64  `json:"bookingAmount"`
	ServiceIDs    []string `json:"serviceIds,omitempty"`
	PaymentMode   string   `json:"paymentMode,omitempty"`
	Cities        []string `json:"cities,omitempty"`
	DiscountCode  string   `json:"discountCode,omitempty"`
}

// ValidateDiscountResult is the response to a promo code validation.
type ValidateDiscountResult struct {
	Discount       models.Discount `json:"discount"`
	DiscountAmount float64         `json:"discountAmount"`
	FinalAmount    float64         `json:"finalAmount"`
	MinOrderAmount float64         `json:"minOrderAmount"`
}

// VerifyPaymentRequest carries the gateway's success payload, forwarded
// verbatim to the verify endpoint.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// CategoryDetail is the category record with its booking surcharge.
type CategoryDetail struct {
	models.Category
	PlatformFee float64 `json:"platformFee"`
}

// ServiceFilters narrows ListServices results.
type ServiceFilters struct {
	CategoryID     string
	Status         string
	ApprovalStatus string
}

// Login requests an OTP for the given phone number.
func (c *Client) Login(ctx context.Context, phone string) error {
	if err := models.ValidatePhone(phone); err != nil {
		return err
	}
	return c.post(ctx, "/auth/m/login", map[string]string{"phone": phone}, false, nil)
}

// VerifyOTP exchanges phone+code for a session token and user.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (*AuthResult, error) {
	if err := models.ValidatePhone(phone); err != nil {
		return nil, err
	}
	if err := models.ValidateOTP(code); err != nil {
		return nil, err
	}
	var result AuthResult
	body := map[string]string{"phone": phone, "otp": code}
	if err := c.post(ctx, "/auth/m/verify-otp", body, false, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, errors.New("verify-otp response carried no token")
	}
	return &result, nil
}

// ResendOTP asks the server to resend the OTP for the phone number.
func (c *Client) ResendOTP(ctx context.Context, phone string) error {
	if err := models.ValidatePhone(phone); err != nil {
		return err
	}
	return c.post(ctx, "/auth/m/resend-otp", map[string]string{"phone": phone}, false, nil)
}

// ListCategories returns the active service categories.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := url.Values{}
	query.Set("status", "active")
	var categories []models.Category
	if err := c.get(ctx, "/service-categories", query, false, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory returns a category's detail, including its platform fee.
func (c *Client) GetCategory(ctx context.Context, id string) (*CategoryDetail, error) {
	if id == "" {
		return nil, errors.New("category ID is required")
	}
	var detail CategoryDetail
	if err := c.get(ctx, "/service-categories/"+id, nil, true, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListProviders returns the providers for a category.
func (c *Client) ListProviders(ctx context.Context, categoryID string) ([]models.Provider, error) {
	if categoryID == "" {
		return nil, errors.New("category ID is required")
	}
	var providers []models.Provider
	path := fmt.Sprintf("/service-categories/%s/providers", categoryID)
	if err := c.get(ctx, path, nil, false, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// ListServices returns the catalog of bookable services/events.
func (c *Client) ListServices(ctx context.Context, filters ServiceFilters) ([]models.Event, error) {
	query := url.Values{}
	if filters.CategoryID != "" {
		query.Set("categoryId", filters.CategoryID)
	}
	status := filters.Status
	if status == "" {
		status = "active"
	}
	query.Set("status", status)
	approval := filters.ApprovalStatus
	if approval == "" {
		approval = "approved"
	}
	query.Set("approvalStatus", approval)

	var events []models.Event
	if err := c.get(ctx, "/services", query, false, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetService returns one service with its ticket tiers.
func (c *Client) GetService(ctx context.Context, id string) (*ServiceDetail, error) {
	if id == "" {
		return nil, errors.New("service ID is required")
	}
	var detail ServiceDetail
	if err := c.get(ctx, "/providers/services/"+id, nil, false, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ServiceDetail is an event/service with its purchasable tiers.
type ServiceDetail struct {
	models.Event
	Tiers []models.TicketTier `json:"variants"`
}

// FindTier returns the tier with the given id, or models.ErrTierNotFound.
func (d *ServiceDetail) FindTier(id string) (*models.TicketTier, error) {
	for i := range d.Tiers {
		if d.Tiers[i].ID == id {
			return &d.Tiers[i], nil
		}
	}
	return nil, models.ErrTierNotFound
}

// GetProviderSlots returns a provider's bookable slots for a date.
func (c *Client) GetProviderSlots(ctx context.Context, providerID string, date time.Time) ([]models.Slot, error) {
	if providerID == "" {
		return nil, errors.New("provider ID is required")
	}
	if date.IsZero() {
		return nil, errors.New("date is required")
	}
	query := url.Values{}
	query.Set("date", date.Format("2006-01-02"))
	var slots []models.Slot
	path := fmt.Sprintf("/providers/%s/slots", providerID)
	if err := c.get(ctx, path, query, true, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// CreateBooking submits a booking-creation request.
func (c *Client) CreateBooking(ctx context.Context, req *models.BookingCreateRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var booking models.Booking
	if err := c.post(ctx, "/bookings", req, true, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking cancels a booking by id with an optional reason.
func (c *Client) CancelBooking(ctx context.Context, id, reason string) error {
	if id == "" {
		return errors.New("booking ID is required")
	}
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	return c.post(ctx, fmt.Sprintf("/bookings/%s/cancel", id), body, true, nil)
}

// MyBookings returns the current user's bookings.
func (c *Client) MyBookings(ctx context.Context, status string) ([]models.Booking, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var bookings []models.Booking
	if err := c.get(ctx, "/bookings/me", query, true, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBooking returns one booking by id.
func (c *Client) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	if id == "" {
		return nil, errors.New("booking ID is required")
	}
	var booking models.Booking
	if err := c.get(ctx, "/bookings/"+id, nil, true, &booking); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, models.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// CurrentUser returns the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "/user/profile", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ApplicableDiscounts fetches the applicable and near-applicable
// discounts for a cart.
func (c *Client) ApplicableDiscounts(ctx context.Context, dctx DiscountContext) (*DiscountBuckets, error) {
	if dctx.ProviderID == "" {
		return nil, errors.New("provider ID is required")
	}
	if dctx.BookingAmount <= 0 {
		return nil, errors.New("booking amount is required")
	}
	var buckets DiscountBuckets
	if err := c.post(ctx, "/discounts/applicable", dctx, true, &buckets); err != nil {
		return nil, err
	}
	return &buckets, nil
}

// ValidateDiscountCode validates a user-entered promo code against a cart.
func (c *Client) ValidateDiscountCode(ctx context.Context, dctx DiscountContext) (*ValidateDiscountResult, error) {
	if dctx.DiscountCode == "" {
		return nil, errors.New("discount code is required")
	}
	var result ValidateDiscountResult
	if err := c.post(ctx, "/bookings/validate-discount", dctx, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyPayment forwards the gateway success payload for server-side
// signature verification.
func (c *Client) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) error {
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return errors.New("incomplete payment verification payload")
	}
	return c.post(ctx, "/payment/verify", req, true, nil)
}
