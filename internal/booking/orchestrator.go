package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lokonnect/internal/api"
	"lokonnect/internal/models"
	"lokonnect/internal/payment"
)

// confirmationKey is where the last confirmation is persisted locally.
const confirmationKey = "lk_last_confirmation"

// BookingAPI is the slice of the API client the orchestrator needs.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req *models.BookingCreateRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, id, reason string) error
	VerifyPayment(ctx context.Context, req api.VerifyPaymentRequest) error
	GetCategory(ctx context.Context, id string) (*api.CategoryDetail, error)
}

// Session is the slice of the session store the orchestrator needs.
type Session interface {
	IsAuthenticated() bool
	OpenModal()
}

// Storage persists the confirmation record across restarts.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// CheckoutRequest describes one checkout attempt.
type CheckoutRequest struct {
	Event       *models.Event
	Lines       []models.TicketLine
	Date        string // day-month-year, e.g. "15-02-2025"
	TimeSlot    string // 12-hour clock, e.g. "6:30 PM"
	Discount    *models.AppliedDiscount
	PaymentMode string
	BookingType string
}

// Orchestrator drives the checkout flow: ticket selection in, booking
// record + payment + verification out. State machine:
// idle -> processing -> {success | error}, with error recoverable back
// to idle on retry and a separate cancelled outcome when the user
// dismisses the payment sheet.
type Orchestrator struct {
	api     BookingAPI
	gateway payment.Gateway
	session Session
	storage Storage
	logger  *zap.Logger

	mu           sync.Mutex
	status       models.BookingStatus
	confirmation *models.Confirmation
}

// NewOrchestrator creates a booking orchestrator.
func NewOrchestrator(bapi BookingAPI, gateway payment.Gateway, session Session, storage Storage, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		api:     bapi,
		gateway: gateway,
		session: session,
		storage: storage,
		logger:  logger,
		status:  models.BookingIdle,
	}
}

// Status returns the current checkout state.
func (o *Orchestrator) Status() models.BookingStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Reset returns an errored or cancelled checkout to idle for retry.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != models.BookingProcessing {
		o.status = models.BookingIdle
	}
}

// Confirmation returns the last completed checkout, loading it from
// local storage when the process has restarted since.
func (o *Orchestrator) Confirmation() *models.Confirmation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.confirmation != nil {
		c := *o.confirmation
		return &c
	}
	if o.storage == nil {
		return nil
	}
	raw, err := o.storage.Get(confirmationKey)
	if err != nil {
		return nil
	}
	var c models.Confirmation
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil
	}
	o.confirmation = &c
	return &c
}

// begin flips idle to processing; a second checkout while one is in
// flight is rejected (the submit control's busy guard).
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status == models.BookingProcessing {
		return models.ErrCheckoutInFlight
	}
	o.status = models.BookingProcessing
	return nil
}

func (o *Orchestrator) finish(status models.BookingStatus) {
	o.mu.Lock()
	o.status = status
	o.mu.Unlock()
}

// Checkout runs the full booking flow for a ticket selection. On
// success it returns the stored confirmation; on cancellation it
// returns models.ErrPaymentCancelled after the best-effort cleanup.
func (o *Orchestrator) Checkout(ctx context.Context, req CheckoutRequest) (*models.Confirmation, error) {
	// Checkout requires an authenticated session; without one the auth
	// modal opens and no booking is created.
	if !o.session.IsAuthenticated() {
		o.session.OpenModal()
		return nil, models.ErrNotAuthenticated
	}

	if req.Event == nil {
		return nil, models.ErrEventNotFound
	}
	if len(req.Lines) == 0 || models.TotalItems(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: no tickets selected", models.ErrInvalidInput)
	}

	scheduled, err := ParseSchedule(req.Date, req.TimeSlot)
	if err != nil {
		return nil, err
	}

	if err := o.begin(); err != nil {
		return nil, err
	}

	confirmation, err := o.run(ctx, req, scheduled)
	if err != nil {
		if errors.Is(err, models.ErrPaymentCancelled) {
			o.finish(models.BookingIdle)
		} else {
			o.finish(models.BookingFailed)
		}
		return nil, err
	}

	o.finish(models.BookingConfirmed)
	return confirmation, nil
}

func (o *Orchestrator) run(ctx context.Context, req CheckoutRequest, scheduled time.Time) (*models.Confirmation, error) {
	// Platform fee is a per-category surcharge, fetched independently
	// and added after the discount.
	category, err := o.api.GetCategory(ctx, req.Event.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch platform fee: %w", err)
	}
	totals := ComputeTotals(req.Lines, req.Discount, category.PlatformFee)

	items := make([]models.BookingItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity == 0 {
			continue
		}
		items = append(items, models.BookingItem{
			ServiceID: req.Event.ID,
			TierID:    line.TierID,
			Quantity:  line.Quantity,
		})
	}

	createReq := &models.BookingCreateRequest{
		CategoryID:    req.Event.CategoryID,
		ProviderID:    req.Event.ProviderID,
		BookingType:   req.BookingType,
		ScheduledTime: scheduled,
		PaymentMode:   req.PaymentMode,
		Items:         items,
	}
	if req.Discount != nil {
		createReq.DiscountCode = req.Discount.Code
		createReq.Cities = req.Discount.Cities
	}

	booking, err := o.api.CreateBooking(ctx, createReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	if booking.ID == "" {
		return nil, errors.New("booking response carried no booking id")
	}
	if booking.PaymentOrder == nil || booking.PaymentOrder.ID == "" {
		// The server-side booking stays pending; this client does not
		// reconcile it.
		return nil, errors.New("booking response carried no payment order")
	}

	o.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("order_id", booking.PaymentOrder.ID),
		zap.Float64("total", totals.Total))

	var verifyErr error
	result, err := o.gateway.Collect(ctx, booking.PaymentOrder, payment.Callbacks{
		Handler: func(ctx context.Context, p payment.SuccessPayload) error {
			defer o.gateway.ClearLoading()
			verifyErr = o.api.VerifyPayment(ctx, api.VerifyPaymentRequest{
				RazorpayOrderID:   p.OrderID,
				RazorpayPaymentID: p.PaymentID,
				RazorpaySignature: p.Signature,
			})
			return verifyErr
		},
	})
	if err != nil && verifyErr == nil {
		o.cancelAbandoned(booking.ID, "payment could not be started")
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	switch result.Status {
	case payment.StatusSuccess:
		if verifyErr != nil {
			// The booking is left in an ambiguous state on purpose; the
			// user is told to contact support rather than retrying.
			return nil, fmt.Errorf("%w: please contact support", models.ErrVerificationFailed)
		}
		confirmation := o.buildConfirmation(req, scheduled, totals, booking, result.Payment.PaymentID)
		o.persistConfirmation(confirmation)
		return confirmation, nil

	case payment.StatusCancelled:
		o.cancelAbandoned(booking.ID, "payment dismissed by user")
		return nil, models.ErrPaymentCancelled

	default:
		o.cancelAbandoned(booking.ID, "payment failed at gateway")
		if result.Reason != "" {
			return nil, fmt.Errorf("payment failed: %s", result.Reason)
		}
		return nil, errors.New("payment failed")
	}
}

func (o *Orchestrator) buildConfirmation(req CheckoutRequest, scheduled time.Time, totals Totals, booking *models.Booking, paymentID string) *models.Confirmation {
	confirmation := &models.Confirmation{
		BookingID:      booking.ID,
		BookingCode:    booking.Code,
		EventID:        req.Event.ID,
		EventTitle:     req.Event.Title,
		Venue:          req.Event.Venue,
		ScheduledTime:  scheduled,
		Lines:          req.Lines,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		PlatformFee:    totals.PlatformFee,
		Total:          totals.Total,
		PaymentID:      paymentID,
		CreatedAt:      time.Now(),
	}
	if req.Discount != nil {
		confirmation.PromoCode = req.Discount.Code
	}
	if confirmation.BookingCode == "" {
		confirmation.BookingCode = uuid.NewString()[:8]
	}
	return confirmation
}

func (o *Orchestrator) persistConfirmation(c *models.Confirmation) {
	o.mu.Lock()
	o.confirmation = c
	o.mu.Unlock()

	if o.storage == nil {
		return
	}
	raw, err := json.Marshal(c)
	if err != nil {
		o.logger.Warn("failed to encode confirmation", zap.Error(err))
		return
	}
	if err := o.storage.Set(confirmationKey, string(raw)); err != nil {
		o.logger.Warn("failed to persist confirmation", zap.Error(err))
	}
}

// cancelAbandoned issues a best-effort cancel for a booking the user
// walked away from. It runs in the background, is never retried, and
// failures are logged rather than surfaced: the booking is already
// abandoned from the user's perspective.
func (o *Orchestrator) cancelAbandoned(bookingID, reason string) {
	go func() {
		if err := o.api.CancelBooking(context.Background(), bookingID, reason); err != nil {
			o.logger.Warn("failed to cancel abandoned booking",
				zap.String("booking_id", bookingID),
				zap.Error(err))
			return
		}
		o.logger.Info("abandoned booking cancelled", zap.String("booking_id", bookingID))
	}()
}
