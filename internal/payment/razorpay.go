package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"lokonnect/internal/api"
	"lokonnect/internal/models"
)

const checkoutBaseURL = "https://api.razorpay.com/v1/checkout/embedded"

// VerifyAPI is the slice of the API client the default success handler
// needs.
type VerifyAPI interface {
	VerifyPayment(ctx context.Context, req api.VerifyPaymentRequest) error
}

// Config holds Razorpay checkout configuration
type Config struct {
	KeyID        string
	AppName      string
	LogoURL      string
	CallbackAddr string
}

// Checkout drives Razorpay's hosted payment sheet. The loopback
// callback server is brought up lazily and at most once; each Collect
// call opens one payment attempt and resolves to one Result.
type Checkout struct {
	cfg    Config
	verify VerifyAPI
	logger *zap.Logger
	server *callbackServer
	// 1 while a payment sheet is open
	loading atomic.Bool
}

// NewCheckout creates the Razorpay checkout adapter.
func NewCheckout(cfg Config, verify VerifyAPI, logger *zap.Logger) *Checkout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{
		cfg:    cfg,
		verify: verify,
		logger: logger,
		server: newCallbackServer(cfg.CallbackAddr, logger),
	}
}

// Loading reports whether a payment sheet is currently open.
func (c *Checkout) Loading() bool {
	return c.loading.Load()
}

// ClearLoading drops the loading flag; called by custom success
// handlers, which own it in that branch.
func (c *Checkout) ClearLoading() {
	c.loading.Store(false)
}

// CheckoutURL builds the hosted payment sheet URL for an order.
func (c *Checkout) CheckoutURL(order *models.PaymentOrder) string {
	q := url.Values{}
	q.Set("key_id", c.cfg.KeyID)
	q.Set("order_id", order.ID)
	q.Set("amount", strconv.FormatInt(order.Amount, 10))
	q.Set("currency", order.Currency)
	q.Set("name", c.cfg.AppName)
	q.Set("image", c.cfg.LogoURL)
	q.Set("callback_url", fmt.Sprintf("http://%s/payment/callback/%s", c.cfg.CallbackAddr, order.ID))
	return checkoutBaseURL + "?" + q.Encode()
}

// Collect opens the payment sheet for the order and waits for its one
// terminal outcome. Cancelling ctx is the user dismissing the sheet.
//
// The loading flag is cleared in every terminal branch except gateway
// success with a caller-supplied handler, which owns clearing it.
func (c *Checkout) Collect(ctx context.Context, order *models.PaymentOrder, cb Callbacks) (Result, error) {
	if order == nil || order.ID == "" {
		return Result{}, fmt.Errorf("payment order is required")
	}

	c.loading.Store(true)
	if err := c.server.start(); err != nil {
		c.loading.Store(false)
		return Result{}, fmt.Errorf("failed to start payment callback listener: %w", err)
	}

	ch := c.server.register(order.ID)
	defer c.server.unregister(order.ID)

	c.logger.Info("payment sheet opened",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency),
		zap.String("checkout_url", c.CheckoutURL(order)))

	select {
	case result := <-ch:
		switch result.Status {
		case StatusSuccess:
			if cb.Handler != nil {
				if err := cb.Handler(ctx, result.Payment); err != nil {
					return result, err
				}
				return result, nil
			}
			if err := c.verify.VerifyPayment(ctx, api.VerifyPaymentRequest{
				RazorpayOrderID:   result.Payment.OrderID,
				RazorpayPaymentID: result.Payment.PaymentID,
				RazorpaySignature: result.Payment.Signature,
			}); err != nil {
				c.logger.Error("payment verification failed", zap.Error(err))
			} else {
				c.logger.Info("payment successful and verified",
					zap.String("payment_id", result.Payment.PaymentID))
			}
			c.loading.Store(false)
			return result, nil

		default:
			if cb.OnFailure != nil {
				cb.OnFailure(result.Reason)
			} else {
				c.logger.Warn("payment failed", zap.String("reason", result.Reason))
			}
			c.loading.Store(false)
			return result, nil
		}

	case <-ctx.Done():
		c.loading.Store(false)
		if cb.OnDismiss != nil {
			cb.OnDismiss()
		}
		return Result{Status: StatusCancelled}, nil
	}
}
