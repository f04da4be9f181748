package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"lokonnect/internal/models"
)

// Status is the terminal outcome of a payment attempt.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusCancelled Status = "cancelled"
)

// SuccessPayload is the gateway's success callback data, forwarded
// verbatim to the verify endpoint.
type SuccessPayload struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Result is the single awaited outcome of a payment attempt. The
// adapter's job is to translate the gateway's callback style into this
// one tagged value: Success carries the payload, Failure carries the
// gateway's error description, Cancelled means the user dismissed the
// payment sheet.
type Result struct {
	Status  Status
	Payment SuccessPayload
	Reason  string
}

// Gateway collects a payment for a server-prepared order and resolves
// to exactly one Result. Cancelling ctx while the sheet is open is the
// user-dismiss path.
type Gateway interface {
	Collect(ctx context.Context, order *models.PaymentOrder, cb Callbacks) (Result, error)
	Loading() bool
	// ClearLoading is for custom success handlers, which own the
	// loading flag in that one branch.
	ClearLoading()
}

// Callbacks are caller-supplied overrides for the three outcomes. Any
// nil field falls back to the adapter's default behavior.
type Callbacks struct {
	// Handler runs on gateway success instead of the default
	// verify-and-log. A custom handler owns clearing the loading flag.
	Handler func(ctx context.Context, p SuccessPayload) error
	// OnDismiss runs when the user closes the payment sheet.
	OnDismiss func()
	// OnFailure runs on a gateway-reported failure.
	OnFailure func(reason string)
}

// VerifySignature checks the gateway's HMAC-SHA256 signature over
// "order_id|payment_id". The authoritative check is server-side; this is
// a local pre-check only.
func VerifySignature(p SuccessPayload, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(p.OrderID + "|" + p.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(p.Signature))
}
