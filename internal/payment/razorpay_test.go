package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokonnect/internal/api"
	"lokonnect/internal/models"
)

type mockVerifyAPI struct {
	req api.VerifyPaymentRequest
	err error
}

func (m *mockVerifyAPI) VerifyPayment(ctx context.Context, req api.VerifyPaymentRequest) error {
	m.req = req
	return m.err
}

func testOrder() *models.PaymentOrder {
	return &models.PaymentOrder{ID: "order_abc", Amount: 92000, Currency: "INR"}
}

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	p := SuccessPayload{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: sign("order_abc", "pay_xyz", "secret"),
	}
	assert.True(t, VerifySignature(p, "secret"))

	p.Signature = "deadbeef"
	assert.False(t, VerifySignature(p, "secret"))

	p.Signature = sign("order_abc", "pay_xyz", "wrong")
	assert.False(t, VerifySignature(p, "secret"))
}

func TestCheckoutURL(t *testing.T) {
	c := NewCheckout(Config{
		KeyID:        "rzp_test_key",
		AppName:      "LokConnect",
		CallbackAddr: "127.0.0.1:18970",
	}, &mockVerifyAPI{}, nil)

	raw := c.CheckoutURL(testOrder())
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "rzp_test_key", q.Get("key_id"))
	assert.Equal(t, "order_abc", q.Get("order_id"))
	assert.Equal(t, "92000", q.Get("amount"))
	assert.Equal(t, "INR", q.Get("currency"))
	assert.Equal(t, "http://127.0.0.1:18970/payment/callback/order_abc", q.Get("callback_url"))
}

func TestCollectRequiresOrder(t *testing.T) {
	c := NewCheckout(Config{CallbackAddr: "127.0.0.1:18971"}, &mockVerifyAPI{}, nil)

	_, err := c.Collect(context.Background(), nil, Callbacks{})
	require.Error(t, err)

	_, err = c.Collect(context.Background(), &models.PaymentOrder{}, Callbacks{})
	require.Error(t, err)
	assert.False(t, c.Loading())
}

// postCallback drives the loopback listener the way the gateway's
// redirect would, retrying until the server is up and the payment
// attempt is registered.
func postCallback(t *testing.T, addr, orderID string, form url.Values) {
	t.Helper()
	target := fmt.Sprintf("http://%s/payment/callback/%s", addr, orderID)
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Post(target, "application/x-www-form-urlencoded",
			strings.NewReader(form.Encode()))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("callback for %s never landed at %s: %v", orderID, addr, err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestCollectSuccess(t *testing.T) {
	verify := &mockVerifyAPI{}
	addr := "127.0.0.1:18972"
	c := NewCheckout(Config{KeyID: "rzp_test_key", CallbackAddr: addr}, verify, nil)

	done := make(chan Result, 1)
	go func() {
		result, err := c.Collect(context.Background(), testOrder(), Callbacks{})
		if err != nil {
			t.Errorf("Collect returned error: %v", err)
		}
		done <- result
	}()

	postCallback(t, addr, "order_abc", url.Values{
		"razorpay_order_id":   {"order_abc"},
		"razorpay_payment_id": {"pay_xyz"},
		"razorpay_signature":  {"sig"},
	})

	select {
	case result := <-done:
		assert.Equal(t, StatusSuccess, result.Status)
		assert.Equal(t, "pay_xyz", result.Payment.PaymentID)
	case <-time.After(5 * time.Second):
		t.Fatal("Collect never resolved")
	}

	// The default handler verifies and clears the loading flag itself.
	assert.Equal(t, "pay_xyz", verify.req.RazorpayPaymentID)
	assert.False(t, c.Loading())
}

func TestCollectFailure(t *testing.T) {
	addr := "127.0.0.1:18973"
	c := NewCheckout(Config{CallbackAddr: addr}, &mockVerifyAPI{}, nil)

	var gotReason string
	done := make(chan Result, 1)
	go func() {
		result, _ := c.Collect(context.Background(), testOrder(), Callbacks{
			OnFailure: func(reason string) { gotReason = reason },
		})
		done <- result
	}()

	postCallback(t, addr, "order_abc", url.Values{
		"error[description]": {"card declined"},
	})

	select {
	case result := <-done:
		assert.Equal(t, StatusFailure, result.Status)
		assert.Equal(t, "card declined", result.Reason)
	case <-time.After(5 * time.Second):
		t.Fatal("Collect never resolved")
	}

	assert.Equal(t, "card declined", gotReason)
	assert.False(t, c.Loading())
}

func TestCollectDismiss(t *testing.T) {
	addr := "127.0.0.1:18974"
	c := NewCheckout(Config{CallbackAddr: addr}, &mockVerifyAPI{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	dismissed := false

	done := make(chan Result, 1)
	go func() {
		result, _ := c.Collect(ctx, testOrder(), Callbacks{
			OnDismiss: func() { dismissed = true },
		})
		done <- result
	}()

	time.Sleep(50 * time.Millisecond)
	require.True(t, c.Loading(), "sheet is open until dismissed")
	cancel()

	select {
	case result := <-done:
		assert.Equal(t, StatusCancelled, result.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("Collect never resolved after dismiss")
	}

	assert.True(t, dismissed)
	assert.False(t, c.Loading())
}

func TestCollectCustomHandlerOwnsLoading(t *testing.T) {
	addr := "127.0.0.1:18975"
	c := NewCheckout(Config{CallbackAddr: addr}, &mockVerifyAPI{}, nil)

	handled := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := c.Collect(context.Background(), testOrder(), Callbacks{
			Handler: func(ctx context.Context, p SuccessPayload) error {
				close(handled)
				return nil
			},
		})
		done <- err
	}()

	postCallback(t, addr, "order_abc", url.Values{
		"razorpay_order_id":   {"order_abc"},
		"razorpay_payment_id": {"pay_xyz"},
		"razorpay_signature":  {"sig"},
	})

	<-handled
	require.NoError(t, <-done)

	// The custom handler did not clear the flag, so it stays set until
	// the caller does.
	assert.True(t, c.Loading())
	c.ClearLoading()
	assert.False(t, c.Loading())
}

func TestCollectCustomHandlerErrorPropagates(t *testing.T) {
	addr := "127.0.0.1:18976"
	c := NewCheckout(Config{CallbackAddr: addr}, &mockVerifyAPI{}, nil)

	wantErr := errors.New("verification failed")
	done := make(chan error, 1)
	go func() {
		_, err := c.Collect(context.Background(), testOrder(), Callbacks{
			Handler: func(ctx context.Context, p SuccessPayload) error { return wantErr },
		})
		done <- err
	}()

	postCallback(t, addr, "order_abc", url.Values{
		"razorpay_order_id":   {"order_abc"},
		"razorpay_payment_id": {"pay_xyz"},
		"razorpay_signature":  {"sig"},
	})

	require.ErrorIs(t, <-done, wantErr)
}

func TestCollectFailsFastWhenAddrTaken(t *testing.T) {
	addr := "127.0.0.1:18978"
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err, "could not occupy test port")
	defer ln.Close()

	c := NewCheckout(Config{CallbackAddr: addr}, &mockVerifyAPI{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Collect(context.Background(), testOrder(), Callbacks{})
		done <- err
	}()

	// An unusable callback address must surface immediately, not leave
	// the payment attempt waiting for a callback that can never arrive.
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to start payment callback listener")
	case <-time.After(3 * time.Second):
		t.Fatal("Collect hung on an occupied callback address")
	}
	assert.False(t, c.Loading())
}

func TestCallbackForUnknownOrder(t *testing.T) {
	addr := "127.0.0.1:18977"
	c := NewCheckout(Config{CallbackAddr: addr}, &mockVerifyAPI{}, nil)
	require.NoError(t, c.server.start())

	target := fmt.Sprintf("http://%s/payment/callback/%s", addr, "order_unknown")
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Post(target, "application/x-www-form-urlencoded",
			strings.NewReader("razorpay_payment_id=pay_x"))
		if err == nil {
			defer resp.Body.Close()
			assert.Equal(t, http.StatusGone, resp.StatusCode)
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("callback server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
