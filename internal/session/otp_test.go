package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokonnect/internal/api"
	"lokonnect/internal/models"
)

type mockAuthAPI struct {
	loginCalls  int
	loginErr    error
	resendCalls int
	resendErr   error
	verifyPhone string
	verifyCode  string
	verifyErr   error
	result      *api.AuthResult
}

func (m *mockAuthAPI) Login(ctx context.Context, phone string) error {
	m.loginCalls++
	return m.loginErr
}

func (m *mockAuthAPI) VerifyOTP(ctx context.Context, phone, code string) (*api.AuthResult, error) {
	m.verifyPhone = phone
	m.verifyCode = code
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	if m.result != nil {
		return m.result, nil
	}
	return &api.AuthResult{Token: "tok_otp", User: models.User{Phone: phone}}, nil
}

func (m *mockAuthAPI) ResendOTP(ctx context.Context, phone string) error {
	m.resendCalls++
	return m.resendErr
}

func newTestFlow(auth *mockAuthAPI) (*Flow, *time.Time) {
	store := NewStore(newMemStorage(), nil)
	f := NewFlow(auth, store)
	now := time.Date(2025, 2, 15, 12, 0, 0, 0, time.Local)
	f.now = func() time.Time { return now }
	return f, &now
}

func TestFlowPhoneToOTP(t *testing.T) {
	auth := &mockAuthAPI{}
	f, _ := newTestFlow(auth)

	require.Equal(t, StepPhone, f.Step())
	require.NoError(t, f.SubmitPhone(context.Background(), "9876543210"))

	assert.Equal(t, StepOTP, f.Step())
	assert.Equal(t, 1, auth.loginCalls)
	assert.Equal(t, ResendCooldown, f.CooldownRemaining())
}

func TestFlowRejectsInvalidPhone(t *testing.T) {
	auth := &mockAuthAPI{}
	f, _ := newTestFlow(auth)

	require.Error(t, f.SubmitPhone(context.Background(), "12345"))
	assert.Equal(t, 0, auth.loginCalls)
	assert.Equal(t, StepPhone, f.Step())
}

func TestFlowDigitEntryCapsAtSix(t *testing.T) {
	f, _ := newTestFlow(&mockAuthAPI{})
	require.NoError(t, f.SubmitPhone(context.Background(), "9876543210"))

	for _, d := range "1234567890" {
		f.EnterDigit(d)
	}
	assert.Equal(t, "123456", f.Digits(), "input past six digits is ignored")

	f.ClearDigit()
	assert.Equal(t, "12345", f.Digits())

	f.EnterDigit('x')
	assert.Equal(t, "12345", f.Digits(), "non-digits are ignored")
}

func TestFlowSubmitOTPLogsIn(t *testing.T) {
	auth := &mockAuthAPI{}
	f, _ := newTestFlow(auth)
	require.NoError(t, f.SubmitPhone(context.Background(), "9876543210"))

	for _, d := range "123456" {
		f.EnterDigit(d)
	}
	require.NoError(t, f.SubmitOTP(context.Background()))

	assert.Equal(t, "9876543210", auth.verifyPhone)
	assert.Equal(t, "123456", auth.verifyCode)
	assert.True(t, f.store.IsAuthenticated())
}

func TestFlowSubmitOTPRequiresSixDigits(t *testing.T) {
	f, _ := newTestFlow(&mockAuthAPI{})
	require.NoError(t, f.SubmitPhone(context.Background(), "9876543210"))

	f.EnterDigit('1')
	require.Error(t, f.SubmitOTP(context.Background()))
	assert.False(t, f.store.IsAuthenticated())
}

func TestFlowResendCooldown(t *testing.T) {
	auth := &mockAuthAPI{}
	f, now := newTestFlow(auth)
	require.NoError(t, f.SubmitPhone(context.Background(), "9876543210"))

	// Rejected while the countdown is above zero.
	require.ErrorIs(t, f.Resend(context.Background()), ErrCooldown)

	*now = now.Add(ResendCooldown - time.Second)
	require.ErrorIs(t, f.Resend(context.Background()), ErrCooldown)
	assert.Equal(t, time.Second, f.CooldownRemaining())

	// Permitted exactly when it reaches zero.
	*now = now.Add(time.Second)
	require.NoError(t, f.Resend(context.Background()))
	assert.Equal(t, 1, auth.resendCalls)

	// A successful resend restarts the countdown.
	require.ErrorIs(t, f.Resend(context.Background()), ErrCooldown)
	assert.Equal(t, ResendCooldown, f.CooldownRemaining())
}

func TestFlowResendClearsDigits(t *testing.T) {
	f, now := newTestFlow(&mockAuthAPI{})
	require.NoError(t, f.SubmitPhone(context.Background(), "9876543210"))
	f.EnterDigit('1')
	f.EnterDigit('2')

	*now = now.Add(ResendCooldown)
	require.NoError(t, f.Resend(context.Background()))
	assert.Empty(t, f.Digits())
}

func TestFlowChangeNumber(t *testing.T) {
	f, _ := newTestFlow(&mockAuthAPI{})
	require.NoError(t, f.SubmitPhone(context.Background(), "9876543210"))
	f.EnterDigit('1')

	f.ChangeNumber()
	assert.Equal(t, StepPhone, f.Step())
	assert.Empty(t, f.Digits())
}

func TestFlowVerifyFailureStaysOnOTP(t *testing.T) {
	auth := &mockAuthAPI{verifyErr: errors.New("invalid code")}
	f, _ := newTestFlow(auth)
	require.NoError(t, f.SubmitPhone(context.Background(), "9876543210"))

	for _, d := range "000000" {
		f.EnterDigit(d)
	}
	require.Error(t, f.SubmitOTP(context.Background()))
	assert.Equal(t, StepOTP, f.Step())
	assert.False(t, f.store.IsAuthenticated())
	assert.False(t, f.Busy(), "busy flag must be released after failure")
}
