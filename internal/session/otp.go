package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lokonnect/internal/api"
	"lokonnect/internal/models"
)

// ResendCooldown is how long resend requests are blocked after an OTP
// is sent.
const ResendCooldown = 120 * time.Second

// otpLength is the number of digits in a one-time password.
const otpLength = 6

// FlowStep identifies where the user is in the phone login flow.
type FlowStep string

const (
	StepPhone FlowStep = "phone"
	StepOTP   FlowStep = "otp"
)

// ErrBusy is returned when a submit is already in flight; the UI
// disables the control while this holds.
var ErrBusy = errors.New("a request is already in progress")

// ErrCooldown is returned when resend is requested before the countdown
// reaches zero.
var ErrCooldown = errors.New("resend not available yet")

// AuthAPI is the slice of the API client the OTP flow needs.
type AuthAPI interface {
	Login(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*api.AuthResult, error)
	ResendOTP(ctx context.Context, phone string) error
}

// Flow is the two-step phone login state machine:
// phone -> otp -> authenticated.
type Flow struct {
	mu    sync.Mutex
	auth  AuthAPI
	store *Store
	now   func() time.Time

	step     FlowStep
	phone    string
	digits   string
	busy     bool
	resendAt time.Time
}

// NewFlow creates a login flow bound to the session store.
func NewFlow(auth AuthAPI, store *Store) *Flow {
	return &Flow{
		auth:  auth,
		store: store,
		now:   time.Now,
		step:  StepPhone,
	}
}

// Step returns the current flow step.
func (f *Flow) Step() FlowStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Busy reports whether a submit is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Digits returns the OTP digits entered so far.
func (f *Flow) Digits() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.digits
}

// EnterDigit appends one digit to the OTP entry. Once six digits are
// present further input is a no-op.
func (f *Flow) EnterDigit(d rune) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepOTP || d < '0' || d > '9' {
		return
	}
	if len(f.digits) >= otpLength {
		return
	}
	f.digits += string(d)
}

// ClearDigit removes the last entered digit.
func (f *Flow) ClearDigit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.digits) > 0 {
		f.digits = f.digits[:len(f.digits)-1]
	}
}

// SubmitPhone requests an OTP for the phone number and advances to the
// OTP step, starting the resend cooldown.
func (f *Flow) SubmitPhone(ctx context.Context, phone string) error {
	if err := models.ValidatePhone(phone); err != nil {
		return err
	}
	if err := f.acquire(); err != nil {
		return err
	}
	defer f.release()

	if err := f.auth.Login(ctx, phone); err != nil {
		return fmt.Errorf("failed to request OTP: %w", err)
	}

	f.mu.Lock()
	f.step = StepOTP
	f.phone = phone
	f.digits = ""
	f.resendAt = f.now().Add(ResendCooldown)
	f.mu.Unlock()
	return nil
}

// SubmitOTP verifies the entered code and, on success, logs the user in.
func (f *Flow) SubmitOTP(ctx context.Context) error {
	f.mu.Lock()
	if f.step != StepOTP {
		f.mu.Unlock()
		return errors.New("no OTP has been requested")
	}
	code := f.digits
	phone := f.phone
	f.mu.Unlock()

	if err := models.ValidateOTP(code); err != nil {
		return err
	}
	if err := f.acquire(); err != nil {
		return err
	}
	defer f.release()

	result, err := f.auth.VerifyOTP(ctx, phone, code)
	if err != nil {
		return fmt.Errorf("OTP verification failed: %w", err)
	}
	if result.User.Phone == "" {
		result.User.Phone = phone
	}
	return f.store.Login(result.Token, result.User)
}

// Resend requests a fresh OTP. Rejected with ErrCooldown while the
// countdown is above zero; permitted exactly when it reaches zero.
func (f *Flow) Resend(ctx context.Context) error {
	f.mu.Lock()
	if f.step != StepOTP {
		f.mu.Unlock()
		return errors.New("no OTP has been requested")
	}
	if f.now().Before(f.resendAt) {
		f.mu.Unlock()
		return ErrCooldown
	}
	phone := f.phone
	f.mu.Unlock()

	if err := f.acquire(); err != nil {
		return err
	}
	defer f.release()

	if err := f.auth.ResendOTP(ctx, phone); err != nil {
		return fmt.Errorf("failed to resend OTP: %w", err)
	}

	f.mu.Lock()
	f.resendAt = f.now().Add(ResendCooldown)
	f.digits = ""
	f.mu.Unlock()
	return nil
}

// CooldownRemaining returns how long until resend becomes available.
func (f *Flow) CooldownRemaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	remaining := f.resendAt.Sub(f.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ChangeNumber returns to the phone step, clearing entered digits.
func (f *Flow) ChangeNumber() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepPhone
	f.phone = ""
	f.digits = ""
}

func (f *Flow) acquire() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrBusy
	}
	f.busy = true
	return nil
}

func (f *Flow) release() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}
