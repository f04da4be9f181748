package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTierNotFound       = errors.New("ticket tier not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInsufficientStock  = errors.New("not enough tickets available")
	ErrCheckoutInFlight   = errors.New("a checkout is already in progress")
	ErrPaymentCancelled   = errors.New("payment cancelled by user")
	ErrVerificationFailed = errors.New("payment verification failed")
)
