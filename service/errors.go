package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidCode         = errors.New("invalid or expired verification code")
	ErrInsufficientBalance = errors.New("insufficient VP balance")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrAlreadyVerified     = errors.New("already verified")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrGrowIDTaken         = errors.New("growid already verified by another account")
)

// storeError tags a repository failure so callers can match ErrStoreUnavailable
// while the driver error stays reachable through errors.Is/As.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// AlreadyVerifiedError carries the GrowID the caller is already bound to
type AlreadyVerifiedError struct {
	GrowID string
}

func (e *AlreadyVerifiedError) Error() string {
	return fmt.Sprintf("already verified with %s", e.GrowID)
}

func (e *AlreadyVerifiedError) Unwrap() error {
	return ErrAlreadyVerified
}
