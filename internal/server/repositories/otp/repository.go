// Package otp declares the one-time-password challenge store and its
// PostgreSQL implementation. There is at most one challenge per phone.
package otp

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chatandpay/internal/server/models"
)

// Repository stores OTP challenges keyed by phone.
type Repository interface {
	// FindByPhoneForUpdate returns the challenge for phone or
	// common.ErrorNotFound, locking the row until the surrounding
	// transaction ends.
	FindByPhoneForUpdate(ctx context.Context, phone string) (*models.OtpChallenge, error)

	// Upsert replaces any previous challenge for the phone, resetting
	// attempts and the consumed marker.
	Upsert(ctx context.Context, challenge *models.OtpChallenge) error

	// IncrementAttempts records a failed confirmation and returns the new count.
	IncrementAttempts(ctx context.Context, phone string) (int, error)

	// Close marks the challenge consumed at the given time.
	Close(ctx context.Context, phone string, at time.Time) error

	// DeleteByPhone removes the challenge. Deleting a missing challenge is not an error.
	DeleteByPhone(ctx context.Context, phone string) error
}
