package services

import "context"

// Hasher produces and checks one-way password digests.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// Notifier delivers OTP messages to a phone. Failures are reported to the
// caller and never retried here.
type Notifier interface {
	SendChallenge(ctx context.Context, phone, code string) error
	SendConfirmation(ctx context.Context, phone string) error
}
