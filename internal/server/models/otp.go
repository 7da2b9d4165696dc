package models

import "time"

// OtpChallenge is the single active verification record for a phone.
// A new send overwrites it; a successful confirmation closes it.
type OtpChallenge struct {
	Phone      string
	Code       string
	Attempts   int
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Open reports whether the challenge can still be confirmed at now.
func (c *OtpChallenge) Open(now time.Time) bool {
	return c.ConsumedAt == nil && now.Before(c.ExpiresAt)
}
