// Package notifier delivers OTP messages. LogNotifier is for development;
// SNSNotifier sends real SMS through AWS SNS.
package notifier

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatandpay/internal/logging"
	"github.com/dmitrijs2005/chatandpay/internal/server/config"
)

// Notifier matches services.Notifier.
type Notifier interface {
	SendChallenge(ctx context.Context, phone, code string) error
	SendConfirmation(ctx context.Context, phone string) error
}

// New builds the backend selected by cfg.NotifierBackend.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (Notifier, error) {
	switch cfg.NotifierBackend {
	case config.NotifierLog:
		return NewLogNotifier(log), nil
	case config.NotifierSNS:
		return NewSNSNotifier(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown notifier backend %q", cfg.NotifierBackend)
	}
}

// MaskPhone hides all but the last four characters of phone.
func MaskPhone(phone string) string {
	const visible = 4
	if len(phone) <= visible {
		return "****"
	}
	return "****" + phone[len(phone)-visible:]
}
