package notifier

import (
	"context"

	"github.com/dmitrijs2005/chatandpay/internal/logging"
)

// LogNotifier writes messages to the log instead of sending them.
// The code itself is only logged at debug level.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("module", "notifier", "backend", "log")}
}

func (n *LogNotifier) SendChallenge(ctx context.Context, phone, code string) error {
	n.log.Info(ctx, "otp challenge", "phone", MaskPhone(phone))
	n.log.Debug(ctx, "otp challenge code", "phone", MaskPhone(phone), "code", code)
	return nil
}

func (n *LogNotifier) SendConfirmation(ctx context.Context, phone string) error {
	n.log.Info(ctx, "otp confirmation", "phone", MaskPhone(phone))
	return nil
}
