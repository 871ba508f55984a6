package users

import (
	"context"
	"log/slog"
)

// LogNotifier writes activation codes to the log for diagnostics.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyActivation logs the code next to the pending email.
func (n *LogNotifier) NotifyActivation(ctx context.Context, pending PendingRegistration, code int) error {
	n.logger.InfoContext(ctx, "activation code issued",
		slog.String("email", pending.Email),
		slog.Int("activation_code", code),
	)
	return nil
}

var _ ActivationNotifier = (*LogNotifier)(nil)
