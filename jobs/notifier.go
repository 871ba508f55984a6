package jobs

import (
	"context"
	"log/slog"

	"github.com/accountd/accountd/internal/users"
)

// enqueuer is the slice of Client used by QueueNotifier.
type enqueuer interface {
	EnqueueActivationNotice(ctx context.Context, payload ActivationNoticePayload) (string, error)
}

// QueueNotifier hands activation codes to the worker through Asynq.
type QueueNotifier struct {
	client enqueuer
	logger *slog.Logger
}

// NewQueueNotifier constructs a QueueNotifier.
func NewQueueNotifier(client enqueuer, logger *slog.Logger) *QueueNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueNotifier{client: client, logger: logger}
}

// NotifyActivation enqueues an activation notice task.
func (n *QueueNotifier) NotifyActivation(ctx context.Context, pending users.PendingRegistration, code int) error {
	id, err := n.client.EnqueueActivationNotice(ctx, ActivationNoticePayload{
		Name:           pending.Name,
		Email:          pending.Email,
		PhoneNumber:    pending.PhoneNumber,
		ActivationCode: code,
	})
	if err != nil {
		return err
	}
	n.logger.DebugContext(ctx, "activation notice enqueued", slog.String("task_id", id))
	return nil
}

var _ users.ActivationNotifier = (*QueueNotifier)(nil)
