package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/accountd/accountd/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskActivationNotice carries a freshly issued activation code.
	TaskActivationNotice = "users:activation_notice"
)

// ActivationNoticePayload describes a pending registration awaiting activation.
type ActivationNoticePayload struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhoneNumber    int64  `json:"phone_number"`
	ActivationCode int    `json:"activation_code"`
}

// NewActivationNoticeTask constructs an Asynq task.
func NewActivationNoticeTask(payload ActivationNoticePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivationNotice, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// ActivationNoticeJob consumes TaskActivationNotice tasks.
type ActivationNoticeJob struct {
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewActivationNoticeJob constructs the job handler. Metrics may be nil.
func NewActivationNoticeJob(logger *slog.Logger, metrics *jobmetrics.Metrics) *ActivationNoticeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivationNoticeJob{logger: logger, metrics: metrics}
}

// Handle logs the activation code. Delivery over email or SMS is not wired.
func (j *ActivationNoticeJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskActivationNotice)
	var payload ActivationNoticePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("decode activation notice: %v: %w", err, asynq.SkipRetry))
	}
	j.logger.InfoContext(ctx, "activation code issued",
		slog.String("email", payload.Email),
		slog.Int64("phone_number", payload.PhoneNumber),
		slog.Int("activation_code", payload.ActivationCode),
	)
	return tracker.End(nil)
}
