package jobs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/accountd/accountd/internal/jobs"
	"github.com/accountd/accountd/internal/users"
	"github.com/accountd/accountd/jobs"
)

type fakeEnqueuer struct {
	payloads []jobs.ActivationNoticePayload
	err      error
}

func (f *fakeEnqueuer) EnqueueActivationNotice(ctx context.Context, payload jobs.ActivationNoticePayload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.payloads = append(f.payloads, payload)
	return "task-1", nil
}

func TestQueueNotifierEnqueuesPayload(t *testing.T) {
	enq := &fakeEnqueuer{}
	notifier := jobs.NewQueueNotifier(enq, nil)

	pending := users.PendingRegistration{Name: "Ada", Email: "ada@example.com", Password: "$2a$hash", PhoneNumber: 12015550123}
	require.NoError(t, notifier.NotifyActivation(context.Background(), pending, 123456))

	require.Len(t, enq.payloads, 1)
	assert.Equal(t, jobs.ActivationNoticePayload{
		Name:           "Ada",
		Email:          "ada@example.com",
		PhoneNumber:    12015550123,
		ActivationCode: 123456,
	}, enq.payloads[0])
}

func TestQueueNotifierPropagatesError(t *testing.T) {
	boom := errors.New("redis down")
	notifier := jobs.NewQueueNotifier(&fakeEnqueuer{err: boom}, nil)

	err := notifier.NotifyActivation(context.Background(), users.PendingRegistration{Email: "a@b.com"}, 100001)
	assert.ErrorIs(t, err, boom)
}

func TestClientEnqueueActivationNotice(t *testing.T) {
	mr := miniredis.RunT(t)
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	id, err := client.EnqueueActivationNotice(context.Background(), jobs.ActivationNoticePayload{Email: "ada@example.com", ActivationCode: 654321})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	pending, err := rdb.LLen(context.Background(), "asynq:{default}:pending").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestActivationNoticeJobHandle(t *testing.T) {
	var buf bytes.Buffer
	job := jobs.NewActivationNoticeJob(slog.New(slog.NewJSONHandler(&buf, nil)), nil)

	task, err := jobs.NewActivationNoticeTask(jobs.ActivationNoticePayload{Email: "ada@example.com", ActivationCode: 100042})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "activation code issued", entry["msg"])
	assert.Equal(t, "ada@example.com", entry["email"])
	assert.Equal(t, float64(100042), entry["activation_code"])
}

func TestActivationNoticeJobSkipsMalformedPayload(t *testing.T) {
	job := jobs.NewActivationNoticeJob(nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(jobs.TaskActivationNotice, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestActivationNoticeJobRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := jobs.NewActivationNoticeJob(nil, jobmetrics.NewMetrics(reg))

	task, err := jobs.NewActivationNoticeTask(jobs.ActivationNoticePayload{Email: "ada@example.com", ActivationCode: 100042})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(jobs.TaskActivationNotice, []byte("{"))))

	count, err := testutil.GatherAndCount(reg, "accountd_jobs_total", "accountd_job_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func TestJobsHealth(t *testing.T) {
	tests := []struct {
		name       string
		handler    *jobs.Handler
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no inspector",
			handler:    jobs.NewHandler(nil, nil),
			wantStatus: http.StatusOK,
			wantBody:   `{"queue":"default","pending":0}`,
		},
		{
			name:       "queue info",
			handler:    jobs.NewHandler(fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3}}, nil),
			wantStatus: http.StatusOK,
			wantBody:   `{"queue":"default","pending":3}`,
		},
		{
			name:       "inspector failure",
			handler:    jobs.NewHandler(fakeInspector{err: errors.New("down")}, nil),
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Route("/jobs", tt.handler.MountRoutes)

			res := httptest.NewRecorder()
			r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

			assert.Equal(t, tt.wantStatus, res.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, res.Body.String())
			}
		})
	}
}
