package gojob

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goliatone/go-custody/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	JobIDProjectEvent = "custody.events.project"

	projectEventScript = "custody.events.project"
	dedupPolicyDrop    = "drop"
)

// RetryPolicy bounds how often a failed projection is requeued.
type RetryPolicy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NackOptions derives the nack for a failed attempt: linear backoff capped
// at MaxDelay, then dead letter or drop once MaxAttempts is reached.
func (p RetryPolicy) NackOptions(attempt int, reason string) queue.NackOptions {
	out := queue.NackOptions{
		Requeue: true,
		Reason:  strings.TrimSpace(reason),
	}
	if attempt < 1 {
		attempt = 1
	}
	if p.BaseDelay > 0 {
		out.Delay = time.Duration(attempt) * p.BaseDelay
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		out.DeadLetter = p.DeadLetterOnMax
	}
	return out
}

// EventIdempotencyKey names the job that projects the event with sequence.
func EventIdempotencyKey(sequence uint64) string {
	return "custody.event." + strconv.FormatUint(sequence, 10)
}

// ToExecutionMessage encodes evt as a projection job. Every parameter is a
// string so the message survives any queue serializer.
func ToExecutionMessage(evt core.Event) *job.ExecutionMessage {
	params := map[string]any{
		"sequence":      strconv.FormatUint(evt.Sequence, 10),
		"type":          string(evt.Type),
		"contract":      evt.Contract.Hex(),
		"from":          evt.From.Hex(),
		"to":            evt.To.Hex(),
		"operator":      evt.Operator.Hex(),
		"amount":        core.FormatAmount(evt.Amount),
		"collateral_id": evt.CollateralID.String(),
		"role":          evt.Role.Hex(),
		"approved":      strconv.FormatBool(evt.Approved),
		"occurred_at":   evt.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	return &job.ExecutionMessage{
		JobID:          JobIDProjectEvent,
		ScriptPath:     projectEventScript,
		Parameters:     params,
		IdempotencyKey: EventIdempotencyKey(evt.Sequence),
		DedupPolicy:    job.DeduplicationPolicy(dedupPolicyDrop),
	}
}

// FromExecutionMessage decodes a projection job back into its event.
func FromExecutionMessage(msg *job.ExecutionMessage) (core.Event, error) {
	if msg == nil {
		return core.Event{}, fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDProjectEvent {
		return core.Event{}, fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	params := msg.Parameters
	sequence, err := strconv.ParseUint(param(params, "sequence"), 10, 64)
	if err != nil {
		return core.Event{}, fmt.Errorf("gojob: invalid sequence: %w", err)
	}
	amount, err := core.ParseAmount(param(params, "amount"))
	if err != nil {
		return core.Event{}, err
	}
	collateralID, err := strconv.ParseUint(param(params, "collateral_id"), 10, 64)
	if err != nil {
		return core.Event{}, fmt.Errorf("gojob: invalid collateral id: %w", err)
	}
	approved, err := strconv.ParseBool(param(params, "approved"))
	if err != nil {
		return core.Event{}, fmt.Errorf("gojob: invalid approved flag: %w", err)
	}
	occurredAt, err := time.Parse(time.RFC3339Nano, param(params, "occurred_at"))
	if err != nil {
		return core.Event{}, fmt.Errorf("gojob: invalid occurred_at: %w", err)
	}
	evt := core.Event{
		Sequence:     sequence,
		Type:         core.EventType(param(params, "type")),
		Amount:       amount,
		CollateralID: core.CollateralID(collateralID),
		Role:         common.HexToHash(param(params, "role")),
		Approved:     approved,
		OccurredAt:   occurredAt.UTC(),
	}
	for field, target := range map[string]*core.Address{
		"contract": &evt.Contract,
		"from":     &evt.From,
		"to":       &evt.To,
		"operator": &evt.Operator,
	} {
		value := param(params, field)
		if !common.IsHexAddress(value) {
			return core.Event{}, fmt.Errorf("gojob: invalid %s address %q", field, value)
		}
		*target = common.HexToAddress(value)
	}
	return evt, nil
}

// EventJobSink turns committed events into projection jobs so a worker can
// apply them outside the executor's dispatch path.
type EventJobSink struct {
	enqueuer queue.Enqueuer
}

func NewEventJobSink(enqueuer queue.Enqueuer) *EventJobSink {
	return &EventJobSink{enqueuer: enqueuer}
}

func (s *EventJobSink) HandleEvents(ctx context.Context, events []core.Event) error {
	if s == nil || s.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	for _, evt := range events {
		if err := s.enqueuer.Enqueue(ctx, ToExecutionMessage(evt)); err != nil {
			return fmt.Errorf("gojob: enqueue event %d: %w", evt.Sequence, err)
		}
	}
	return nil
}

// ProjectionHandler applies projection jobs to a sink, acking on success and
// nacking through the retry policy on failure. Attempts are counted per
// idempotency key for the lifetime of the handler.
type ProjectionHandler struct {
	sink   core.EventSink
	policy RetryPolicy
	logger glog.Logger

	mu       sync.Mutex
	attempts map[string]int
}

func NewProjectionHandler(sink core.EventSink, policy RetryPolicy, logger glog.Logger) *ProjectionHandler {
	if logger == nil {
		logger = glog.Nop()
	}
	return &ProjectionHandler{
		sink:     sink,
		policy:   policy,
		logger:   logger,
		attempts: map[string]int{},
	}
}

func (h *ProjectionHandler) Handle(ctx context.Context, delivery queue.Delivery) error {
	if h == nil || h.sink == nil {
		return fmt.Errorf("gojob: projection handler is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}
	msg := delivery.Message()
	evt, err := FromExecutionMessage(msg)
	if err != nil {
		// a message that cannot be decoded will never succeed
		return delivery.Nack(ctx, queue.NackOptions{DeadLetter: true, Reason: err.Error()})
	}

	key := EventIdempotencyKey(evt.Sequence)
	if err := h.sink.HandleEvents(ctx, []core.Event{evt}); err != nil {
		attempt := h.recordAttempt(key)
		opts := h.policy.NackOptions(attempt, err.Error())
		h.logger.Warn("custody event projection failed",
			"sequence", evt.Sequence,
			"type", string(evt.Type),
			"attempt", attempt,
			"requeue", opts.Requeue,
			"dead_letter", opts.DeadLetter,
			"error", err,
		)
		return delivery.Nack(ctx, opts)
	}
	h.clearAttempts(key)
	return delivery.Ack(ctx)
}

// Next dequeues and handles a single delivery.
func (h *ProjectionHandler) Next(ctx context.Context, dequeuer queue.Dequeuer) error {
	if dequeuer == nil {
		return fmt.Errorf("gojob: dequeuer is required")
	}
	delivery, err := dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	return h.Handle(ctx, delivery)
}

func (h *ProjectionHandler) recordAttempt(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts[key]++
	return h.attempts[key]
}

func (h *ProjectionHandler) clearAttempts(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.attempts, key)
}

// LoggingWorkerHook reports go-job worker lifecycle events for projection
// jobs through glog.
type LoggingWorkerHook struct {
	logger glog.Logger
}

func NewLoggingWorkerHook(logger glog.Logger) *LoggingWorkerHook {
	if logger == nil {
		logger = glog.Nop()
	}
	return &LoggingWorkerHook{logger: logger}
}

func (h *LoggingWorkerHook) OnStart(ctx context.Context, event worker.Event) {
	h.logger.WithContext(ctx).Debug("custody job started", workerFields(event)...)
}

func (h *LoggingWorkerHook) OnSuccess(ctx context.Context, event worker.Event) {
	h.logger.WithContext(ctx).Info("custody job succeeded", workerFields(event)...)
}

func (h *LoggingWorkerHook) OnFailure(ctx context.Context, event worker.Event) {
	h.logger.WithContext(ctx).Error("custody job failed", workerFields(event)...)
}

func (h *LoggingWorkerHook) OnRetry(ctx context.Context, event worker.Event) {
	h.logger.WithContext(ctx).Warn("custody job retrying", workerFields(event)...)
}

func workerFields(event worker.Event) []any {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	fields := []any{
		"attempt", event.Attempt,
		"delay", event.Delay,
		"duration", event.Duration,
	}
	if message != nil {
		fields = append(fields, "job_id", message.JobID, "idempotency_key", message.IdempotencyKey)
	}
	if !event.StartedAt.IsZero() {
		fields = append(fields, "started_at", event.StartedAt.UTC())
	}
	if event.Err != nil {
		fields = append(fields, "error", event.Err)
	}
	return fields
}

func param(params map[string]any, key string) string {
	value, ok := params[key]
	if !ok || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

var (
	_ core.EventSink = (*EventJobSink)(nil)
	_ worker.Hook    = (*LoggingWorkerHook)(nil)
)
