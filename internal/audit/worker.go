package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Centralink87/centralinkxyz/internal/kafka"
	"github.com/Centralink87/centralinkxyz/telemetry"
)

// Event describes one state change on a ledger record. The field names match
// the embedded JSON schema the worker validates against before publishing.
type Event struct {
	Kind       string    `json:"kind"` // "request" | "transaction"
	RecordID   int64     `json:"record_id"`
	Action     string    `json:"action"` // created | updated | deleted | validated | rejected | closed
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Worker drains audit events off the hot path. Handlers enqueue without
// blocking; the worker validates each event against the schema and publishes
// it to Kafka. With no producer configured events are only logged.
type Worker struct {
	log       *zap.Logger
	validator *kafka.Validator
	producer  *kafka.Producer
	ch        chan Event
}

func NewWorker(log *zap.Logger, validator *kafka.Validator, producer *kafka.Producer, queueSize int) *Worker {
	return &Worker{
		log:       log,
		validator: validator,
		producer:  producer,
		ch:        make(chan Event, queueSize),
	}
}

func (w *Worker) Enqueue(e Event) {
	select {
	case w.ch <- e:
		telemetry.SetAuditQueueCurrent(len(w.ch))
	default:
		// queue full, drop rather than stall the request
		telemetry.IncAuditFailed("dropped")
		w.log.Warn("audit queue full; event dropped",
			zap.String("kind", e.Kind),
			zap.Int64("record_id", e.RecordID),
			zap.String("action", e.Action),
		)
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.log.Info("audit worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("audit worker stopped")
			return
		case e := <-w.ch:
			telemetry.SetAuditQueueCurrent(len(w.ch))
			w.process(ctx, e)
		}
	}
}

func (w *Worker) process(ctx context.Context, e Event) {
	if err := w.validator.Validate(e); err != nil {
		telemetry.IncAuditFailed("schema")
		w.log.Error("audit event rejected by schema", zap.Error(err),
			zap.String("kind", e.Kind),
			zap.Int64("record_id", e.RecordID),
		)
		return
	}

	if w.producer == nil {
		w.log.Debug("audit event (no broker configured)",
			zap.String("kind", e.Kind),
			zap.Int64("record_id", e.RecordID),
			zap.String("action", e.Action),
		)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	key := fmt.Sprintf("%s:%d", e.Kind, e.RecordID)
	if err := w.producer.Publish(pubCtx, key, e); err != nil {
		telemetry.IncAuditFailed("kafka")
		w.log.Error("failed to publish audit event", zap.Error(err), zap.String("key", key))
		return
	}
	telemetry.IncAuditPublished()
	w.log.Info("audit event published",
		zap.String("kind", e.Kind),
		zap.Int64("record_id", e.RecordID),
		zap.String("action", e.Action),
	)
}
