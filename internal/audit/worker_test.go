package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Centralink87/centralinkxyz/internal/kafka"
)

func testEvent() Event {
	return Event{
		Kind:       "transaction",
		RecordID:   11,
		Action:     "closed",
		ActorID:    "7f9c24e8-3b12-4d11-8c5a-0a1b2c3d4e5f",
		OccurredAt: time.Now().UTC(),
	}
}

func waitForLog(t *testing.T, logs *observer.ObservedLogs, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if logs.FilterMessage(msg).Len() > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("log %q never appeared", msg)
}

func TestWorkerProcessesWithoutBroker(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	validator, err := kafka.NewValidator()
	require.NoError(t, err)

	w := NewWorker(zap.New(core), validator, nil, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.Enqueue(testEvent())
	waitForLog(t, logs, "audit event (no broker configured)")
}

func TestWorkerRejectsMalformedEvent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	validator, err := kafka.NewValidator()
	require.NoError(t, err)

	w := NewWorker(zap.New(core), validator, nil, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	bad := testEvent()
	bad.Kind = "invoice"
	w.Enqueue(bad)
	waitForLog(t, logs, "audit event rejected by schema")
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	validator, err := kafka.NewValidator()
	require.NoError(t, err)

	// No Run loop draining, so the second event overflows.
	w := NewWorker(zap.New(core), validator, nil, 1)
	w.Enqueue(testEvent())
	w.Enqueue(testEvent())

	assert.Equal(t, 1, logs.FilterMessage("audit queue full; event dropped").Len())
}
