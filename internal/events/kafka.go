// Package events emits run-outcome records to Kafka for downstream
// analytics. Emission is best-effort: a broker failure never fails a run.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// RunEvent is one run-outcome record.
type RunEvent struct {
	RunID       string    `json:"run_id"`
	Outcome     string    `json:"outcome"`
	ContentType string    `json:"content_type,omitempty"`
	PostID      string    `json:"post_id,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	At          time.Time `json:"at"`
}

// Emitter writes run events to a Kafka topic. A nil Emitter is valid and
// does nothing.
type Emitter struct {
	writer *kafka.Writer
}

// NewEmitter creates a Kafka emitter, or nil when disabled. brokers is a
// comma-separated list.
func NewEmitter(enabled bool, brokers, topic string) *Emitter {
	if !enabled || brokers == "" || topic == "" {
		return nil
	}
	return &Emitter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Emit writes one event, keyed by run ID.
func (e *Emitter) Emit(ctx context.Context, ev RunEvent) {
	if e == nil {
		return
	}
	value, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("Run event marshal failed", "error", err)
		return
	}
	err = e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.RunID),
		Value: value,
	})
	if err != nil {
		slog.Warn("Run event emit failed", "error", err)
	}
}

// Close flushes and closes the underlying writer.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	return e.writer.Close()
}
