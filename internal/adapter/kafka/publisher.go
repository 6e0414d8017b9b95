// Package kafka publishes report-generated events for downstream consumers.
// The publisher is feature-flagged; the service runs without it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/prygl-status-service/internal/config"
	"github.com/couchcryptid/prygl-status-service/internal/domain"
	"github.com/couchcryptid/prygl-status-service/internal/observability"
)

// Publisher produces report events to a Kafka topic.
// It implements the status handler's ReportPublisher.
type Publisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// PublishReport serializes and publishes one freshly generated report. Keys
// are the generation date so a day's regenerations land in one partition.
func (p *Publisher) PublishReport(ctx context.Context, report domain.IceStatusReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		p.metrics.ReportsPublished.WithLabelValues("error").Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.ReportsPublished.WithLabelValues("error").Inc()
		return err
	}
	p.metrics.ReportsPublished.WithLabelValues("ok").Inc()
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a report into a Kafka message.
func serializeToMessage(report domain.IceStatusReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.GeneratedAt.UTC().Format("2006-01-02")),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "verdict", Value: []byte(report.CanSkate)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
