package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/events"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// ScanPublisher delivers scan events to a Kafka topic. It implements
// scans.Sink so the recorder can swap it in for the Mongo sink.
type ScanPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewScanPublisher(brokers []string, topic string) *ScanPublisher {
	return &ScanPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (p *ScanPublisher) Deliver(ctx context.Context, event *scans.Event) error {
	payload := events.ScanRecorded{
		EventID:     event.ID,
		Code:        event.Code,
		OccurredAt:  event.At.UTC().Format(time.RFC3339Nano),
		IP:          event.IP,
		Country:     event.Country,
		CountryCode: event.CountryCode,
		City:        event.City,
		DeviceClass: string(event.DeviceClass),
		OS:          event.OS,
		Browser:     event.Browser,
		UserAgent:   event.UserAgent,
		Referrer:    event.Referrer,
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	tracer := otel.Tracer("scan-publisher")
	producerCtx, span := tracer.Start(
		ctx,
		"kafka.publish.scan_recorded",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.topic),
			attribute.String("messaging.operation", "publish"),
			attribute.String("messaging.message.id", event.ID),
			attribute.String("messaging.kafka.message_key", event.Code),
		),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(producerCtx, carrier)

	err = p.writer.WriteMessages(producerCtx, kafka.Message{
		Key:     []byte(event.Code),
		Value:   value,
		Time:    event.At.UTC(),
		Headers: carrierHeaders(carrier),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "kafka publish failed")
		return err
	}

	return nil
}

func (p *ScanPublisher) Close() error {
	return p.writer.Close()
}

func carrierHeaders(carrier propagation.MapCarrier) []kafka.Header {
	headers := make([]kafka.Header, 0, len(carrier))
	for key, value := range carrier {
		if strings.TrimSpace(value) == "" {
			continue
		}
		headers = append(headers, kafka.Header{
			Key:   key,
			Value: []byte(value),
		})
	}
	return headers
}
