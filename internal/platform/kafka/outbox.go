package kafka

import (
	"context"

	"rentwise/pkg/platform/audit/outbox"
)

const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
	HeaderOutboxID      = "outbox_id"
)

// OutboxPublisher adapts Producer to the outbox relay. Records are keyed by
// aggregate ID so one deposit's or tenancy's events stay ordered within a
// partition.
type OutboxPublisher struct {
	producer *Producer
}

func NewOutboxPublisher(producer *Producer) *OutboxPublisher {
	return &OutboxPublisher{producer: producer}
}

func (p *OutboxPublisher) Publish(ctx context.Context, records ...outbox.Record) error {
	msgs := make([]Message, 0, len(records))
	for _, rec := range records {
		msgs = append(msgs, toMessage(rec))
	}
	return p.producer.Publish(ctx, msgs...)
}

func toMessage(rec outbox.Record) Message {
	return Message{
		Key:   rec.AggregateID,
		Value: rec.Payload,
		Headers: map[string]string{
			HeaderEventType:     rec.EventType,
			HeaderAggregateType: rec.AggregateType,
			HeaderOutboxID:      rec.ID,
		},
	}
}
