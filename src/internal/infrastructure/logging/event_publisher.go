package logging

import (
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"go.uber.org/zap"
)

// EventPublisher 將領域事件寫入審計日誌
type EventPublisher struct {
	log *zap.Logger
}

// NewEventPublisher 建立以 zap 實作的事件發布器
func NewEventPublisher(log *zap.Logger) *EventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventPublisher{log: log.With(zap.String("component", "domain_events"))}
}

// Publish 發布單一事件
func (p *EventPublisher) Publish(event shared.DomainEvent) error {
	p.log.Info("domain_event",
		zap.String("event_id", event.EventID()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// PublishBatch 依序發布
func (p *EventPublisher) PublishBatch(events []shared.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(event); err != nil {
			return err
		}
	}
	return nil
}

var _ shared.EventPublisher = (*EventPublisher)(nil)
