// Package events publishes domain events (company, prospect, proposal
// lifecycle) to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	CompanyCreated      EventType = "company.created"
	CompanyUpdated      EventType = "company.updated"
	ProspectStatusSet   EventType = "prospect.status_updated"
	ProspectDeleted     EventType = "prospect.deleted"
	ProposalCreated     EventType = "proposal.created"
	ProposalStatusSet   EventType = "proposal.status_updated"
	ProposalDeleted     EventType = "proposal.deleted"
	ProposalPDFRendered EventType = "proposal.pdf_generated"
	ProposalDelivered   EventType = "proposal.delivered"
)

type Event struct {
	Type       EventType   `json:"type"`
	EntityID   uuid.UUID   `json:"entity_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data,omitempty"`
}

// Publisher is the fire-and-forget event sink used by the services.
type Publisher interface {
	Publish(eventType EventType, entityID uuid.UUID, data interface{})
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(EventType, uuid.UUID, interface{}) {}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues events and writes them to Kafka from a single goroutine.
// A full queue drops the event with a warning.
type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *slog.Logger
	closeChan chan struct{}
	done      chan struct{}
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		Topic:                  topic,
		AllowAutoTopicCreation: true,
	}, logger)
}

func newProducer(w KafkaWriter, logger *slog.Logger) *Producer {
	p := &Producer{
		writer:    w,
		events:    make(chan Event, 1000),
		logger:    logger.With("component", "kafka_producer"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

func (p *Producer) Publish(eventType EventType, entityID uuid.UUID, data interface{}) {
	select {
	case p.events <- Event{Type: eventType, EntityID: entityID, OccurredAt: time.Now().UTC(), Data: data}:
	default:
		p.logger.Warn("event queue full, dropping event",
			"event_type", eventType,
			"entity_id", entityID,
		)
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			p.send(context.Background(), event)
		case <-p.closeChan:
			// Flush what is already queued.
			for {
				select {
				case event := <-p.events:
					p.send(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

func (p *Producer) send(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("failed to serialize event", "error", err, "entity_id", event.EntityID)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		p.logger.Error("failed to produce event",
			"error", err,
			"event_type", event.Type,
			"entity_id", event.EntityID,
		)
	}
}

// Close flushes queued events and closes the writer.
func (p *Producer) Close() error {
	close(p.closeChan)
	<-p.done
	return p.writer.Close()
}
