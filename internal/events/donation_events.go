package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DonationCreated   = "donation.created"
	DonationCancelled = "donation.cancelled"
	DonationDeleted   = "donation.deleted"
)

// DonationEvent is published after a donation lifecycle operation succeeds.
type DonationEvent struct {
	Type         string    `json:"type"`
	DonationID   string    `json:"donation_id"`
	CampaignID   string    `json:"campaign_id"`
	Amount       float64   `json:"amount"`
	AmountRaised *float64  `json:"amount_raised,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event DonationEvent) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

// batchTimeout bounds how long a single synchronous write waits for its
// batch to fill before flushing.
const batchTimeout = 10 * time.Millisecond

func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: batchTimeout,
		WriteTimeout: 5 * time.Second,
	}
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	w := newKafkaWriter(brokers, topic)
	log.Info("donation event producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &KafkaPublisher{writer: w, topic: topic, log: log}
}

// Publish writes event keyed by campaign id, so the events of one campaign
// stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event DonationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.CampaignID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}

	p.log.Debug("donation event sent",
		zap.String("type", event.Type),
		zap.String("donation_id", event.DonationID),
		zap.String("topic", p.topic),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, DonationEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
