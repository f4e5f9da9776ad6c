package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "donation-events", log: zap.NewNop()}

	raised := 100.0
	event := DonationEvent{
		Type:         DonationCreated,
		DonationID:   "d1",
		CampaignID:   "c1",
		Amount:       10,
		AmountRaised: &raised,
		OccurredAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.messages, 1)
	assert.Equal(t, "c1", string(w.messages[0].Key))

	var decoded DonationEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, 100.0, *decoded.AmountRaised)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := &KafkaPublisher{writer: w, topic: "donation-events", log: zap.NewNop()}

	err := p.Publish(context.Background(), DonationEvent{Type: DonationDeleted, CampaignID: "c1"})
	assert.EqualError(t, err, "broker unavailable")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), DonationEvent{}))
	assert.NoError(t, p.Close())
}

func TestNewKafkaWriter(t *testing.T) {
	w := newKafkaWriter([]string{"k1:9092"}, "donation-events")
	assert.Equal(t, "donation-events", w.Topic)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Positive(t, w.BatchTimeout)
	assert.False(t, w.Async)
}
