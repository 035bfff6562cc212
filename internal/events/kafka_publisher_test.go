package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	return Event{
		Resource:   "product",
		Action:     ActionCreated,
		ID:         "665f1c2b9d3e4a0012345678",
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Record:     map[string]any{"name": "Lamp"},
	}
}

func TestKafkaPublisherSendsEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "shop.changes" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "product:665f1c2b9d3e4a0012345678" {
			return errors.New("unexpected key " + string(key))
		}
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "shop.changes")
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.NoError(t, p.Close())
}

func TestKafkaPublisherEncodesJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got map[string]any
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got["action"] != "created" || got["resource"] != "product" {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "shop.changes")
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.NoError(t, p.Close())
}

func TestKafkaPublisherReportsSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "shop.changes")
	err := p.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNewKafkaConfig(t *testing.T) {
	cfg := NewKafkaConfig("shop-crud")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.True(t, cfg.Producer.Return.Successes)
	assert.Zero(t, cfg.Producer.Retry.Max)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}
