package repository

import (
	"context"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
	pkgkafka "MacroPulse/pkg/kafka"
	"MacroPulse/pkg/util"
)

// KafkaTransitionPublisher implements Publisher for Kafka. Transitions are
// keyed by day so replays with the same data land on the same partition.
type KafkaTransitionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaTransitionPublisher creates Kafka transition publisher.
func NewKafkaTransitionPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaTransitionPublisher{producer: producer, topic: topic}
}

func (p *KafkaTransitionPublisher) PublishTransitions(ctx context.Context, transitions []models.RegimeTransition) error {
	if len(transitions) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(transitions))
	for i, t := range transitions {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(t.Date.Format(util.DateLayout)),
			Value: t,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaTransitionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
