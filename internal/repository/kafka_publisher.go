package repository

import (
	"context"
	"fmt"

	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	pkgkafka "SmartDCA/pkg/kafka"
	applogger "SmartDCA/pkg/logger"
)

// KafkaResultPublisher emits finished analysis results to a Kafka topic,
// keyed by symbol so consumers see per-symbol ordering.
type KafkaResultPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaResultPublisher(producer *pkgkafka.Producer, topic string) *KafkaResultPublisher {
	return &KafkaResultPublisher{producer: producer, topic: topic}
}

// SetLogger injects a structured logger.
func (p *KafkaResultPublisher) SetLogger(l *applogger.Logger) { p.l = l }

var _ domrepo.ResultPublisher = (*KafkaResultPublisher)(nil)

func (p *KafkaResultPublisher) Publish(ctx context.Context, res *models.Result) error {
	if res == nil {
		return nil
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(res.Symbol), res); err != nil {
		if p.l != nil {
			p.l.Error("kafka publish result failed",
				applogger.String("topic", p.topic),
				applogger.String("symbol", res.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("publish result: %w", err)
	}
	return nil
}

func (p *KafkaResultPublisher) Close() error {
	return p.producer.Close()
}
