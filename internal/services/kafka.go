package services

import (
	"context"
	"fmt"
	"time"

	"github.com/iwtcode/robotDataAgent"
	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type kafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewRecordPublisher returns a Kafka producer for stored rows, or a no-op
// publisher when no broker is configured.
func NewRecordPublisher(cfg *robotDataAgent.Config, logger *zap.Logger) interfaces.RecordPublisher {
	if !cfg.KafkaEnabled() {
		return noopPublisher{}
	}

	logger = logger.Named("kafka")
	logger.Info("publishing stored rows", zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))

	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBroker),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           50 * time.Millisecond,
			WriteTimeout:           10 * time.Second,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, rows []entities.RobotData) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	msgs, err := buildMessages(rows)
	if err != nil {
		return 0, err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("failed to write messages: %w", err)
	}
	return len(msgs), nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// buildMessages keys every message by workstation so that one station's
// rows stay ordered within a partition.
func buildMessages(rows []entities.RobotData) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(rows))
	for _, row := range rows {
		value, err := models.NewRobotDataEvent(row).Marshal()
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", row.ID, err)
		}

		var key []byte
		if row.Workstation != nil {
			key = []byte(*row.Workstation)
		}
		msgs = append(msgs, kafka.Message{Key: key, Value: value})
	}
	return msgs, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, []entities.RobotData) (int, error) { return 0, nil }
func (noopPublisher) Close() error                                             { return nil }
