package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwtcode/robotDataAgent"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	readerDialTimeout = 10 * time.Second
	readerReadTimeout = 5 * time.Second
)

var ErrKafkaDisabled = errors.New("kafka publishing is disabled")

// topicReader reads back what the publisher wrote to partition 0 of the
// robot data topic.
type topicReader struct {
	broker string
	topic  string
	logger *zap.Logger
}

func NewPublishedReader(cfg *robotDataAgent.Config, logger *zap.Logger) interfaces.PublishedReader {
	return &topicReader{
		broker: cfg.KafkaBroker,
		topic:  cfg.KafkaTopic,
		logger: logger.Named("kafka_reader"),
	}
}

func (r *topicReader) LastMessage(ctx context.Context, workstation string) (*models.PublishedMessage, error) {
	if r.broker == "" || r.topic == "" {
		return nil, ErrKafkaDisabled
	}

	dialCtx, cancel := context.WithTimeout(ctx, readerDialTimeout)
	defer cancel()

	conn, err := kafka.DialLeader(dialCtx, "tcp", r.broker, r.topic, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to dial leader: %w", err)
	}
	defer conn.Close()

	first, last, err := conn.ReadOffsets()
	if err != nil {
		return nil, fmt.Errorf("failed to read offsets: %w", err)
	}
	if last <= first {
		return nil, nil
	}

	start := scanStart(first, last, workstation)
	if _, err := conn.Seek(start, kafka.SeekAbsolute); err != nil {
		return nil, fmt.Errorf("failed to seek to %d: %w", start, err)
	}
	_ = conn.SetReadDeadline(readDeadline(ctx))

	var found *kafka.Message
	for {
		batch := conn.ReadBatch(10e3, 1e6) // min 10KB, max 1MB
		var (
			read int
			done bool
		)
		found, read, done = scanBatch(batch, workstation, last, found)
		batchErr := batch.Close()
		if done || read == 0 || batchErr != nil {
			if batchErr != nil && !done {
				r.logger.Debug("stopped scanning topic", zap.Int64("from", start), zap.Error(batchErr))
			}
			break
		}
	}

	if found == nil {
		if workstation != "" {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read message at offset %d", last-1)
	}
	return &models.PublishedMessage{
		Key:       string(found.Key),
		Value:     string(found.Value),
		Partition: found.Partition,
		Offset:    found.Offset,
		Time:      found.Time,
	}, nil
}

// scanStart returns the first offset to read: the newest message only, or
// the last models.WorkstationScanDepth messages when a workstation is requested.
func scanStart(first, last int64, workstation string) int64 {
	depth := int64(1)
	if workstation != "" {
		depth = models.WorkstationScanDepth
	}
	start := last - depth
	if start < first {
		start = first
	}
	return start
}

func readDeadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(readerReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

type messageReader interface {
	ReadMessage() (kafka.Message, error)
}

// scanBatch keeps the newest message matching workstation (any key when
// empty). done is set once the message before last has been read.
func scanBatch(r messageReader, workstation string, last int64, found *kafka.Message) (*kafka.Message, int, bool) {
	read := 0
	for {
		m, err := r.ReadMessage()
		if err != nil {
			return found, read, false
		}
		read++
		if workstation == "" || string(m.Key) == workstation {
			msg := m
			found = &msg
		}
		if m.Offset >= last-1 {
			return found, read, true
		}
	}
}
