// Package ingest feeds telemetry and LOAD/PUSH events from a Kafka topic
// into a service.Ingestion sink.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"coke_oven/internal/logger"
	"coke_oven/internal/models"
	"coke_oven/internal/service"

	"github.com/segmentio/kafka-go"
)

// Message kinds carried in Envelope.Kind.
const (
	KindTemperature = "temperature"
	KindOperation   = "operation"
)

var errMalformed = errors.New("malformed message")

// Config groups the Kafka consumer settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Envelope is the JSON body of one message. Temperature messages use
// MachineSide/CokeSide, operation messages use Chamber/Type.
type Envelope struct {
	Kind        string   `json:"kind"`
	Oven        int      `json:"oven"`
	Time        string   `json:"time"`
	MachineSide *float64 `json:"machine_side,omitempty"`
	CokeSide    *float64 `json:"coke_side,omitempty"`
	Chamber     string   `json:"chamber,omitempty"`
	Type        string   `json:"type,omitempty"`
}

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewReader builds a consumer-group reader for cfg.
func NewReader(cfg Config) (*kafka.Reader, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("kafka topic must not be empty")
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	}), nil
}

// Consumer reads messages one at a time and hands them to the sink.
//
// Messages the sink rejects for bad content (malformed JSON, validation,
// duplicates) are logged and committed; they would fail again on retry.
// Any other sink error stops the consumer without committing, so the
// message is redelivered once the cause is fixed.
type Consumer struct {
	reader MessageReader
	sink   service.Ingestion
	log    *logger.Logger
}

func NewConsumer(reader MessageReader, sink service.Ingestion, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{reader: reader, sink: sink, log: log}
}

// Run consumes until ctx is canceled (returning nil) or the sink fails
// with a non-permanent error (returning it). The reader is closed on return.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.log.Errorw("kafka_reader_close_failed", "err", err)
		}
	}()
	c.log.Infow("kafka_consumer_start")

	backoff := time.Second
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Infow("kafka_consumer_stop", "reason", "context")
				return nil
			}
			c.log.Errorw("kafka_fetch_failed", "err", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
				if backoff < 10*time.Second {
					backoff *= 2
				}
				continue
			case <-ctx.Done():
				c.log.Infow("kafka_consumer_stop", "reason", "shutdown")
				return nil
			}
		}
		backoff = time.Second

		if err := c.handle(ctx, msg.Value); err != nil {
			if !isPermanent(err) {
				c.log.Errorw("kafka_consumer_stop", "reason", "sink", "err", err,
					"partition", msg.Partition, "offset", msg.Offset)
				return fmt.Errorf("kafka offset %d/%d: %w", msg.Partition, msg.Offset, err)
			}
			c.log.Warnw("kafka_message_rejected", "err", err,
				"partition", msg.Partition, "offset", msg.Offset)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Errorw("kafka_commit_failed", "err", err, "offset", msg.Offset)
		}
	}
}

// handle decodes one message value and forwards it to the sink.
func (c *Consumer) handle(ctx context.Context, value []byte) error {
	env, err := Decode(value)
	if err != nil {
		return err
	}
	switch env.Kind {
	case KindTemperature:
		return c.sink.RecordTemperature(ctx, service.TemperatureInput{
			Oven:        env.Oven,
			Time:        env.Time,
			MachineSide: *env.MachineSide,
			CokeSide:    *env.CokeSide,
		})
	default:
		return c.sink.RecordOperation(ctx, service.OperationInput{
			Oven:    env.Oven,
			Chamber: env.Chamber,
			Type:    env.Type,
			Time:    env.Time,
		})
	}
}

// Decode parses and shape-checks a message body. Field values (oven,
// chamber, time text) are left to the sink to validate.
func Decode(value []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", errMalformed, err)
	}
	env.Kind = strings.ToLower(strings.TrimSpace(env.Kind))
	switch env.Kind {
	case KindTemperature:
		if env.MachineSide == nil || env.CokeSide == nil {
			return Envelope{}, fmt.Errorf("%w: temperature needs machine_side and coke_side", errMalformed)
		}
	case KindOperation:
	default:
		return Envelope{}, fmt.Errorf("%w: unknown kind %q", errMalformed, env.Kind)
	}
	return env, nil
}

// isPermanent reports whether retrying the same message could never succeed.
func isPermanent(err error) bool {
	return errors.Is(err, errMalformed) ||
		models.IsValidation(err) ||
		errors.Is(err, models.ErrDuplicateRecord)
}
