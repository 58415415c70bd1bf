// Package events carries market session transitions to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const sessionKey = "market-session"

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

var _ application.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}
	return newKafkaPublisher(w, topic, log)
}

func newKafkaPublisher(w messageWriter, topic string, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{writer: w, topic: topic, log: log}
}

// Publish writes ev as JSON under one fixed key, so opened and closed events
// land in the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, ev domain.MarketEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{Key: []byte(sessionKey), Value: data, Time: ev.At}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("kafka.write_failed", zap.String("topic", p.topic), zap.String("event", string(ev.Type)), zap.Error(err))
		return err
	}
	p.log.Debug("kafka.message_sent", zap.String("topic", p.topic), zap.String("event", string(ev.Type)))
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// LogPublisher records transitions in the service log only.
type LogPublisher struct{ Log *zap.Logger }

func (p LogPublisher) Publish(_ context.Context, ev domain.MarketEvent) error {
	if p.Log != nil {
		p.Log.Info("market.event", zap.String("event", string(ev.Type)), zap.Time("at", ev.At))
	}
	return nil
}
