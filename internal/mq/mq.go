// Package mq publishes student change events to a message broker.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/student-records/apiserver/config"
	"github.com/student-records/apiserver/types"
)

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// New connects the configured backend. An empty backend name yields a
// Noop backend so event publishing stays optional.
func New(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Backend {
	case "":
		return Noop{}, nil
	case "rabbitmq":
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "pubsub":
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported mq backend %q", cfg.Backend)
	}
}

// Noop discards every message.
type Noop struct{}

func (Noop) Publish(context.Context, string, []byte, map[string]string) (string, error) {
	return "", nil
}

func (Noop) Close() error { return nil }

// StudentEventPublisher encodes student events as JSON and publishes them
// on a single channel.
type StudentEventPublisher struct {
	backend Backend
	channel string
}

// NewStudentEventPublisher constructs a publisher for the provided backend.
func NewStudentEventPublisher(backend Backend, channel string) *StudentEventPublisher {
	return &StudentEventPublisher{backend: backend, channel: channel}
}

// PublishStudentEvent sends event with its type as the "type" attribute.
func (p *StudentEventPublisher) PublishStudentEvent(ctx context.Context, event types.StudentEvent) error {
	if event.Type == "" {
		return errors.New("student event type is required")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode student event: %w", err)
	}
	attrs := map[string]string{
		"type":       string(event.Type),
		"student_id": event.StudentID,
	}
	if _, err := p.backend.Publish(ctx, p.channel, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}
