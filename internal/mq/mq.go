// Package mq delivers task completion notifications to a message broker.
// The server only publishes; subscribing exists for the `notify tail`
// command and for end-to-end checks.
package mq

import (
	"context"
	"errors"
)

// ErrSubscribeUnsupported is returned by publish-only backends such as SNS.
var ErrSubscribeUnsupported = errors.New("backend does not support subscribe")

// AttrSubject is the attribute carrying the notification subject line.
// SNS maps it to the native Subject field; other backends keep it as a
// plain attribute.
const AttrSubject = "subject"

// Message is a notification as seen by a subscriber. Data holds the
// human-readable body and Attributes the subject, priority and task id.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a received notification. A non-nil error nacks it.
type Handler func(ctx context.Context, msg Message) error

// Backend is implemented by each broker client. channel is an SNS topic
// ARN, a Pub/Sub topic or a RabbitMQ queue depending on the backend.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ is the broker handle shared by the notifier and the CLI.
type MQ struct {
	backend Backend
}

func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends one notification and returns the broker's message id.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe blocks, delivering notifications to handler until ctx is done.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

func (m *MQ) Close() error {
	return m.backend.Close()
}
