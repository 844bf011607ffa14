package mq

import (
	"context"
	"fmt"

	"github.com/schedulr/apiserver/config"
)

// Open builds the backend selected by cfg.Notify.Backend. It returns a nil
// MQ when notifications are disabled.
func Open(ctx context.Context, cfg config.Config) (*MQ, error) {
	switch cfg.Notify.Backend {
	case config.NotifyNone, "":
		return nil, nil
	case config.NotifySNS:
		client, err := NewSNSClient(ctx, cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("init sns: %w", err)
		}
		return New(client), nil
	case config.NotifyPubSub:
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("init pubsub: %w", err)
		}
		return New(client), nil
	case config.NotifyRabbitMQ:
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("init rabbitmq: %w", err)
		}
		return New(client), nil
	default:
		return nil, fmt.Errorf("unsupported notify backend %q", cfg.Notify.Backend)
	}
}
