package services

import (
	"context"
	"fmt"
	"time"

	"github.com/schedulr/apiserver/internal/mq"
	"github.com/schedulr/apiserver/types"
	"github.com/sirupsen/logrus"
)

const (
	completionSubject = "Schedulr Task Update: Task Completed!"
	publishTimeout    = 10 * time.Second
)

// Publisher is the subset of mq.MQ used to send notifications.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Notifier publishes task completion messages to a single topic. Publish
// failures are logged and never returned.
type Notifier struct {
	publisher Publisher
	topic     string
	logger    *logrus.Logger
}

// NewNotifier returns a notifier; a nil publisher disables delivery.
func NewNotifier(publisher Publisher, topic string, logger *logrus.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// CompletionMessage renders the human-readable body for a completed task.
func CompletionMessage(task types.Task) string {
	return fmt.Sprintf("Task Completed: \"%s\" (Priority: %s)", task.Text, task.Priority)
}

func (n *Notifier) NotifyCompleted(ctx context.Context, task types.Task) {
	fields := logrus.Fields{"task_id": task.ID, "topic": n.topic}
	if n.publisher == nil {
		n.logger.WithFields(fields).Debug("notifications disabled, skipping completion message")
		return
	}

	// The request may finish or be cancelled while the broker is slow.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	messageID, err := n.publisher.Publish(ctx, n.topic, []byte(CompletionMessage(task)), map[string]string{
		mq.AttrSubject: completionSubject,
		"priority":     string(task.Priority),
		"task_id":      task.ID,
	})
	if err != nil {
		n.logger.WithFields(fields).WithError(err).Error("failed to send completion notification")
		return
	}
	fields["message_id"] = messageID
	n.logger.WithFields(fields).Info("completion notification sent")
}
