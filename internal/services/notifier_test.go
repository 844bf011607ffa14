package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/schedulr/apiserver/internal/logging"
	"github.com/schedulr/apiserver/internal/mq"
	"github.com/schedulr/apiserver/internal/services"
	"github.com/schedulr/apiserver/types"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCompletionMessage(t *testing.T) {
	msg := services.CompletionMessage(types.Task{Text: "Buy milk", Priority: types.PriorityHigh})

	assert.Equal(t, `Task Completed: "Buy milk" (Priority: High)`, msg)
}

func TestNotifier_PublishesToTopic(t *testing.T) {
	publisher := new(MockPublisher)
	notifier := services.NewNotifier(publisher, "arn:aws:sns:ap-northeast-1:1:Topic", logging.Discard())
	task := types.Task{ID: "t1", Text: "Buy milk", Priority: types.PriorityHigh}

	publisher.On("Publish",
		mock.Anything,
		"arn:aws:sns:ap-northeast-1:1:Topic",
		[]byte(`Task Completed: "Buy milk" (Priority: High)`),
		mock.MatchedBy(func(attrs map[string]string) bool {
			return attrs[mq.AttrSubject] == "Schedulr Task Update: Task Completed!" && attrs["priority"] == "High"
		}),
	).Return("msg-1", nil)

	notifier.NotifyCompleted(context.Background(), task)

	publisher.AssertExpectations(t)
}

func TestNotifier_FailureIsLoggedNotReturned(t *testing.T) {
	publisher := new(MockPublisher)
	logger, hook := test.NewNullLogger()
	notifier := services.NewNotifier(publisher, "topic", logger)

	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("broker down"))

	notifier.NotifyCompleted(context.Background(), types.Task{ID: "t1", Text: "x", Priority: types.PriorityLow})

	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
		assert.Equal(t, "failed to send completion notification", entry.Message)
	}
}

func TestNotifier_PublishSurvivesCancelledRequest(t *testing.T) {
	publisher := new(MockPublisher)
	notifier := services.NewNotifier(publisher, "topic", logging.Discard())

	publisher.On("Publish", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), "topic", mock.Anything, mock.Anything).Return("msg-1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	notifier.NotifyCompleted(ctx, types.Task{ID: "t1", Text: "x", Priority: types.PriorityLow})

	publisher.AssertExpectations(t)
}

func TestNotifier_DisabledWithoutPublisher(t *testing.T) {
	notifier := services.NewNotifier(nil, "topic", logging.Discard())

	assert.NotPanics(t, func() {
		notifier.NotifyCompleted(context.Background(), types.Task{ID: "t1"})
	})
}
