package mq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMQ_DelegatesToBackend(t *testing.T) {
	fake := &fakeSNS{}
	queue := New(&SNSClient{client: fake})

	id, err := queue.Publish(context.Background(), "arn:aws:sns:ap-northeast-1:123456789012:SchedulrTaskCompletion",
		[]byte(`Task Completed: "Buy milk" (Priority: High)`),
		map[string]string{AttrSubject: "Schedulr Task Update: Task Completed!"})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	require.NotNil(t, fake.input)
	assert.Equal(t, `Task Completed: "Buy milk" (Priority: High)`, *fake.input.Message)

	err = queue.Subscribe(context.Background(), "any", func(context.Context, Message) error { return nil })
	assert.ErrorIs(t, err, ErrSubscribeUnsupported)
	assert.NoError(t, queue.Close())
}
