package mq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestHeadersRoundTrip(t *testing.T) {
	headers := attributesToHeaders(map[string]string{AttrSubject: "done", "priority": "Low"})

	assert.Equal(t, amqp.Table{AttrSubject: "done", "priority": "Low"}, headers)
	assert.Equal(t, map[string]string{AttrSubject: "done", "priority": "Low"}, headersToAttributes(headers))
}

func TestHeadersToAttributes_StringifiesValues(t *testing.T) {
	attrs := headersToAttributes(amqp.Table{"raw": []byte("bytes"), "count": int32(3)})

	assert.Equal(t, map[string]string{"raw": "bytes", "count": "3"}, attrs)
	assert.Nil(t, headersToAttributes(nil))
	assert.Nil(t, attributesToHeaders(nil))
}

func TestDeliveryMode(t *testing.T) {
	assert.Equal(t, amqp.Persistent, (&RabbitMQClient{queueDurable: true}).deliveryMode())
	assert.Equal(t, amqp.Transient, (&RabbitMQClient{}).deliveryMode())
}
