package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageSortsHeaders(t *testing.T) {
	msg := buildMessage("booking.events.v1", "bk-1", []byte(`{}`), map[string]string{
		"content-type": "application/cloudevents+json",
		"ce-id":        "evt-1",
	})
	assert.Equal(t, "booking.events.v1", msg.Topic)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "ce-id", string(msg.Headers[0].Key))
	assert.Equal(t, "content-type", string(msg.Headers[1].Key))
	assert.Equal(t, sarama.StringEncoder("bk-1"), msg.Key)
	assert.Equal(t, sarama.ByteEncoder(`{}`), msg.Value)
}

func TestBuildMessageWithoutKey(t *testing.T) {
	msg := buildMessage("ledger.events.v1", "", []byte(`{}`), nil)
	assert.Nil(t, msg.Key)
	assert.Empty(t, msg.Headers)
}
