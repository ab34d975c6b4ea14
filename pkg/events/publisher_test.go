package events

import (
	"context"
	"testing"

	"github.com/maasin/byahenow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialAMQP_BadURL(t *testing.T) {
	_, err := DialAMQP(Config{URL: "not-a-url", Exchange: "driver.presence"}, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to RabbitMQ")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "presence.tricycle.available", map[string]string{"a": "b"}))
	assert.NoError(t, p.Close())
}

func TestClosedPublisherRejects(t *testing.T) {
	p := &AMQPPublisher{closed: true, logger: logger.NewNop()}
	assert.ErrorIs(t, p.Publish(context.Background(), "k", struct{}{}), ErrClosed)
	assert.NoError(t, p.Close())
}
