package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// scriptedReader serves a fixed queue of messages and records every call.
// Once the queue is drained it runs onDrain and reports cancellation.
type scriptedReader struct {
	queue   []kafkago.Message
	calls   []string
	onDrain func()
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.queue) == 0 {
		r.onDrain()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	r.calls = append(r.calls, fmt.Sprintf("fetch:%d", msg.Offset))
	return msg, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.calls = append(r.calls, fmt.Sprintf("commit:%d", m.Offset))
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

func newScriptedConsumer(reader *scriptedReader) *Consumer {
	return &Consumer{
		reader:       reader,
		logger:       zap.NewNop(),
		retryBackoff: time.Millisecond,
		maxBackoff:   4 * time.Millisecond,
	}
}

func TestConsume_RetriesFailedMessageBeforeMovingOn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{
		queue:   []kafkago.Message{{Offset: 5}, {Offset: 6}},
		onDrain: cancel,
	}
	failures := map[int64]int{5: 2}

	err := newScriptedConsumer(reader).Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
		reader.calls = append(reader.calls, fmt.Sprintf("handle:%d", msg.Offset))
		if failures[msg.Offset] > 0 {
			failures[msg.Offset]--
			return errors.New("database unavailable")
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{
		"fetch:5", "handle:5", "handle:5", "handle:5", "commit:5",
		"fetch:6", "handle:6", "commit:6",
	}, reader.calls)
}

func TestConsume_StopsRetryingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{
		queue:   []kafkago.Message{{Offset: 9}},
		onDrain: cancel,
	}
	attempts := 0

	err := newScriptedConsumer(reader).Consume(ctx, func(context.Context, kafkago.Message) error {
		attempts++
		if attempts == 3 {
			cancel()
		}
		return errors.New("still failing")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []string{"fetch:9"}, reader.calls, "a message that never succeeded must not be committed")
}
