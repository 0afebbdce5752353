package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubWriter struct {
	failures int
	calls    int
	messages []kafka.Message
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	if w.calls <= w.failures {
		return errors.New("broker unreachable")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestPublishBalanceChange(t *testing.T) {
	event := BalanceEvent{
		TraderID:   "t1",
		Amount:     -25,
		Currency:   "USDT",
		Balance:    75,
		AdjustedBy: "admin-1",
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("keys the message by trader", func(t *testing.T) {
		writer := &stubWriter{}
		p := &Producer{writer: writer, logger: zap.NewNop()}

		p.PublishBalanceChange(context.Background(), event)
		require.Len(t, writer.messages, 1)
		assert.Equal(t, []byte("t1"), writer.messages[0].Key)

		var decoded BalanceEvent
		require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
		assert.Equal(t, event, decoded)
	})

	t.Run("retries transient broker failures", func(t *testing.T) {
		writer := &stubWriter{failures: 2}
		p := &Producer{writer: writer, logger: zap.NewNop()}

		p.PublishBalanceChange(context.Background(), event)
		assert.Equal(t, 3, writer.calls)
		assert.Len(t, writer.messages, 1)
	})

	t.Run("gives up quietly after three attempts", func(t *testing.T) {
		writer := &stubWriter{failures: 10}
		p := &Producer{writer: writer, logger: zap.NewNop()}

		p.PublishBalanceChange(context.Background(), event)
		assert.Equal(t, 3, writer.calls)
		assert.Empty(t, writer.messages)
	})
}
