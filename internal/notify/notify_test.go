package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil)
	assert.Error(t, err)
}

func TestNewWriter_FlushesPromptly(t *testing.T) {
	w := newWriter([]string{"localhost:9092"})
	assert.Equal(t, writeBatchTimeout, w.BatchTimeout)
	assert.LessOrEqual(t, w.BatchTimeout, 50*time.Millisecond)
	assert.False(t, w.Async)
	require.NoError(t, w.Close())
}

func TestKafkaPublisher_SendAccessCode(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}
	id := uuid.New()

	err := p.SendAccessCode(context.Background(), models.AccessCodeNotice{
		DeliveryID: id, Email: "bob@example.com", Code: "004213", DeliveryTitle: "Q3", ExpiresAt: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, TopicAccessCode, msg.Topic)
	assert.Equal(t, id.String(), string(msg.Key))

	var got models.AccessCodeNotice
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "004213", got.Code)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishLifecycleError(t *testing.T) {
	p := &KafkaPublisher{writer: &recordingWriter{err: errors.New("broker down")}}

	err := p.PublishLifecycle(context.Background(), models.LifecycleNotice{DeliveryID: uuid.New()})
	assert.ErrorContains(t, err, "publish deliveries.lifecycle: broker down")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	sink := NewLogSink(log)

	require.NoError(t, sink.SendAccessCode(context.Background(), models.AccessCodeNotice{Email: "bob@example.com", Code: "123456"}))
	require.NoError(t, sink.PublishLifecycle(context.Background(), models.LifecycleNotice{From: models.StatusActive, To: models.StatusExpired}))

	out := buf.String()
	assert.Contains(t, out, "access code issued")
	assert.NotContains(t, out, "123456", "code only at debug level")
	assert.Contains(t, out, "to=expired")
}
