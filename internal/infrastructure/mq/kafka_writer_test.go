package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_gateway_server/internal/config"
	"chat_gateway_server/pkg/errorx"
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

func TestKafkaWriterKeysByUser(t *testing.T) {
	rec := &recordingWriter{}
	w := newKafkaWriter(rec, "events")

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, w.WriteEvent(context.Background(), LifecycleEvent{
		Type: EventSessionConnected, UserID: "u1", SessionID: "s1", At: at,
	}))
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, []byte("u1"), rec.msgs[0].Key)
	assert.JSONEq(t, `{"type":"SESSION_CONNECTED","user_id":"u1","session_id":"s1","at":"2024-05-01T00:00:00Z"}`, string(rec.msgs[0].Value))

	require.NoError(t, w.Close())
	assert.True(t, rec.closed)
}

func TestKafkaWriterWrapsErrors(t *testing.T) {
	w := newKafkaWriter(&recordingWriter{err: errors.New("broker down")}, "events")
	err := w.WriteEvent(context.Background(), LifecycleEvent{Type: EventSessionDisconnected, UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeEventPublishError, errorx.GetCode(err))
}

func TestNewEventWriterByMode(t *testing.T) {
	assert.IsType(t, NopWriter{}, NewEventWriter(&config.KafkaConfig{EventMode: "none"}))
	assert.IsType(t, &KafkaWriter{}, NewEventWriter(&config.KafkaConfig{EventMode: "kafka", HostPort: "127.0.0.1:9092", EventTopic: "t", Timeout: 1}))
}
