package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"marketsync-service/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_WritesJSON(t *testing.T) {
	w := &memWriter{}
	p := newKafkaPublisher(w, "market.session", nil)
	at := time.Date(2025, 3, 3, 3, 45, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), domain.MarketEvent{Type: domain.MarketOpened, At: at}))
	require.NoError(t, p.Publish(context.Background(), domain.MarketEvent{Type: domain.MarketClosed, At: at.Add(6 * time.Hour)}))
	require.Len(t, w.msgs, 2)
	require.Equal(t, w.msgs[0].Key, w.msgs[1].Key)

	var got domain.MarketEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	require.Equal(t, domain.MarketOpened, got.Type)
	require.True(t, at.Equal(got.At))
	require.JSONEq(t, `{"type":"market-opened","at":"2025-03-03T03:45:00Z"}`, string(w.msgs[0].Value))

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := newKafkaPublisher(&memWriter{err: errors.New("broker down")}, "t", nil)
	require.Error(t, p.Publish(context.Background(), domain.MarketEvent{Type: domain.MarketClosed}))
}

func TestLogPublisher_NeverFails(t *testing.T) {
	require.NoError(t, LogPublisher{}.Publish(context.Background(), domain.MarketEvent{Type: domain.MarketOpened}))
}
