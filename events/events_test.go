package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"booktable-api/logging"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestNew(t *testing.T) {
	ev := New(ReservationCreated, 3)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, ReservationCreated, ev.Type)
	assert.EqualValues(t, 3, ev.RestaurantID)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w)

	ev := New(ReservationCreated, 42)
	ev.ReservationID = 7
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.Equal(t, "reservation.created", string(w.msgs[0].Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, ev.ID, decoded.ID)
	assert.EqualValues(t, 7, decoded.ReservationID)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaPublisher(&fakeWriter{err: boom})

	err := p.Publish(context.Background(), New(ReviewAdded, 1))
	assert.ErrorIs(t, err, boom)
}

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}
	f := Fanout{a, nil, b, LogPublisher{Log: logging.Discard()}}

	err := f.Publish(context.Background(), New(ReservationCancelled, 1))

	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestNewKafkaWriter_DoesNotBlockCallers(t *testing.T) {
	w := NewKafkaWriter("localhost:9092", "reservations", logging.Discard())
	t.Cleanup(func() { _ = w.Close() })

	assert.True(t, w.Async)
	assert.LessOrEqual(t, w.BatchTimeout, 100*time.Millisecond)
	require.NotNil(t, w.Completion)
	w.Completion([]kafka.Message{{}}, errors.New("broker down"))
}
