package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/service"
)

type fakeReader struct {
	msgs   []kafka.Message
	errs   []error
	reads  int
	closed bool
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.reads++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func eventMessage(t *testing.T, header string, event entity.ServingTableEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	msg := kafka.Message{Key: []byte(event.ServingTableID), Value: value}
	if header != "" {
		msg.Headers = []kafka.Header{{Key: service.EventHeader, Value: []byte(header)}}
	}
	return msg
}

func TestProcessMessage(t *testing.T) {
	feed := NewKitchenFeed(&fakeReader{})

	tests := []struct {
		name    string
		msg     kafka.Message
		wantErr bool
	}{
		{
			name: "order added",
			msg:  eventMessage(t, service.EventOrderAdded, entity.ServingTableEvent{ServingTableID: "t1", OrderID: "o1", TotalPrice: 250}),
		},
		{
			name: "type from body when header is missing",
			msg:  eventMessage(t, "", entity.ServingTableEvent{Type: service.EventPaymentRecorded, ServingTableID: "t1", Amount: 100}),
		},
		{
			name: "kitchen completed",
			msg:  eventMessage(t, service.EventKitchenCompleted, entity.ServingTableEvent{ServingTableID: "t1", KitchenOrderID: "k1"}),
		},
		{
			name:    "unknown type",
			msg:     eventMessage(t, "table-moved", entity.ServingTableEvent{ServingTableID: "t1"}),
			wantErr: true,
		},
		{
			name:    "bad payload",
			msg:     kafka.Message{Key: []byte("t1"), Value: []byte("{")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := feed.processMessage(tt.msg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	reader := &fakeReader{
		errs: []error{errors.New("broker hiccup")},
		msgs: []kafka.Message{
			eventMessage(t, service.EventTableOpened, entity.ServingTableEvent{ServingTableID: "t1"}),
			{Value: []byte("garbage")},
		},
	}
	feed := NewKitchenFeed(reader)

	done := make(chan struct{})
	go func() {
		feed.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("feed did not stop")
	}
	// one failed read, two messages, then the cancellation
	assert.Equal(t, 4, reader.reads)

	require.NoError(t, feed.Close())
	assert.True(t, reader.closed)
}
