package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/dispatch-board/internal/client"
	"github.com/imrishuroy/dispatch-board/internal/dispatch"
	"github.com/imrishuroy/dispatch-board/internal/handlers"
)

func sqsEvent(bodies ...string) events.SQSEvent {
	var ev events.SQSEvent
	for i, b := range bodies {
		ev.Records = append(ev.Records, events.SQSMessage{MessageId: string(rune('a' + i)), Body: b})
	}
	return ev
}

func newBoardServer(t *testing.T) (*dispatch.Store, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := dispatch.NewStore()
	srv := httptest.NewServer(handlers.NewRouter(handlers.HandlerConfig{Store: store}, nil))
	t.Cleanup(srv.Close)
	return store, srv
}

func TestRelay_ForwardsEveryMessage(t *testing.T) {
	store, srv := newBoardServer(t)

	relay := NewRelay(client.New(srv.URL, time.Second), nil)
	resp, err := relay.Handle(context.Background(), sqsEvent(
		`{"action":"ambulance","profile":{"Name":"A. Test"}}`,
		`{"action":"send_caretaker"}`,
	))
	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)

	snap := store.SnapshotActive()
	require.Len(t, snap, 2)
	assert.Equal(t, "A. Test", snap[0].Profile.Field(dispatch.ProfileName))
	assert.Equal(t, dispatch.ActionSendCaretaker, snap[1].Action)
}

// redeliver builds the batch Lambda sends again: only the reported failures.
func redeliver(ev events.SQSEvent, resp events.SQSEventResponse) events.SQSEvent {
	failed := map[string]bool{}
	for _, f := range resp.BatchItemFailures {
		failed[f.ItemIdentifier] = true
	}
	var out events.SQSEvent
	for _, m := range ev.Records {
		if failed[m.MessageId] {
			out.Records = append(out.Records, m)
		}
	}
	return out
}

func TestRelay_RejectedMessageDoesNotDuplicateTheRest(t *testing.T) {
	store, srv := newBoardServer(t)
	relay := NewRelay(client.New(srv.URL, time.Second), nil)

	ev := sqsEvent(`{"action":"ambulance","profile":{"Name":"A. Test"}}`, `{"status":"no action"}`, `not json`)
	batch := ev
	for i := 0; i < 3; i++ {
		resp, err := relay.Handle(context.Background(), batch)
		require.NoError(t, err)
		batch = redeliver(ev, resp)
	}
	assert.Empty(t, batch.Records)
	assert.Equal(t, 1, store.Len())
}

func TestRelay_TransientFailureOnlyRetriesThatMessage(t *testing.T) {
	store, srv := newBoardServer(t)
	var failed atomic.Bool
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failed.CompareAndSwap(false, true) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		srv.Config.Handler.ServeHTTP(w, r)
	}))
	defer flaky.Close()

	relay := NewRelay(client.New(flaky.URL, time.Second), nil)
	ev := sqsEvent(`{"action":"dispatch"}`, `{"action":"ambulance"}`)
	resp, err := relay.Handle(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, resp.BatchItemFailures, 1)
	assert.Equal(t, "a", resp.BatchItemFailures[0].ItemIdentifier)
	assert.Equal(t, 1, store.Len())

	resp, err = relay.Handle(context.Background(), redeliver(ev, resp))
	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)
	assert.Equal(t, 2, store.Len())
}

type fakeSubmitter struct {
	calls int
	err   error
}

func (f *fakeSubmitter) SubmitRaw(ctx context.Context, body []byte) (dispatch.Record, error) {
	f.calls++
	return dispatch.Record{ID: "x"}, f.err
}

func TestRelay_MalformedBodyIsNotSubmitted(t *testing.T) {
	f := &fakeSubmitter{}
	resp, err := NewRelay(f, nil).Handle(context.Background(), sqsEvent(`not json`))
	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)
	assert.Zero(t, f.calls)
}

func TestRelay_SkipsBoardNotifications(t *testing.T) {
	f := &fakeSubmitter{}
	ev := sqsEvent(`{"action":"ambulance"}`)
	ev.Records[0].MessageAttributes = map[string]events.SQSMessageAttribute{
		"dispatch_id": {DataType: "String", StringValue: strPtr("d-1")},
	}

	resp, err := NewRelay(f, nil).Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)
	assert.Zero(t, f.calls)
}

func TestRejected(t *testing.T) {
	assert.True(t, rejected(&client.StatusError{Code: http.StatusBadRequest}))
	assert.False(t, rejected(&client.StatusError{Code: http.StatusTooManyRequests}))
	assert.False(t, rejected(&client.StatusError{Code: http.StatusBadGateway}))
	assert.False(t, rejected(errors.New("connection refused")))
}

func strPtr(s string) *string { return &s }
