package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/dispatch-board/internal/client"
	"github.com/imrishuroy/dispatch-board/internal/logger"
	"github.com/imrishuroy/dispatch-board/internal/validation"
)

// notifyAttribute marks messages the API itself published for a stored record.
const notifyAttribute = "dispatch_id"

// errPermanent marks a message that will never be accepted, however often it
// is redelivered.
var errPermanent = errors.New("permanent failure")

// Relay forwards queued submissions into the board. Only messages that failed
// for a transient reason are reported back for redelivery; the rest of the
// batch is acknowledged so nothing is posted twice.
type Relay struct {
	submitter Submitter
	log       logger.Logger
}

func NewRelay(s Submitter, log logger.Logger) *Relay {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Relay{submitter: s, log: log}
}

// Handle processes an SQS batch and returns the ids to redeliver.
func (r *Relay) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	r.log.Infof("received %d SQS messages", len(ev.Records))
	var resp events.SQSEventResponse
	for _, msg := range ev.Records {
		err := r.relay(ctx, msg)
		switch {
		case err == nil:
		case errors.Is(err, errPermanent):
			r.log.Errorf("dropping message %s: %v", msg.MessageId, err)
		default:
			r.log.Warnf("relay message %s, will retry: %v", msg.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
		}
	}
	return resp, nil
}

func (r *Relay) relay(ctx context.Context, msg events.SQSMessage) error {
	if _, ok := msg.MessageAttributes[notifyAttribute]; ok {
		// already on the board; relaying it would post it again
		r.log.Warnf("skipping message %s: carries %s, notify and relay queues must differ", msg.MessageId, notifyAttribute)
		return nil
	}

	var req validation.CreateDispatchRequest
	if err := json.Unmarshal([]byte(msg.Body), &req); err != nil {
		return fmt.Errorf("%w: invalid message body: %v", errPermanent, err)
	}
	rec, err := r.submitter.SubmitRaw(ctx, []byte(msg.Body))
	if err != nil {
		if rejected(err) {
			return fmt.Errorf("%w: submit: %v", errPermanent, err)
		}
		return fmt.Errorf("submit: %w", err)
	}
	r.log.Debugw("relayed dispatch", map[string]any{
		"message_id": msg.MessageId,
		"id":         rec.ID,
		"action":     rec.Action,
	})
	return nil
}

// rejected reports a 4xx answer other than timeouts and throttling.
func rejected(err error) bool {
	var se *client.StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.Code >= 400 && se.Code < 500
}
