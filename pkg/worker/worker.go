// Package worker drains the delay queue, hands each alarm to the deferred
// pipeline and diverts alarms without video to the dead-letter handler.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/pipeline"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/convox/logger"
	"github.com/pkg/errors"
)

const (
	DefaultBatch   = 10
	DefaultBackoff = 5 * time.Second
)

var log = logger.New("ns=worker")

// MessageHandler processes one queue message body.
type MessageHandler interface {
	HandleMessage(ctx context.Context, body string) error
}

// DeadLetterer diverts a message whose alarm produced no video.
type DeadLetterer interface {
	Handle(ctx context.Context, messageID, body string, cause error) error
}

type Options struct {
	Backoff time.Duration
	Batch   int
}

type Worker struct {
	DeadLetter DeadLetterer
	Handler    MessageHandler
	Queue      structs.Queue

	Options Options
}

// Process runs one message to completion. A nil error means the message is
// finished and can be acknowledged, including alarms that were diverted to
// the dead-letter queue and alarms that hit a missing setting, which are
// logged as fatal with their body. Any other error leaves it for redelivery.
func (w *Worker) Process(ctx context.Context, m structs.QueueMessage) (err error) {
	log := log.At("process").Namespace("message=%s receives=%d", m.ID, m.ReceiveCount).Start()

	defer func() {
		if r := recover(); r != nil {
			err = log.Error(fmt.Errorf("panic: %v", r))
		}
	}()

	if w.Handler == nil {
		return log.Error(errors.New("message handler is not configured"))
	}

	err = w.Handler.HandleMessage(ctx, m.Body)

	var nv *pipeline.NoVideoError

	switch {
	case err == nil:
		log.Success()
		return nil
	case errors.As(err, &nv):
		log.Logf("state=no-video event=%q", nv.EventID)

		if w.DeadLetter == nil {
			return log.Error(errors.Wrap(err, "dead letter handler is not configured"))
		}

		if err := w.DeadLetter.Handle(ctx, m.ID, m.Body, nv.Err); err != nil {
			return log.Error(err)
		}

		log.Successf("state=dead-lettered")
		return nil
	case structs.ErrorNotConfigured(err):
		log.Logf("state=fatal error=%q body=%q", err, m.Body)
		return nil
	default:
		return log.Error(err)
	}
}

// HandleSQS processes a batch delivered by the queue event source. Messages
// run one at a time. Failed messages are reported individually so the rest
// of the batch is acknowledged.
func (w *Worker) HandleSQS(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	log := log.At("batch").Namespace("records=%d", len(ev.Records))

	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.Namespace("request=%s", lc.AwsRequestID)
	}

	log = log.Start()

	res := events.SQSEventResponse{BatchItemFailures: []events.SQSBatchItemFailure{}}

	for _, r := range ev.Records {
		if err := w.Process(ctx, message(r)); err != nil {
			res.BatchItemFailures = append(res.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: r.MessageId})
		}
	}

	log.Successf("failures=%d", len(res.BatchItemFailures))

	return res, nil
}

// Run polls the queue until ctx is done. Finished messages are deleted;
// failed ones are left to reappear after their visibility timeout.
func (w *Worker) Run(ctx context.Context) error {
	if w.Queue == nil {
		return pipeline.ErrQueueNotConfigured
	}

	log := log.At("run")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		ms, err := w.Queue.QueueReceive(ctx, helpers.CoalesceInt(w.Options.Batch, DefaultBatch))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			log.Logf("state=receive-failed error=%q", err)

			if err := helpers.Sleep(ctx, helpers.CoalesceDuration(w.Options.Backoff, DefaultBackoff)); err != nil {
				return nil
			}

			continue
		}

		for _, m := range ms {
			if err := w.Process(ctx, m); err != nil {
				continue
			}

			if err := w.Queue.QueueDelete(ctx, m); err != nil {
				log.Logf("state=delete-failed message=%s error=%q", m.ID, err)
			}
		}
	}
}

func message(r events.SQSMessage) structs.QueueMessage {
	m := structs.QueueMessage{
		ID:            r.MessageId,
		Body:          r.Body,
		Attributes:    map[string]string{},
		ReceiptHandle: r.ReceiptHandle,
	}

	for k, v := range r.MessageAttributes {
		if v.StringValue != nil {
			m.Attributes[k] = *v.StringValue
		}
	}

	if n, err := strconv.Atoi(r.Attributes["ApproximateReceiveCount"]); err == nil {
		m.ReceiveCount = n
	}

	return m
}
