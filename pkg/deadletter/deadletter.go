// Package deadletter diverts alarms whose video never arrived to the
// application dead-letter queue and notifies operators with a diagnostic
// bundle.
package deadletter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alarmvault/alarmvault/pkg/capture"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/convox/logger"
	"github.com/pkg/errors"
)

const (
	DefaultLogLimit  = 100
	DefaultLogWindow = 30 * time.Minute
)

var log = logger.New("ns=deadletter")

type Options struct {
	LogLimit  int
	LogWindow time.Duration
	Location  *time.Location
	Now       func() time.Time
	NotifyTo  []string
}

type Handler struct {
	Logs    structs.LogReader
	Mailer  structs.Mailer
	Queue   structs.Queue
	Storage structs.Storage

	Options Options
}

// Handle diverts one failed message. It never panics. The only error it
// returns is a failed dead-letter send, so the caller can leave the message
// for redelivery instead of losing it. Notification problems are logged.
func (h *Handler) Handle(ctx context.Context, messageID, body string, cause error) (err error) {
	log := log.At("handle").Namespace("message=%s", messageID).Start()

	defer func() {
		if r := recover(); r != nil {
			log.Logf("state=panic error=%q", fmt.Sprint(r))
			err = nil
		}
	}()

	e, perr := structs.ParseAlarmEvent([]byte(body))
	if perr != nil {
		log.Logf("state=unreadable error=%q", perr)
		return nil
	}

	env := structs.DeadLetterEnvelope{
		Body:              body,
		FailureReason:     reason(cause),
		OriginalTimestamp: strconv.FormatInt(e.Timestamp, 10),
		RetryAttempt:      h.now().UTC().Format(time.RFC3339),
	}

	id, err := h.send(ctx, env)
	if err != nil {
		return log.Error(err)
	}

	if err := h.notify(ctx, e, env, id); err != nil {
		log.Logf("state=notify-failed error=%q", err)
	}

	log.Successf("event=%q dead-letter=%s", e.EventID(), id)

	return nil
}

func (h *Handler) send(ctx context.Context, env structs.DeadLetterEnvelope) (string, error) {
	if h.Queue == nil {
		return "", errors.New("dead letter queue is not configured")
	}

	id, err := h.Queue.DeadLetterSend(ctx, env)
	if err != nil {
		return "", errors.Wrap(err, "dead letter send")
	}

	return id, nil
}

func (h *Handler) now() time.Time {
	if h.Options.Now == nil {
		return time.Now()
	}
	return h.Options.Now()
}

func (h *Handler) location() *time.Location {
	if h.Options.Location == nil {
		return time.UTC
	}
	return h.Options.Location
}

func reason(cause error) string {
	if cause == nil {
		return capture.ErrNoVideoDownloaded.Error()
	}
	return cause.Error()
}
