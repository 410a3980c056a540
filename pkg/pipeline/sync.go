package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/pkg/errors"
)

// Response is what the webhook surface returns to the caller.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

type Acknowledgment struct {
	EventID             string `json:"eventId"`
	MessageID           string `json:"messageId,omitempty"`
	DelaySeconds        int64  `json:"delaySeconds"`
	EstimatedCompletion string `json:"estimatedCompletion"`
	Message             string `json:"message"`
}

// ProcessWebhook parses a raw webhook body and hands it to the delay queue.
// The raw bytes are enqueued unchanged.
func (p *Pipeline) ProcessWebhook(ctx context.Context, body []byte) Response {
	e, err := structs.ParseAlarmEvent(body)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}

	return p.processSync(ctx, e, body)
}

// ProcessAlarmSync validates an alarm and enqueues it. Shape errors are 400,
// missing configuration is 500. It never captures video.
func (p *Pipeline) ProcessAlarmSync(ctx context.Context, e *structs.AlarmEvent) Response {
	return p.processSync(ctx, e, nil)
}

func (p *Pipeline) processSync(ctx context.Context, e *structs.AlarmEvent, raw []byte) Response {
	log := log.At("sync").Start()

	if err := e.Validate(); err != nil {
		log.Logf("state=invalid error=%q", err)
		return errorResponse(http.StatusBadRequest, err)
	}

	if p.Queue == nil {
		log.Error(ErrQueueNotConfigured)
		return errorResponse(http.StatusInternalServerError, ErrQueueNotConfigured)
	}

	log.Successf("event=%q device=%q", e.EventID(), e.Device())

	return p.enqueue(ctx, e, raw)
}

// EnqueueAndRespond puts a validated alarm on the delay queue and
// acknowledges it.
func (p *Pipeline) EnqueueAndRespond(ctx context.Context, e *structs.AlarmEvent) Response {
	return p.enqueue(ctx, e, nil)
}

func (p *Pipeline) enqueue(ctx context.Context, e *structs.AlarmEvent, raw []byte) Response {
	log := log.At("enqueue").Namespace("event=%q", e.EventID()).Start()

	if p.Queue == nil {
		return errorResponse(http.StatusInternalServerError, log.Error(ErrQueueNotConfigured))
	}

	body := raw

	if body == nil {
		data, err := json.Marshal(e)
		if err != nil {
			return errorResponse(http.StatusInternalServerError, log.Error(errors.WithStack(err)))
		}
		body = data
	}

	delay := p.delay()

	id, err := p.Queue.QueueSend(ctx, string(body), structs.QueueSendOptions{
		Attributes: map[string]string{
			"eventId":   e.EventID(),
			"device":    e.Device(),
			"timestamp": strconv.FormatInt(e.Timestamp, 10),
		},
		Delay: delay,
	})
	if err != nil {
		log.Error(err)
		return errorResponse(http.StatusInternalServerError, errors.New("failed to enqueue alarm"))
	}

	log.Successf("id=%s delay=%s", id, delay)

	return jsonResponse(http.StatusOK, Acknowledgment{
		EventID:             e.EventID(),
		MessageID:           id,
		DelaySeconds:        int64(delay / time.Second),
		EstimatedCompletion: p.now().Add(delay).UTC().Format(time.RFC3339),
		Message:             "alarm accepted for processing",
	})
}

func jsonResponse(code int, v interface{}) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err)
	}

	return Response{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

func errorResponse(code int, err error) Response {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})

	return Response{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}
