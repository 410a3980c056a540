package api_test

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alarmvault/alarmvault/pkg/api"
	"github.com/alarmvault/alarmvault/pkg/capture"
	"github.com/alarmvault/alarmvault/pkg/credentials"
	"github.com/alarmvault/alarmvault/pkg/pipeline"
	"github.com/alarmvault/alarmvault/pkg/registry"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/alarmvault/alarmvault/pkg/test"
	"github.com/convox/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Output = &bytes.Buffer{}
}

const alarmJSON = `{"alarm":{"name":"Front","sources":[{"device":"AABBCCDDEEFF","type":"include"}],"triggers":[{"key":"motion","device":"AABBCCDDEEFF","eventId":"evt123"}],"eventPath":"/viewer/evt123"},"timestamp":1700000000000}`

var now = time.Date(2023, 11, 14, 22, 20, 0, 0, time.UTC)

type clipCapturer struct {
	dir  string
	name string
}

func (c *clipCapturer) Capture(ctx context.Context, req capture.Request) capture.Outcome {
	path := filepath.Join(c.dir, c.name)
	os.WriteFile(path, []byte("video"), 0644)

	return capture.Outcome{Kind: capture.Succeeded, Dir: c.dir, Path: path, FileName: c.name, Video: []byte("video")}
}

func testPipeline(t *testing.T, q structs.Queue, s structs.Storage) *pipeline.Pipeline {
	secrets := &structs.MockSecrets{}
	secrets.On("SecretGet", mock.Anything, "viewer").Return(&structs.Credentials{Hostname: "nvr.local", Username: "u", Password: "p"}, nil)

	dir := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.MkdirAll(dir, 0700))

	return &pipeline.Pipeline{
		Capturer:    &clipCapturer{dir: dir, name: "clip.mp4"},
		Credentials: credentials.NewCache(secrets, "viewer"),
		Queue:       q,
		Registry:    registry.New(registry.File{}, structs.Coordinates{X: 1, Y: 1}),
		Storage:     s,
		Options: pipeline.Options{
			Delay: 120 * time.Second,
			Now:   func() time.Time { return now },
		},
	}
}

func testServer(t *testing.T, q structs.Queue, s structs.Storage, opts api.Options) (*api.Server, *test.HandlerTest) {
	if opts.Now == nil {
		opts.Now = func() time.Time { return now }
	}

	srv := api.New(testPipeline(t, q, s), opts)

	return srv, test.NewHandler(srv)
}

func TestHealth(t *testing.T) {
	_, h := testServer(t, nil, nil, api.Options{APIKey: "secret"})

	require.NoError(t, h.Request("GET", "/health", nil))
	h.AssertCode(t, 200)
	require.Equal(t, "ok\n", string(h.Body()))
}

func TestAPIKey(t *testing.T) {
	_, h := testServer(t, nil, test.NewStorage(), api.Options{APIKey: "secret"})

	require.NoError(t, h.Request("GET", "/events/evt123", nil))
	h.AssertCode(t, 401)
	h.AssertError(t, "invalid api key")

	h.Headers[api.HeaderAPIKey] = "secret"

	require.NoError(t, h.Request("GET", "/events/evt123", nil))
	h.AssertCode(t, 404)
	h.AssertError(t, "event not found: evt123")
}

func TestRequestID(t *testing.T) {
	_, h := testServer(t, nil, nil, api.Options{})

	h.Headers[api.HeaderRequestID] = "req-1"

	require.NoError(t, h.Request("GET", "/summary", nil))
	require.Equal(t, "req-1", h.Header().Get(api.HeaderRequestID))
}

func TestUnknownRoute(t *testing.T) {
	_, h := testServer(t, nil, nil, api.Options{})

	require.NoError(t, h.Request("GET", "/nope", nil))
	h.AssertCode(t, 404)
	h.AssertError(t, "no route for GET /nope")
}

func TestWebhook(t *testing.T) {
	q := &structs.MockQueue{}
	q.On("QueueSend", mock.Anything, alarmJSON, mock.Anything).Return("m1", nil).Once()

	_, h := testServer(t, q, nil, api.Options{})

	require.NoError(t, h.Request("POST", "/webhook", []byte(alarmJSON)))
	h.AssertCode(t, 200)
	h.AssertJSON(t, `{"eventId":"evt123","messageId":"m1","delaySeconds":120,"estimatedCompletion":"2023-11-14T22:22:00Z","message":"alarm accepted for processing"}`)

	q.AssertExpectations(t)
}

func TestWebhookRoot(t *testing.T) {
	q := &structs.MockQueue{}
	q.On("QueueSend", mock.Anything, alarmJSON, mock.Anything).Return("m1", nil).Once()

	_, h := testServer(t, q, nil, api.Options{})

	require.NoError(t, h.Request("POST", "/", []byte(alarmJSON)))
	h.AssertCode(t, 200)

	q.AssertExpectations(t)
}

func TestWebhookInvalid(t *testing.T) {
	q := &structs.MockQueue{}

	_, h := testServer(t, q, nil, api.Options{})

	require.NoError(t, h.Request("POST", "/webhook", []byte(`{"timestamp":1}`)))
	h.AssertCode(t, 400)
	h.AssertError(t, "alarm: alarm object is required")

	q.AssertNotCalled(t, "QueueSend", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookQueueFailure(t *testing.T) {
	q := &structs.MockQueue{}
	q.On("QueueSend", mock.Anything, mock.Anything, mock.Anything).Return("", fmt.Errorf("throttled"))

	_, h := testServer(t, q, nil, api.Options{})

	require.NoError(t, h.Request("POST", "/webhook", []byte(alarmJSON)))
	h.AssertCode(t, 500)
	h.AssertError(t, "failed to enqueue alarm")
}

func TestSummary(t *testing.T) {
	q := &structs.MockQueue{}
	q.On("QueueDepth", mock.Anything, "https://sqs/dlq").Return(int64(3), nil)

	_, h := testServer(t, q, nil, api.Options{
		DeadLetterQueueURL: "https://sqs/dlq",
		Summary:            map[string]string{"bucket": "videos"},
	})

	require.NoError(t, h.Request("GET", "/summary", nil))
	h.AssertCode(t, 200)
	h.AssertJSON(t, `{"deadLetter":{"approximateDepth":3},"config":{"bucket":"videos"}}`)
}

func TestSummaryDepthUnavailable(t *testing.T) {
	q := &structs.MockQueue{}
	q.On("QueueDepth", mock.Anything, "").Return(int64(0), fmt.Errorf("queue is not configured"))

	_, h := testServer(t, q, nil, api.Options{})

	require.NoError(t, h.Request("GET", "/summary", nil))
	h.AssertCode(t, 200)
	h.AssertJSON(t, `{"deadLetter":{"approximateDepth":null,"error":"queue is not configured"},"config":{}}`)
}

func presignedFilename(t *testing.T, raw string) string {
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("response-content-disposition")
}
