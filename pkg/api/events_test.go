package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alarmvault/alarmvault/pkg/api"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/alarmvault/alarmvault/pkg/test"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	eventKey = "2023-11-14/evt123_AABBCCDDEEFF_1700000000000.json"
	videoKey = "2023-11-14/evt123_AABBCCDDEEFF_1700000000000.mp4"
)

func storedEvent(t *testing.T, s *test.Storage, withVideo bool) {
	e, err := structs.ParseAlarmEvent([]byte(alarmJSON))
	require.NoError(t, err)

	e.Alarm.Triggers[0].OriginalFileName = "clip.mp4"

	data, err := json.Marshal(e)
	require.NoError(t, err)

	s.Objects[eventKey] = test.StoredObject{Data: data, ContentType: "application/json"}

	if withVideo {
		s.Objects[videoKey] = test.StoredObject{Data: []byte("video"), ContentType: "video/mp4", Filename: "clip.mp4"}
	}
}

func TestEventGet(t *testing.T) {
	s := test.NewStorage()
	storedEvent(t, s, true)

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/evt123", nil))
	h.AssertCode(t, 200)

	var v api.EventView
	h.Decode(t, &v)

	require.Equal(t, "evt123", v.EventID)
	require.Equal(t, eventKey, v.EventKey)
	require.Nil(t, v.Event.Alarm.Sources)
	require.Equal(t, "motion", v.Event.Trigger().Key)

	require.NotNil(t, v.Video)
	require.Equal(t, videoKey, v.Video.Key)
	require.Equal(t, "clip.mp4", v.Video.FileName)
	require.Equal(t, int64(5), v.Video.Size)
	require.Equal(t, "2023-11-14T23:20:00Z", v.Video.ExpiresAt)
	require.Equal(t, `attachment; filename="clip.mp4"`, presignedFilename(t, v.Video.URL))
}

func TestEventGetWithoutVideo(t *testing.T) {
	s := test.NewStorage()
	storedEvent(t, s, false)

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/evt123", nil))
	h.AssertCode(t, 200)

	var v api.EventView
	h.Decode(t, &v)

	require.Equal(t, "evt123", v.EventID)
	require.Nil(t, v.Video)
}

func TestEventGetNotFound(t *testing.T) {
	_, h := testServer(t, nil, test.NewStorage(), api.Options{SearchDays: 3})

	require.NoError(t, h.Request("GET", "/events/missing", nil))
	h.AssertCode(t, 404)
	h.AssertError(t, "event not found: missing")
}

func TestEventGetListFailure(t *testing.T) {
	s := test.NewStorage()
	s.Err["2023-11-14/evt123_"] = fmt.Errorf("access denied")

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/evt123", nil))
	h.AssertCode(t, 500)
	h.AssertError(t, "list 2023-11-14: access denied")
}

func TestEventGetVideoCheckFailure(t *testing.T) {
	s := test.NewStorage()
	storedEvent(t, s, true)
	s.Err[videoKey] = fmt.Errorf("throttled")

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/evt123", nil))
	h.AssertCode(t, 500)
	h.AssertError(t, "throttled")
}

func TestEventGetFilenameFromEvent(t *testing.T) {
	s := test.NewStorage()
	storedEvent(t, s, false)
	s.Objects[videoKey] = test.StoredObject{Data: []byte("video"), ContentType: "video/mp4"}

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/evt123", nil))
	h.AssertCode(t, 200)

	var v api.EventView
	h.Decode(t, &v)

	require.NotNil(t, v.Video)
	require.Equal(t, "clip.mp4", v.Video.FileName)
}

func TestEventVideo(t *testing.T) {
	s := test.NewStorage()
	storedEvent(t, s, true)

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/evt123/video", nil))
	h.AssertCode(t, 200)

	var v api.VideoLink
	h.Decode(t, &v)

	require.Equal(t, videoKey, v.Key)
	require.Equal(t, "clip.mp4", v.FileName)
}

func TestEventVideoMissing(t *testing.T) {
	s := test.NewStorage()
	storedEvent(t, s, false)

	_, h := testServer(t, nil, s, api.Options{SearchDays: 2})

	require.NoError(t, h.Request("GET", "/events/evt123/video", nil))
	h.AssertCode(t, 404)
	h.AssertError(t, "no video for event: evt123")
}

func TestEventVideoKeyFilenameFallback(t *testing.T) {
	s := test.NewStorage()
	s.Objects[videoKey] = test.StoredObject{Data: []byte("video")}

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/evt123/video", nil))
	h.AssertCode(t, 200)

	var v api.VideoLink
	h.Decode(t, &v)

	require.Equal(t, "evt123_AABBCCDDEEFF_1700000000000.mp4", v.FileName)
}

func TestEventLatest(t *testing.T) {
	s := test.NewStorage()
	storedEvent(t, s, true)
	s.Objects["2023-11-13/evt001_AABBCCDDEEFF_1699900000000.mp4"] = test.StoredObject{Data: []byte("old")}

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/latest", nil))
	h.AssertCode(t, 200)

	var v api.EventView
	h.Decode(t, &v)

	require.Equal(t, "evt123", v.EventID)
	require.Equal(t, videoKey, v.Video.Key)
	require.Equal(t, "clip.mp4", v.Video.FileName)
	require.Equal(t, []string{"2023-11-14/"}, s.Listed())
}

func TestEventLatestWithoutEventJSON(t *testing.T) {
	s := test.NewStorage()
	s.Objects["2023-11-12/evt_9_AABBCCDDEEFF_1699800000000.mp4"] = test.StoredObject{Data: []byte("v")}

	_, h := testServer(t, nil, s, api.Options{})

	require.NoError(t, h.Request("GET", "/events/latest", nil))
	h.AssertCode(t, 200)

	var v api.EventView
	h.Decode(t, &v)

	require.Equal(t, "evt_9", v.EventID)
	require.Nil(t, v.Event)
	require.Equal(t, []string{"2023-11-14/", "2023-11-13/", "2023-11-12/"}, s.Listed())
}

func TestEventLatestNone(t *testing.T) {
	_, h := testServer(t, nil, test.NewStorage(), api.Options{SearchDays: 2})

	require.NoError(t, h.Request("GET", "/events/latest", nil))
	h.AssertCode(t, 404)
	h.AssertError(t, "no videos found in the last 2 days")
}

func TestEventsStorageNotConfigured(t *testing.T) {
	_, h := testServer(t, nil, nil, api.Options{})

	require.NoError(t, h.Request("GET", "/events/latest", nil))
	h.AssertCode(t, 500)
	h.AssertError(t, "storage is not configured")
}

func TestHandleProxy(t *testing.T) {
	s := test.NewStorage()
	storedEvent(t, s, true)

	srv, _ := testServer(t, nil, s, api.Options{APIKey: "secret"})

	res, err := srv.HandleProxy(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: "GET",
		Path:       "/events/evt123/video",
		Headers:    map[string]string{"x-api-key": "secret"},
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "gw-1",
		},
	})
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)
	require.Equal(t, "application/json", res.Headers["Content-Type"])
	require.Equal(t, "gw-1", res.Headers[api.HeaderRequestID])
	require.Contains(t, res.Body, `"fileName": "clip.mp4"`)
}

func TestHandleProxyBadBody(t *testing.T) {
	srv, _ := testServer(t, nil, nil, api.Options{})

	res, err := srv.HandleProxy(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      "POST",
		Path:            "/webhook",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	require.Equal(t, 400, res.StatusCode)
	require.Contains(t, res.Body, "invalid request")
}

// A webhook is acknowledged, processed after the delay and its video is then
// retrievable by event id under the name the viewer gave it.
func TestWebhookToRetrieval(t *testing.T) {
	s := test.NewStorage()
	q := &structs.MockQueue{}

	var queued string

	q.On("QueueSend", mock.Anything, mock.Anything, mock.MatchedBy(func(opts structs.QueueSendOptions) bool {
		return opts.Delay > 0 && opts.Attributes["eventId"] == "evt123"
	})).Run(func(args mock.Arguments) {
		queued = args.String(1)
	}).Return("m1", nil).Once()

	srv, _ := testServer(t, q, s, api.Options{})

	res, err := srv.HandleProxy(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/webhook",
		Body:       alarmJSON,
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)

	var ack struct {
		EventID      string `json:"eventId"`
		DelaySeconds int64  `json:"delaySeconds"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Body), &ack))
	require.Equal(t, "evt123", ack.EventID)
	require.Positive(t, ack.DelaySeconds)

	require.NoError(t, srv.Pipeline.HandleMessage(context.Background(), queued))

	require.Contains(t, s.Keys(), eventKey)
	require.Contains(t, s.Keys(), videoKey)

	res, err = srv.HandleProxy(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: "GET",
		Path:       "/events/evt123",
	})
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)

	var v api.EventView
	require.NoError(t, json.Unmarshal([]byte(res.Body), &v))
	require.Equal(t, "clip.mp4", v.Video.FileName)
	require.Equal(t, `attachment; filename="clip.mp4"`, presignedFilename(t, v.Video.URL))

	q.AssertExpectations(t)
}
