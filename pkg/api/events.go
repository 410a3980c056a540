package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/httperr"
	"github.com/alarmvault/alarmvault/pkg/keys"
	"github.com/alarmvault/alarmvault/pkg/search"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const maxWebhookBody = 1 << 20

var errStorageNotConfigured = errors.New("storage is not configured")

// EventView is the public shape of a stored event. Device sources are never
// included.
type EventView struct {
	EventID  string              `json:"eventId"`
	Event    *structs.AlarmEvent `json:"event,omitempty"`
	EventKey string              `json:"eventKey,omitempty"`
	Video    *VideoLink          `json:"video,omitempty"`
}

type VideoLink struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	FileName  string `json:"fileName"`
	Size      int64  `json:"size,omitempty"`
	ExpiresAt string `json:"expiresAt"`
}

// Webhook accepts an alarm from the gateway and hands it to the delay queue.
func (s *Server) Webhook(w http.ResponseWriter, r *http.Request) *httperr.Error {
	if s.Pipeline == nil {
		return httperr.Server(errors.New("pipeline is not configured"))
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return httperr.Errorf(http.StatusBadRequest, "could not read body: %s", err)
	}

	res := s.Pipeline.ProcessWebhook(r.Context(), body)

	for k, v := range res.Headers {
		w.Header().Set(k, v)
	}

	w.WriteHeader(res.StatusCode)

	if _, err := io.WriteString(w, res.Body); err != nil {
		return httperr.Server(err)
	}

	return nil
}

// EventLatest returns the newest event that has a video.
func (s *Server) EventLatest(w http.ResponseWriter, r *http.Request) *httperr.Error {
	if s.Storage == nil {
		return httperr.Server(errStorageNotConfigured)
	}

	ctx := r.Context()

	res, err := search.Latest(ctx, s.Storage, s.searchOptions())
	if err != nil {
		return httperr.Classify(err)
	}

	v := EventView{EventID: eventIDFromKey(res.Key)}

	ev, eventKey, err := s.fetchEvent(ctx, keys.WithExt(res.Key, keys.ExtEvent))
	switch {
	case err == nil:
		v.Event = ev.Sanitized()
		v.EventKey = eventKey
		v.EventID = helpers.CoalesceString(ev.EventID(), v.EventID)
	case !structs.ErrorNotFound(err):
		return httperr.Classify(err)
	}

	link, err := s.videoLink(ctx, res.Key, originalFileName(ev))
	if err != nil {
		return httperr.Classify(err)
	}

	v.Video = link

	return renderJSON(w, http.StatusOK, v)
}

// EventGet returns a stored event and, when it exists, a link to its video.
func (s *Server) EventGet(w http.ResponseWriter, r *http.Request) *httperr.Error {
	if s.Storage == nil {
		return httperr.Server(errStorageNotConfigured)
	}

	ctx := r.Context()
	id := mux.Vars(r)["eventId"]

	res, err := search.ByEventID(ctx, s.Storage, id, keys.ExtEvent, s.searchOptions())
	if err != nil {
		return httperr.Classify(err)
	}

	ev, eventKey, err := s.fetchEvent(ctx, res.Key)
	if err != nil {
		return httperr.Classify(err)
	}

	v := EventView{
		EventID:  helpers.CoalesceString(ev.EventID(), id),
		Event:    ev.Sanitized(),
		EventKey: eventKey,
	}

	video := keys.WithExt(res.Key, keys.ExtVideo)

	exists, err := s.Storage.ObjectExists(ctx, video)
	if err != nil {
		return httperr.Classify(err)
	}

	if exists {
		link, err := s.videoLink(ctx, video, originalFileName(ev))
		if err != nil {
			return httperr.Classify(err)
		}
		v.Video = link
	}

	return renderJSON(w, http.StatusOK, v)
}

// EventVideo returns a download link for an event's video.
func (s *Server) EventVideo(w http.ResponseWriter, r *http.Request) *httperr.Error {
	if s.Storage == nil {
		return httperr.Server(errStorageNotConfigured)
	}

	ctx := r.Context()
	id := mux.Vars(r)["eventId"]

	res, err := search.ByEventID(ctx, s.Storage, id, keys.ExtVideo, s.searchOptions())
	if structs.ErrorNotFound(err) {
		return httperr.NotFound(errors.Errorf("no video for event: %s", id))
	}
	if err != nil {
		return httperr.Classify(err)
	}

	link, err := s.videoLink(ctx, res.Key, "")
	if err != nil {
		return httperr.Classify(err)
	}

	return renderJSON(w, http.StatusOK, link)
}

func (s *Server) fetchEvent(ctx context.Context, key string) (*structs.AlarmEvent, string, error) {
	var e structs.AlarmEvent

	if err := helpers.FetchJSON(ctx, s.Storage, key, &e); err != nil {
		return nil, "", err
	}

	return &e, key, nil
}

// videoLink presigns key with the most human friendly filename available:
// the name recorded when the video was stored, then hint, then the key.
func (s *Server) videoLink(ctx context.Context, key, hint string) (*VideoLink, error) {
	o, err := s.Storage.ObjectHead(ctx, key)
	if err != nil {
		return nil, err
	}

	name := helpers.CoalesceString(o.Filename, hint, keys.Filename(key))
	expiry := s.presignExpiry()

	url, err := s.Storage.ObjectPresign(ctx, key, structs.ObjectPresignOptions{Expiry: expiry, Filename: name})
	if err != nil {
		return nil, err
	}

	return &VideoLink{
		Key:       key,
		URL:       url,
		FileName:  name,
		Size:      o.Size,
		ExpiresAt: s.now().Add(expiry).UTC().Format(time.RFC3339),
	}, nil
}

func (s *Server) searchOptions() search.Options {
	return search.Options{
		Days:     s.Options.SearchDays,
		Location: s.Options.Location,
		Now:      s.now(),
	}
}

func originalFileName(e *structs.AlarmEvent) string {
	if t := e.Trigger(); t != nil {
		return t.OriginalFileName
	}
	return ""
}

// eventIDFromKey reads the event id from a key named {eventId}_{device}_{ts}.
func eventIDFromKey(key string) string {
	base := keys.Filename(key)

	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return ""
	}

	return strings.Join(parts[:len(parts)-2], "_")
}
