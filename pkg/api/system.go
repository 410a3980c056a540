package api

import (
	"io"
	"net/http"

	"github.com/alarmvault/alarmvault/pkg/httperr"
	"github.com/pkg/errors"
)

type SummaryView struct {
	DeadLetter DeadLetterView    `json:"deadLetter"`
	Config     map[string]string `json:"config"`
}

type DeadLetterView struct {
	ApproximateDepth *int64 `json:"approximateDepth"`
	Error            string `json:"error,omitempty"`
}

// Summary reports the dead-letter backlog and the non-secret configuration.
// The depth is approximate and a failure to read it is reported inline.
func (s *Server) Summary(w http.ResponseWriter, r *http.Request) *httperr.Error {
	v := SummaryView{Config: s.Options.Summary}

	if v.Config == nil {
		v.Config = map[string]string{}
	}

	switch {
	case s.Queue == nil:
		v.DeadLetter.Error = "queue is not configured"
	default:
		n, err := s.Queue.QueueDepth(r.Context(), s.Options.DeadLetterQueueURL)
		if err != nil {
			v.DeadLetter.Error = err.Error()
		} else {
			v.DeadLetter.ApproximateDepth = &n
		}
	}

	return renderJSON(w, http.StatusOK, v)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, "ok\n")
}

func notFound(w http.ResponseWriter, r *http.Request) *httperr.Error {
	return httperr.NotFound(errors.Errorf("no route for %s %s", r.Method, r.URL.Path))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) *httperr.Error {
	return httperr.Errorf(http.StatusMethodNotAllowed, "method not allowed: %s %s", r.Method, r.URL.Path)
}
