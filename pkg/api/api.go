// Package api routes the webhook and retrieval endpoints.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alarmvault/alarmvault/pkg/httperr"
	"github.com/alarmvault/alarmvault/pkg/pipeline"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/convox/logger"
	"github.com/gorilla/mux"
	uuid "github.com/satori/go.uuid"
)

const (
	DefaultPresignExpiry = time.Hour

	HeaderAPIKey    = "X-Api-Key"
	HeaderRequestID = "X-Request-Id"
)

type HandlerFunc func(http.ResponseWriter, *http.Request) *httperr.Error

type Options struct {
	APIKey             string
	DeadLetterQueueURL string
	Location           *time.Location
	Now                func() time.Time
	PresignExpiry      time.Duration
	SearchDays         int
	Summary            map[string]string
}

type Server struct {
	Logger   *logger.Logger
	Pipeline *pipeline.Pipeline
	Queue    structs.Queue
	Router   *mux.Router
	Storage  structs.Storage

	Options Options
}

// New wires the routes around a pipeline. Queue and storage default to the
// pipeline's own.
func New(p *pipeline.Pipeline, opts Options) *Server {
	s := &Server{
		Logger:   logger.New("ns=api"),
		Pipeline: p,
		Router:   mux.NewRouter(),
		Options:  opts,
	}

	if p != nil {
		s.Queue = p.Queue
		s.Storage = p.Storage
	}

	s.setupRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) api(at string, handler HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewV4().String()
		}

		w.Header().Set(HeaderRequestID, id)

		log := s.Logger.At(at).Namespace("id=%s method=%s path=%q", id, r.Method, r.URL.Path).Start()

		if !s.authorized(r) {
			renderError(w, httperr.Errorf(http.StatusUnauthorized, "invalid api key"))
			log.Logf("state=error type=user code=%d", http.StatusUnauthorized)
			return
		}

		if err := handler(w, r); err != nil {
			renderError(w, err)

			if err.User() {
				log.Logf("state=error type=user code=%d error=%q", err.Code(), err.Error())
				return
			}

			err.Save(at)
			log.Error(err)
			return
		}

		log.Success()
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.Options.APIKey == "" {
		return true
	}

	return subtle.ConstantTimeCompare([]byte(r.Header.Get(HeaderAPIKey)), []byte(s.Options.APIKey)) == 1
}

func (s *Server) now() time.Time {
	if s.Options.Now == nil {
		return time.Now()
	}
	return s.Options.Now()
}

func (s *Server) presignExpiry() time.Duration {
	if s.Options.PresignExpiry <= 0 {
		return DefaultPresignExpiry
	}
	return s.Options.PresignExpiry
}

func renderJSON(w http.ResponseWriter, code int, v interface{}) *httperr.Error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return httperr.Server(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(append(data, '\n')); err != nil {
		return httperr.Server(err)
	}

	return nil
}

func renderError(w http.ResponseWriter, err *httperr.Error) {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code())
	w.Write(append(data, '\n'))
}
