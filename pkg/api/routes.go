package api

func (s *Server) setupRoutes() {
	s.Router.HandleFunc("/", s.api("webhook", s.Webhook)).Methods("POST")
	s.Router.HandleFunc("/webhook", s.api("webhook", s.Webhook)).Methods("POST")

	s.Router.HandleFunc("/events/latest", s.api("event.latest", s.EventLatest)).Methods("GET")
	s.Router.HandleFunc("/events/{eventId}", s.api("event.get", s.EventGet)).Methods("GET")
	s.Router.HandleFunc("/events/{eventId}/video", s.api("event.video", s.EventVideo)).Methods("GET")

	s.Router.HandleFunc("/summary", s.api("summary", s.Summary)).Methods("GET")

	s.Router.HandleFunc("/health", s.Health).Methods("GET")

	s.Router.NotFoundHandler = s.api("not-found", notFound)
	s.Router.MethodNotAllowedHandler = s.api("method-not-allowed", methodNotAllowed)
}
