package server

import (
	"log"
	"net/http"

	"github.com/pocketpause/pausecore/pkg/notify"
	"github.com/pocketpause/pausecore/pkg/parser"
	"github.com/pocketpause/pausecore/pkg/rules"
)

// Server exposes the parse pipeline, rules store, and scheduling math over
// a small JSON API.
type Server struct {
	Parser   *parser.Parser
	Rules    *rules.Store
	Queue    *notify.Queue // optional
	Username string
	Password string
}

func New(p *parser.Parser, r *rules.Store, q *notify.Queue, user, pass string) *Server {
	return &Server{
		Parser:   p,
		Rules:    r,
		Queue:    q,
		Username: user,
		Password: pass,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/parse", s.basicAuth(s.handleParse))
	mux.HandleFunc("GET /api/metrics", s.basicAuth(s.handleMetrics))
	mux.HandleFunc("POST /api/feedback", s.basicAuth(s.handleFeedback))
	mux.HandleFunc("GET /api/rules", s.basicAuth(s.handleRules))
	mux.HandleFunc("POST /api/schedule/preview", s.basicAuth(s.handleSchedulePreview))
	mux.HandleFunc("GET /api/notifications/pending", s.basicAuth(s.handlePendingCount))

	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
