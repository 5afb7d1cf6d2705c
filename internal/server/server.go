package server

import (
	"embed"
	"io/fs"
	"net/http"

	"dealscope/internal/utils"
	"dealscope/pkg/pipeline"
)

//go:embed web
var WebFS embed.FS

// Server exposes the aggregate query surface over HTTP for the dashboard
// page. The session gate sits in front of every /api handler; with no
// password configured the gate is disabled.
type Server struct {
	Manager  *pipeline.Manager
	Password string
	sessions *sessionStore
}

func New(m *pipeline.Manager, password string) *Server {
	return &Server{
		Manager:  m,
		Password: password,
		sessions: newSessionStore(),
	}
}

// Handler builds the full route table. Split out from Start so tests can
// drive it with httptest.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/feeds", s.requireSession(s.handleFeeds))
	mux.HandleFunc("GET /api/state", s.requireSession(s.handleState))
	mux.HandleFunc("POST /api/refresh", s.requireSession(s.handleRefresh))
	mux.HandleFunc("GET /api/series/error-rate", s.requireSession(s.handleErrorRate))
	mux.HandleFunc("GET /api/series/error-types", s.requireSession(s.handleErrorTypes))
	mux.HandleFunc("GET /api/series/duration", s.requireSession(s.handleDuration))
	mux.HandleFunc("GET /api/associates", s.requireSession(s.handleAssociates))
	mux.HandleFunc("GET /api/years", s.requireSession(s.handleYears))
	mux.HandleFunc("GET /api/months", s.requireSession(s.handleMonths))

	webRoot, err := fs.Sub(WebFS, "web")
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.FileServer(http.FS(webRoot)))

	return mux, nil
}

func (s *Server) Start(addr string) error {
	h, err := s.Handler()
	if err != nil {
		return err
	}
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, h)
}
