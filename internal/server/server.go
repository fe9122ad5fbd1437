// Package server exposes the detection, calendar and evaluation pipeline as
// a JSON API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/omriShneor/whatsapp_eventer/internal/calendar"
	"github.com/omriShneor/whatsapp_eventer/internal/database"
	"github.com/omriShneor/whatsapp_eventer/internal/detector"
	"github.com/omriShneor/whatsapp_eventer/internal/evaluation"
	"github.com/omriShneor/whatsapp_eventer/internal/validator"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

type Server struct {
	db        *database.DB
	detector  detector.EventDetector
	mapper    *calendar.Mapper
	validator *validator.Validator
	corpus    *evaluation.Corpus
	logger    *slog.Logger
	httpSrv   *http.Server
	port      int
}

// ServerConfig holds the pipeline components the handlers use. Nil
// components get package defaults; DB is required.
type ServerConfig struct {
	DB        *database.DB
	Detector  detector.EventDetector
	Mapper    *calendar.Mapper
	Validator *validator.Validator
	Corpus    *evaluation.Corpus
	Logger    *slog.Logger
	Port      int
}

func New(cfg ServerConfig) *Server {
	s := &Server{
		db:        cfg.DB,
		detector:  cfg.Detector,
		mapper:    cfg.Mapper,
		validator: cfg.Validator,
		corpus:    cfg.Corpus,
		logger:    cfg.Logger,
		port:      cfg.Port,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.detector == nil {
		s.detector = detector.New(detector.Options{Logger: s.logger})
	}
	if s.mapper == nil {
		s.mapper = calendar.NewMapper(calendar.Options{Logger: s.logger})
	}
	if s.validator == nil {
		s.validator = validator.New(validator.Options{Logger: s.logger})
	}
	if s.corpus == nil {
		s.corpus = evaluation.MustLoadCorpus()
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Pipeline API
	mux.HandleFunc("POST /api/language", s.handleLanguage)
	mux.HandleFunc("POST /api/detect", s.handleDetect)
	mux.HandleFunc("POST /api/calendar", s.handleCalendar)
	mux.HandleFunc("POST /api/calendar/validate", s.handleValidate)
	mux.HandleFunc("POST /api/calendar/ics", s.handleICS)
	mux.HandleFunc("POST /api/calendar/google", s.handleGoogleEvents)

	// Evaluation API
	mux.HandleFunc("GET /api/evaluation/cases", s.handleListCases)
	mux.HandleFunc("POST /api/evaluation/runs", s.handleCreateRun)
	mux.HandleFunc("GET /api/evaluation/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/evaluation/runs/{id}", s.handleGetRun)
	mux.HandleFunc("DELETE /api/evaluation/runs/{id}", s.handleDeleteRun)
}

func (s *Server) Start() error {
	fmt.Printf("Starting HTTP server on http://localhost:%d\n", s.port)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers for browser clients
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
