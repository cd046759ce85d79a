package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fortuna/mlbh2h/internal/backfill"
	"github.com/gorilla/mux"
)

// RouteRegistrar mounts extra routes, such as the websocket feed.
type RouteRegistrar interface {
	Register(router *mux.Router)
}

// Server represents the REST API server
type Server struct {
	server *http.Server
	router *mux.Router
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, backfillSvc *backfill.Service, extra ...RouteRegistrar) *Server {
	backfillHandler := NewBackfillHandler(backfillSvc)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/dates", handler.GetDates).Methods("GET")

	// Leagues
	api.HandleFunc("/leagues", handler.ListLeagues).Methods("GET")
	api.HandleFunc("/leagues/{league}/headers", handler.GetHeaders).Methods("GET")
	api.HandleFunc("/leagues/{league}/report", handler.GetReport).Methods("GET")
	api.HandleFunc("/leagues/{league}/top", handler.GetTop).Methods("GET")
	api.HandleFunc("/leagues/{league}/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/leagues/{league}/outstanding", handler.GetOutstanding).Methods("GET")
	api.HandleFunc("/leagues/{league}/weekly", handler.GetWeekly).Methods("GET")

	// Backfill operations
	api.HandleFunc("/backfill", backfillHandler.HandleBackfillRequest).Methods("POST")
	api.HandleFunc("/backfill/status", backfillHandler.HandleBackfillStatus).Methods("GET")
	api.HandleFunc("/backfill/jobs/{jobID}", backfillHandler.HandleBackfillJob).Methods("GET")

	for _, r := range extra {
		r.Register(router)
	}

	return &Server{
		router: router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
