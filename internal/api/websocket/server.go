package websocket

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server serves the progress feed. Its routes are mounted on the REST router.
type Server struct {
	hub    *Hub
	ctx    context.Context
	cancel context.CancelFunc
	log    *logrus.Entry
}

// NewServer creates a WebSocket server over hub. The hub must be running.
func NewServer(hub *Hub, log *logrus.Entry) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		hub:    hub,
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Router returns the websocket routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	s.Register(router)
	return router
}

// Register mounts the websocket routes on router.
func (s *Server) Register(router *mux.Router) {
	router.HandleFunc("/ws/progress", s.handleProgress).Methods("GET")
	router.HandleFunc("/ws/health", s.handleHealth).Methods("GET")
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("failed to upgrade connection")
		return
	}

	client := NewClient(uuid.NewString(), conn, s.hub, s.log)
	s.hub.Register(client)

	go client.WritePump(s.ctx)
	go client.ReadPump(s.ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"metrics": s.hub.Metrics(),
	})
}

// Shutdown stops the pumps of every connected client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	return ctx.Err()
}
