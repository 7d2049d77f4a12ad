package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/coder/websocket"
)

const (
	rateLimitMaxRequests = 30
	rateLimitWindow      = 10 * time.Second

	idleTimeout       = 5 * time.Minute
	idleSweepInterval = time.Minute
)

type Server struct {
	port              int
	connectionManager *ConnectionManager
	roomManager       *RoomManager
	limiter           *RateLimiter
	health            *ConnectionHealth
	results           *ResultStore // nil when DATABASE_URL is unset

	revealDelay  time.Duration
	resolveDelay time.Duration
	roundDelay   time.Duration

	stopReaper chan struct{}
}

func NewServer() (*Server, *http.Server) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	srv := &Server{
		port:              port,
		connectionManager: NewConnectionManager(),
		roomManager:       NewRoomManager(),
		limiter:           NewRateLimiter(rateLimitMaxRequests, rateLimitWindow),
		health:            NewConnectionHealth(),
		revealDelay:       defaultRevealDelay,
		resolveDelay:      defaultResolveDelay,
		roundDelay:        defaultRoundDelay,
		stopReaper:        make(chan struct{}),
	}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		results, err := NewResultStore(ctx, databaseURL)
		if err != nil {
			log.Printf("Warning: result archive unavailable: %v", err)
		} else {
			srv.results = results
			log.Println("Result archive connected")
		}
	}

	go srv.reapIdleConnections()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", srv.port),
		Handler:      srv.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return srv, httpServer
}

// reapIdleConnections periodically closes sockets with no activity.
// The close wakes the connection's read loop, whose deferred cleanup
// handles room departure.
func (s *Server) reapIdleConnections() {
	ticker := time.NewTicker(idleSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopReaper:
			return
		case <-ticker.C:
			for _, connID := range s.health.GetInactiveConnections(idleTimeout) {
				if conn := s.connectionManager.GetConnection(connID); conn != nil {
					log.Printf("Closing idle connection %s", connID)
					conn.Close(websocket.StatusGoingAway, "Idle timeout")
				}
				s.health.RemoveConnection(connID)
			}
		}
	}
}

// Shutdown stops background work and releases the archive pool. Open
// websockets are torn down by the HTTP server's own shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopReaper)
	if s.results != nil {
		s.results.Close()
	}
	return nil
}
