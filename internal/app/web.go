package app

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/deviceinfo/internal/config"
	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

//go:embed web/index.html
var indexHTML []byte

const (
	wsSendBuffer   = 16
	wsWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsClient is one browser connection. Its writer goroutine drains send.
type wsClient struct {
	conn *websocket.Conn
	send chan StateView
}

// WebServer serves the current state over HTTP and pushes every change to
// connected websocket clients.
type WebServer struct {
	m       *device.Manager
	unwatch func()

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func NewWebServer(m *device.Manager) *WebServer {
	s := &WebServer{
		m:       m,
		clients: make(map[*wsClient]struct{}),
	}
	s.unwatch = m.Watch(s.broadcast)
	return s
}

// Handler returns the routes: / (page), /api/state (JSON) and /ws (push).
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Close stops watching the manager and drops all websocket clients.
func (s *WebServer) Close() {
	s.unwatch()

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.dropLocked(c)
	}
}

func (s *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *WebServer) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newStateView(s.m.State())); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan StateView, wsSendBuffer)}

	// Register and queue the current state under one lock so the client
	// never sees a broadcast older than its first message.
	s.mu.Lock()
	s.clients[c] = struct{}{}
	c.send <- newStateView(s.m.State())
	s.mu.Unlock()

	go s.writeLoop(c)

	// Browsers never send anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket error: %v", err)
			}
			break
		}
	}

	s.mu.Lock()
	s.dropLocked(c)
	s.mu.Unlock()
}

func (s *WebServer) writeLoop(c *wsClient) {
	for v := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteJSON(v); err != nil {
			log.Printf("web: websocket write error: %v", err)
			c.conn.Close()
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.conn.Close()
}

// broadcast queues s for every client. A client whose buffer is full is
// dropped rather than allowed to stall delivery.
func (s *WebServer) broadcast(st orientation.State) {
	v := newStateView(st)

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- v:
		default:
			log.Printf("web: dropping slow websocket client %s", c.conn.RemoteAddr())
			s.dropLocked(c)
		}
	}
}

func (s *WebServer) dropLocked(c *wsClient) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
}

// RunWeb serves the device state on WEB_SERVER_PORT until ctx is done.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()
	m, err := startManager(cfg)
	if err != nil {
		return err
	}
	defer m.Stop()

	ws := NewWebServer(m)
	defer ws.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: ws.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("web: server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("web: shutting down")
	return nil
}
