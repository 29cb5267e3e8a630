package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/weather_station/internal/env"
	"github.com/relabs-tech/weather_station/internal/upload"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // LAN-only status page
	},
}

// UploadStatus is the last outcome for one target as served by /api/uploads.
type UploadStatus struct {
	Target     string  `json:"target"`
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
	ReadingAt  string  `json:"readingAt"`
	DurationMs float64 `json:"durationMs"`
}

// Status holds what the status server shows: the latest reading and the
// latest upload result per target. Live readings are pushed to websocket
// clients; a slow client only ever sees the newest one.
type Status struct {
	mu       sync.RWMutex
	last     env.Reading
	have     bool
	uploads  map[string]UploadStatus
	watchers map[chan env.Reading]struct{}
}

func NewStatus() *Status {
	return &Status{
		uploads:  make(map[string]UploadStatus),
		watchers: make(map[chan env.Reading]struct{}),
	}
}

// SetReading records r and pushes it to every websocket client.
func (s *Status) SetReading(r env.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = r
	s.have = true
	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- r
	}
}

// SetUpload records the outcome of an upload attempt.
func (s *Status) SetUpload(res upload.Result) {
	u := UploadStatus{
		Target:     res.Target,
		Status:     res.Status.String(),
		DurationMs: float64(res.Duration) / float64(time.Millisecond),
	}
	if !res.ReadingAt.IsZero() {
		u.ReadingAt = res.ReadingAt.UTC().Format(env.TimestampLayout)
	}
	if res.Err != nil {
		u.Error = res.Err.Error()
	}
	s.mu.Lock()
	s.uploads[res.Target] = u
	s.mu.Unlock()
}

// Latest returns the last reading, if any.
func (s *Status) Latest() (env.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.have
}

func (s *Status) watch() chan env.Reading {
	ch := make(chan env.Reading, 1)
	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Status) unwatch(ch chan env.Reading) {
	s.mu.Lock()
	delete(s.watchers, ch)
	s.mu.Unlock()
}

// Handler returns the status server routes. metrics may be nil.
func (s *Status) Handler(metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	// JSON API endpoint: latest reading
	mux.HandleFunc("/api/reading", func(w http.ResponseWriter, r *http.Request) {
		reading, ok := s.Latest()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, reading)
	})

	mux.HandleFunc("/api/uploads", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		out := make(map[string]UploadStatus, len(s.uploads))
		for k, v := range s.uploads {
			out[k] = v
		}
		s.mu.RUnlock()
		writeJSON(w, out)
	})

	mux.HandleFunc("/ws", s.handleWS)

	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleWS streams every new reading to the client, starting with the
// current one.
func (s *Status) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := s.watch()
	defer s.unwatch(ch)

	// the reader only detects the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	if reading, ok := s.Latest(); ok {
		if err := conn.WriteJSON(reading); err != nil {
			return
		}
	}
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case reading := <-ch:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(reading); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

// ServeStatus runs the status server on addr until ctx is done.
func ServeStatus(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("web: status server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
