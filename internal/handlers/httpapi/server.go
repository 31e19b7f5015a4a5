// Package httpapi serves the agent's operational endpoints: Prometheus
// metrics, a liveness probe and a JSON status snapshot.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	addr    string
	metrics http.Handler
	status  interfaces.StatusUsecase
	logger  *zap.Logger

	httpServer *http.Server
	boundAddr  string
}

func NewServer(addr string, metrics http.Handler, status interfaces.StatusUsecase, logger *zap.Logger) *Server {
	return &Server{
		addr:    addr,
		metrics: metrics,
		status:  status,
		logger:  logger.Named("httpapi"),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Start binds the listener synchronously and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind metrics listener %s: %w", s.addr, err)
	}

	s.boundAddr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", zap.Error(err))
		}
	}()

	s.logger.Info("serving metrics", zap.String("addr", s.boundAddr))
	return nil
}

// Addr returns the bound listener address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.boundAddr != "" {
		return s.boundAddr
	}
	return s.addr
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type tickView struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	DurationMs  int64     `json:"durationMs"`
	Result      string    `json:"result"`
	FetchStatus string    `json:"fetchStatus"`
	FetchError  string    `json:"fetchError,omitempty"`
	Received    int       `json:"received"`
	Inserted    int       `json:"inserted"`
	Failed      int       `json:"failed"`
	Published   int       `json:"published"`
}

type statusView struct {
	StartedAt     time.Time `json:"startedAt"`
	SchemaReady   bool      `json:"schemaReady"`
	Ticks         int64     `json:"ticks"`
	SkippedTicks  int64     `json:"skippedTicks"`
	FailedFetches int64     `json:"failedFetches"`
	Received      int64     `json:"received"`
	Inserted      int64     `json:"inserted"`
	Failed        int64     `json:"failed"`
	Published     int64     `json:"published"`
	LastTick      *tickView `json:"lastTick"`
}

func newStatusView(snap models.StatusSnapshot) statusView {
	v := statusView{
		StartedAt:     snap.StartedAt,
		SchemaReady:   snap.SchemaReady,
		Ticks:         snap.Ticks,
		SkippedTicks:  snap.SkippedTicks,
		FailedFetches: snap.FailedFetches,
		Received:      snap.Received,
		Inserted:      snap.Inserted,
		Failed:        snap.Failed,
		Published:     snap.Published,
	}
	if last := snap.Last; last != nil {
		v.LastTick = &tickView{
			ID:          last.ID,
			StartedAt:   last.StartedAt,
			DurationMs:  last.Duration.Milliseconds(),
			Result:      last.Result(),
			FetchStatus: last.FetchStatus.String(),
			Received:    last.Received,
			Inserted:    last.Inserted,
			Failed:      last.Failed,
			Published:   last.Published,
		}
		if last.FetchErr != nil {
			v.LastTick.FetchError = last.FetchErr.Error()
		}
	}
	return v
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(newStatusView(s.status.Snapshot())); err != nil {
		s.logger.Error("failed to encode status response", zap.Error(err))
	}
}
