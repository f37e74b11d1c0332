package exchange

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ServerConfig controls the HTTP exchange endpoint.
type ServerConfig struct {
	Addr string

	// LogFile enables rotating file logs; empty logs to stderr.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

// Server serves the exchange protocol over HTTP. POST a request document
// to /exchange and the matched case or nearest-match report comes back.
type Server struct {
	engine *Engine
	log    zerolog.Logger
	http   *http.Server
}

// NewServer builds a Server around an engine.
func NewServer(engine *Engine, cfg ServerConfig) *Server {
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
		}
	}
	s := &Server{
		engine: engine,
		log:    zerolog.New(w).With().Timestamp().Str("component", "exchange").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/exchange", s.handleExchange)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.http.ListenAndServe()
	}()
	s.log.Info().Str("addr", s.http.Addr).Msg("exchange server listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	log := s.log.With().Str("request_id", reqID).Logger()
	start := time.Now()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error().Err(err).Msg("reading exchange request")
		http.Error(w, "reading request body", http.StatusBadRequest)
		return
	}

	response, err := s.engine.Exchange(body)
	if err != nil {
		log.Error().Err(err).Msg("exchange failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-Id", reqID)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("writing exchange response")
		return
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("response_bytes", len(response)).
		Msg("exchange served")
}
