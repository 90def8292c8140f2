// Package server is the collaborator API the portals talk to: procurement and
// proposal storage, business search and the chat assistant.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/civicsource/civicsource/internal/ai"
	"github.com/civicsource/civicsource/internal/civic"
	"github.com/civicsource/civicsource/internal/logger"
	"github.com/civicsource/civicsource/internal/search"
	"github.com/civicsource/civicsource/internal/store"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	DefaultAddr     = ":5000"
	chatTimeout     = 30 * time.Second
	shutdownTimeout = 5 * time.Second
	maxRequestBody  = 1 << 20
)

// Searcher finds candidate businesses.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]civic.Candidate, error)
}

type Server struct {
	store    store.Store
	searcher Searcher
	replier  ai.Replier
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func New(st store.Store, searcher Searcher, replier ai.Replier, log *zap.Logger) *Server {
	if replier == nil {
		replier = ai.Static{}
	}
	return &Server{
		store:    st,
		searcher: searcher,
		replier:  replier,
		validate: validator.New(),
		logger:   logger.Component(log, "server"),
		now:      time.Now,
	}
}

// Handler returns the API routes wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /api/procurements", s.createProcurement)
	mux.HandleFunc("GET /api/procurements/{id}", s.getProcurement)
	mux.HandleFunc("GET /api/procurements/{id}/proposals", s.listProposals)
	mux.HandleFunc("POST /api/proposals", s.createProposal)
	mux.HandleFunc("GET /api/search", s.searchBusinesses)
	mux.HandleFunc("POST /chat", s.chat)

	return s.logRequests(cors(mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
