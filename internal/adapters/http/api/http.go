// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/okian/gamegraph/internal/domain/types"
	"github.com/okian/gamegraph/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Resolve(ctx context.Context, input string) (types.Resolved, error)
	Lookup(ctx context.Context, input string) (model.AccountID, error)
	Overview(ctx context.Context, id model.AccountID) (types.Overview, error)
	Achievements(ctx context.Context, id model.AccountID) (types.Achievements, error)
	FriendsView(ctx context.Context, id model.AccountID) (types.FriendsView, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	resolveHandler  *ResolveHandler
	accountsHandler *AccountsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		resolveHandler:  NewResolveHandler(deps, o.logger),
		accountsHandler: NewAccountsHandler(deps, o.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	handle("/stats", "stats", s.statsHandler.HandleStats)
	handle("GET /resolve", "resolve", s.resolveHandler.HandleResolve)
	handle("GET /accounts/{id}/overview", "overview", s.accountsHandler.HandleOverview)
	handle("GET /accounts/{id}/achievements", "achievements", s.accountsHandler.HandleAchievements)
	handle("GET /accounts/{id}/friends", "friends", s.accountsHandler.HandleFriends)
}

// Option configures the Server.
type Option func(*options)

type options struct {
	logger logger.Logger
}

// WithLogger sets the logger used for unexpected handler failures.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps engine failures onto HTTP statuses. Unexpected
// failures are logged and reported without internal detail.
func writeServiceError(ctx context.Context, log logger.Logger, w http.ResponseWriter, err error) {
	switch {
	case catalog.IsPrivateProfile(err):
		writeError(w, http.StatusForbidden, "private_profile", err)
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		log.Error(ctx, "request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
