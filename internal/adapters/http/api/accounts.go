package api

import (
	"net/http"
	"strings"

	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/okian/gamegraph/pkg/logger"
)

// AccountsHandler serves the per-account views. The {id} segment may be a
// SteamID64 or a vanity name.
type AccountsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(deps Dependencies, log logger.Logger) *AccountsHandler {
	return &AccountsHandler{deps: deps, logger: log}
}

// account resolves the {id} path value, writing the error response itself
// when resolution fails.
func (h *AccountsHandler) account(w http.ResponseWriter, r *http.Request) (model.AccountID, bool) {
	raw := strings.TrimSpace(r.PathValue("id"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingAccount)
		return "", false
	}
	id, err := h.deps.Lookup(r.Context(), raw)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return "", false
	}
	return id, true
}

// HandleOverview handles GET /accounts/{id}/overview requests.
func (h *AccountsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.account(w, r)
	if !ok {
		return
	}
	overview, err := h.deps.Overview(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HandleAchievements handles GET /accounts/{id}/achievements requests.
func (h *AccountsHandler) HandleAchievements(w http.ResponseWriter, r *http.Request) {
	id, ok := h.account(w, r)
	if !ok {
		return
	}
	stats, err := h.deps.Achievements(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleFriends handles GET /accounts/{id}/friends requests.
func (h *AccountsHandler) HandleFriends(w http.ResponseWriter, r *http.Request) {
	id, ok := h.account(w, r)
	if !ok {
		return
	}
	view, err := h.deps.FriendsView(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
