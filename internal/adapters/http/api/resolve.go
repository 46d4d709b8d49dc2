package api

import (
	"net/http"
	"strings"

	"github.com/okian/gamegraph/pkg/logger"
)

// ResolveHandler handles identifier resolution requests.
type ResolveHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(deps Dependencies, log logger.Logger) *ResolveHandler {
	return &ResolveHandler{deps: deps, logger: log}
}

// HandleResolve handles GET /resolve?input=... requests.
func (h *ResolveHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	input := strings.TrimSpace(r.URL.Query().Get("input"))
	if input == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingInput)
		return
	}
	resolved, err := h.deps.Resolve(r.Context(), input)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}
