package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"semcanvas/application/queries"
	querybus "semcanvas/application/queries/bus"
	"semcanvas/pkg/common"
)

// GraphHandler serves the render-ready graph and collection statistics
type GraphHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{queryBus: queryBus, logger: logger}
}

// GetGraph handles GET /graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	data, err := h.queryBus.Ask(r.Context(), queries.GetGraphQuery{})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, data)
}

// GetCoherence handles GET /graph/coherence
func (h *GraphHandler) GetCoherence(w http.ResponseWriter, r *http.Request) {
	report, err := h.queryBus.Ask(r.Context(), queries.GetCoherenceQuery{})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}

// Search handles GET /search?q=&types=&limit=
func (h *GraphHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := queries.SearchArtifactsQuery{
		Query: r.URL.Query().Get("q"),
	}
	if types := r.URL.Query().Get("types"); types != "" {
		query.Types = strings.Split(types, ",")
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "limit must be an integer")
			return
		}
		query.Limit = n
	}

	views, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, views)
}
