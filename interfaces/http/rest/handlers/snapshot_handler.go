package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"semcanvas/application/ports"
	"semcanvas/pkg/common"
)

// maxSnapshotBytes bounds the accepted import payload
const maxSnapshotBytes = 32 << 20

// SnapshotHandler handles whole-collection export and restore
type SnapshotHandler struct {
	snapshots ports.SnapshotStore
	logger    *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(snapshots ports.SnapshotStore, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots, logger: logger}
}

// Export handles GET /snapshot
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.snapshots.Export(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="semcanvas-snapshot.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, data); err != nil {
		h.logger.Warn("failed to write snapshot response", zap.Error(err))
	}
}

// Import handles POST /snapshot
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "failed to read request body: "+err.Error())
		return
	}

	if err := h.snapshots.Import(r.Context(), string(body)); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "snapshot imported"})
}
