package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dvloznov/hikmacash/internal/api/middleware"
	"github.com/dvloznov/hikmacash/internal/pipeline"
)

// Exporter is the export use case as seen by the HTTP layer.
type Exporter interface {
	Export(ctx context.Context, credential string, req pipeline.ExportRequest) (*pipeline.ExportResult, error)
}

// ExportHandler handles export requests.
type ExportHandler struct {
	exporter Exporter
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exporter Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

type exportResponse struct {
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	FileName    string    `json:"fileName"`
}

// Export handles POST /api/export
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req pipeline.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.exporter.Export(r.Context(), middleware.BearerToken(r), req)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, exportResponse{
		DownloadURL: res.URL,
		ExpiresAt:   res.ExpiresAt.UTC(),
		FileName:    res.FileName,
	})
}
