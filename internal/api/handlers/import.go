package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dvloznov/hikmacash/internal/api/middleware"
	"github.com/dvloznov/hikmacash/internal/pipeline"
)

// DefaultMaxImportBytes caps an uploaded import document.
const DefaultMaxImportBytes = 10 << 20

// Importer is the import use case as seen by the HTTP layer.
type Importer interface {
	Import(ctx context.Context, credential string, raw []byte) (*pipeline.ImportResult, error)
}

// ImportHandler handles import uploads.
type ImportHandler struct {
	importer Importer
	maxBytes int64
}

// NewImportHandler creates a new import handler. maxBytes <= 0 selects
// DefaultMaxImportBytes.
func NewImportHandler(importer Importer, maxBytes int64) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImportBytes
	}
	return &ImportHandler{importer: importer, maxBytes: maxBytes}
}

// Import handles POST /api/import
// The document is sent as multipart field "file", or as a raw application/json body.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, status, err := h.readDocument(w, r)
	if err != nil {
		middleware.WriteError(w, status, err.Error())
		return
	}

	if _, err := h.importer.Import(r.Context(), middleware.BearerToken(r), raw); err != nil {
		writePipelineError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ImportHandler) readDocument(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	// Multipart framing needs some room beyond the document itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return h.readLimited(r.Body)
	}

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("import document exceeds %d bytes", h.maxBytes)
		}
		return nil, http.StatusBadRequest, errors.New("expected multipart form with a file field")
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("file is required")
	}
	defer file.Close()

	return h.readLimited(file)
}

func (h *ImportHandler) readLimited(r io.Reader) ([]byte, int, error) {
	data, err := io.ReadAll(io.LimitReader(r, h.maxBytes+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("import document exceeds %d bytes", h.maxBytes)
		}
		return nil, http.StatusBadRequest, errors.New("failed to read import document")
	}
	if int64(len(data)) > h.maxBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("import document exceeds %d bytes", h.maxBytes)
	}
	return data, 0, nil
}
