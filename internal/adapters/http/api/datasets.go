package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/statboard/internal/domain/model"
)

// Form and query names for uploads.
const (
	uploadField     = "file"
	uploadNameParam = "name"
	defaultUpload   = "upload.csv"
)

// DatasetDependencies defines the interface for dataset uploads.
type DatasetDependencies interface {
	Upload(ctx context.Context, sessionID, name string, content []byte) (model.Dataset, error)
}

// DatasetsHandler handles dataset uploads.
type DatasetsHandler struct {
	deps     DatasetDependencies
	maxBytes int64
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(deps DatasetDependencies, maxBytes int64) *DatasetsHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &DatasetsHandler{deps: deps, maxBytes: maxBytes}
}

type uploadResponse struct {
	SessionID string   `json:"session_id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Rows      int      `json:"rows"`
	Skipped   int      `json:"skipped"`
	Teams     []string `json:"teams"`
}

// HandleUpload handles POST /datasets requests. The file comes either as the
// multipart field "file" or as the raw body named by the "name" parameter.
func (h *DatasetsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload_dataset"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, err := sessionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	name, content, err := h.readUpload(r)
	if err != nil {
		writeServiceError(w, http.StatusBadRequest, Wrap(op, err))
		return
	}

	ds, err := h.deps.Upload(r.Context(), id, name, content)
	if err != nil {
		writeServiceError(w, http.StatusBadRequest, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		SessionID: id,
		Name:      ds.Source.Name,
		Kind:      string(ds.Source.Kind),
		Rows:      ds.Len(),
		Skipped:   ds.Skipped,
		Teams:     ds.Teams(),
	})
}

func (h *DatasetsHandler) readUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			return "", nil, classifyBodyError(err)
		}
		file, header, err := r.FormFile(uploadField)
		if err != nil {
			return "", nil, errors.Join(ErrBadRequest, ErrMissingFile)
		}
		defer func() { _ = file.Close() }()
		content, err := io.ReadAll(file)
		if err != nil {
			return "", nil, classifyBodyError(err)
		}
		return header.Filename, content, nil
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, classifyBodyError(err)
	}
	name := strings.TrimSpace(r.URL.Query().Get(uploadNameParam))
	if name == "" {
		name = defaultUpload
	}
	return name, content, nil
}

// classifyBodyError separates oversized bodies from malformed ones.
func classifyBodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return errors.Join(ErrPayloadTooLarge, err)
	}
	return errors.Join(ErrBadRequest, err)
}
