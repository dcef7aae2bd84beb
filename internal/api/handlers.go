package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maasanto/pos-import/internal/domain"
	"github.com/maasanto/pos-import/internal/importer"
	"github.com/maasanto/pos-import/internal/parser"
	"github.com/maasanto/pos-import/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	svc        *importer.Service
	repo       *repository.ImportRepo
	connectors map[string]*domain.Connector
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// upload is the decoded multipart payload shared by the import endpoints.
type upload struct {
	data      []byte
	fileName  string
	connector *domain.Connector
}

// readUpload parses the multipart form: a "file" part plus a "connector"
// field naming a loaded connector. It writes the error response itself.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return nil, false
	}

	code := r.FormValue("connector")
	if code == "" {
		writeError(w, http.StatusBadRequest, "connector field is required")
		return nil, false
	}
	conn, ok := h.connectors[code]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown connector: "+code)
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return nil, false
	}

	return &upload{data: data, fileName: header.Filename, connector: conn}, true
}

// importStatus maps a pipeline error to an HTTP status: malformed input is
// the client's problem, anything else is ours.
func importStatus(err error) int {
	var formatErr *parser.FormatError
	if errors.As(err, &formatErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// --- ValidateFile ---

func (h *Handlers) ValidateFile(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	valid, message := h.svc.Validate(up.data, up.connector)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   valid,
		"message": message,
	})
}

// --- PreviewFile ---

func (h *Handlers) PreviewFile(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	preview, err := h.svc.Preview(up.data, up.fileName, up.connector)
	if err != nil {
		writeError(w, importStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// --- RunImport ---

func (h *Handlers) RunImport(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	batch, err := h.svc.Run(up.data, up.fileName, up.connector)
	if err != nil {
		writeError(w, importStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, batch)
}

// --- ReprocessImport ---

func (h *Handlers) ReprocessImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	batch, err := h.svc.Reprocess(up.data, up.connector, id)
	if err != nil {
		if errors.Is(err, importer.ErrBatchNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, importStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, batch)
}

// --- CancelImport ---

func (h *Handlers) CancelImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, err := h.svc.Cancel(id)
	if err != nil {
		if errors.Is(err, importer.ErrBatchNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, batch)
}

// --- ListImports ---

func (h *Handlers) ListImports(w http.ResponseWriter, r *http.Request) {
	batches, err := h.repo.ListBatches()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imports": batches,
		"total":   len(batches),
	})
}

// --- GetImport ---

func (h *Handlers) GetImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, err := h.repo.GetBatch(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if batch == nil {
		writeError(w, http.StatusNotFound, "import batch not found")
		return
	}

	writeJSON(w, http.StatusOK, batch)
}

// --- ListConnectors ---

func (h *Handlers) ListConnectors(w http.ResponseWriter, r *http.Request) {
	type connectorEntry struct {
		Code     string `json:"code"`
		Parser   string `json:"parser"`
		Company  string `json:"company"`
		Customer string `json:"customer"`
		Currency string `json:"currency"`
	}

	entries := make([]connectorEntry, 0, len(h.connectors))
	for _, c := range h.connectors {
		entries = append(entries, connectorEntry{
			Code:     c.Code,
			Parser:   c.Parser,
			Company:  c.Company,
			Customer: c.Customer,
			Currency: c.Currency,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"connectors": entries,
		"total":      len(entries),
	})
}
