// Package remote implements the key/value HTTP server that mirrors the timer
// state across devices, and the client the persistence layer talks to.
package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sadopc/kidclock/internal/observability"
	"github.com/sadopc/kidclock/internal/store"
)

// maxBody caps request bodies; a full day's schedule is a few KB.
const maxBody = 1 << 20

// Namespaces served under /api/.
var Namespaces = []string{store.NamespaceState, store.NamespaceSettings}

// Backend stores one JSON document per namespace. *store.Store satisfies it.
type Backend interface {
	Get(namespace string) ([]byte, error)
	Put(namespace string, body []byte) error
}

// Handler serves GET and POST for each namespace.
type Handler struct {
	backend Backend
	logger  *slog.Logger
}

// NewHandler builds a Handler.
func NewHandler(backend Backend, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{backend: backend, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	for _, ns := range Namespaces {
		mux.HandleFunc("/api/"+ns, h.document(ns))
	}
	mux.HandleFunc("/healthz", healthz)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) document(ns string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code int
		switch r.Method {
		case http.MethodGet:
			code = h.get(w, ns)
		case http.MethodPost:
			code = h.put(w, r, ns)
		default:
			code = http.StatusMethodNotAllowed
			w.Header().Set("Allow", "GET, POST")
			writeJSON(w, code, map[string]string{"error": "unsupported method"})
		}
		observability.RecordRequest(ns, r.Method, code)
	}
}

func (h *Handler) get(w http.ResponseWriter, ns string) int {
	body, err := h.backend.Get(ns)
	switch {
	case errors.Is(err, store.ErrNotFound):
		body = []byte("{}")
	case err != nil:
		h.logger.Error("read document", "namespace", ns, "error", err)
		// Clients fall back to their local copy on an empty object.
		body = []byte("{}")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return http.StatusOK
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request, ns string) int {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil || len(body) > maxBody || !isObject(body) {
		writeJSON(w, http.StatusBadRequest, writeResponse{Success: false})
		return http.StatusBadRequest
	}
	if err := h.backend.Put(ns, body); err != nil {
		h.logger.Error("write document", "namespace", ns, "error", err)
		writeJSON(w, http.StatusInternalServerError, writeResponse{Success: false})
		return http.StatusInternalServerError
	}
	writeJSON(w, http.StatusOK, writeResponse{Success: true})
	return http.StatusOK
}

type writeResponse struct {
	Success bool `json:"success"`
}

// isObject reports whether body is a single JSON object.
func isObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var v map[string]json.RawMessage
	return json.Unmarshal(trimmed, &v) == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
