// Package httpapi exposes the tool registry over HTTP: health, catalog listing,
// single invocation and batch invocation.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/mwiater/pagemcp/internal/tools"
)

var logger = xlog.NewPackageLogger("github.com/mwiater/pagemcp/internal", "httpapi")

const (
	// defaultMaxBodyBytes caps request bodies.
	defaultMaxBodyBytes = 1 << 20
	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// ErrMalformedRequest is returned when a request body is not a JSON object of the expected shape.
var ErrMalformedRequest = errors.New("malformed request")

// Dispatcher is the part of the tool registry the HTTP surface uses.
type Dispatcher interface {
	Descriptors() []tools.Descriptor
	Dispatch(ctx context.Context, req tools.Request) tools.Result
	DispatchBatch(ctx context.Context, reqs []tools.Request) []tools.Result
}

// Info identifies the service in health responses.
type Info struct {
	Service string
	Version string
}

// Server serves the tool endpoints.
type Server struct {
	tools        Dispatcher
	info         Info
	maxBodyBytes int64
}

// New returns a server delegating to d.
func New(d Dispatcher, info Info) *Server {
	return &Server{
		tools:        d,
		info:         info,
		maxBodyBytes: defaultMaxBodyBytes,
	}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tools", s.handleListTools)
	mux.HandleFunc("POST /tools/batch", s.handleBatch)
	mux.HandleFunc("POST /tools/{tool_name}", s.handleCallTool)
	mux.HandleFunc("/", s.handleNotFound)
	return withRequestLog(mux)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.KV(xlog.INFO, "status", "listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
		logger.KV(xlog.INFO, "status", "shutting down", "addr", addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type listResponse struct {
	Success bool               `json:"success"`
	Tools   []tools.Descriptor `json:"tools"`
	Count   int                `json:"count"`
}

type callRequest struct {
	Arguments map[string]any `json:"arguments"`
}

type callResponse struct {
	Success bool   `json:"success"`
	Tool    string `json:"tool"`
	Data    any    `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type batchRequest struct {
	Tools *[]json.RawMessage `json:"tools"`
}

type batchSuccess struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Data    any    `json:"data"`
}

type batchFailure struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type batchResponse struct {
	Success bool  `json:"success"`
	Results []any `json:"results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: s.info.Service,
		Version: s.info.Version,
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	descs := s.tools.Descriptors()
	writeJSON(w, http.StatusOK, listResponse{Success: true, Tools: descs, Count: len(descs)})
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("tool_name")

	var req callRequest
	if err := decodeJSON(w, r, &req, s.maxBodyBytes); err != nil {
		logger.ContextKV(r.Context(), xlog.WARNING, "tool", name, "err", err.Error())
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body must be valid JSON"})
		return
	}

	res := s.tools.Dispatch(r.Context(), tools.Request{Name: name, Arguments: req.Arguments})
	if !res.Success {
		writeJSON(w, statusFor(res.Kind), errorResponse{Error: res.Error})
		return
	}
	writeJSON(w, http.StatusOK, callResponse{Success: true, Tool: name, Data: res.Data})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req, s.maxBodyBytes); err != nil || req.Tools == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: `Request must contain "tools" array`})
		return
	}

	// Entries that do not decode fail on their own; the rest are dispatched in order.
	raw := *req.Tools
	names := make([]string, len(raw))
	out := make([]any, len(raw))
	var (
		valid   []tools.Request
		indexes []int
	)
	for i, item := range raw {
		entry, err := parseBatchEntry(item)
		names[i] = entry.Name
		if err != nil {
			logger.ContextKV(r.Context(), xlog.WARNING, "tool", entry.Name, "index", i, "err", err.Error())
			out[i] = batchFailure{Tool: entry.Name, Error: err.Error()}
			continue
		}
		valid = append(valid, entry)
		indexes = append(indexes, i)
	}

	for j, res := range s.tools.DispatchBatch(r.Context(), valid) {
		i := indexes[j]
		if res.Success {
			out[i] = batchSuccess{Tool: names[i], Success: true, Data: res.Data}
		} else {
			out[i] = batchFailure{Tool: names[i], Error: res.Error}
		}
	}
	writeJSON(w, http.StatusOK, batchResponse{Success: true, Results: out})
}

// parseBatchEntry decodes one batch element. A non-string name is kept in its
// printed form so the dispatcher reports it as an unknown tool.
func parseBatchEntry(raw json.RawMessage) (tools.Request, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return tools.Request{}, errors.Mark(errors.New("Tool entry must be a JSON object"), ErrMalformedRequest)
	}

	var req tools.Request
	switch name := fields["name"].(type) {
	case nil:
	case string:
		req.Name = name
	default:
		req.Name = fmt.Sprint(name)
	}

	switch args := fields["arguments"].(type) {
	case nil:
	case map[string]any:
		req.Arguments = args
	default:
		return req, errors.Mark(errors.New("Tool arguments must be a JSON object"), ErrMalformedRequest)
	}
	return req, nil
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Endpoint not found"})
}

// statusFor maps a failure kind onto an HTTP status.
func statusFor(kind tools.FailureKind) int {
	switch kind {
	case tools.KindUnknownTool:
		return http.StatusNotFound
	case tools.KindInvalidArguments:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	if r.Body == nil {
		return errors.Wrap(ErrMalformedRequest, "empty body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to read body"), ErrMalformedRequest)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return errors.Wrap(ErrMalformedRequest, "empty body")
	}
	if !strings.HasPrefix(trimmed, "{") {
		return errors.Wrap(ErrMalformedRequest, "body is not a JSON object")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid JSON"), ErrMalformedRequest)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.KV(xlog.ERROR, "reason", "encode response", "err", err.Error())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLog assigns a request id and logs one line per request.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		r = r.WithContext(xlog.ContextWithKV(r.Context(), "request_id", id))

		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.ContextKV(r.Context(), xlog.INFO,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(started).String(),
		)
	})
}
