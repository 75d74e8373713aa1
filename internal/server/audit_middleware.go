package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
)

// auditLogMiddleware records every request that changes dashboard state.
// Reads are not audited.
func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		entry := AuditLogEntry{
			ID:        uuid.New(),
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   handlerName(r),
		}

		var requestBody []byte
		if r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)
		}

		if lineID, ok := mux.Vars(r)["id"]; ok {
			entry.LineID = lineID
			s.describeLineChange(&entry, lineID, requestBody)
		}

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		entry.StatusCode = rec.statusCode
		entry.Response = rec.body.String()

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

// describeLineChange fills the line status before and after the edit, the
// old one taken from the page on display.
func (s *Server) describeLineChange(entry *AuditLogEntry, rawID string, body []byte) {
	var req lineStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return
	}
	entry.NewStatus = api.LineStatus(req.Status).String()

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	if line, ok := s.orders.Line(id); ok {
		entry.OldStatus = line.Status.String()
	}
}

func handlerName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return "unknown"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
