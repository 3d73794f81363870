// Package http exposes the station monitor and photo renamer over HTTP,
// alongside health, readiness, and Prometheus endpoints.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
	"github.com/couchcryptid/station-monitor/internal/report"
)

// uploadField is the multipart field carrying selected files.
const uploadField = "files"

// pathsField optionally carries each file's folder-relative path, one value
// per file in the same order. Without it the archive label comes from the
// "label" query parameter or falls back to ARCHIVE_{year}.
const pathsField = "paths"

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// StationMonitor is the monitor surface served under /api/monitor.
type StationMonitor interface {
	ReadinessChecker
	ProcessBatch(ctx context.Context, src pipeline.BatchSource) (pipeline.BatchSummary, error)
	Snapshot(filter string) domain.Snapshot
	Reset()
}

// Archiver packages an uploaded photo selection.
type Archiver interface {
	Archive(ctx context.Context, src pipeline.BatchSource, label string, w io.Writer) (domain.DistributionPlan, error)
}

// Server exposes the API plus /healthz, /readyz, and /metrics.
type Server struct {
	httpServer     *http.Server
	monitor        StationMonitor
	archiver       Archiver
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr string, monitor StationMonitor, archiver Archiver, maxUploadBytes int64, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       2 * time.Minute,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
		monitor:        monitor,
		archiver:       archiver,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(monitor))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/monitor/files", s.handleIngest)
	mux.HandleFunc("GET /api/monitor/stations", s.handleStations)
	mux.HandleFunc("GET /api/monitor/report.csv", s.handleReport)
	mux.HandleFunc("POST /api/monitor/reset", s.handleReset)
	mux.HandleFunc("POST /api/renamer/archive", s.handleArchive)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type batchResponse struct {
	BatchID    string  `json:"batch_id"`
	Files      int     `json:"files"`
	Created    int     `json:"created"`
	Updated    int     `json:"updated"`
	Stale      int     `json:"stale"`
	Skipped    int     `json:"skipped"`
	Failed     int     `json:"failed"`
	DurationMS float64 `json:"duration_ms"`
	Stations   int     `json:"stations"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	src, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	summary, err := s.monitor.ProcessBatch(r.Context(), src)
	if err != nil {
		s.logger.Error("process upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{
		BatchID:    summary.BatchID,
		Files:      summary.Files,
		Created:    summary.Created,
		Updated:    summary.Updated,
		Stale:      summary.Stale,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
		DurationMS: float64(summary.Duration) / float64(time.Millisecond),
		Stations:   s.monitor.Snapshot("").Total,
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Snapshot(r.URL.Query().Get("q")))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap := s.monitor.Snapshot(r.URL.Query().Get("q"))

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, snap); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(report.CSVFileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.monitor.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	src, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	plan, err := s.archiver.Archive(r.Context(), src, r.URL.Query().Get("label"), &buf)
	switch {
	case errors.Is(err, domain.ErrNoAvailableMonths), errors.Is(err, pipeline.ErrNoFiles):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		s.logger.Error("archive failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", attachment(domain.ArchiveName(plan.Label)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

// readUpload parses the multipart body into an in-memory batch. On failure
// it writes the error response and returns false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (pipeline.StaticSource, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, errors.New(`no files in multipart field "files"`))
		return nil, false
	}

	paths := r.MultipartForm.Value[pathsField]
	if len(paths) != 0 && len(paths) != len(headers) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("got %d paths for %d files", len(paths), len(headers)))
		return nil, false
	}

	src := make(pipeline.StaticSource, 0, len(headers))
	for i, fh := range headers {
		var rel string
		if len(paths) > 0 {
			rel = paths[i]
		}
		content, err := readPart(fh)
		if err != nil {
			// Keep the file in the batch so the monitor counts the failure.
			src = append(src, failedFile(fh.Filename, rel, err))
			continue
		}
		src = append(src, pipeline.MemoryFile(fh.Filename, rel, content))
	}
	return src, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func failedFile(name, relativePath string, err error) pipeline.SourceFile {
	return pipeline.SourceFile{
		Name:         name,
		RelativePath: relativePath,
		Read: func(context.Context) ([]byte, error) { return nil, err },
	}
}

func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
