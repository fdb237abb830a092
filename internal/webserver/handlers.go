package webserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"filebatch/internal/config"
	"filebatch/internal/reader"
)

//go:embed www/*
var wwwFiles embed.FS

// Server is the HTTP adapter around the read pipeline. It turns a multipart
// upload into an ordered list of file handles, runs one pipeline per request,
// and renders the aggregated result as JSON.
type Server struct {
	cfg *config.Config
	log *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Routes wires the handler surface behind logging and compression.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HomeHandler)
	mux.HandleFunc("/read", s.ReadHandler)
	mux.HandleFunc("/healthz", s.HealthHandler)
	return LoggingMiddleware(s.log, CompressionMiddleware(mux))
}

// readResponse is the wire shape of one finalized run.
type readResponse struct {
	RunID    uuid.UUID        `json:"runId"`
	Outcomes []reader.Outcome `json:"outcomes"`
}

// ReadHandler accepts a multipart form with repeated "files" parts and an
// optional "format" field, reads every file in part order, and responds with
// one outcome per file. A request with zero files answers 204: no files, no
// notification.
func (s *Server) ReadHandler(w http.ResponseWriter, r *http.Request) {
	log := s.log.With("handler", "ReadHandler", "remote_addr", r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBodyBytes)
	if err := r.ParseMultipartForm(s.cfg.Upload.FormMemoryBytes); err != nil {
		log.Error("form parsing failed", "error", err)
		WriteErrorResponse(w, fmt.Errorf("form parsing error: %w", err), http.StatusBadRequest)
		return
	}

	format := s.cfg.Read.DefaultFormat
	if v := r.FormValue("format"); v != "" {
		parsed, err := reader.ParseFormat(v)
		if err != nil {
			log.Error("bad format field", "error", err)
			WriteErrorResponse(w, err, http.StatusBadRequest)
			return
		}
		format = parsed
	}

	// MultipartForm keeps the parts of one field in submission order, which
	// is the selection order the result must preserve.
	headers := r.MultipartForm.File["files"]
	files := make([]reader.File, 0, len(headers))
	for _, h := range headers {
		if err := ValidateUpload(h, s.cfg.Upload.MaxFileBytes); err != nil {
			log.Error("upload rejected", "filename", h.Filename, "error", err)
			WriteErrorResponse(w, err, http.StatusBadRequest)
			return
		}
		files = append(files, &multipartFile{header: h})
	}

	pipe := reader.Pipeline{Format: format, Log: s.log}
	batch, ok := pipe.Collect(r.Context(), files)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := readResponse{RunID: batch.RunID, Outcomes: batch.Outcomes()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("failed writing response", "error", err)
	}
}

// HomeHandler serves the embedded demo page.
func (s *Server) HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		s.StaticFileServer().ServeHTTP(w, r)
		return
	}

	page, err := wwwFiles.ReadFile("www/index.html")
	if err != nil {
		s.log.Error("failed reading index.html", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// StaticFileServer serves the embedded www assets.
func (s *Server) StaticFileServer() http.Handler {
	sub, err := fs.Sub(wwwFiles, "www")
	if err != nil {
		s.log.Error("failed to create sub-filesystem", "error", err)
		return http.FileServer(http.FS(wwwFiles))
	}
	return http.FileServer(http.FS(sub))
}
