// Package httpapi exposes the RAG service over HTTP.
//
// Routes:
//
//	GET    /                               service description
//	GET    /health                         liveness summary
//	GET    /stats                          counters and provider availability
//	GET    /metrics                        Prometheus exposition (when configured)
//	POST   /rag/upload-documents           multipart upload and indexing
//	POST   /rag/query                      answer one question (form or JSON)
//	GET    /rag/query/stream               server-sent progress events
//	POST   /rag/batch-query                answer up to 20 questions
//	GET    /rag/collections                list collections
//	DELETE /rag/collections/{name}         delete a collection
//	GET    /rag/benchmark                  run the fixed benchmark questions
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// DefaultMaxUploadBytes bounds the in-memory part of a multipart upload.
const DefaultMaxUploadBytes = 32 << 20

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("httpapi: rag service is required")

// Config holds the services and options for the HTTP API.
type Config struct {
	RAG         driving.RAGService
	Collections driving.CollectionService
	Stats       driving.StatsService

	// Metrics serves /metrics. The route is omitted when nil.
	Metrics http.Handler

	// AllowedOrigins lists CORS origins. "*" allows any.
	AllowedOrigins []string

	// MaxUploadBytes bounds the memory used to parse an upload.
	MaxUploadBytes int64

	// UploadDir is where uploads are staged before indexing. Empty uses the OS temp dir.
	UploadDir string
}

// Server is the HTTP API.
type Server struct {
	cfg     Config
	handler http.Handler
	started time.Time
}

// NewServer creates the API and its router.
func NewServer(cfg Config) (*Server, error) {
	if cfg.RAG == nil {
		return nil, ErrMissingRAGService
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{cfg: cfg, started: time.Now()}
	s.handler = requestLogger(cors(cfg.AllowedOrigins, s.router()))
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	if s.cfg.Metrics != nil {
		r.Handle("/metrics", s.cfg.Metrics).Methods(http.MethodGet)
	}

	rag := r.PathPrefix("/rag").Subrouter()
	rag.HandleFunc("/upload-documents", s.handleUpload).Methods(http.MethodPost)
	rag.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	rag.HandleFunc("/query/stream", s.handleStream).Methods(http.MethodGet)
	rag.HandleFunc("/batch-query", s.handleBatch).Methods(http.MethodPost)
	rag.HandleFunc("/collections", s.handleListCollections).Methods(http.MethodGet)
	rag.HandleFunc("/collections/{name}", s.handleDeleteCollection).Methods(http.MethodDelete)
	rag.HandleFunc("/benchmark", s.handleBenchmark).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()
	logger.Info("HTTP API listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
