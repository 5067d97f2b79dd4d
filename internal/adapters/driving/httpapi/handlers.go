package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// uploadResponse is returned after a successful upload.
type uploadResponse struct {
	Status             string  `json:"status"`
	Collection         string  `json:"collection"`
	DocumentsProcessed int     `json:"documents_processed"`
	TotalPages         int     `json:"total_pages"`
	EmbeddingsCreated  int     `json:"embeddings_created"`
	ProcessingTime     float64 `json:"processing_time"`
	ReadyForQueries    bool    `json:"ready_for_queries"`
}

// deleteResponse is returned by the collection delete route.
type deleteResponse struct {
	Status     string `json:"status"`
	Collection string `json:"collection"`
	Result     bool   `json:"result"`
}

// queryRequest is the JSON body accepted by the query route.
type queryRequest struct {
	Query          string `json:"query"`
	CollectionName string `json:"collection_name"`
	TopK           int    `json:"top_k"`
	IncludeContext *bool  `json:"include_context"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"system":      "pagelens vision-language RAG",
		"description": "Question answering over PDF pages and images",
		"capabilities": []string{
			"PDF and image document processing",
			"Multi-document semantic search",
			"Question answering grounded in page images",
			"Query caching",
			"Prometheus metrics",
		},
	}
	if s.cfg.Stats != nil {
		availability := s.cfg.Stats.Stats(r.Context()).ProviderAvailability
		body["architecture"] = map[string]string{
			"embeddings": availability.EmbeddingModelName(),
			"llm":        availability.GenerationModelName(),
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Stats == nil {
		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: "healthy"})
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Stats.Health(r.Context()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Stats == nil {
		writeDetail(w, http.StatusNotFound, "stats are not available")
		return
	}
	stats := s.cfg.Stats.Stats(r.Context())
	health := s.cfg.Stats.Health(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"rag_service": stats,
		"cache": map[string]bool{
			"connected": health.Services.Cache,
		},
		"performance": map[string]any{
			"uptime":            health.Performance.Uptime,
			"total_rag_queries": health.Performance.TotalRAGQueries,
		},
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	collection := r.FormValue("collection_name")
	if collection == "" {
		collection = domain.DefaultCollection
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeDetail(w, http.StatusBadRequest, "at least one file is required")
		return
	}
	logger.Debug("Received %d file(s) for collection %q", len(files), collection)

	dir, err := os.MkdirTemp(s.cfg.UploadDir, "pagelens-upload-*")
	if err != nil {
		writeError(w, fmt.Errorf("create upload dir: %w", err))
		return
	}
	defer os.RemoveAll(dir)

	paths := make([]string, 0, len(files))
	for i, fh := range files {
		path, err := saveUpload(fh, dir, i)
		if err != nil {
			writeError(w, &domain.IngestionError{Path: fh.Filename, Err: err})
			return
		}
		paths = append(paths, path)
	}

	result, err := s.cfg.RAG.Index(r.Context(), paths, collection)
	if err != nil {
		logger.Error("Upload into %q failed: %v", collection, err)
		writeDetail(w, statusFor(err), "Document processing failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Status:             "success",
		Collection:         result.Collection,
		DocumentsProcessed: result.DocumentsProcessed,
		TotalPages:         result.TotalPages,
		EmbeddingsCreated:  result.EmbeddingsCount,
		ProcessingTime:     time.Since(start).Seconds(),
		ReadyForQueries:    true,
	})
}

// saveUpload writes one uploaded file into dir. Files are staged in their own
// numbered subdirectory so two uploads with the same name do not collide.
func saveUpload(fh *multipart.FileHeader, dir string, i int) (string, error) {
	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", fh.Filename)
	}
	sub := filepath.Join(dir, strconv.Itoa(i))
	if err := os.Mkdir(sub, 0o700); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(sub, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.cfg.RAG.Query(r.Context(), q)
	if err != nil {
		writeDetail(w, statusFor(err), "RAG query failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseQuery reads a query from a JSON body or from form fields.
func parseQuery(r *http.Request) (domain.Query, error) {
	q := domain.NewQuery("")

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return q, fmt.Errorf("%w: invalid JSON: %v", domain.ErrInvalidInput, err)
		}
		q.Text = req.Query
		if req.CollectionName != "" {
			q.Collection = req.CollectionName
		}
		if req.TopK != 0 {
			q.TopK = req.TopK
		}
		if req.IncludeContext != nil {
			q.IncludeContext = *req.IncludeContext
		}
		return q, nil
	}

	q.Text = r.FormValue("query")
	if v := r.FormValue("collection_name"); v != "" {
		q.Collection = v
	}
	if v := r.FormValue("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("%w: top_k must be an integer", domain.ErrInvalidInput)
		}
		q.TopK = n
	}
	if v := r.FormValue("include_context"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("%w: include_context must be a boolean", domain.ErrInvalidInput)
		}
		q.IncludeContext = b
	}
	return q, nil
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	q := domain.NewQuery(r.URL.Query().Get("query"))
	if v := r.URL.Query().Get("collection_name"); v != "" {
		q.Collection = v
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fl, _ := w.(http.Flusher)

	for chunk := range s.cfg.RAG.StreamQuery(r.Context(), q) {
		data, err := json.Marshal(chunk)
		if err != nil {
			data, _ = json.Marshal(map[string]string{"error": err.Error()})
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		if fl != nil {
			fl.Flush()
		}
	}
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	result, err := s.cfg.RAG.BatchQuery(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Collections == nil {
		writeJSON(w, http.StatusOK, []domain.CollectionSummary{})
		return
	}
	summaries := s.cfg.Collections.List(r.Context())
	if summaries == nil {
		summaries = []domain.CollectionSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	deleted := false
	if s.cfg.Collections != nil {
		deleted = s.cfg.Collections.Delete(r.Context(), name)
	}
	writeJSON(w, http.StatusOK, deleteResponse{Status: "deleted", Collection: name, Result: deleted})
}

func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection_name")
	if collection == "" {
		collection = domain.DefaultCollection
	}
	topK := domain.DefaultTopK
	if v := r.URL.Query().Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		topK = n
	}

	result, err := s.cfg.RAG.Benchmark(r.Context(), collection, topK)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
