package httpadapter

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/clinvault/document-assistant/internal/config"
	"github.com/clinvault/document-assistant/internal/core/domain"
	"github.com/clinvault/document-assistant/internal/core/ports"
	"github.com/clinvault/document-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg      config.Config
	ingestor ports.DocumentIngestor
	query    ports.QueryService
	manager  ports.DocumentManager
	queue    ports.MessageQueue
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingestor ports.DocumentIngestor,
	query ports.QueryService,
	manager ports.DocumentManager,
	queue ports.MessageQueue,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		ingestor: ingestor,
		query:    query,
		manager:  manager,
		queue:    queue,
		metrics:  serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents/upload", rt.uploadDocuments)
	mux.HandleFunc("GET /v1/documents/patient/{patientID}", rt.listByPatient)
	mux.HandleFunc("GET /v1/documents/download/{documentID}", rt.downloadDocument)
	mux.HandleFunc("DELETE /v1/documents/{documentID}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/documents/{documentID}/reprocess", rt.reprocessDocument)
	mux.HandleFunc("POST /v1/rag/query", rt.queryRAG)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, 50*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(rt.cfg.UploadMaxFileBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	patientID := strings.TrimSpace(r.FormValue("patientId"))
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["documents"]
	}
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "multipart field 'documents' is required")
		return
	}
	if len(headers) > rt.cfg.UploadMaxFiles {
		writeError(w, http.StatusBadRequest, "too many files in one upload")
		return
	}

	files := make([]domain.UploadFile, 0, len(headers))
	for _, header := range headers {
		if header.Size > rt.cfg.UploadMaxFileBytes {
			writeError(w, http.StatusBadRequest, "file "+header.Filename+" exceeds the size limit")
			return
		}
		f, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read file "+header.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read file "+header.Filename)
			return
		}
		files = append(files, domain.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        data,
		})
	}

	results, err := rt.ingestor.UploadBatch(r.Context(), patientID, files)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		for _, result := range results {
			rt.metrics.RecordDocumentIngested(serviceName, result.Status)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Upload processed",
		"files":   results,
	})
}

func (rt *Router) listByPatient(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("patientID")

	docs, err := rt.manager.ListByPatient(r.Context(), patientID)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")

	url, err := rt.manager.DownloadURL(r.Context(), documentID)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")

	if err := rt.manager.Delete(r.Context(), documentID); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

func (rt *Router) reprocessDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")

	if err := rt.queue.PublishReprocess(r.Context(), documentID); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "queued",
		"id":     documentID,
	})
}

type queryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"userId"`
	Limit  int    `json:"limit"`
}

type queryResponse struct {
	Response string                   `json:"response"`
	Sources  []domain.RankedCandidate `json:"sources"`
	Error    bool                     `json:"error,omitempty"`
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = rt.cfg.RAGTopK
	}

	start := time.Now()
	answer, err := rt.query.Answer(r.Context(), req.Query, req.UserID, limit)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(serviceName, "/v1/rag/query", len(answer.Sources), answer.Fallback, time.Since(start))
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.RankedCandidate{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Response: answer.Response,
		Sources:  sources,
		Error:    answer.Fallback,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
