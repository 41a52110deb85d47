package api

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"revmatch/internal/config"
	"revmatch/internal/engine"
	"revmatch/internal/extract"
	"revmatch/internal/models"
	"revmatch/internal/providers"
	"revmatch/internal/segment"
	"revmatch/internal/store"
	"revmatch/internal/util"
	"revmatch/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

const buildWorkflowID = "corpus-build"

// Server wires the upload surface to the core pipeline. The paper
// database is loaded once at start and shared read-only across requests;
// /reload swaps it explicitly after a rebuild.
type Server struct {
	cfg       config.Config
	records   store.RecordStore
	providers *providers.Manager
	extract   extract.Func
	temporal  tclient.Client

	mu sync.RWMutex
	db []models.PaperRecord
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		panic(err)
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		panic(err)
	}
	db, err := st.Load(ctx)
	if err != nil {
		log.Printf("paper database unavailable: %v (recommendations disabled until rebuild+reload)", err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Printf("temporal unavailable at %s: %v (rebuild endpoint disabled)", cfg.TemporalAddress, err)
		tc = nil
	}
	return &Server{
		cfg:       cfg,
		records:   st,
		providers: pm,
		extract:   extract.RawText,
		temporal:  tc,
		db:        db,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/recommend", s.handleRecommend)
	mux.HandleFunc("/authors", s.handleAuthors)
	mux.HandleFunc("/rebuild", s.handleRebuild)
	mux.HandleFunc("/progress", s.handleProgress)
	mux.HandleFunc("/reload", s.handleReload)
	return withCORS(mux)
}

func (s *Server) database() []models.PaperRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "papers": len(s.database())})
}

type recommendQueryInfo struct {
	FocusedFound bool   `json:"focused_found"`
	FullFound    bool   `json:"full_found"`
	Preview      string `json:"preview,omitempty"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	db := s.database()
	if len(db) == 0 {
		writeErr(w, http.StatusConflict, fmt.Errorf("paper database is empty or not loaded"))
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	fh, ok := uploadedPDF(r.MultipartForm.File)
	if !ok || !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no pdf file provided"))
		return
	}

	topK := s.cfg.DefaultTopK
	if v := r.FormValue("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid top_k: %q", v))
			return
		}
		topK = n
	}
	sortBy := strings.ToLower(strings.TrimSpace(r.FormValue("sort")))
	if sortBy == "" {
		sortBy = "max"
	}
	if sortBy != "max" && sortBy != "mean" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid sort: %q", sortBy))
		return
	}

	path, err := saveUploadedFile(s.cfg.UploadDir, fh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	defer os.Remove(path)

	raw, err := s.extract(path)
	if err != nil {
		log.Printf("warning: could not extract text from upload %s: %v", fh.Filename, err)
		raw = ""
	}
	ex := segment.Segment(raw)
	if ex.Focused == "" && ex.Full == "" {
		writeErr(w, http.StatusUnprocessableEntity, fmt.Errorf("failed to extract any text from this PDF"))
		return
	}

	q, err := s.embedQuery(r.Context(), ex)
	if err != nil {
		writeErr(w, http.StatusBadGateway, fmt.Errorf("embedding providers unavailable"))
		return
	}

	results := engine.Recommend(q, db, topK)
	if sortBy == "mean" {
		results = engine.SortByMean(results)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"top_k":   topK,
		"sort":    sortBy,
		"query": recommendQueryInfo{
			FocusedFound: ex.Focused != "",
			FullFound:    ex.Full != "",
			Preview:      util.DisplaySnippet(ex.Focused, 800),
		},
	})
}

// embedQuery embeds each present excerpt independently. A representation
// the segmenter could not find stays a nil channel; degraded-mode input
// is reported as such rather than silently reusing the other channel's
// vector.
func (s *Server) embedQuery(ctx context.Context, ex segment.Excerpts) (models.QueryVectors, error) {
	inputs := make([]string, 0, 2)
	if ex.Focused != "" {
		inputs = append(inputs, ex.Focused)
	}
	if ex.Full != "" {
		inputs = append(inputs, ex.Full)
	}

	var (
		vectors [][]float32
		err     error
	)
	for _, idx := range s.providers.PreferredEmbedOrder() {
		p, ref := s.providers.EmbedProviderByIndex(idx)
		vectors, _, err = p.Embed(ctx, providers.EmbedRequest{
			Operation: "recommend_query_embed",
			Inputs:    inputs,
			Dimension: s.cfg.EmbedDim,
		})
		if err == nil && len(vectors) == len(inputs) {
			break
		}
		if err != nil {
			log.Printf("embed provider %s failed (%s): %v", ref.Name, providers.ClassifyError(err), err)
		}
	}
	if err != nil || len(vectors) != len(inputs) {
		return models.QueryVectors{}, fmt.Errorf("embed query: %w", err)
	}

	var q models.QueryVectors
	i := 0
	if ex.Focused != "" {
		q.Focused = vectors[i]
		i++
	}
	if ex.Full != "" {
		q.Full = vectors[i]
	}
	return q, nil
}

func (s *Server) handleAuthors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	type authorRow struct {
		Author   string `json:"author"`
		Count    int    `json:"count"`
		Degraded int    `json:"degraded"`
	}
	index := map[string]int{}
	rows := make([]authorRow, 0)
	for _, rec := range s.database() {
		j, ok := index[rec.Author]
		if !ok {
			j = len(rows)
			index[rec.Author] = j
			rows = append(rows, authorRow{Author: rec.Author})
		}
		rows[j].Count++
		if rec.Degraded() {
			rows[j].Degraded++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": rows})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("temporal is not configured"))
		return
	}
	batchID := uuid.NewString()
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       buildWorkflowID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.CorpusBuildWorkflow, workflows.CorpusBuildInput{
		BatchID:    batchID,
		CorpusRoot: s.cfg.CorpusRoot,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"workflow_id": we.GetID(),
		"run_id":      we.GetRunID(),
		"batch_id":    batchID,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("temporal is not configured"))
		return
	}
	resp, err := s.temporal.QueryWorkflow(r.Context(), buildWorkflowID, "", workflows.QueryGetBuildProgress)
	if err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("no active build"))
		return
	}
	var prog workflows.CorpusBuildProgress
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	db, err := s.records.Load(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	s.mu.Lock()
	s.db = db
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"papers": len(db)})
}

func uploadedPDF(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	if files := m["file"]; len(files) > 0 {
		return files[0], true
	}
	for _, v := range m {
		if len(v) > 0 && strings.HasSuffix(strings.ToLower(v[0].Filename), ".pdf") {
			return v[0], true
		}
	}
	return nil, false
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := util.EnsureDir(dstDir); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dstDir, "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	finalPath := filepath.Join(dstDir, fmt.Sprintf("%x.pdf", h.Sum(nil)[:12]))
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("atomic move upload: %w", err)
	}
	return finalPath, nil
}
