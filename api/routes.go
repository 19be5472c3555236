package api

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/poiesic/scenedex/ingestion"
	"github.com/poiesic/scenedex/search"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	tracker := &jobTracker{}

	r.Get("/", rootHandler())
	r.Post("/upload", uploadHandler(cfg, tracker))
	r.Get("/status", statusHandler(cfg))
	r.Get("/search", searchHandler(cfg))
	r.Post("/reset", resetHandler(cfg, tracker))
	r.Handle("/frames/*", http.StripPrefix("/frames/",
		http.FileServer(http.Dir(cfg.FramesDir))))

	return r
}

// jobTracker serializes ingestion: at most one job runs at a time.
type jobTracker struct {
	mu     sync.Mutex
	handle *ingestion.JobHandle
}

// start begins a new job unless one is still running. The bool reports
// whether the slot was free.
func (t *jobTracker) start(fn func() (*ingestion.JobHandle, error)) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle != nil {
		select {
		case <-t.handle.Done():
		default:
			return false, nil
		}
	}

	handle, err := fn()
	if err != nil {
		return true, err
	}
	t.handle = handle
	return true, nil
}

// cancelActive cancels any running job and waits for it to stop.
func (t *jobTracker) cancelActive() {
	t.mu.Lock()
	handle := t.handle
	t.mu.Unlock()

	if handle != nil {
		handle.Cancel()
		handle.Wait()
	}
}

func rootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, RootResponse{
			Status:  "ok",
			Service: "scenedex",
		})
	}
}

func uploadHandler(cfg ServerConfig, tracker *jobTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "missing video file", "BAD_REQUEST")
			return
		}
		defer file.Close()

		interval := cfg.DefaultInterval
		if interval <= 0 {
			interval = 1.0
		}
		if raw := r.FormValue("frame_interval"); raw != "" {
			interval, err = strconv.ParseFloat(raw, 64)
			if err != nil || interval <= 0 {
				WriteError(w, http.StatusBadRequest, "invalid frame_interval", "BAD_REQUEST")
				return
			}
		}

		filename := filepath.Base(header.Filename)
		if filename == "." || filename == string(filepath.Separator) {
			WriteError(w, http.StatusBadRequest, "invalid filename", "BAD_REQUEST")
			return
		}

		if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
			cfg.Logger.Error("failed to create uploads directory", "err", err)
			WriteError(w, http.StatusInternalServerError, "failed to save upload", "INTERNAL_ERROR")
			return
		}
		dst := filepath.Join(cfg.UploadsDir, filename)
		out, err := os.Create(dst)
		if err != nil {
			cfg.Logger.Error("failed to create upload file", "path", dst, "err", err)
			WriteError(w, http.StatusInternalServerError, "failed to save upload", "INTERNAL_ERROR")
			return
		}
		if _, err := io.Copy(out, file); err != nil {
			out.Close()
			cfg.Logger.Error("failed to write upload file", "path", dst, "err", err)
			WriteError(w, http.StatusInternalServerError, "failed to save upload", "INTERNAL_ERROR")
			return
		}
		out.Close()

		started, err := tracker.start(func() (*ingestion.JobHandle, error) {
			return cfg.Pipeline.Start(dst, interval)
		})
		if !started {
			WriteError(w, http.StatusConflict, "an ingestion job is already processing", "INGESTION_IN_PROGRESS")
			return
		}
		if err != nil {
			cfg.Logger.Error("failed to start ingestion", "source", dst, "err", err)
			WriteError(w, http.StatusInternalServerError, "failed to start ingestion", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, UploadResponse{
			Filename: filename,
			Status:   "processing",
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := cfg.Jobs.Current(r.Context())
		if err != nil {
			cfg.Logger.Error("failed to read job status", "err", err)
			WriteError(w, http.StatusInternalServerError, "failed to read status", "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteJSON(w, http.StatusOK, StatusResponse{Status: StatusNoIndex})
			return
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			Status:   job.Status.String(),
			Filename: job.Title,
			Progress: job.Progress,
		})
	}
}

func searchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			WriteError(w, http.StatusBadRequest, "missing query parameter q", "BAD_REQUEST")
			return
		}

		opts := search.DefaultQueryOptions()
		var err error
		if raw := r.URL.Query().Get("visual_weight"); raw != "" {
			opts.WeightVisual, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid visual_weight", "BAD_REQUEST")
				return
			}
		}
		if raw := r.URL.Query().Get("text_weight"); raw != "" {
			opts.WeightText, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid text_weight", "BAD_REQUEST")
				return
			}
		}

		scenes, err := cfg.Searcher.SearchWithOptions(r.Context(), query, opts)
		if err != nil {
			cfg.Logger.Error("search failed", "query", query, "err", err)
			WriteError(w, http.StatusInternalServerError, "search failed", "QUERY_FAILED")
			return
		}

		resp := SearchResponse{
			Query:   query,
			Results: make([]SceneResponse, len(scenes)),
		}
		for i, scene := range scenes {
			resp.Results[i] = SceneToResponse(scene)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func resetHandler(cfg ServerConfig, tracker *jobTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// A running job would keep writing into the cleared index, so it
		// is cancelled before the wipe.
		tracker.cancelActive()

		if err := cfg.Pipeline.Reset(r.Context()); err != nil {
			cfg.Logger.Error("reset failed", "err", err)
			WriteError(w, http.StatusInternalServerError, "reset failed", "INTERNAL_ERROR")
			return
		}
		if err := os.RemoveAll(cfg.UploadsDir); err != nil {
			cfg.Logger.Error("failed to remove uploads directory", "err", err)
			WriteError(w, http.StatusInternalServerError, "reset failed", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, ResetResponse{Status: "reset"})
	}
}
