package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scenedex/ai"
	"github.com/poiesic/scenedex/ai/mock"
	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/ingestion"
	"github.com/poiesic/scenedex/media"
	"github.com/poiesic/scenedex/search"
	"github.com/poiesic/scenedex/storage"
	"github.com/poiesic/scenedex/storage/badger"
)

type fakeAudio struct {
	dir              string
	blockUntilCancel bool
}

func (f *fakeAudio) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if f.blockUntilCancel {
		<-ctx.Done()
		return "", ctx.Err()
	}
	path := filepath.Join(f.dir, "audio.wav")
	if err := os.WriteFile(path, []byte("wav"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeTranscriber struct{}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) ([]core.TranscriptSegment, error) {
	return []core.TranscriptSegment{{Start: 0, End: 2, Text: "hello world"}}, nil
}

type fakeProber struct{}

func (f *fakeProber) Probe(ctx context.Context, videoPath string) (media.ProbeResult, error) {
	return media.ProbeResult{Duration: 4, FrameRate: 24}, nil
}

type fakeFrameExtractor struct{}

func (f *fakeFrameExtractor) ExtractFrames(ctx context.Context, videoPath string, intervalSeconds float64) (media.FrameStream, error) {
	return &sliceStream{frames: []media.Frame{
		{JPEG: []byte("jpeg-0"), Timestamp: 0},
		{JPEG: []byte("jpeg-1"), Timestamp: intervalSeconds},
	}}, nil
}

type sliceStream struct {
	frames []media.Frame
	pos    int
}

func (s *sliceStream) Next() (media.Frame, bool) {
	if s.pos >= len(s.frames) {
		return media.Frame{}, false
	}
	frame := s.frames[s.pos]
	s.pos++
	return frame, true
}

func (s *sliceStream) Err() error   { return nil }
func (s *sliceStream) Close() error { return nil }

type testEnv struct {
	cfg    ServerConfig
	router http.Handler
	jobs   storage.JobRepository
	frames storage.FrameRepository
	texts  storage.TextRepository
}

func newTestEnv(t *testing.T, provider ai.Provider, blockAudio bool) *testEnv {
	t.Helper()

	jobs, frames, texts, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	framesDir := filepath.Join(t.TempDir(), "frames")

	tooling := ingestion.Media{
		Audio:       &fakeAudio{dir: t.TempDir(), blockUntilCancel: blockAudio},
		Transcriber: &fakeTranscriber{},
		Prober:      &fakeProber{},
		Frames:      &fakeFrameExtractor{},
	}
	pipeline, err := ingestion.NewPipeline(jobs, frames, texts, provider, tooling,
		ingestion.WithFramesDir(framesDir),
		ingestion.WithLogger(logger),
	)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	searcher, err := search.NewSearcher(frames, texts, provider, search.WithLogger(logger))
	require.NoError(t, err)

	cfg := ServerConfig{
		Jobs:       jobs,
		Pipeline:   pipeline,
		Searcher:   searcher,
		UploadsDir: filepath.Join(t.TempDir(), "uploads"),
		FramesDir:  framesDir,
		Logger:     logger,
	}
	return &testEnv{
		cfg:    cfg,
		router: NewRouter(cfg),
		jobs:   jobs,
		frames: frames,
		texts:  texts,
	}
}

func multipartUpload(t *testing.T, filename, interval string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	if interval != "" {
		require.NoError(t, writer.WriteField("frame_interval", interval))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func TestRootHandler(t *testing.T) {
	env := newTestEnv(t, mock.NewMockProvider(), false)

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[RootResponse](t, rr)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "scenedex", resp.Service)
}

func TestStatusNoIndex(t *testing.T) {
	env := newTestEnv(t, mock.NewMockProvider(), false)

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[StatusResponse](t, rr)
	assert.Equal(t, StatusNoIndex, resp.Status)
	assert.Equal(t, 0, resp.Progress)
}

func TestUploadRunsIngestion(t *testing.T) {
	env := newTestEnv(t, mock.NewMockProvider(), false)

	body, contentType := multipartUpload(t, "demo.mp4", "2.0")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[UploadResponse](t, rr)
	assert.Equal(t, "demo.mp4", resp.Filename)
	assert.Equal(t, "processing", resp.Status)

	// The upload is saved before ingestion starts.
	saved, err := os.ReadFile(filepath.Join(env.cfg.UploadsDir, "demo.mp4"))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake video bytes"), saved)

	require.Eventually(t, func() bool {
		job, err := env.jobs.Current(context.Background())
		return err == nil && job != nil && job.Status == core.JobStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	job, err := env.jobs.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "demo.mp4", job.Title)
}

func TestUploadConflictWhileProcessing(t *testing.T) {
	env := newTestEnv(t, mock.NewMockProvider(), true)

	body, contentType := multipartUpload(t, "first.mp4", "")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	body, contentType = multipartUpload(t, "second.mp4", "")
	req = httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)

	// Reset cancels the stuck job and clears the conflict.
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reset", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, contentType = multipartUpload(t, "third.mp4", "")
	req = httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, "slot is free again after reset")
}

func TestUploadValidation(t *testing.T) {
	env := newTestEnv(t, mock.NewMockProvider(), false)

	t.Run("missing file", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/upload", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad frame_interval", func(t *testing.T) {
		body, contentType := multipartUpload(t, "demo.mp4", "-1")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSearchEndpoint(t *testing.T) {
	frameEmbedder := mock.NewMockFrameEmbedder()
	frameEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0, 0}, nil
	}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, frameEmbedder)
	env := newTestEnv(t, provider, false)

	ctx := context.Background()
	_, err := env.frames.AddFrameEvidence(ctx, &core.FrameEvidence{
		VideoId:   1,
		Timestamp: 3.0,
		ImagePath: "frames/1/frame_3.jpg",
		Vector:    []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)
	_, err = env.texts.AddTextEvidence(ctx, &core.TextEvidence{
		VideoId:   1,
		StartTime: 4.0,
		EndTime:   6.0,
		Text:      "hello world",
		Vector:    []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search?q=hello", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[SearchResponse](t, rr)
	assert.Equal(t, "hello", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "hybrid", resp.Results[0].MatchType)
	assert.InDelta(t, 2.0, resp.Results[0].Score, 1e-6)
	assert.Equal(t, "frames/1/frame_3.jpg", resp.Results[0].PreviewPath)

	t.Run("weights steer ranking", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet,
			"/search?q=hello&visual_weight=0&text_weight=2", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeBody[SearchResponse](t, rr)
		require.Len(t, resp.Results, 1)
		assert.InDelta(t, 2.0, resp.Results[0].Score, 1e-6)
		assert.Equal(t, "single", resp.Results[0].MatchType)
	})
}

func TestSearchValidation(t *testing.T) {
	env := newTestEnv(t, mock.NewMockProvider(), false)

	t.Run("missing q", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad weight", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search?q=x&visual_weight=abc", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSearchFailure(t *testing.T) {
	frameEmbedder := mock.NewMockFrameEmbedder()
	frameEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, context.DeadlineExceeded
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), frameEmbedder)
	env := newTestEnv(t, provider, false)

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search?q=hello", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeBody[ErrorResponse](t, rr)
	assert.Equal(t, "QUERY_FAILED", resp.Code)
}

func TestResetEndpoint(t *testing.T) {
	env := newTestEnv(t, mock.NewMockProvider(), false)

	body, contentType := multipartUpload(t, "demo.mp4", "")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	require.Eventually(t, func() bool {
		job, err := env.jobs.Current(context.Background())
		return err == nil && job != nil && job.Status != core.JobStatusProcessing
	}, 5*time.Second, 10*time.Millisecond)

	uploaded := filepath.Join(env.cfg.UploadsDir, "demo.mp4")
	_, err := os.Stat(uploaded)
	require.NoError(t, err)

	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reset", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	resp := decodeBody[StatusResponse](t, rr)
	assert.Equal(t, StatusNoIndex, resp.Status)

	// Reset wipes the stored video along with the index.
	_, err = os.Stat(uploaded)
	assert.True(t, os.IsNotExist(err))
}

func TestFramesStaticServing(t *testing.T) {
	env := newTestEnv(t, mock.NewMockProvider(), false)

	dir := filepath.Join(env.cfg.FramesDir, "1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame_0.jpg"), []byte("jpeg bytes"), 0o644))

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/frames/1/frame_0.jpg", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jpeg bytes", rr.Body.String())
}
