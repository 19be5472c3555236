package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/scenedex/core"
)

const defaultWhisperTimeout = 10 * time.Minute

// Whisper transcribes audio through an OpenAI-compatible transcription
// endpoint, such as a local whisper server.
type Whisper struct {
	host   string
	model  string
	client *http.Client
	logger *slog.Logger
}

// WhisperOption configures a Whisper client.
type WhisperOption func(*Whisper)

// WithWhisperHTTPClient overrides the HTTP client, mainly for tests.
func WithWhisperHTTPClient(client *http.Client) WhisperOption {
	return func(w *Whisper) {
		w.client = client
	}
}

// WithWhisperLogger sets the logger for request diagnostics.
func WithWhisperLogger(logger *slog.Logger) WhisperOption {
	return func(w *Whisper) {
		w.logger = logger
	}
}

// NewWhisper builds a transcription client for the given host and model.
// The host is the API base, e.g. "http://localhost:8080/v1".
func NewWhisper(host, model string, opts ...WhisperOption) *Whisper {
	w := &Whisper{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: defaultWhisperTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type transcriptionResponse struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio file and returns its timestamped segments
// in playback order. Segments with empty text are dropped.
func (w *Whisper) Transcribe(ctx context.Context, audioPath string) ([]core.TranscriptSegment, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if err := writer.WriteField("model", w.model); err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}

	url := w.host + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		strings.NewReader(body.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w.logger.Debug("transcribing audio", "audio", audioPath, "model", w.model)
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("transcription server returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse transcription response: %w", err)
	}

	segments := make([]core.TranscriptSegment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, core.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}
	return segments, nil
}
