package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/scenedex/ai"
)

const defaultRequestTimeout = 120 * time.Second

// FrameEmbedder implements ai.FrameEmbedder against a CLIP serving endpoint.
// The endpoint accepts base64-encoded images or plain text and returns
// embeddings in a shared space.
type FrameEmbedder struct {
	host   string
	model  string
	client *http.Client
	logger *slog.Logger
}

var _ ai.FrameEmbedder = (*FrameEmbedder)(nil)

// Option configures a FrameEmbedder.
type Option func(*FrameEmbedder)

// WithHTTPClient sets a custom HTTP client (used by tests).
func WithHTTPClient(client *http.Client) Option {
	return func(e *FrameEmbedder) {
		if client != nil {
			e.client = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *FrameEmbedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewFrameEmbedder creates a frame embedder for the configured CLIP endpoint.
func NewFrameEmbedder(config *ai.Config, opts ...Option) (ai.FrameEmbedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &FrameEmbedder{
		host:   config.ClipHost,
		model:  config.ClipModel,
		client: &http.Client{Timeout: defaultRequestTimeout},
		logger: slog.Default().With("component", "clip-embedder"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// embeddingInput is one entry in an embeddings request. Exactly one of
// Image (base64 JPEG) or Text is set.
type embeddingInput struct {
	Image string `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
}

type embeddingRequest struct {
	Model string           `json:"model"`
	Input []embeddingInput `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedImages generates embeddings for a batch of JPEG-encoded images.
// The returned slice preserves input order.
func (e *FrameEmbedder) EmbedImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	if len(images) == 0 {
		return [][]float32{}, nil
	}

	e.logger.Debug("generating embeddings for images", "count", len(images))

	inputs := make([]embeddingInput, len(images))
	for i, img := range images {
		inputs[i] = embeddingInput{Image: base64.StdEncoding.EncodeToString(img)}
	}

	vectors, err := e.post(ctx, embeddingRequest{Model: e.model, Input: inputs})
	if err != nil {
		e.logger.Error("failed to generate image embeddings", "count", len(images), "err", err)
		return nil, err
	}

	if len(vectors) != len(images) {
		return nil, fmt.Errorf("clip: embedding count mismatch: expected %d, got %d", len(images), len(vectors))
	}

	return vectors, nil
}

// EmbedText generates an embedding for query text in the image space.
func (e *FrameEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating cross-modal embedding for text", "length", len(text))

	vectors, err := e.post(ctx, embeddingRequest{
		Model: e.model,
		Input: []embeddingInput{{Text: text}},
	})
	if err != nil {
		e.logger.Error("failed to generate text embedding", "err", err)
		return nil, err
	}

	if len(vectors) == 0 {
		e.logger.Warn("clip endpoint returned empty result")
		return []float32{}, nil
	}

	return vectors[0], nil
}

// post sends one embeddings request and returns vectors in input order.
func (e *FrameEmbedder) post(ctx context.Context, reqBody embeddingRequest) ([][]float32, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("clip: endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(decoded.Data))
	for _, entry := range decoded.Data {
		if entry.Index < 0 || entry.Index >= len(vectors) {
			return nil, fmt.Errorf("clip: embedding index %d out of range", entry.Index)
		}
		vectors[entry.Index] = entry.Embedding
	}

	return vectors, nil
}
