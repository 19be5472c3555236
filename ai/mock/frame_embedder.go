package mock

import "context"

// MockFrameEmbedder is a test double for ai.FrameEmbedder.
// It allows custom behavior injection via function fields.
type MockFrameEmbedder struct {
	// EmbedImagesFunc is called by EmbedImages if set.
	// If nil, uses default deterministic behavior.
	EmbedImagesFunc func(ctx context.Context, images [][]byte) ([][]float32, error)

	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	callCount int
}

// NewMockFrameEmbedder creates a mock frame embedder with default
// deterministic behavior.
func NewMockFrameEmbedder() *MockFrameEmbedder {
	return &MockFrameEmbedder{}
}

// EmbedImages generates deterministic embeddings from the image bytes.
func (m *MockFrameEmbedder) EmbedImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	m.callCount++

	if m.EmbedImagesFunc != nil {
		return m.EmbedImagesFunc(ctx, images)
	}

	embeddings := make([][]float32, len(images))
	for i, img := range images {
		embeddings[i] = generateDeterministicVector(img, 512)
	}
	return embeddings, nil
}

// EmbedText generates a deterministic embedding in the same space as
// EmbedImages.
func (m *MockFrameEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return generateDeterministicVector([]byte(text), 512), nil
}

// CallCount returns the number of times any method was called.
func (m *MockFrameEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockFrameEmbedder) Reset() {
	m.callCount = 0
	m.EmbedImagesFunc = nil
	m.EmbedTextFunc = nil
}
