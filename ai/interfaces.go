package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// FrameEmbedder generates vector embeddings in a joint image/text space
// (CLIP-style). Image and text embeddings are mutually comparable, which
// is what lets a text query retrieve visually matching frames.
// Implementations must be thread-safe for concurrent use.
type FrameEmbedder interface {
	// EmbedImages generates embeddings for a batch of encoded images
	// (JPEG bytes). The returned slice preserves input order.
	EmbedImages(ctx context.Context, images [][]byte) ([][]float32, error)

	// EmbedText generates an embedding for query text in the same space
	// as image embeddings.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Provider aggregates the two embedding services for convenient
// initialization and lifecycle management.
type Provider interface {
	// Embedder returns the sentence-embedding service for transcript text.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// FrameEmbedder returns the CLIP-space embedding service for frames.
	// The returned FrameEmbedder is safe for concurrent use.
	FrameEmbedder() FrameEmbedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
