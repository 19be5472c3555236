// Package ai defines the embedding provider abstractions used by ingestion
// and search.
//
// Two independent embedding spaces exist: a sentence-embedding space for
// transcript text (Embedder) and a CLIP space for video frames
// (FrameEmbedder). The FrameEmbedder also embeds query text into the CLIP
// space so a single query string can be matched against frames.
//
// Concrete implementations live in subpackages:
//   - ai/openai: text embeddings via any OpenAI-compatible API
//   - ai/clip: frame embeddings via a CLIP serving endpoint
//   - ai/mock: deterministic test doubles
package ai
