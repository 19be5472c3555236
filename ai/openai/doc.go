// Package openai implements text embeddings against any OpenAI-compatible
// embeddings API (Ollama, LocalAI, vLLM, OpenAI itself).
package openai
