// Package clip implements frame (and cross-modal query) embeddings against
// a CLIP serving endpoint speaking an OpenAI-style embeddings API with
// base64 image inputs.
package clip
