package ai

import "errors"

// provider is a simple aggregation of the two embedding services.
type provider struct {
	embedder Embedder
	frames   FrameEmbedder
}

// NewProvider aggregates an Embedder and a FrameEmbedder into a Provider.
// Both services are required.
func NewProvider(embedder Embedder, frames FrameEmbedder) (Provider, error) {
	if embedder == nil {
		return nil, errors.New("ai: embedder required")
	}
	if frames == nil {
		return nil, errors.New("ai: frame embedder required")
	}
	return &provider{embedder: embedder, frames: frames}, nil
}

func (p *provider) Embedder() Embedder {
	return p.embedder
}

func (p *provider) FrameEmbedder() FrameEmbedder {
	return p.frames
}

// Close releases resources held by the underlying services, if they
// expose a Close method.
func (p *provider) Close() error {
	var firstErr error
	for _, service := range []any{p.embedder, p.frames} {
		if closer, ok := service.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
