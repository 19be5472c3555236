// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/scenedex/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder instances for both modalities.
type MockProvider struct {
	embedder *MockEmbedder
	frames   *MockFrameEmbedder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockFrameEmbedder() to access concrete types for
// test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		frames:   NewMockFrameEmbedder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, frames *MockFrameEmbedder) ai.Provider {
	return &MockProvider{
		embedder: embedder,
		frames:   frames,
	}
}

// Embedder returns the mock text embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// FrameEmbedder returns the mock frame embedder.
func (p *MockProvider) FrameEmbedder() ai.FrameEmbedder {
	return p.frames
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockFrameEmbedder returns the underlying mock frame embedder for test assertions.
func (p *MockProvider) GetMockFrameEmbedder() *MockFrameEmbedder {
	return p.frames
}
