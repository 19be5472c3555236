package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigNormalize(t *testing.T) {
	t.Run("adds /v1 suffix", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://localhost:11434"),
			WithClipHost("http://localhost:9200/"),
		)
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:9200/v1", cfg.ClipHost)
	})

	t.Run("leaves /v1 suffix alone", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost("http://localhost:11434/v1"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing clip host", func(t *testing.T) {
		cfg := NewConfig(WithClipHost(""))
		assert.Error(t, cfg.Validate())
	})
}
