package scenedex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystem(t *testing.T) {
	t.Run("create new system", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "index")
		sys, err := NewSystem(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, sys)
		defer sys.Close()

		assert.NotNil(t, sys.JobRepository())
		assert.NotNil(t, sys.FrameRepository())
		assert.NotNil(t, sys.TextRepository())
		assert.NotNil(t, sys.backend)
		assert.NotNil(t, sys.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		sys, err := NewSystem(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, sys)
	})
}

func TestSystem_Close(t *testing.T) {
	sys, err := NewSystem(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, sys)

	assert.NoError(t, sys.Close())
}

func TestSystem_NewSearcher(t *testing.T) {
	sys, err := NewSystem(t.TempDir())
	require.NoError(t, err)
	defer sys.Close()

	searcher, err := sys.NewSearcher()
	require.NoError(t, err)
	assert.NotNil(t, searcher)
}
