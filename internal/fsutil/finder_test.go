package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFiles(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	write := func(rel string) string {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("# empty\n"), 0o644))
		return p
	}
	fields := write("c172/fields.hcl")
	pages := write("c172/pages.hcl")
	write("c172/README.md")
	single := write("extra.hcl")

	// --- Act ---
	files, err := CollectFiles(".hcl", filepath.Join(dir, "c172"), single, filepath.Join(dir, "missing"), fields)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{fields, pages, single}, files)
}

func TestFindFilesByExtension_PanicsOnEmptyExtension(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}
