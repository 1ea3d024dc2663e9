package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFilesBySuffix(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "nested"), 0o755))
	for _, name := range []string{"b.py", "a.py", "notes.txt", filepath.Join("nested", "c.py")} {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0o600))
	}

	// --- Act ---
	files, err := FindFilesBySuffix(tempDir, ".py")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(tempDir, "a.py"),
		filepath.Join(tempDir, "b.py"),
		filepath.Join(tempDir, "nested", "c.py"),
	}, files, "results must be in lexical walk order")
}

func TestFindFilesBySuffix_EmptyDir(t *testing.T) {
	t.Parallel()

	files, err := FindFilesBySuffix(t.TempDir(), ".py")

	require.NoError(t, err)
	require.Empty(t, files)
}

func TestFindFilesBySuffix_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := FindFilesBySuffix(filepath.Join(t.TempDir(), "does-not-exist"), ".py")

	require.Error(t, err)
}

func TestFindFilesBySuffix_EmptySuffixPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_, _ = FindFilesBySuffix(t.TempDir(), "")
	})
}
