package test

import (
	"os"
	"path/filepath"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func getWd(t *testing.T, folder string) string {
	wd, err := os.Getwd()
	assert.NoError(t, err, "failed to get working directory")
	return filepath.Join(wd, folder)
}

// copyFixture copies a fixture project into a temporary directory so that the
// compiled output doesn't end up in the source tree.
func copyFixture(t *testing.T, name string) string {
	dir := t.TempDir()
	assert.NoError(t, os.CopyFS(dir, os.DirFS(getWd(t, filepath.Join("fixtures", name)))))
	return dir
}

func readFile(t *testing.T, parts ...string) string {
	data, err := os.ReadFile(filepath.Join(parts...))
	assert.NoError(t, err)
	return string(data)
}
