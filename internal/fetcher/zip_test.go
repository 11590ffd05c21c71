package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractZIPByExt(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"gemeenten/gemeenten.shp": "shp",
		"gemeenten/gemeenten.dbf": "dbf",
		"gemeenten/gemeenten.shx": "shx",
	})
	dest := t.TempDir()

	path, err := ExtractZIPByExt(zipPath, dest, ".shp")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "gemeenten", "gemeenten.shp"), path)
	assert.FileExists(t, filepath.Join(dest, "gemeenten", "gemeenten.dbf"))
}

func TestExtractZIPByExt_Missing(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"readme.txt": "x"})
	_, err := ExtractZIPByExt(zipPath, t.TempDir(), ".shp")
	assert.Error(t, err)
}

func TestExtractZIPByExt_Ambiguous(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"a.shp": "1", "b.shp": "2"})
	_, err := ExtractZIPByExt(zipPath, t.TempDir(), ".shp")
	assert.Error(t, err)
}

func TestExtractZIP_ZipSlip(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"../evil.txt": "x"})
	_, err := ExtractZIP(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal path")
}
