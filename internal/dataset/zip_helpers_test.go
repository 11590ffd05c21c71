package dataset

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func createZIP(t *testing.T, zipPath string, files ...string) {
	t.Helper()
	out, err := os.Create(zipPath)
	require.NoError(t, err)
	w := zip.NewWriter(out)
	for _, p := range files {
		in, err := os.Open(p)
		require.NoError(t, err)
		fw, err := w.Create(filepath.Base(p))
		require.NoError(t, err)
		_, err = io.Copy(fw, in)
		require.NoError(t, err)
		require.NoError(t, in.Close())
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
}
