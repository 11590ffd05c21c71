// Package fetcher resolves dataset sources (local paths, HTTP(S) and FTP
// URLs, ZIP archives) to local files and reads tabular formats.
package fetcher

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher downloads a remote URL to a local file.
type Fetcher interface {
	// DownloadToFile fetches the URL and writes it to path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Resolver turns a dataset source into a local file path, downloading remote
// sources into CacheDir first.
type Resolver struct {
	HTTP     Fetcher
	FTP      Fetcher
	CacheDir string
}

// NewResolver creates a Resolver with default HTTP and FTP fetchers.
func NewResolver(cacheDir string, httpOpts HTTPOptions, ftpOpts FTPOptions) *Resolver {
	return &Resolver{
		HTTP:     NewHTTPFetcher(httpOpts),
		FTP:      NewFTPFetcher(ftpOpts),
		CacheDir: cacheDir,
	}
}

// IsRemote reports whether src is an http(s) or ftp URL.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// Resolve returns a local path for src. Local paths are checked for
// existence; remote URLs are downloaded into the cache directory under
// their base name.
func (r *Resolver) Resolve(ctx context.Context, src string) (string, error) {
	if src == "" {
		return "", eris.New("fetcher: empty source")
	}
	if !IsRemote(src) {
		if _, err := os.Stat(src); err != nil {
			return "", eris.Wrapf(err, "fetcher: stat %s", src)
		}
		return src, nil
	}

	u, _ := url.Parse(src)
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", eris.Errorf("fetcher: cannot derive file name from %s", src)
	}

	dir := r.CacheDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create cache dir")
	}
	dest := filepath.Join(dir, name)

	f := r.HTTP
	if strings.EqualFold(u.Scheme, "ftp") {
		f = r.FTP
	}
	if f == nil {
		return "", eris.Errorf("fetcher: no fetcher for scheme %q", u.Scheme)
	}

	n, err := f.DownloadToFile(ctx, src, dest)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: download %s", src)
	}
	zap.L().Info("fetcher: downloaded source",
		zap.String("url", src),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)
	return dest, nil
}
