package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/stellarr-r/strategy-launcher/internal/logger"
)

// errBadHTTPStatus is returned when the server answers with anything but 200.
var errBadHTTPStatus = errors.New("unexpected http status")

// Fetcher issues bounded HTTP GET requests against the update endpoints.
// Construct one with New; the zero value has no client.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher whose requests are bounded by the provided timeout.
// The timeout covers the whole transfer, not only the connection.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Get fetches the URL and returns the response body after checking the
// status. The caller owns the returned ReadCloser.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s, %s: %w", rawURL, response.Status, errBadHTTPStatus)
	}

	return response.Body, nil
}

// DownloadFile fetches the URL into dest with the provided mode and returns
// the number of bytes written. The transfer lands in a temporary file in the
// destination directory and is renamed into place, so a failed transfer
// never leaves a partial dest behind.
func (f *Fetcher) DownloadFile(ctx context.Context, rawURL, dest string, mode os.FileMode) (int64, error) {
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = body.Close()
	}()

	// Temporary file next to the destination keeps the rename on one filesystem.
	tempFile, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".download-*")
	if err != nil {
		return 0, err
	}

	tempName := tempFile.Name()

	written, err := io.Copy(tempFile, body)
	if err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempName)

		return 0, fmt.Errorf("download %s: %w", rawURL, err)
	}

	if err = tempFile.Close(); err != nil {
		_ = os.Remove(tempName)
		return 0, err
	}

	if err = os.Chmod(tempName, mode); err != nil {
		_ = os.Remove(tempName)
		return 0, err
	}

	if err = os.Rename(tempName, dest); err != nil {
		_ = os.Remove(tempName)
		return 0, err
	}

	logger.DebugKV(ctx, "Downloaded file", "url", rawURL, "path", dest, "bytes", written)

	return written, nil
}

// JoinURL appends elem to the path of base, normalizing duplicate slashes.
func JoinURL(base, elem string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	u.Path = path.Join(u.Path, elem)

	return u.String(), nil
}
