package tripdata

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/domain/interfaces"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

// DefaultBaseURL is the public Citi Bike trip-data host
const DefaultBaseURL = "https://s3.amazonaws.com/tripdata/"

const defaultBlockSize = 8192

type client struct {
	baseURL    string
	httpClient *http.Client
	blockSize  int
}

// Option is a functional option for the archive client
type Option func(*client)

// WithBaseURL sets the URL that archive names are appended to
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithBlockSize sets the transfer block size used for progress reporting
func WithBlockSize(size int) Option {
	return func(c *client) {
		if size > 0 {
			c.blockSize = size
		}
	}
}

// NewClient creates a new trip-data archive client
func NewClient(opts ...Option) (interfaces.ArchiveClient, error) {
	c := &client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		blockSize:  defaultBlockSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, goerr.New("invalid base URL", goerr.V("base_url", c.baseURL), goerr.T(types.ErrTagInvalidInput))
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}

	return c, nil
}

// Download fetches baseURL+name and streams the body into dst.
// Progress is reported as the number of started blocks after every read.
func (c *client) Download(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error) {
	target := c.baseURL + escapePath(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create download request", goerr.V("url", target), goerr.T(types.ErrTagTransport))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to download archive", goerr.V("url", target), goerr.T(types.ErrTagTransport))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, goerr.New("archive not found", goerr.V("url", target), goerr.V("status", resp.StatusCode), goerr.T(types.ErrTagNotFound))
	case resp.StatusCode != http.StatusOK:
		return 0, goerr.New("unexpected status code",
			goerr.V("url", target),
			goerr.V("status", resp.StatusCode),
			goerr.V("reason", http.StatusText(resp.StatusCode)),
			goerr.T(types.ErrTagTransport))
	}

	total := resp.ContentLength
	if progress == nil {
		progress = func(int64, int64, int64) {}
	}

	blockSize := int64(c.blockSize)
	buf := make([]byte, c.blockSize)
	var written int64

	progress(0, blockSize, total)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, goerr.Wrap(err, "failed to write archive data", goerr.V("url", target))
			}
			written += int64(n)
			progress((written+blockSize-1)/blockSize, blockSize, total)
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, goerr.Wrap(readErr, "failed to read archive body",
				goerr.V("url", target),
				goerr.V("received", written),
				goerr.T(types.ErrTagTransport))
		}
	}

	if total >= 0 && written < total {
		return written, goerr.New("transfer ended early",
			goerr.V("url", target),
			goerr.V("expected", total),
			goerr.V("received", written),
			goerr.T(types.ErrTagTransport))
	}

	return written, nil
}

// escapePath escapes each segment of name, keeping "/" separators
func escapePath(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
