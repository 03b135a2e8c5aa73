package mediafetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// ErrTooLarge is returned when a download exceeds its size cap.
var ErrTooLarge = errors.New("media exceeds size limit")

// File describes a downloaded media asset.
type File struct {
	Name     string
	MimeType string
	Size     int64
}

type Config struct {
	TempDir string
	Timeout time.Duration
}

// Fetcher downloads remote media for the AI providers.
type Fetcher struct {
	tempDir    string
	httpClient *http.Client
}

func New(cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Fetcher{
		tempDir:    cfg.TempDir,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithTempFile downloads rawURL into a temporary file, hands it to fn and
// removes the file afterwards whatever fn returns.
func (f *Fetcher) WithTempFile(ctx context.Context, rawURL string, maxBytes int64, fn func(file *os.File, info File) error) error {
	resp, err := f.get(ctx, rawURL, maxBytes)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if f.tempDir != "" {
		if err := os.MkdirAll(f.tempDir, 0755); err != nil {
			return fmt.Errorf("create temp dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(f.tempDir, "adlib-media-*"+extension(rawURL))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("[MEDIA] Failed to cleanup temporary file %s: %v", tmp.Name(), err)
		}
	}()

	n, err := copyCapped(tmp, resp.Body, maxBytes)
	if err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind temp file: %w", err)
	}

	info := File{Name: path.Base(tmp.Name()), MimeType: mimeType(resp, rawURL), Size: n}
	logrus.WithFields(logrus.Fields{
		"url":  rawURL,
		"size": humanize.Bytes(uint64(n)),
		"mime": info.MimeType,
	}).Debug("[MEDIA] Downloaded to temporary file")

	return fn(tmp, info)
}

// Bytes downloads rawURL fully into memory.
func (f *Fetcher) Bytes(ctx context.Context, rawURL string, maxBytes int64) ([]byte, File, error) {
	resp, err := f.get(ctx, rawURL, maxBytes)
	if err != nil {
		return nil, File{}, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	n, err := copyCapped(&buf, resp.Body, maxBytes)
	if err != nil {
		return nil, File{}, err
	}

	info := File{Name: path.Base(mustPath(rawURL)), MimeType: mimeType(resp, rawURL), Size: n}
	logrus.WithFields(logrus.Fields{
		"url":  rawURL,
		"size": humanize.Bytes(uint64(n)),
	}).Debug("[MEDIA] Downloaded into memory")

	return buf.Bytes(), info, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string, maxBytes int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}
	if maxBytes > 0 && resp.ContentLength > maxBytes {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s > %s", ErrTooLarge, humanize.Bytes(uint64(resp.ContentLength)), humanize.Bytes(uint64(maxBytes)))
	}
	return resp, nil
}

func copyCapped(dst io.Writer, src io.Reader, maxBytes int64) (int64, error) {
	if maxBytes <= 0 {
		n, err := io.Copy(dst, src)
		if err != nil {
			return n, fmt.Errorf("read body: %w", err)
		}
		return n, nil
	}
	n, err := io.Copy(dst, io.LimitReader(src, maxBytes+1))
	if err != nil {
		return n, fmt.Errorf("read body: %w", err)
	}
	if n > maxBytes {
		return n, fmt.Errorf("%w: more than %s", ErrTooLarge, humanize.Bytes(uint64(maxBytes)))
	}
	return n, nil
}

func mimeType(resp *http.Response, rawURL string) string {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	if mt := mime.TypeByExtension(extension(rawURL)); mt != "" {
		if base, _, err := mime.ParseMediaType(mt); err == nil {
			return base
		}
	}
	return "application/octet-stream"
}

func extension(rawURL string) string {
	return strings.ToLower(path.Ext(mustPath(rawURL)))
}

func mustPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}
