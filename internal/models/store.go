// Package models keeps named whisper model artifacts present in a local
// cache, downloading them on demand with progress reporting.
package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"video-subtitle/internal/domain"
)

// DefaultBaseURL is where model artifacts are fetched from, templated
// with the model file name.
const DefaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ErrSizeUnknown is returned when the server does not report a content
// length; progress reporting depends on a known total size.
var ErrSizeUnknown = errors.New("model download size unknown")

// Store resolves model ids against a cache directory and downloads
// missing artifacts.
type Store struct {
	cacheDir string
	baseURL  string
	client   *http.Client
}

// NewStore creates a model store over the given cache directory.
func NewStore(cacheDir string) *Store {
	return &Store{
		cacheDir: cacheDir,
		baseURL:  DefaultBaseURL,
		client:   http.DefaultClient,
	}
}

// NewStoreWithClient creates a store with an explicit base URL and HTTP
// client, used by tests and mirror configurations.
func NewStoreWithClient(cacheDir, baseURL string, client *http.Client) *Store {
	return &Store{cacheDir: cacheDir, baseURL: baseURL, client: client}
}

// LocalPath derives the cache location for a model id.
func (s *Store) LocalPath(modelID string) string {
	return filepath.Join(s.cacheDir, modelID)
}

// Describe resolves a model id without touching the network.
func (s *Store) Describe(modelID string) domain.ModelDescriptor {
	path := s.LocalPath(modelID)
	info, err := os.Stat(path)
	return domain.ModelDescriptor{
		ModelID:   modelID,
		LocalPath: path,
		Present:   err == nil && !info.IsDir(),
	}
}

// Ensure returns the local path for modelID, downloading the artifact
// first if it is not cached. A cached model is returned without any
// network access.
func (s *Store) Ensure(ctx context.Context, modelID string, onProgress func(domain.DownloadProgress)) (string, error) {
	path := s.LocalPath(modelID)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}

	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create model cache dir: %w", err)
	}

	if err := s.download(ctx, modelID, path, onProgress); err != nil {
		return "", fmt.Errorf("download model %s: %w", modelID, err)
	}
	return path, nil
}

// download streams the artifact to a partial file and renames it into
// place on success, so a cached model file is never half-written.
func (s *Store) download(ctx context.Context, modelID, path string, onProgress func(domain.DownloadProgress)) error {
	url := s.baseURL + "/" + modelID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	// A zero Content-Length is a known size (an empty artifact); only a
	// missing length makes progress reporting impossible.
	if resp.ContentLength < 0 {
		return ErrSizeUnknown
	}

	partial := path + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("create %s: %w", partial, err)
	}

	pw := &progressWriter{
		w:          out,
		total:      resp.ContentLength,
		onProgress: onProgress,
	}
	_, copyErr := io.Copy(pw, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(partial)
		return fmt.Errorf("write model data: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(partial)
		return fmt.Errorf("flush model data: %w", closeErr)
	}

	if err := os.Rename(partial, path); err != nil {
		os.Remove(partial)
		return fmt.Errorf("finalize model file: %w", err)
	}
	return nil
}

// progressWriter reports cumulative progress after each written chunk.
type progressWriter struct {
	w          io.Writer
	total      int64
	written    int64
	onProgress func(domain.DownloadProgress)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	if pw.onProgress != nil {
		pw.onProgress(domain.DownloadProgress{
			Downloaded: pw.written,
			Total:      pw.total,
		})
	}
	return n, err
}
