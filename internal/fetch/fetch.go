// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch transfers planned genome files to local disk over HTTP or
// FTP, one at a time with a fixed pause between transfers.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/bactfetch/internal/httputil"
	"github.com/pdiddy/bactfetch/pkg/types"
)

// DefaultDelay is the pause between consecutive downloads.
const DefaultDelay = 10 * time.Second

// Retriever copies one remote archive file to w.
type Retriever interface {
	Retrieve(remotePath string, w io.Writer) error
}

// Fetcher performs the transfers of a manifest.
type Fetcher struct {
	HTTP      *http.Client
	FTP       Retriever
	UserAgent string

	// Delay is slept between consecutive fetches. It does not grow on failure.
	Delay time.Duration

	// Sleep defaults to time.Sleep. Tests replace it.
	Sleep func(time.Duration)
}

// BatchResult holds the outcome of a batch retrieval run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Failures   []string
}

// Total returns the number of files considered, including skipped ones.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchOne transfers ref into dir.
func (f *Fetcher) FetchOne(ctx context.Context, ref types.RemoteFileRef, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	dest := filepath.Join(dir, ref.LocalName)

	switch ref.Source {
	case types.SourceHTTP:
		return writeAtomic(dest, func(w io.Writer) error {
			resp, err := httputil.Get(ctx, f.HTTP, ref.RemotePath, f.UserAgent, "")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if _, err := io.Copy(w, resp.Body); err != nil {
				return fmt.Errorf("%w: reading %s: %v", types.ErrTransport, ref.RemotePath, err)
			}
			return nil
		})
	case types.SourceFTP:
		if f.FTP == nil {
			return errors.New("no FTP session configured")
		}
		return writeAtomic(dest, func(w io.Writer) error {
			return f.FTP.Retrieve(ref.RemotePath, w)
		})
	default:
		return fmt.Errorf("unsupported source %v", ref.Source)
	}
}

// Batch fetches every file of m in order, printing per-file status to w.
// A failed file is reported and the batch continues.
func (f *Fetcher) Batch(ctx context.Context, m types.Manifest, w io.Writer) BatchResult {
	sleep := f.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	result := BatchResult{Skipped: m.Skipped}
	for i, ref := range m.Files {
		if i > 0 && f.Delay > 0 {
			sleep(f.Delay)
		}
		fmt.Fprintf(w, "downloading: %s (%s)\n", ref.LocalName, ref.Label)
		if err := f.FetchOne(ctx, ref, m.Dir); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", ref.LocalName, err)
			result.Failed++
			result.Failures = append(result.Failures, ref.LocalName)
			continue
		}
		result.Downloaded++
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// writeAtomic streams fill into a temporary file next to destPath and
// renames it into place only on success.
func writeAtomic(destPath string, fill func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	fillErr := fill(tmpFile)
	closeErr := tmpFile.Close()
	if fillErr != nil {
		os.Remove(tmpPath)
		return fillErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
