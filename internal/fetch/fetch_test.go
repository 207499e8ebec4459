// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bactfetch/pkg/types"
)

const fakeEMBL = "ID   U00096; SV 3; circular; genomic DNA"

// newTestServer serves a fake EMBL record for /view/<acc> and 404 otherwise.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/view/") {
			fmt.Fprint(w, fakeEMBL)
			return
		}
		http.NotFound(w, r)
	}))
}

type mapRetriever map[string]string

func (m mapRetriever) Retrieve(remotePath string, w io.Writer) error {
	content, ok := m[remotePath]
	if !ok {
		return fmt.Errorf("%w: 550 %s not found", types.ErrTransport, remotePath)
	}
	_, err := io.WriteString(w, content)
	return err
}

type sleepRecorder struct{ calls []time.Duration }

func (s *sleepRecorder) sleep(d time.Duration) { s.calls = append(s.calls, d) }

// --- FetchOne ---

func TestFetchOneHTTP(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := filepath.Join(t.TempDir(), "out")
	f := &Fetcher{HTTP: ts.Client()}
	ref := types.RemoteFileRef{Source: types.SourceHTTP, RemotePath: ts.URL + "/view/U00096", LocalName: "Escherichia-coli.U00096.EMBL.gz"}

	require.NoError(t, f.FetchOne(context.Background(), ref, dir))
	data, err := os.ReadFile(filepath.Join(dir, ref.LocalName))
	require.NoError(t, err)
	assert.Equal(t, fakeEMBL, string(data))
}

func TestFetchOneHTTPErrorLeavesNoFile(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	f := &Fetcher{HTTP: ts.Client()}
	ref := types.RemoteFileRef{Source: types.SourceHTTP, RemotePath: ts.URL + "/missing", LocalName: "x.EMBL.gz"}

	err := f.FetchOne(context.Background(), ref, dir)
	assert.ErrorIs(t, err, types.ErrTransport)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or temp file remains")
}

func TestFetchOneFTP(t *testing.T) {
	dir := t.TempDir()
	f := &Fetcher{FTP: mapRetriever{"/g/a/a.dat.gz": "LOCUS a"}}
	ref := types.RemoteFileRef{Source: types.SourceFTP, RemotePath: "/g/a/a.dat.gz", LocalName: "a.dat.gz"}

	require.NoError(t, f.FetchOne(context.Background(), ref, dir))
	data, err := os.ReadFile(filepath.Join(dir, "a.dat.gz"))
	require.NoError(t, err)
	assert.Equal(t, "LOCUS a", string(data))
}

func TestFetchOneFTPWithoutSession(t *testing.T) {
	f := &Fetcher{}
	ref := types.RemoteFileRef{Source: types.SourceFTP, RemotePath: "/g/a", LocalName: "a"}
	assert.Error(t, f.FetchOne(context.Background(), ref, t.TempDir()))
}

// --- Batch ---

func TestBatchContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	rec := &sleepRecorder{}
	f := &Fetcher{
		FTP:   mapRetriever{"/g/a": "A", "/g/c": "C"},
		Delay: 10 * time.Second,
		Sleep: rec.sleep,
	}
	m := types.Manifest{
		Dir:     dir,
		Skipped: 2,
		Files: []types.RemoteFileRef{
			{Source: types.SourceFTP, RemotePath: "/g/a", LocalName: "a", Label: "genome_a"},
			{Source: types.SourceFTP, RemotePath: "/g/b", LocalName: "b", Label: "genome_b"},
			{Source: types.SourceFTP, RemotePath: "/g/c", LocalName: "c", Label: "genome_c"},
		},
	}
	var buf bytes.Buffer

	result := f.Batch(context.Background(), m, &buf)

	assert.Equal(t, 2, result.Downloaded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 5, result.Total())
	assert.True(t, result.HasFailures())
	assert.Equal(t, []string{"b"}, result.Failures)
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, rec.calls, "fixed delay between consecutive fetches only")

	out := buf.String()
	assert.Contains(t, out, "failed:  b")
	assert.Contains(t, out, "Batch summary: 2 downloaded, 2 skipped, 1 failed (total: 5)")
	assert.FileExists(t, filepath.Join(dir, "c"))
}

func TestBatchOrder(t *testing.T) {
	f := &Fetcher{FTP: mapRetriever{"/1": "", "/2": "", "/3": ""}, Sleep: func(time.Duration) {}}
	m := types.Manifest{Dir: t.TempDir()}
	for _, n := range []string{"3", "1", "2"} {
		m.Files = append(m.Files, types.RemoteFileRef{Source: types.SourceFTP, RemotePath: "/" + n, LocalName: n})
	}
	var buf bytes.Buffer
	f.Batch(context.Background(), m, &buf)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "downloading: 3 ()", lines[0])
	assert.Equal(t, "downloading: 1 ()", lines[1])
	assert.Equal(t, "downloading: 2 ()", lines[2])
}

func TestBatchEmpty(t *testing.T) {
	f := &Fetcher{Sleep: func(time.Duration) { t.Fatal("no sleep expected") }}
	var buf bytes.Buffer
	result := f.Batch(context.Background(), types.Manifest{Dir: t.TempDir()}, &buf)
	assert.Zero(t, result.Total())
	assert.False(t, result.HasFailures())
}

func TestWriteAtomicFillError(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "x")
	err := writeAtomic(dest, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return errors.New("connection reset")
	})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoFileExists(t, dest)
}
