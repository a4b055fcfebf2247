package transfer

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// downloadServer serves file bodies by path and can fail a path a number of
// times before succeeding.
type downloadServer struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	failures map[string]int
	requests map[string]int

	srv *httptest.Server
}

func newDownloadServer(t *testing.T) *downloadServer {
	t.Helper()
	ds := &downloadServer{
		bodies:   make(map[string][]byte),
		failures: make(map[string]int),
		requests: make(map[string]int),
	}
	ds.srv = httptest.NewServer(http.HandlerFunc(ds.handle))
	t.Cleanup(ds.srv.Close)
	return ds
}

func (ds *downloadServer) handle(w http.ResponseWriter, r *http.Request) {
	ds.mu.Lock()
	ds.requests[r.URL.Path]++
	if ds.failures[r.URL.Path] > 0 {
		ds.failures[r.URL.Path]--
		ds.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	body := ds.bodies[r.URL.Path]
	ds.mu.Unlock()

	if body == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (ds *downloadServer) add(path string, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 239)
	}
	ds.mu.Lock()
	ds.bodies[path] = data
	ds.mu.Unlock()
	return data
}

func TestDownloaderHappyPath(t *testing.T) {
	ds := newDownloadServer(t)
	want := ds.add("/f/a.bin", 4096)
	outDir := t.TempDir()

	d := NewDownloader(DownloaderOptions{MaxParallel: 2, Retry: testRetryPolicy(1)})
	progress := NewProgress(nil)
	res := d.DownloadFiles(context.Background(), NewRunID(), []DownloadFile{
		{
			Key:       "nested/dir/a.bin",
			URL:       ds.srv.URL + "/f/a.bin",
			LocalPath: filepath.Join(outDir, "nested", "dir", "a.bin"),
			Size:      4096,
		},
	}, progress)

	require.True(t, res.OverallSuccess, "run failed: %v", res.Err)
	require.Equal(t, 1, res.SuccessfulFiles)

	// Parent directories are created and the bytes land intact.
	got, err := os.ReadFile(filepath.Join(outDir, "nested", "dir", "a.bin"))
	require.NoError(t, err)
	require.True(t, bytes.Equal(want, got), "downloaded bytes differ")

	snap := progress.Snapshot()
	assert.Equal(t, int64(4096), snap.CompletedBytes)
	assert.Equal(t, 1, snap.CompletedFiles)
}

func TestDownloaderRetriesThenSucceeds(t *testing.T) {
	ds := newDownloadServer(t)
	want := ds.add("/f/flaky.bin", 128)
	ds.failures["/f/flaky.bin"] = 2
	outDir := t.TempDir()

	d := NewDownloader(DownloaderOptions{MaxParallel: 1, Retry: testRetryPolicy(3)})
	res := d.DownloadFiles(context.Background(), NewRunID(), []DownloadFile{
		{Key: "flaky.bin", URL: ds.srv.URL + "/f/flaky.bin", LocalPath: filepath.Join(outDir, "flaky.bin"), Size: 128},
	}, NewProgress(nil))

	require.True(t, res.OverallSuccess, "run failed: %v", res.Err)
	assert.Equal(t, 3, ds.requests["/f/flaky.bin"])

	got, err := os.ReadFile(filepath.Join(outDir, "flaky.bin"))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(want, got))
}

func TestDownloaderExhaustedRetriesFailsFile(t *testing.T) {
	ds := newDownloadServer(t)
	ds.add("/f/doomed.bin", 64)
	ds.failures["/f/doomed.bin"] = 100
	ds.add("/f/fine.bin", 64)
	outDir := t.TempDir()

	attempts := 1
	d := NewDownloader(DownloaderOptions{MaxParallel: 2, Retry: testRetryPolicy(attempts)})
	progress := NewProgress(nil)
	res := d.DownloadFiles(context.Background(), NewRunID(), []DownloadFile{
		{Key: "doomed.bin", URL: ds.srv.URL + "/f/doomed.bin", LocalPath: filepath.Join(outDir, "doomed.bin"), Size: 64},
		{Key: "fine.bin", URL: ds.srv.URL + "/f/fine.bin", LocalPath: filepath.Join(outDir, "fine.bin"), Size: 64},
	}, progress)

	assert.False(t, res.OverallSuccess)
	assert.Equal(t, []string{"doomed.bin"}, res.FailedKeys)
	assert.Equal(t, 1, res.SuccessfulFiles)
	assert.Equal(t, attempts+1, ds.requests["/f/doomed.bin"])

	// No partial file is left behind.
	_, err := os.Stat(filepath.Join(outDir, "doomed.bin"))
	assert.True(t, os.IsNotExist(err), "partial file left on disk")

	snap := progress.Snapshot()
	assert.Equal(t, 1, snap.FailedFiles)
	assert.Equal(t, 1, snap.CompletedFiles)
}

func TestDownloaderNoFiles(t *testing.T) {
	d := NewDownloader(DownloaderOptions{})
	res := d.DownloadFiles(context.Background(), NewRunID(), nil, NewProgress(nil))
	assert.True(t, res.OverallSuccess)
	assert.Equal(t, 0, res.TotalFiles)
}
