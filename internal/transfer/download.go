package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultParallelDownloads bounds concurrent whole-file downloads.
const DefaultParallelDownloads = 5

// downloadTimeout bounds a single file GET.
const downloadTimeout = 5 * time.Minute

// DownloadFile is one file to fetch: a resolved presigned URL and where to
// put the bytes.
type DownloadFile struct {
	Key       string
	URL       string
	LocalPath string
	Size      int64 // 0 when unknown; the response Content-Length fills it in
}

// DownloadFileResult is the outcome of one file download.
type DownloadFileResult struct {
	Key       string
	LocalPath string
	Size      int64
	Err       error
}

// DownloadResult aggregates a download run.
type DownloadResult struct {
	RunID           string
	OverallSuccess  bool
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalBytes      int64
	Duration        time.Duration
	BytesPerSecond  float64
	Files           []DownloadFileResult
	FailedKeys      []string
	Err             error
}

// Downloader fetches files from presigned GET targets with bounded
// concurrency and retry. There is no sequence concept on download; the
// semaphore applies at the whole-file level.
type Downloader struct {
	http  *resty.Client
	sem   *semaphore.Weighted
	retry RetryPolicy
	log   *slog.Logger
}

// DownloaderOptions configures a Downloader.
type DownloaderOptions struct {
	MaxParallel int
	Retry       RetryPolicy
	Logger      *slog.Logger
	// HTTPClient overrides the data-plane client. Intended for tests.
	HTTPClient *resty.Client
}

// NewDownloader builds a Downloader.
func NewDownloader(opts DownloaderOptions) *Downloader {
	parallel := opts.MaxParallel
	if parallel <= 0 {
		parallel = DefaultParallelDownloads
	}
	retry := opts.Retry
	if retry.Attempts == 0 && retry.BaseDelay == 0 {
		retry = DefaultRetryPolicy()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = resty.New().SetTimeout(downloadTimeout)
	}
	return &Downloader{
		http:  hc,
		sem:   semaphore.NewWeighted(int64(parallel)),
		retry: retry,
		log:   log,
	}
}

// DownloadFiles fetches all files and reports a structured result. A failed
// file never aborts its siblings; partial success is an expected outcome.
func (d *Downloader) DownloadFiles(ctx context.Context, runID string, files []DownloadFile, progress *Progress) *DownloadResult {
	started := time.Now()

	for _, f := range files {
		progress.AddFile(f.Key, f.Size, 1)
	}

	results := make([]DownloadFileResult, len(files))
	var g errgroup.Group
	for i, f := range files {
		g.Go(func() error {
			results[i] = d.downloadWithRetry(ctx, f, progress)
			return nil
		})
	}
	g.Wait()

	result := &DownloadResult{
		RunID:          runID,
		OverallSuccess: true,
		TotalFiles:     len(files),
		Files:          results,
		Duration:       time.Since(started),
	}
	for _, r := range results {
		if r.Err != nil {
			result.FailedFiles++
			result.FailedKeys = append(result.FailedKeys, r.Key)
			result.OverallSuccess = false
			result.Err = multierr.Append(result.Err, fmt.Errorf("%s: %w", r.Key, r.Err))
		} else {
			result.SuccessfulFiles++
			result.TotalBytes += r.Size
		}
	}
	if result.Duration > 0 {
		result.BytesPerSecond = float64(result.TotalBytes) / result.Duration.Seconds()
	}
	return result
}

// downloadWithRetry drives one file through acquire / GET / stream with the
// shared retry policy.
func (d *Downloader) downloadWithRetry(ctx context.Context, f DownloadFile, progress *Progress) DownloadFileResult {
	res := DownloadFileResult{Key: f.Key, LocalPath: f.LocalPath}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		res.Err = err
		progress.FileFailed(f.Key)
		return res
	}
	defer d.sem.Release(1)

	progress.TaskStarted(f.Key)
	defer progress.TaskEnded()

	var lastErr error
	for attempt := 0; attempt <= d.retry.Attempts; attempt++ {
		size, err := d.downloadOnce(ctx, f, progress)
		if err == nil {
			res.Size = size
			progress.FileCompleted(f.Key, size)
			d.log.Debug("file downloaded",
				"key", f.Key,
				"path", f.LocalPath,
				"size", size,
				"attempts", attempt+1,
			)
			return res
		}

		lastErr = err
		if attempt < d.retry.Attempts && ctx.Err() == nil {
			delay := d.retry.Delay(attempt)
			d.log.Debug("download failed, retrying",
				"key", f.Key,
				"attempt", attempt+1,
				"delay", delay,
				"error", err,
			)
			if sleepErr := sleep(ctx, delay); sleepErr != nil {
				break
			}
		}
	}

	res.Err = lastErr
	progress.FileFailed(f.Key)
	d.log.Error("download failed after exhausting retries", "key", f.Key, "error", lastErr)
	return res
}

// downloadOnce streams one GET response to disk. The partial file is removed
// on failure so a retry starts clean.
func (d *Downloader) downloadOnce(ctx context.Context, f DownloadFile, progress *Progress) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(f.LocalPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating destination directory: %w", err)
	}

	resp, err := d.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(f.URL)
	if err != nil {
		return 0, fmt.Errorf("requesting download: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("download target returned status %d", resp.StatusCode())
	}

	out, err := os.Create(f.LocalPath)
	if err != nil {
		return 0, fmt.Errorf("creating destination file: %w", err)
	}

	pw := &progressWriter{w: out, key: f.Key, progress: progress}
	written, copyErr := io.Copy(pw, body)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(f.LocalPath)
		if copyErr != nil {
			return 0, fmt.Errorf("streaming download: %w", copyErr)
		}
		return 0, fmt.Errorf("closing destination file: %w", closeErr)
	}

	return written, nil
}

// progressWriter forwards writes and reports streamed byte counts.
type progressWriter struct {
	w        io.Writer
	key      string
	n        int64
	progress *Progress
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	if n > 0 {
		pw.n += int64(n)
		pw.progress.FileBytes(pw.key, pw.n)
	}
	return n, err
}
