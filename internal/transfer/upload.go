package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/assetvault/avc/internal/api"
)

// DefaultParallelUploads bounds concurrent part transfers across all
// sequences of a run.
const DefaultParallelUploads = 10

// partTransferTimeout bounds one part PUT, sized for the largest chunk on a
// slow link.
const partTransferTimeout = 1 * time.Hour

// UploadAPI is the control-plane surface the uploader needs.
type UploadAPI interface {
	InitializeUpload(ctx context.Context, req api.InitializeUploadRequest) (*api.InitializeUploadResponse, error)
	CompleteUpload(ctx context.Context, uploadID string, req api.CompleteUploadRequest) (*api.CompleteUploadResponse, error)
}

// UploadRequest addresses where a run's files land.
type UploadRequest struct {
	DatabaseID string
	AssetID    string
	UploadType string // "assetFile" or "assetPreview"
}

// PartUploadError reports a permanently failed part transfer.
type PartUploadError struct {
	Key  string
	Part int
	Err  error
}

func (e *PartUploadError) Error() string {
	return fmt.Sprintf("part %d of %s failed: %v", e.Part, e.Key, e.Err)
}

func (e *PartUploadError) Unwrap() error { return e.Err }

// partState tracks one part transfer through its lifetime. It is owned by
// exactly one worker; only the Progress aggregator is shared.
type partState struct {
	file      FileInfo
	part      Part
	targetURL string
	etag      string
	status    FileStatus
	retries   int
	err       error
}

// SequenceResult is the outcome of one sequence's protocol round.
type SequenceResult struct {
	SequenceID      int
	UploadID        string
	SuccessfulFiles []string
	FailedFiles     []string
	TotalParts      int
	FailedParts     int
	Async           bool
	Note            string
	Err             error
}

// UploadResult aggregates a whole run. Partial failure is an expected
// outcome: callers read OverallSuccess and FailedKeys rather than Err, which
// only collects sequence-level protocol errors.
type UploadResult struct {
	RunID           string
	OverallSuccess  bool
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalBytes      int64
	Duration        time.Duration
	BytesPerSecond  float64
	Sequences       []SequenceResult
	FailedKeys      []string
	Err             error
}

// Uploader drives the initialize / transfer / finalize protocol for a
// planned set of sequences.
type Uploader struct {
	api       UploadAPI
	http      *resty.Client
	sem       *semaphore.Weighted
	retry     RetryPolicy
	forceSkip bool
	log       *slog.Logger
}

// UploaderOptions configures an Uploader.
type UploaderOptions struct {
	MaxParallel int
	Retry       RetryPolicy
	// ForceSkip controls whether exhausted parts are logged as deliberately
	// skipped; either way they are marked failed and never retried again.
	ForceSkip bool
	Logger    *slog.Logger
	// HTTPClient overrides the data-plane client used for part PUTs.
	// Intended for tests.
	HTTPClient *resty.Client
}

// NewUploader builds an Uploader around a control-plane client.
func NewUploader(apiClient UploadAPI, opts UploaderOptions) *Uploader {
	parallel := opts.MaxParallel
	if parallel <= 0 {
		parallel = DefaultParallelUploads
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
		hc = resty.New().SetTimeout(partTransferTimeout)
	}
	return &Uploader{
		api:       apiClient,
		http:      hc,
		sem:       semaphore.NewWeighted(int64(parallel)),
		retry:     retry,
		forceSkip: opts.ForceSkip,
		log:       log,
	}
}

// UploadSequences runs every sequence concurrently: initialization calls are
// issued immediately for all sequences, part transfers share one global
// semaphore, and finalize calls for preview sequences wait until every
// regular sequence has issued its finalize call.
func (u *Uploader) UploadSequences(ctx context.Context, runID string, sequences []*Sequence, req UploadRequest, progress *Progress) *UploadResult {
	started := time.Now()

	for _, seq := range sequences {
		for _, f := range seq.Files {
			progress.AddFile(f.Key, f.Size, len(seq.Parts[f.Key]))
		}
	}

	// Finalize-issuance gate: preview sequences may not send their finalize
	// call until every regular sequence has sent (or abandoned) its own.
	var regularFinalized sync.WaitGroup
	for _, seq := range sequences {
		if !seq.Preview {
			regularFinalized.Add(1)
		}
	}

	results := make([]SequenceResult, len(sequences))
	var g errgroup.Group
	for i, seq := range sequences {
		g.Go(func() error {
			results[i] = u.uploadSequence(ctx, seq, req, progress, &regularFinalized)
			return nil
		})
	}
	g.Wait()

	result := &UploadResult{
		RunID:          runID,
		OverallSuccess: true,
		Sequences:      results,
		Duration:       time.Since(started),
	}
	for _, seq := range sequences {
		result.TotalFiles += len(seq.Files)
		result.TotalBytes += seq.TotalBytes
	}
	for _, r := range results {
		result.SuccessfulFiles += len(r.SuccessfulFiles)
		result.FailedFiles += len(r.FailedFiles)
		result.FailedKeys = append(result.FailedKeys, r.FailedFiles...)
		if len(r.FailedFiles) > 0 || r.Err != nil {
			result.OverallSuccess = false
		}
		result.Err = multierr.Append(result.Err, r.Err)
	}
	if result.Duration > 0 {
		snap := progress.Snapshot()
		result.BytesPerSecond = float64(snap.CompletedBytes) / result.Duration.Seconds()
	}
	return result
}

// uploadSequence executes the three protocol stages for one sequence.
func (u *Uploader) uploadSequence(ctx context.Context, seq *Sequence, req UploadRequest, progress *Progress, regularFinalized *sync.WaitGroup) SequenceResult {
	res := SequenceResult{SequenceID: seq.ID, TotalParts: seq.TotalParts}

	// The gate must open even when this sequence dies during initialization,
	// otherwise every preview sequence would hang.
	finalizeIssued := false
	if !seq.Preview {
		defer func() {
			if !finalizeIssued {
				regularFinalized.Done()
			}
		}()
	}

	uploadType := req.UploadType
	if uploadType == "" {
		if seq.Preview {
			uploadType = "assetPreview"
		} else {
			uploadType = "assetFile"
		}
	}

	manifest := make([]api.UploadFileManifest, 0, len(seq.Files))
	for _, f := range seq.Files {
		manifest = append(manifest, api.UploadFileManifest{
			RelativeKey: f.Key,
			FileSize:    f.Size,
			NumParts:    len(seq.Parts[f.Key]),
		})
	}

	initResp, err := u.api.InitializeUpload(ctx, api.InitializeUploadRequest{
		DatabaseID: req.DatabaseID,
		AssetID:    req.AssetID,
		UploadType: uploadType,
		Files:      manifest,
	})
	if err != nil {
		// Sequence-fatal: nothing was transferred, every file is failed, and
		// sibling sequences proceed unaffected.
		for _, f := range seq.Files {
			progress.MarkFileFailed(f.Key)
			res.FailedFiles = append(res.FailedFiles, f.Key)
		}
		res.Err = fmt.Errorf("sequence %d: initializing upload: %w", seq.ID, err)
		u.log.Error("sequence initialization failed", "sequence", seq.ID, "error", err)
		return res
	}
	res.UploadID = initResp.UploadID

	u.log.Debug("sequence initialized",
		"sequence", seq.ID,
		"upload_id", initResp.UploadID,
		"files", len(seq.Files),
		"parts", seq.TotalParts,
	)

	states, sessionIDs, err := u.bindPartTargets(seq, initResp)
	if err != nil {
		for _, f := range seq.Files {
			progress.MarkFileFailed(f.Key)
			res.FailedFiles = append(res.FailedFiles, f.Key)
		}
		res.Err = fmt.Errorf("sequence %d: %w", seq.ID, err)
		return res
	}

	var wg sync.WaitGroup
	for _, st := range states {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.transferPart(ctx, st, progress)
		}()
	}
	wg.Wait()

	completed, failedKeys := collectCompletions(seq, states, sessionIDs)
	res.FailedFiles = append(res.FailedFiles, failedKeys...)
	for _, st := range states {
		if st.status == StatusFailed {
			res.FailedParts++
		}
	}

	// Finalize. Zero-part files are always "complete" and ride along in the
	// manifest; files with any failed part are omitted and reported failed.
	if seq.Preview {
		regularFinalized.Wait()
	}

	if len(completed) > 0 {
		completeResp, err := u.api.CompleteUpload(ctx, initResp.UploadID, api.CompleteUploadRequest{
			DatabaseID: req.DatabaseID,
			AssetID:    req.AssetID,
			UploadType: uploadType,
			Files:      completed,
		})
		if err != nil {
			// Transferred bytes do not imply logical success: everything in
			// this finalize payload is failed.
			for _, cf := range completed {
				progress.MarkFileFailed(cf.RelativeKey)
				res.FailedFiles = append(res.FailedFiles, cf.RelativeKey)
			}
			res.Err = fmt.Errorf("sequence %d: finalizing upload: %w", seq.ID, err)
			u.log.Error("sequence finalize failed", "sequence", seq.ID, "upload_id", initResp.UploadID, "error", err)
		} else {
			for _, cf := range completed {
				res.SuccessfulFiles = append(res.SuccessfulFiles, cf.RelativeKey)
				// Flips zero-part files to completed; files whose parts all
				// landed are already there and are left untouched.
				progress.FileCompleted(cf.RelativeKey, 0)
			}
			res.Async = completeResp.AsynchronousProcessing
			res.Note = completeResp.Note
			u.log.Info("sequence finalized",
				"sequence", seq.ID,
				"upload_id", initResp.UploadID,
				"files", len(completed),
				"async", res.Async,
			)
		}
	}
	if !seq.Preview {
		finalizeIssued = true
		regularFinalized.Done()
	}

	return res
}

// bindPartTargets pairs every planned part with its presigned target from
// the initialize response.
func (u *Uploader) bindPartTargets(seq *Sequence, initResp *api.InitializeUploadResponse) ([]*partState, map[string]string, error) {
	filesByKey := make(map[string]FileInfo, len(seq.Files))
	for _, f := range seq.Files {
		filesByKey[f.Key] = f
	}

	sessionIDs := make(map[string]string, len(initResp.Files))
	var states []*partState
	for _, initFile := range initResp.Files {
		f, ok := filesByKey[initFile.RelativeKey]
		if !ok {
			return nil, nil, fmt.Errorf("server returned unknown file key %q", initFile.RelativeKey)
		}
		sessionIDs[f.Key] = initFile.UploadIDS3

		parts := seq.Parts[f.Key]
		if len(initFile.PartTargets) != len(parts) {
			return nil, nil, fmt.Errorf("server returned %d part targets for %s, expected %d",
				len(initFile.PartTargets), f.Key, len(parts))
		}
		targets := make(map[int]string, len(initFile.PartTargets))
		for _, t := range initFile.PartTargets {
			targets[t.PartNumber] = t.UploadURL
		}
		for _, part := range parts {
			url, ok := targets[part.Number]
			if !ok {
				return nil, nil, fmt.Errorf("server returned no target for part %d of %s", part.Number, f.Key)
			}
			states = append(states, &partState{
				file:      f,
				part:      part,
				targetURL: url,
				status:    StatusPending,
			})
		}
	}
	return states, sessionIDs, nil
}

// transferPart uploads one part under the global semaphore, retrying
// transient failures with backoff before marking the part permanently
// failed. A failed part never blocks sibling parts.
func (u *Uploader) transferPart(ctx context.Context, st *partState, progress *Progress) {
	if err := u.sem.Acquire(ctx, 1); err != nil {
		st.status = StatusFailed
		st.err = err
		progress.PartFailed(st.file.Key)
		return
	}
	defer u.sem.Release(1)

	progress.TaskStarted(st.file.Key)
	defer progress.TaskEnded()

	for attempt := 0; attempt <= u.retry.Attempts; attempt++ {
		st.retries = attempt
		st.status = StatusTransferring

		etag, err := u.putPart(ctx, st)
		if err == nil {
			st.etag = etag
			st.status = StatusCompleted
			progress.PartCompleted(st.file.Key, st.part.Size)
			u.log.Debug("part uploaded",
				"key", st.file.Key,
				"part", st.part.Number,
				"size", st.part.Size,
				"attempts", attempt+1,
			)
			return
		}

		st.err = err
		if attempt < u.retry.Attempts && ctx.Err() == nil {
			delay := u.retry.Delay(attempt)
			u.log.Debug("part upload failed, retrying",
				"key", st.file.Key,
				"part", st.part.Number,
				"attempt", attempt+1,
				"delay", delay,
				"error", err,
			)
			if sleepErr := sleep(ctx, delay); sleepErr != nil {
				break
			}
		}
	}

	st.status = StatusFailed
	progress.PartFailed(st.file.Key)
	if u.forceSkip {
		u.log.Warn("part skipped after exhausting retries",
			"key", st.file.Key, "part", st.part.Number, "error", st.err)
	} else {
		u.log.Error("part failed after exhausting retries",
			"key", st.file.Key, "part", st.part.Number, "error", st.err)
	}
}

// putPart reads the part's exact byte range and PUTs it to the presigned
// target, returning the completion token from the response.
func (u *Uploader) putPart(ctx context.Context, st *partState) (string, error) {
	data, err := readRange(st.file.LocalPath, st.part.Start, st.part.Size)
	if err != nil {
		return "", &PartUploadError{Key: st.file.Key, Part: st.part.Number, Err: err}
	}

	resp, err := u.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", st.file.ContentType).
		SetBody(data).
		Put(st.targetURL)
	if err != nil {
		return "", &PartUploadError{Key: st.file.Key, Part: st.part.Number, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &PartUploadError{
			Key:  st.file.Key,
			Part: st.part.Number,
			Err:  fmt.Errorf("transfer target returned status %d", resp.StatusCode()),
		}
	}

	etag := strings.Trim(resp.Header().Get("ETag"), `"`)
	if etag == "" {
		return "", &PartUploadError{
			Key:  st.file.Key,
			Part: st.part.Number,
			Err:  fmt.Errorf("transfer target returned no completion token"),
		}
	}
	return etag, nil
}

// readRange reads size bytes starting at offset from the file. Every part
// task owns its buffer; nothing is shared between workers.
func readRange(path string, offset, size int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("reading byte range [%d, %d): %w", offset, offset+size, err)
	}
	return buf, nil
}

// collectCompletions groups settled parts by file and builds the finalize
// manifest from fully successful files. A file with zero parts counts as
// successful with an empty part list.
func collectCompletions(seq *Sequence, states []*partState, sessionIDs map[string]string) ([]api.CompletedFile, []string) {
	byKey := make(map[string][]*partState)
	for _, st := range states {
		byKey[st.file.Key] = append(byKey[st.file.Key], st)
	}

	var completed []api.CompletedFile
	var failed []string
	for _, f := range seq.Files {
		parts := byKey[f.Key]
		ok := true
		for _, st := range parts {
			if st.status != StatusCompleted {
				ok = false
				break
			}
		}
		if !ok {
			failed = append(failed, f.Key)
			continue
		}

		sort.Slice(parts, func(i, j int) bool { return parts[i].part.Number < parts[j].part.Number })
		cf := api.CompletedFile{
			RelativeKey: f.Key,
			UploadIDS3:  sessionIDs[f.Key],
			Parts:       make([]api.CompletedPart, 0, len(parts)),
		}
		for _, st := range parts {
			cf.Parts = append(cf.Parts, api.CompletedPart{PartNumber: st.part.Number, ETag: st.etag})
		}
		completed = append(completed, cf)
	}
	return completed, failed
}
