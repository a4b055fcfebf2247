package transfer

import (
	"sync"
	"time"
)

// FileStatus is the lifecycle state of one file inside a run.
type FileStatus string

const (
	StatusPending      FileStatus = "pending"
	StatusTransferring FileStatus = "transferring"
	StatusCompleted    FileStatus = "completed"
	StatusFailed       FileStatus = "failed"
)

// FileProgress is the per-file view exposed in snapshots.
type FileProgress struct {
	Status     FileStatus
	BytesDone  int64
	BytesTotal int64
	PartsDone  int
	PartsTotal int

	// contributed is the high-water mark of bytes already counted toward the
	// run total, so retried streams never double-count or roll it back.
	contributed int64
}

// Snapshot is a point-in-time copy of a run's progress, safe to read without
// synchronization.
type Snapshot struct {
	TotalFiles      int
	TotalParts      int
	TotalBytes      int64
	CompletedBytes  int64
	CompletedParts  int
	FailedParts     int
	CompletedFiles  int
	FailedFiles     int
	ActiveTransfers int
	Elapsed         time.Duration
	Files           map[string]FileProgress
}

// Fraction reports overall completion by bytes in [0, 1].
func (s Snapshot) Fraction() float64 {
	if s.TotalBytes == 0 {
		if s.TotalFiles > 0 && s.CompletedFiles+s.FailedFiles == s.TotalFiles {
			return 1
		}
		return 0
	}
	return float64(s.CompletedBytes) / float64(s.TotalBytes)
}

// Throughput reports average completed bytes per second since the run began.
func (s Snapshot) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.CompletedBytes) / s.Elapsed.Seconds()
}

// ETA estimates time remaining from current throughput. It is undefined
// (ok=false) until at least one byte has completed.
func (s Snapshot) ETA() (time.Duration, bool) {
	if s.CompletedBytes == 0 {
		return 0, false
	}
	rate := s.Throughput()
	if rate <= 0 {
		return 0, false
	}
	remaining := float64(s.TotalBytes-s.CompletedBytes) / rate
	return time.Duration(remaining * float64(time.Second)), true
}

// Progress is the shared, mutation-safe accumulator updated by every
// concurrent transfer task in a run. All mutation happens under one mutex;
// the update callback runs under that mutex too, so callbacks observe
// snapshots in order and must not call back into Progress. Callers are
// responsible for rate-limiting whatever the callback renders.
type Progress struct {
	mu       sync.Mutex
	started  time.Time
	onUpdate func(Snapshot)

	totalFiles     int
	totalParts     int
	totalBytes     int64
	completedBytes int64
	completedParts int
	failedParts    int
	completedFiles int
	failedFiles    int
	active         int
	files          map[string]*FileProgress
}

// NewProgress creates an empty accumulator. onUpdate may be nil.
func NewProgress(onUpdate func(Snapshot)) *Progress {
	return &Progress{
		started:  time.Now(),
		onUpdate: onUpdate,
		files:    make(map[string]*FileProgress),
	}
}

// AddFile registers a file before the run starts.
func (p *Progress) AddFile(key string, size int64, parts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[key] = &FileProgress{
		Status:     StatusPending,
		BytesTotal: size,
		PartsTotal: parts,
	}
	p.totalFiles++
	p.totalParts += parts
	p.totalBytes += size
}

// TaskStarted marks a transfer worker active on the given file.
func (p *Progress) TaskStarted(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active++
	if fp := p.files[key]; fp != nil && fp.Status == StatusPending {
		fp.Status = StatusTransferring
	}
	p.notifyLocked()
}

// TaskEnded marks a transfer worker idle again.
func (p *Progress) TaskEnded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active--
	p.notifyLocked()
}

// PartCompleted records a successfully transferred part. When the last part
// of a file lands, the file flips to completed.
func (p *Progress) PartCompleted(key string, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completedParts++
	p.completedBytes += size

	if fp := p.files[key]; fp != nil {
		fp.PartsDone++
		fp.BytesDone += size
		fp.contributed += size
		if fp.PartsDone >= fp.PartsTotal && fp.Status != StatusFailed {
			fp.Status = StatusCompleted
			p.completedFiles++
		}
	}
	p.notifyLocked()
}

// PartFailed records a permanently failed part; the owning file is failed.
func (p *Progress) PartFailed(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failedParts++
	if fp := p.files[key]; fp != nil && fp.Status != StatusFailed {
		fp.Status = StatusFailed
		p.failedFiles++
	}
	p.notifyLocked()
}

// FileBytes reports streamed progress for whole-file transfers. Only bytes
// above the file's previous high-water mark count toward the run total, so
// a retried stream restarts the file display without moving the aggregate
// counter backwards.
func (p *Progress) FileBytes(key string, n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fp := p.files[key]
	if fp == nil {
		return
	}
	fp.BytesDone = n
	if n > fp.contributed {
		p.completedBytes += n - fp.contributed
		fp.contributed = n
	}
	p.notifyLocked()
}

// FileCompleted marks a whole-file transfer finished.
func (p *Progress) FileCompleted(key string, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fp := p.files[key]
	if fp == nil || fp.Status == StatusCompleted || fp.Status == StatusFailed {
		return
	}
	fp.Status = StatusCompleted
	fp.BytesDone = size
	if size > fp.contributed {
		p.completedBytes += size - fp.contributed
		fp.contributed = size
	}
	p.completedFiles++
	p.notifyLocked()
}

// FileFailed marks a whole-file transfer permanently failed. A file that
// had already completed its transfer can still fail logically (finalize
// rejection); in that case the completion is rolled back.
func (p *Progress) FileFailed(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fp := p.files[key]
	if fp == nil || fp.Status == StatusFailed {
		return
	}
	if fp.Status == StatusCompleted {
		p.completedFiles--
	}
	fp.Status = StatusFailed
	p.failedFiles++
	p.notifyLocked()
}

// MarkFileFailed is FileFailed for files that never got a transfer task,
// e.g. every file of a sequence whose initialization failed.
func (p *Progress) MarkFileFailed(key string) {
	p.FileFailed(key)
}

// Snapshot returns a deep copy of the current state.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Progress) snapshotLocked() Snapshot {
	files := make(map[string]FileProgress, len(p.files))
	for k, fp := range p.files {
		files[k] = *fp
	}
	return Snapshot{
		TotalFiles:      p.totalFiles,
		TotalParts:      p.totalParts,
		TotalBytes:      p.totalBytes,
		CompletedBytes:  p.completedBytes,
		CompletedParts:  p.completedParts,
		FailedParts:     p.failedParts,
		CompletedFiles:  p.completedFiles,
		FailedFiles:     p.failedFiles,
		ActiveTransfers: p.active,
		Elapsed:         time.Since(p.started),
		Files:           files,
	}
}

func (p *Progress) notifyLocked() {
	if p.onUpdate != nil {
		p.onUpdate(p.snapshotLocked())
	}
}

// Elapsed reports time since the accumulator was created.
func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.started)
}
