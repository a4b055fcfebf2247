package transfer

import (
	"testing"
)

func TestProgressPartAccounting(t *testing.T) {
	p := NewProgress(nil)
	p.AddFile("a.bin", 300, 2)
	p.AddFile("b.bin", 100, 1)

	s := p.Snapshot()
	if s.TotalFiles != 2 || s.TotalParts != 3 || s.TotalBytes != 400 {
		t.Fatalf("totals = %d files / %d parts / %d bytes, want 2/3/400", s.TotalFiles, s.TotalParts, s.TotalBytes)
	}

	p.PartCompleted("a.bin", 150)
	s = p.Snapshot()
	if s.CompletedBytes != 150 || s.CompletedParts != 1 {
		t.Errorf("after one part: %d bytes / %d parts, want 150/1", s.CompletedBytes, s.CompletedParts)
	}
	if s.CompletedFiles != 0 {
		t.Errorf("file completed with parts outstanding")
	}

	p.PartCompleted("a.bin", 150)
	s = p.Snapshot()
	if s.CompletedFiles != 1 {
		t.Errorf("CompletedFiles = %d, want 1 after last part", s.CompletedFiles)
	}
	if got := s.Files["a.bin"].Status; got != StatusCompleted {
		t.Errorf("a.bin status = %s, want completed", got)
	}
}

func TestProgressPartFailureFailsFile(t *testing.T) {
	p := NewProgress(nil)
	p.AddFile("a.bin", 300, 2)

	p.PartCompleted("a.bin", 150)
	p.PartFailed("a.bin")

	s := p.Snapshot()
	if s.FailedParts != 1 || s.FailedFiles != 1 {
		t.Errorf("failed counts = %d parts / %d files, want 1/1", s.FailedParts, s.FailedFiles)
	}
	if got := s.Files["a.bin"].Status; got != StatusFailed {
		t.Errorf("status = %s, want failed", got)
	}
	// Failing twice must not double-count the file.
	p.PartFailed("a.bin")
	if s := p.Snapshot(); s.FailedFiles != 1 {
		t.Errorf("FailedFiles = %d after second part failure, want 1", s.FailedFiles)
	}
}

// A retried download restarts its stream from zero; the aggregate byte count
// must never move backwards or double-count the replayed bytes.
func TestProgressFileBytesMonotone(t *testing.T) {
	p := NewProgress(nil)
	p.AddFile("a.bin", 1000, 1)

	p.FileBytes("a.bin", 600)
	if s := p.Snapshot(); s.CompletedBytes != 600 {
		t.Fatalf("CompletedBytes = %d, want 600", s.CompletedBytes)
	}

	// Stream restarts.
	p.FileBytes("a.bin", 100)
	s := p.Snapshot()
	if s.CompletedBytes != 600 {
		t.Errorf("CompletedBytes = %d after restart, want 600 (regression)", s.CompletedBytes)
	}
	if s.Files["a.bin"].BytesDone != 100 {
		t.Errorf("per-file BytesDone = %d, want 100 (display follows the live stream)", s.Files["a.bin"].BytesDone)
	}

	// Retry passes the old high-water mark.
	p.FileBytes("a.bin", 900)
	if s := p.Snapshot(); s.CompletedBytes != 900 {
		t.Errorf("CompletedBytes = %d, want 900", s.CompletedBytes)
	}

	p.FileCompleted("a.bin", 1000)
	s = p.Snapshot()
	if s.CompletedBytes != 1000 || s.CompletedFiles != 1 {
		t.Errorf("final: %d bytes / %d files, want 1000/1", s.CompletedBytes, s.CompletedFiles)
	}
}

func TestProgressFileFailedRollsBackCompletion(t *testing.T) {
	p := NewProgress(nil)
	p.AddFile("a.bin", 100, 1)

	p.PartCompleted("a.bin", 100)
	if s := p.Snapshot(); s.CompletedFiles != 1 {
		t.Fatalf("CompletedFiles = %d, want 1", s.CompletedFiles)
	}

	// Finalize rejected the file after its bytes landed.
	p.FileFailed("a.bin")
	s := p.Snapshot()
	if s.CompletedFiles != 0 || s.FailedFiles != 1 {
		t.Errorf("after rollback: %d completed / %d failed, want 0/1", s.CompletedFiles, s.FailedFiles)
	}
}

func TestProgressETAUndefinedUntilFirstByte(t *testing.T) {
	p := NewProgress(nil)
	p.AddFile("a.bin", 1000, 1)

	if _, ok := p.Snapshot().ETA(); ok {
		t.Fatal("ETA defined before any byte completed")
	}

	p.PartCompleted("a.bin", 500)
	if _, ok := p.Snapshot().ETA(); !ok {
		t.Fatal("ETA undefined after bytes completed")
	}
}

func TestProgressFractionZeroByteRun(t *testing.T) {
	p := NewProgress(nil)
	p.AddFile("empty.txt", 0, 0)

	if got := p.Snapshot().Fraction(); got != 0 {
		t.Errorf("Fraction = %v before completion, want 0", got)
	}
	p.FileCompleted("empty.txt", 0)
	if got := p.Snapshot().Fraction(); got != 1 {
		t.Errorf("Fraction = %v after completion, want 1", got)
	}
}

func TestProgressCallbackObservesUpdates(t *testing.T) {
	var snapshots []Snapshot
	p := NewProgress(func(s Snapshot) {
		snapshots = append(snapshots, s)
	})
	p.AddFile("a.bin", 200, 2)

	p.TaskStarted("a.bin")
	p.PartCompleted("a.bin", 100)
	p.PartCompleted("a.bin", 100)
	p.TaskEnded()

	if len(snapshots) != 4 {
		t.Fatalf("callback ran %d times, want 4", len(snapshots))
	}
	last := snapshots[len(snapshots)-1]
	if last.CompletedBytes != 200 || last.ActiveTransfers != 0 {
		t.Errorf("final snapshot: %d bytes / %d active, want 200/0", last.CompletedBytes, last.ActiveTransfers)
	}
	// Snapshots must be ordered: bytes never decrease.
	var prev int64
	for i, s := range snapshots {
		if s.CompletedBytes < prev {
			t.Errorf("snapshot %d regressed from %d to %d bytes", i, prev, s.CompletedBytes)
		}
		prev = s.CompletedBytes
	}
}
