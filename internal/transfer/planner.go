package transfer

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when planning is attempted with nothing to upload.
var ErrNoFiles = errors.New("no files to sequence")

// Sequence is a batch of files uploaded through one initialize/transfer/
// finalize round. Built once by the planner and read-only afterwards.
type Sequence struct {
	ID         int
	Files      []FileInfo
	TotalBytes int64
	TotalParts int
	Parts      map[string][]Part // file key -> ordered parts
	Preview    bool
}

func newSequence(files []FileInfo, preview bool, limits Limits) *Sequence {
	seq := &Sequence{
		Files:   files,
		Parts:   make(map[string][]Part, len(files)),
		Preview: preview,
	}
	for _, f := range files {
		parts := CalculateParts(f.Size, limits)
		seq.Parts[f.Key] = parts
		seq.TotalBytes += f.Size
		seq.TotalParts += len(parts)
	}
	return seq
}

// PlanSequences groups files into sequences respecting the per-request
// quotas. Regular files are planned before preview files, and sequence IDs
// are assigned in that order so preview sequences always finalize last.
//
// A single file whose size alone reaches the sequence byte cap is isolated
// into its own sequence and exempted from that cap (but never from the
// per-file part cap). Planning is deterministic for a given input order and
// never splits one file's parts across sequences.
func PlanSequences(files []FileInfo, limits Limits) ([]*Sequence, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	// Fail fast before building anything: a file over the part cap can never
	// be uploaded regardless of how sequences are arranged.
	for _, f := range files {
		if n := CountParts(f.Size, limits); n > limits.MaxPartsPerFile {
			return nil, fmt.Errorf("file %s requires %d parts, exceeding the per-file limit of %d",
				f.Key, n, limits.MaxPartsPerFile)
		}
	}

	var regular, preview []FileInfo
	for _, f := range files {
		if f.Preview {
			preview = append(preview, f)
		} else {
			regular = append(regular, f)
		}
	}

	sequences := planGroup(regular, false, limits)
	sequences = append(sequences, planGroup(preview, true, limits)...)

	if len(sequences) == 0 {
		return nil, ErrNoFiles
	}

	for i, seq := range sequences {
		seq.ID = i + 1
	}

	return sequences, nil
}

// planGroup runs the greedy single-pass grouping over one class of files.
func planGroup(files []FileInfo, preview bool, limits Limits) []*Sequence {
	var sequences []*Sequence

	var current []FileInfo
	var currentBytes int64
	var currentParts int

	flush := func() {
		if len(current) > 0 {
			sequences = append(sequences, newSequence(current, preview, limits))
			current = nil
			currentBytes = 0
			currentParts = 0
		}
	}

	for _, f := range files {
		parts := CountParts(f.Size, limits)

		oversized := f.Size >= limits.MaxSequenceBytes
		overflow := currentBytes+f.Size > limits.MaxSequenceBytes ||
			len(current)+1 > limits.MaxFilesPerRequest ||
			currentParts+parts > limits.MaxPartsPerRequest

		if oversized || overflow {
			flush()
			if oversized {
				// Isolated single-file sequence, exempt from the byte cap.
				sequences = append(sequences, newSequence([]FileInfo{f}, preview, limits))
				continue
			}
		}

		current = append(current, f)
		currentBytes += f.Size
		currentParts += parts
	}
	flush()

	return sequences
}
