package transfer

// Part is a contiguous byte range of a file, the unit of individual transfer.
// Start and End are inclusive offsets; Number is 1-based.
type Part struct {
	Number int
	Start  int64
	End    int64
	Size   int64
}

// CalculateParts splits a file of the given size into ordered, contiguous,
// non-overlapping parts. A zero-byte file produces no parts at all; the file
// is still created server-side when the upload is finalized.
func CalculateParts(size int64, limits Limits) []Part {
	if size <= 0 {
		return nil
	}

	chunkSize := limits.SmallChunkSize
	if size > limits.SmallChunkThreshold {
		chunkSize = limits.LargeChunkSize
	}

	var parts []Part
	number := 1
	for start := int64(0); start < size; start += chunkSize {
		end := start + chunkSize - 1
		if end > size-1 {
			end = size - 1
		}
		parts = append(parts, Part{
			Number: number,
			Start:  start,
			End:    end,
			Size:   end - start + 1,
		})
		number++
	}

	return parts
}

// CountParts reports how many parts CalculateParts would produce without
// allocating them. Used by the planner to reject files exceeding the
// per-file part cap before any sequence is built.
func CountParts(size int64, limits Limits) int {
	if size <= 0 {
		return 0
	}
	chunkSize := limits.SmallChunkSize
	if size > limits.SmallChunkThreshold {
		chunkSize = limits.LargeChunkSize
	}
	return int((size + chunkSize - 1) / chunkSize)
}
