package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/assetvault/avc/internal/transfer"
)

// renderInterval throttles progress repaints so a fast transfer does not
// flood the terminal.
const renderInterval = 100 * time.Millisecond

// progressRenderer paints a single-line progress bar on stderr. Updates
// arrive from transfer workers via the Progress callback, which holds the
// aggregator's lock, so rendering must stay cheap and never reenter the
// aggregator.
type progressRenderer struct {
	mu       sync.Mutex
	lastDraw time.Time
	enabled  bool
}

func newProgressRenderer(enabled bool) *progressRenderer {
	return &progressRenderer{enabled: enabled}
}

// Update is the Progress callback.
func (r *progressRenderer) Update(s transfer.Snapshot) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastDraw) < renderInterval {
		return
	}
	r.lastDraw = time.Now()
	r.draw(s)
}

// Finish paints the final state and terminates the progress line.
func (r *progressRenderer) Finish(s transfer.Snapshot) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw(s)
	fmt.Fprintln(os.Stderr)
}

func (r *progressRenderer) draw(s transfer.Snapshot) {
	line := fmt.Sprintf("\r%s %3.0f%% (%s/%s)",
		progressBar(s.Fraction()),
		s.Fraction()*100,
		transfer.FormatBytes(s.CompletedBytes),
		transfer.FormatBytes(s.TotalBytes),
	)
	if rate := s.Throughput(); rate > 0 {
		line += " " + transfer.FormatRate(rate)
	}
	if eta, ok := s.ETA(); ok {
		line += " eta " + transfer.FormatDuration(eta)
	}
	if s.FailedParts > 0 {
		line += fmt.Sprintf(" [%d failed]", s.FailedParts)
	}
	fmt.Fprint(os.Stderr, line)
}

func progressBar(fraction float64) string {
	const width = 30
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * width)
	return fmt.Sprintf("[%s%s]", strings.Repeat("█", filled), strings.Repeat("░", width-filled))
}

// printJSON writes any value as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printUploadSummary renders the outcome of an upload run.
func printUploadSummary(res *transfer.UploadResult) {
	if flagJSON {
		printJSON(res)
		return
	}

	fmt.Println(strings.Repeat("─", 50))
	if res.OverallSuccess {
		fmt.Println("Upload successful!")
	} else {
		fmt.Println("Upload finished with failures")
	}
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("Run ID:      %s\n", res.RunID)
	fmt.Printf("Files:       %d/%d succeeded\n", res.SuccessfulFiles, res.TotalFiles)
	fmt.Printf("Transferred: %s in %s (%s)\n",
		transfer.FormatBytes(res.TotalBytes),
		transfer.FormatDuration(res.Duration),
		transfer.FormatRate(res.BytesPerSecond),
	)
	for _, seq := range res.Sequences {
		if seq.Async {
			fmt.Printf("Note:        upload %s accepted for asynchronous processing\n", seq.UploadID)
		}
	}
	for _, key := range res.FailedKeys {
		fmt.Printf("Failed:      %s\n", key)
	}
}

// printDownloadSummary renders the outcome of a download run.
func printDownloadSummary(res *transfer.DownloadResult) {
	if flagJSON {
		printJSON(res)
		return
	}

	fmt.Println(strings.Repeat("─", 50))
	if res.OverallSuccess {
		fmt.Println("Download successful!")
	} else {
		fmt.Println("Download finished with failures")
	}
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("Run ID:      %s\n", res.RunID)
	fmt.Printf("Files:       %d/%d succeeded\n", res.SuccessfulFiles, res.TotalFiles)
	fmt.Printf("Transferred: %s in %s (%s)\n",
		transfer.FormatBytes(res.TotalBytes),
		transfer.FormatDuration(res.Duration),
		transfer.FormatRate(res.BytesPerSecond),
	)
	for _, key := range res.FailedKeys {
		fmt.Printf("Failed:      %s\n", key)
	}
}
