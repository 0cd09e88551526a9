package cache

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"
)

// FileStat records whether a single file's decode was served from cache.
type FileStat struct {
	Path     string
	Hit      bool
	Duration time.Duration
}

// FolderReport summarizes cache statistics for one source folder.
type FolderReport struct {
	Folder   string
	Files    int
	Hits     int
	Duration time.Duration
}

// Report aggregates cache statistics across all folders of a run.
type Report struct {
	Folders []FolderReport
}

// HitRate returns the overall cache hit ratio (0.0-1.0).
// Returns 0 when no files were decoded.
func (r Report) HitRate() float64 {
	var total, hits int
	for i := range r.Folders {
		total += r.Folders[i].Files
		hits += r.Folders[i].Hits
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Collector accumulates per-file cache statistics, grouped by the file's
// folder. It is safe for concurrent use; parallel folder parsing calls
// Observe from many goroutines.
type Collector struct {
	mu    sync.Mutex
	order []string              // folders in first-observed order
	stats map[string][]FileStat // folder -> file stats
}

// NewCollector returns a new Collector ready for use.
func NewCollector() *Collector {
	return &Collector{stats: make(map[string][]FileStat)}
}

// Observe records the outcome for one decoded file.
func (c *Collector) Observe(path string, hit bool, dur time.Duration) {
	folder := filepath.Dir(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats[folder] == nil {
		c.order = append(c.order, folder)
	}
	c.stats[folder] = append(c.stats[folder], FileStat{Path: path, Hit: hit, Duration: dur})
}

// Report returns the aggregated statistics in observation order.
// Call after the run completes.
func (c *Collector) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := Report{Folders: make([]FolderReport, 0, len(c.order))}
	for _, folder := range c.order {
		stats := c.stats[folder]
		fr := FolderReport{Folder: folder, Files: len(stats)}
		for i := range stats {
			if stats[i].Hit {
				fr.Hits++
			}
			fr.Duration += stats[i].Duration
		}
		r.Folders = append(r.Folders, fr)
	}
	return r
}

// PrintReport writes a human-readable cache summary to w.
func PrintReport(w io.Writer, r Report) {
	_, _ = fmt.Fprintln(w, "Cache summary:")
	var totalFiles, totalHits int
	for _, fr := range r.Folders {
		totalFiles += fr.Files
		totalHits += fr.Hits
		pct := 0.0
		if fr.Files > 0 {
			pct = float64(fr.Hits) / float64(fr.Files) * 100
		}
		_, _ = fmt.Fprintf(w, "  %-32s %d/%d cached (%4.1f%%)  %s\n",
			fr.Folder, fr.Hits, fr.Files, pct, fr.Duration.Round(time.Millisecond))
	}
	pct := 0.0
	if totalFiles > 0 {
		pct = float64(totalHits) / float64(totalFiles) * 100
	}
	_, _ = fmt.Fprintf(w, "  Overall: %d/%d cached (%4.1f%%)\n", totalHits, totalFiles, pct)
}
