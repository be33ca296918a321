// Package history keeps a record of past analyses and recordings as one
// JSON file per run.
package history

import (
	"time"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
)

// OperationType represents the type of operation.
type OperationType string

const (
	// OpAnalyze represents an analysis of a transcript.
	OpAnalyze OperationType = "analyze"
	// OpRecord represents a transcript recorded from a real directory.
	OpRecord OperationType = "record"
)

// Entry represents a single history entry.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Operation OperationType   `json:"operation"`
	Source    string          `json:"source"`
	Digest    string          `json:"digest,omitempty"`
	Options   analyze.Options `json:"options"`
	Summary   Summary         `json:"summary"`
}

// Summary contains the answers of one run.
type Summary struct {
	TotalSize  uint64              `json:"total_size"`
	Dirs       int                 `json:"dirs"`
	Files      int                 `json:"files"`
	SmallSum   uint64              `json:"small_sum"`
	NeedToFree uint64              `json:"need_to_free"`
	Candidate  *analyze.DirSummary `json:"candidate,omitempty"`
	Cached     bool                `json:"cached"`
}

// SummaryOf extracts the history summary of an analysis result.
func SummaryOf(r *analyze.Result) Summary {
	return Summary{
		TotalSize:  r.TotalSize,
		Dirs:       r.Dirs,
		Files:      r.Files,
		SmallSum:   r.SmallSum,
		NeedToFree: r.NeedToFree,
		Candidate:  r.Candidate,
		Cached:     r.Cached,
	}
}
