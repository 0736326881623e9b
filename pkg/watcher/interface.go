package watcher

import (
	"context"
	"time"
)

// Options configures directory watching
type Options struct {
	// Directory to watch for new videos
	WatchDir string

	// Glob patterns a filename must match to be picked up
	Patterns []string

	// How long a file's size must hold steady before it is processed
	StabilityWait time.Duration

	// Concurrent processing workers
	MaxWorkers int

	// BoltDB file recording processed and failed inputs
	HistoryDB string

	// Where captioned videos are written; empty means alongside the input
	OutputDir string

	// Process files already present when the watcher starts
	ProcessExisting bool
}

// ProcessedInfo records a successful captioning run
type ProcessedInfo struct {
	FilePath    string        `json:"file_path"`
	OutputPath  string        `json:"output_path"`
	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration"`
}

// FailedInfo records a failed captioning run
type FailedInfo struct {
	FilePath   string    `json:"file_path"`
	Error      string    `json:"error"`
	FailedAt   time.Time `json:"failed_at"`
	RetryCount int       `json:"retry_count"`
}

// History tracks which files have already been handled so restarts do
// not re-process them
type History interface {
	IsProcessed(fileKey string) (bool, error)
	RecordProcessed(fileKey string, info *ProcessedInfo) error
	RecordFailed(fileKey string, info *FailedInfo) error
	GetFailedInfo(fileKey string) (*FailedInfo, error)
	Close() error
}

// FileWatcher watches a directory and captions matching videos as they
// appear
type FileWatcher interface {
	Start(ctx context.Context) error
	Stop() error
}
