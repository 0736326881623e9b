package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/burnsub/burnsub/pkg/caption"
	"github.com/burnsub/burnsub/pkg/logger"
	"github.com/burnsub/burnsub/pkg/pipeline"
	"github.com/burnsub/burnsub/pkg/session"
)

// fileWatcher implements FileWatcher
type fileWatcher struct {
	opts     Options
	pipeline pipeline.Pipeline
	history  History
	watcher  *fsnotify.Watcher

	// Event deduplication
	recentEvents    map[string]time.Time
	recentEventsMux sync.Mutex

	stopCh      chan struct{}
	workerQueue chan string
	loopWg      sync.WaitGroup
	workerWg    sync.WaitGroup
}

// NewFileWatcher creates a watcher that captions videos appearing in the
// watch directory
func NewFileWatcher(opts Options, pipe pipeline.Pipeline) (FileWatcher, error) {
	if opts.WatchDir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 2
	}
	if opts.StabilityWait <= 0 {
		opts.StabilityWait = 2 * time.Second
	}
	if opts.HistoryDB == "" {
		opts.HistoryDB = filepath.Join(opts.WatchDir, ".burnsub-watch.db")
	}

	history, err := NewHistory(opts.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create processing history: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = history.Close()
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &fileWatcher{
		opts:         opts,
		pipeline:     pipe,
		history:      history,
		watcher:      fsWatcher,
		recentEvents: make(map[string]time.Time),
		stopCh:       make(chan struct{}),
		workerQueue:  make(chan string, opts.MaxWorkers*2),
	}, nil
}

// Start begins watching the directory
func (fw *fileWatcher) Start(ctx context.Context) error {
	log := logger.WithComponent("watcher")

	if err := fw.watcher.Add(fw.opts.WatchDir); err != nil {
		return fmt.Errorf("failed to add watch directory: %w", err)
	}

	for i := 0; i < fw.opts.MaxWorkers; i++ {
		fw.workerWg.Add(1)
		go fw.processWorker(ctx)
	}

	if fw.opts.ProcessExisting {
		if err := fw.queueExistingFiles(); err != nil {
			log.Warn().Err(err).Msg("Failed to queue some existing files")
		}
	}

	fw.loopWg.Add(1)
	go fw.watchLoop(ctx)

	log.Info().
		Str("directory", fw.opts.WatchDir).
		Strs("patterns", fw.opts.Patterns).
		Msg("File watcher started")

	return nil
}

// Stop gracefully shuts down the watcher
func (fw *fileWatcher) Stop() error {
	log := logger.WithComponent("watcher")
	log.Info().Msg("Stopping file watcher")

	close(fw.stopCh)

	if err := fw.watcher.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing watcher")
	}

	// The event loop is the only producer once Start has returned; it must
	// be gone before the queue closes or a late event would send on a
	// closed channel.
	fw.loopWg.Wait()
	close(fw.workerQueue)
	fw.workerWg.Wait()

	if err := fw.history.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing history database")
	}

	log.Info().Msg("File watcher stopped")
	return nil
}

// queueExistingFiles queues matching files already in the watch directory
func (fw *fileWatcher) queueExistingFiles() error {
	entries, err := os.ReadDir(fw.opts.WatchDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(fw.opts.WatchDir, entry.Name())
		if fw.canProcess(path) {
			fw.queueFile(path)
		}
	}
	return nil
}

// watchLoop is the main event loop
func (fw *fileWatcher) watchLoop(ctx context.Context) {
	defer fw.loopWg.Done()
	log := logger.WithComponent("watcher")

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFileEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// handleFileEvent queues newly created or written files once they match
func (fw *fileWatcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if fw.isDuplicateEvent(event.Name) {
		return
	}
	if fw.canProcess(event.Name) {
		fw.queueFile(event.Name)
	}
}

// canProcess reports whether the file matches the configured patterns
// and has not already been handled
func (fw *fileWatcher) canProcess(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	// Never re-ingest our own output
	if strings.Contains(name, ".captioned.") {
		return false
	}

	matched := false
	for _, pattern := range fw.opts.Patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	key, err := FileKey(path)
	if err != nil {
		return false
	}
	processed, err := fw.history.IsProcessed(key)
	if err != nil {
		return false
	}
	return !processed
}

// queueFile hands a file to the worker pool
func (fw *fileWatcher) queueFile(path string) {
	select {
	case fw.workerQueue <- path:
	default:
		logger.WithComponent("watcher").
			Warn().
			Str("file", path).
			Msg("Worker queue is full, skipping file")
	}
}

// processWorker drains the queue and captions each file
func (fw *fileWatcher) processWorker(ctx context.Context) {
	defer fw.workerWg.Done()

	for path := range fw.workerQueue {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		default:
			fw.processFile(ctx, path)
		}
	}
}

// processFile runs the full captioning pipeline against one video,
// writing the result next to it (or into the configured output dir)
func (fw *fileWatcher) processFile(ctx context.Context, path string) {
	log := logger.WithComponent("watcher").WithField("file", path)
	startTime := time.Now()

	if err := fw.waitForStability(ctx, path); err != nil {
		log.Debug().Err(err).Msg("File did not stabilize, skipping")
		return
	}

	// Re-check after the stability wait; another worker or a previous
	// run may have finished it already.
	key, err := FileKey(path)
	if err != nil {
		return
	}
	if processed, err := fw.history.IsProcessed(key); err != nil || processed {
		return
	}

	outputDir := fw.opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(path)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	workDir := filepath.Join(outputDir, ".burnsub-"+base)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		log.Error().Err(err).Msg("Failed to create working directory")
		return
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	ws := &session.Workspace{ID: base, Dir: workDir}

	log.Info().Msg("Captioning video")

	subtitlePath, err := fw.pipeline.ExtractAndTranscribe(ctx, path, ws)
	if err != nil {
		fw.recordFailure(key, path, err)
		return
	}

	outName := base + ".captioned" + filepath.Ext(path)
	burnedPath, err := fw.pipeline.Burn(ctx, path, subtitlePath, caption.StyleInput{}, ws, outName)
	if err != nil {
		fw.recordFailure(key, path, err)
		return
	}

	outputPath := filepath.Join(outputDir, outName)
	if err := os.Rename(burnedPath, outputPath); err != nil {
		fw.recordFailure(key, path, fmt.Errorf("failed to move output: %w", err))
		return
	}

	elapsed := time.Since(startTime)
	if err := fw.history.RecordProcessed(key, &ProcessedInfo{
		FilePath:    path,
		OutputPath:  outputPath,
		ProcessedAt: time.Now(),
		Duration:    elapsed,
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to record processed file")
	}

	log.Info().
		Str("output", outputPath).
		Dur("elapsed", elapsed).
		Msg("Video captioned")
}

// waitForStability waits until the file's size holds steady for the
// configured window, so half-copied files are not processed
func (fw *fileWatcher) waitForStability(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-fw.stopCh:
			return fmt.Errorf("watcher stopped")
		case <-time.After(fw.opts.StabilityWait):
		}
	}
}

// recordFailure logs and records a failed run
func (fw *fileWatcher) recordFailure(key, path string, err error) {
	logger.WithComponent("watcher").
		Error().
		Err(err).
		Str("file", path).
		Msg("Failed to caption video")

	recordErr := fw.history.RecordFailed(key, &FailedInfo{
		FilePath: path,
		Error:    err.Error(),
		FailedAt: time.Now(),
	})
	if recordErr != nil {
		logger.WithComponent("watcher").Warn().Err(recordErr).Msg("Failed to record failure")
	}
}

// isDuplicateEvent debounces rapid event bursts for the same file
func (fw *fileWatcher) isDuplicateEvent(path string) bool {
	fw.recentEventsMux.Lock()
	defer fw.recentEventsMux.Unlock()

	now := time.Now()
	if lastSeen, exists := fw.recentEvents[path]; exists {
		if now.Sub(lastSeen) < 5*time.Second {
			return true
		}
	}
	fw.recentEvents[path] = now

	// Keep the cache from growing without bound
	for p, t := range fw.recentEvents {
		if now.Sub(t) > 30*time.Second {
			delete(fw.recentEvents, p)
		}
	}
	return false
}
