package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestHistory(t *testing.T) History {
	t.Helper()
	history, err := NewHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	t.Cleanup(func() {
		_ = history.Close()
	})
	return history
}

func TestHistoryProcessedRoundTrip(t *testing.T) {
	history := newTestHistory(t)

	key := "/videos/a.mp4|1024|12345"
	processed, err := history.IsProcessed(key)
	if err != nil {
		t.Fatal(err)
	}
	if processed {
		t.Error("fresh key reported as processed")
	}

	err = history.RecordProcessed(key, &ProcessedInfo{
		FilePath:    "/videos/a.mp4",
		OutputPath:  "/videos/a.captioned.mp4",
		ProcessedAt: time.Now(),
		Duration:    3 * time.Second,
	})
	if err != nil {
		t.Fatalf("RecordProcessed failed: %v", err)
	}

	processed, err = history.IsProcessed(key)
	if err != nil {
		t.Fatal(err)
	}
	if !processed {
		t.Error("recorded key not reported as processed")
	}
}

func TestHistoryFailureRetryCount(t *testing.T) {
	history := newTestHistory(t)
	key := "/videos/b.mp4|2048|67890"

	for i := 0; i < 3; i++ {
		err := history.RecordFailed(key, &FailedInfo{
			FilePath: "/videos/b.mp4",
			Error:    "encode failed",
			FailedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("RecordFailed failed: %v", err)
		}
	}

	info, err := history.GetFailedInfo(key)
	if err != nil {
		t.Fatal(err)
	}
	if info == nil {
		t.Fatal("no failure info recorded")
	}
	if info.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", info.RetryCount)
	}
}

func TestHistorySuccessClearsFailure(t *testing.T) {
	history := newTestHistory(t)
	key := "/videos/c.mp4|1|2"

	if err := history.RecordFailed(key, &FailedInfo{FilePath: "/videos/c.mp4", Error: "boom"}); err != nil {
		t.Fatal(err)
	}
	if err := history.RecordProcessed(key, &ProcessedInfo{FilePath: "/videos/c.mp4"}); err != nil {
		t.Fatal(err)
	}

	info, err := history.GetFailedInfo(key)
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Error("failure record survived a later success")
	}
}

func TestFileKeyChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v.mp4")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	key1, err := FileKey(path)
	if err != nil {
		t.Fatal(err)
	}

	// Same size, different mtime still yields a new key
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	key2, err := FileKey(path)
	if err != nil {
		t.Fatal(err)
	}
	if key1 == key2 {
		t.Error("key did not change after modification time changed")
	}

	if _, err := FileKey(filepath.Join(dir, "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}
