package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestWorkspaceCreation(t *testing.T) {
	store := newTestStore(t, time.Hour)

	ws, err := store.Workspace("abc-123")
	if err != nil {
		t.Fatalf("Workspace failed: %v", err)
	}
	if ws.ID != "abc-123" {
		t.Errorf("ID = %q, want abc-123", ws.ID)
	}

	info, err := os.Stat(ws.Dir)
	if err != nil {
		t.Fatalf("workspace directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("workspace path is not a directory")
	}

	// Same id resolves to the same directory
	ws2, err := store.Workspace("abc-123")
	if err != nil {
		t.Fatal(err)
	}
	if ws2.Dir != ws.Dir {
		t.Errorf("second lookup dir = %q, want %q", ws2.Dir, ws.Dir)
	}
}

func TestWorkspaceInvalidIDs(t *testing.T) {
	store := newTestStore(t, time.Hour)

	for _, id := range []string{"", "..", "...", "///"} {
		if _, err := store.Workspace(id); err == nil {
			t.Errorf("Workspace(%q) should fail", id)
		}
	}
}

func TestWorkspaceIDSanitization(t *testing.T) {
	store := newTestStore(t, time.Hour)

	// Path separators are stripped, so a hostile id cannot reach outside
	// the session root.
	ws, err := store.Workspace("../../etc/passwd")
	if err != nil {
		t.Fatalf("Workspace failed: %v", err)
	}
	rel, err := filepath.Rel(store.root, ws.Dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		t.Errorf("workspace dir %q escapes session root %q", ws.Dir, store.root)
	}
}

func TestWorkspacePath(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ws, err := store.Workspace("s1")
	if err != nil {
		t.Fatal(err)
	}

	path, err := ws.Path("video.mp4")
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if filepath.Dir(path) != ws.Dir {
		t.Errorf("path %q not inside workspace %q", path, ws.Dir)
	}

	for _, name := range []string{"", ".", "..", "../other", "a/b.mp4"} {
		if _, err := ws.Path(name); err == nil {
			t.Errorf("Path(%q) should fail", name)
		}
	}
}

func TestSweepExpiresOldWorkspaces(t *testing.T) {
	store := newTestStore(t, 20*time.Millisecond)

	ws, err := store.Workspace("stale")
	if err != nil {
		t.Fatal(err)
	}
	filePath, _ := ws.Path("audio.wav")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)

	removed, err := store.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Error("expired workspace directory still exists")
	}
}

func TestSweepKeepsFreshWorkspaces(t *testing.T) {
	store := newTestStore(t, time.Hour)

	ws, err := store.Workspace("fresh")
	if err != nil {
		t.Fatal(err)
	}

	removed, err := store.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	if _, err := os.Stat(ws.Dir); err != nil {
		t.Error("fresh workspace was removed")
	}
}

func TestWorkspaceTouchRefreshesExpiry(t *testing.T) {
	store := newTestStore(t, 60*time.Millisecond)

	if _, err := store.Workspace("active"); err != nil {
		t.Fatal(err)
	}

	// Keep touching the workspace past its original TTL
	for i := 0; i < 3; i++ {
		time.Sleep(30 * time.Millisecond)
		if _, err := store.Workspace("active"); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0; recently touched workspace expired", removed)
	}
}
