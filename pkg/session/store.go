package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/burnsub/burnsub/pkg/logger"
)

const bucketSessions = "sessions"

// Workspace is a per-session directory holding one pipeline invocation's
// input, intermediate and output files
type Workspace struct {
	ID  string
	Dir string
}

// Path returns the absolute path of name inside the workspace. Names that
// would escape the workspace are rejected.
func (w *Workspace) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid filename: %q", name)
	}
	return filepath.Join(w.Dir, name), nil
}

// record tracks a workspace's lifecycle in the registry
type record struct {
	CreatedAt time.Time `json:"created_at"`
	TouchedAt time.Time `json:"touched_at"`
}

// Store manages session workspaces under a root directory. A BoltDB
// registry records last-touch times so a sweeper can expire abandoned
// workspaces.
type Store struct {
	root string
	ttl  time.Duration
	db   *bolt.DB
}

// NewStore opens a workspace store rooted at root, expiring workspaces
// untouched for ttl
func NewStore(root string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session root: %w", err)
	}

	db, err := bolt.Open(filepath.Join(root, "sessions.db"), 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session registry: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSessions))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &Store{root: root, ttl: ttl, db: db}, nil
}

// Workspace returns the workspace for the given session id, creating its
// directory on first use and refreshing its expiry on every use
func (s *Store) Workspace(id string) (*Workspace, error) {
	id = sanitizeID(id)
	if id == "" {
		return nil, fmt.Errorf("invalid session id")
	}

	dir := filepath.Join(s.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	if err := s.touch(id); err != nil {
		return nil, err
	}

	return &Workspace{ID: id, Dir: dir}, nil
}

// Sweep deletes workspaces untouched for longer than the TTL and returns
// how many were removed
func (s *Store) Sweep() (int, error) {
	cutoff := time.Now().Add(-s.ttl)

	var expired []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSessions))
		return bucket.ForEach(func(k, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				expired = append(expired, string(k))
				return nil
			}
			if rec.TouchedAt.Before(cutoff) {
				expired = append(expired, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan session registry: %w", err)
	}

	removed := 0
	for _, id := range expired {
		if err := os.RemoveAll(filepath.Join(s.root, id)); err != nil {
			logger.WithComponent("session").WithError(err).Warn().Str("session_id", id).Msg("Failed to remove expired workspace")
			continue
		}
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte(bucketSessions)).Delete([]byte(id))
		})
		if err != nil {
			return removed, fmt.Errorf("failed to delete session record: %w", err)
		}
		removed++
	}
	return removed, nil
}

// Run sweeps expired workspaces on the given interval until ctx is
// canceled
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	log := logger.WithComponent("session")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep()
			if err != nil {
				log.Error().Err(err).Msg("Workspace sweep failed")
				continue
			}
			if removed > 0 {
				log.Info().Int("removed", removed).Msg("Expired workspaces removed")
			}
		}
	}
}

// Close closes the session registry
func (s *Store) Close() error {
	return s.db.Close()
}

// touch refreshes a session's expiry window
func (s *Store) touch(id string) error {
	now := time.Now()
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSessions))

		rec := record{CreatedAt: now, TouchedAt: now}
		if existing := bucket.Get([]byte(id)); existing != nil {
			var prev record
			if err := json.Unmarshal(existing, &prev); err == nil {
				rec.CreatedAt = prev.CreatedAt
			}
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal session record: %w", err)
		}
		return bucket.Put([]byte(id), data)
	})
}

// sanitizeID strips anything that could reach outside the session root
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	return cleaned
}
