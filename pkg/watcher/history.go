package watcher

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketProcessed = "processed"
	bucketFailed    = "failed"
)

// processingHistory implements History using BoltDB
type processingHistory struct {
	db *bolt.DB
}

// NewHistory opens the processing history database at dbPath
func NewHistory(dbPath string) (History, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketProcessed)); err != nil {
			return fmt.Errorf("failed to create processed bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketFailed)); err != nil {
			return fmt.Errorf("failed to create failed bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &processingHistory{db: db}, nil
}

// FileKey derives a history key from the file's identity. Size and
// modification time are part of the key so a re-exported file with the
// same name is processed again.
func FileKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), nil
}

// IsProcessed checks if a file key has been processed
func (ph *processingHistory) IsProcessed(fileKey string) (bool, error) {
	var exists bool
	err := ph.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketProcessed))
		if bucket == nil {
			return nil
		}
		exists = bucket.Get([]byte(fileKey)) != nil
		return nil
	})
	return exists, err
}

// RecordProcessed records a successfully captioned file
func (ph *processingHistory) RecordProcessed(fileKey string, info *ProcessedInfo) error {
	return ph.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketProcessed))
		if bucket == nil {
			return fmt.Errorf("processed bucket not found")
		}

		data, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to marshal processed info: %w", err)
		}
		if err := bucket.Put([]byte(fileKey), data); err != nil {
			return fmt.Errorf("failed to store processed info: %w", err)
		}

		// A success clears any earlier failure record
		failedBucket := tx.Bucket([]byte(bucketFailed))
		if failedBucket != nil {
			_ = failedBucket.Delete([]byte(fileKey))
		}

		return nil
	})
}

// RecordFailed records a failed captioning attempt
func (ph *processingHistory) RecordFailed(fileKey string, info *FailedInfo) error {
	return ph.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketFailed))
		if bucket == nil {
			return fmt.Errorf("failed bucket not found")
		}

		if existing := bucket.Get([]byte(fileKey)); existing != nil {
			var prev FailedInfo
			if err := json.Unmarshal(existing, &prev); err == nil {
				info.RetryCount = prev.RetryCount + 1
			}
		}

		data, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to marshal failed info: %w", err)
		}
		if err := bucket.Put([]byte(fileKey), data); err != nil {
			return fmt.Errorf("failed to store failed info: %w", err)
		}

		return nil
	})
}

// GetFailedInfo retrieves information about a failed file
func (ph *processingHistory) GetFailedInfo(fileKey string) (*FailedInfo, error) {
	var info *FailedInfo
	err := ph.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketFailed))
		if bucket == nil {
			return nil
		}

		data := bucket.Get([]byte(fileKey))
		if data == nil {
			return nil
		}

		var failedInfo FailedInfo
		if err := json.Unmarshal(data, &failedInfo); err != nil {
			return fmt.Errorf("failed to unmarshal failed info: %w", err)
		}

		info = &failedInfo
		return nil
	})
	return info, err
}

// Close closes the underlying database
func (ph *processingHistory) Close() error {
	return ph.db.Close()
}
