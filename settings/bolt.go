package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketProject = []byte("project")
	bucketUser    = []byte("user")
)

// BoltSettings keeps both levels in one bbolt database, one bucket each.
type BoltSettings struct {
	db *bbolt.DB
}

// NewBoltSettings opens or creates the database at path.
func NewBoltSettings(path string) (*BoltSettings, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("settings dir: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketProject); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketUser); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltSettings{db: db}, nil
}

// Get returns the value for key, preferring the project bucket.
func (s *BoltSettings) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketProject, bucketUser} {
			if data := tx.Bucket(name).Get([]byte(key)); data != nil {
				value = string(data)
				found = true
				return nil
			}
		}
		return nil
	})
	return value, found, err
}

// Set stores value for key in the project or user bucket.
func (s *BoltSettings) Set(ctx context.Context, key, value string, projectLevel bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bucket := bucketUser
	if projectLevel {
		bucket = bucketProject
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), []byte(value))
	})
}

// Close closes the database.
func (s *BoltSettings) Close() error {
	return s.db.Close()
}
