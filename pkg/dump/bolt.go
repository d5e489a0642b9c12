package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const dumpBucket = "dumps"

// BoltSink stores payloads in a bbolt database, one bucket entry per key.
type BoltSink struct {
	db *bolt.DB
}

// OpenBoltSink opens (or creates) the database at path.
func OpenBoltSink(path string) (*BoltSink, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dump directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(dumpBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &BoltSink{db: db}, nil
}

// Type implements Sink.
func (s *BoltSink) Type() string { return TypeBolt }

// Write implements Sink. An existing entry is replaced.
func (s *BoltSink) Write(_ context.Context, key string, payload []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(dumpBucket))
		if bucket == nil {
			return fmt.Errorf("dump bucket missing")
		}
		return bucket.Put([]byte(key), payload)
	})
	record(TypeBolt, err)
	return err
}

// Read returns a copy of a stored payload, or nil if the key is unknown.
func (s *BoltSink) Read(key string) ([]byte, error) {
	var payload []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(dumpBucket))
		if bucket == nil {
			return fmt.Errorf("dump bucket missing")
		}
		if value := bucket.Get([]byte(key)); value != nil {
			payload = append([]byte(nil), value...)
		}
		return nil
	})
	return payload, err
}

// Close implements Sink.
func (s *BoltSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
