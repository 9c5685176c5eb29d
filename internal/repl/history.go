package repl

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var cmdBucket = []byte("cmd")

// History is a persistent command history backed by a bbolt bucket keyed by
// sequence number.
type History struct {
	db *bolt.DB
}

// DefaultHistoryPath returns where history is stored when the settings file
// does not say otherwise.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "run-history.db")
	}
	return filepath.Join(home, ".run_history.db")
}

// OpenHistory opens or creates the history database. The timeout keeps a
// second REPL from blocking forever on the file lock.
func OpenHistory(path string) (*History, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cmdBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history: %w", err)
	}
	return &History{db: db}, nil
}

// Close releases the database file lock.
func (h *History) Close() error {
	return h.db.Close()
}

// Add appends a command and returns its sequence number.
func (h *History) Add(cmd string) (int, error) {
	var seq uint64
	err := h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cmdBucket)
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(cmd))
	})
	return int(seq), err
}

// All returns every stored command in insertion order.
func (h *History) All() ([]string, error) {
	var cmds []string
	err := h.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(cmdBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			cmds = append(cmds, string(v))
		}
		return nil
	})
	return cmds, err
}

// Last returns the most recent command. ok is false on empty history.
func (h *History) Last() (string, bool, error) {
	var cmd string
	var ok bool
	err := h.db.View(func(tx *bolt.Tx) error {
		k, v := tx.Bucket(cmdBucket).Cursor().Last()
		if k != nil {
			cmd, ok = string(v), true
		}
		return nil
	})
	return cmd, ok, err
}

func marshalSeq(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}
