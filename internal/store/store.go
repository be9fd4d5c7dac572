// Package store provides the tag persistence errors and a Badger-backed
// key-value implementation of the tag repository.
//
// Key layout:
//
//	tag:{id}                          → Tag JSON
//	l11n:{id}                         → TagL11n JSON
//	idx:tag:l11n:{tagID}:{l11nID}     → empty
//	idx:tag:lang:{tagID}:{language}   → l11nID
//	audit:{tagID}:{auditID}           → AuditEntry JSON
//
// Integer IDs are zero-padded so lexical key order matches numeric order.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const (
	tagPrefix       = "tag:"
	l11nPrefix      = "l11n:"
	tagL11nPrefix   = "idx:tag:l11n:"
	tagLangPrefix   = "idx:tag:lang:"
	auditPrefix     = "audit:"
	tagSeqKey       = "seq:tag"
	l11nSeqKey      = "seq:l11n"
	seqBandwidth    = 100
	idWidthTemplate = "%020d"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	tagSeq  *badger.Sequence
	l11nSeq *badger.Sequence
}

// New opens (or creates) a Badger store at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes so a crash cannot lose acknowledged tags
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return open(opts, logger)
}

// NewInMemory opens a Badger store that lives only in memory.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	tagSeq, err := db.GetSequence([]byte(tagSeqKey), seqBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("tag sequence: %w", err)
	}
	l11nSeq, err := db.GetSequence([]byte(l11nSeqKey), seqBandwidth)
	if err != nil {
		_ = tagSeq.Release()
		db.Close()
		return nil, fmt.Errorf("l11n sequence: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", opts.Dir, "in_memory", opts.InMemory)
	}

	return &Store{
		db:      db,
		logger:  logger,
		tagSeq:  tagSeq,
		l11nSeq: l11nSeq,
	}, nil
}

// Close releases the ID sequences and closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	err := errors.Join(s.tagSeq.Release(), s.l11nSeq.Release())
	return errors.Join(err, s.db.Close())
}

// Ping reports whether the database is open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// nextID draws the next positive ID from seq. Badger sequences start at 0.
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

func idKey(prefix string, id int64) []byte {
	return fmt.Appendf(nil, "%s"+idWidthTemplate, prefix, id)
}

func childKey(prefix string, parent int64, child string) []byte {
	return fmt.Appendf(nil, "%s"+idWidthTemplate+":%s", prefix, parent, child)
}

func childPrefix(prefix string, parent int64) []byte {
	return fmt.Appendf(nil, "%s"+idWidthTemplate+":", prefix, parent)
}

// getJSON loads and decodes key inside txn, mapping a missing key to notFound.
func getJSON(txn *badger.Txn, key []byte, dest any, notFound error) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// setJSON encodes value and stores it under key.
func setJSON(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// collectKeys returns copies of every key under prefix.
func collectKeys(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}
