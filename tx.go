package kvtree

import (
	"context"
	"fmt"
	"log/slog"
)

// tx is one storage transaction. A writable tx is the atomic batch: every
// put and delete issued through it is committed together or not at all.
type tx struct {
	db   *DB
	stx  storageTx
	buck storageBucket

	puts    int
	deletes int
}

func (db *DB) beginTx(writable bool) (*tx, error) {
	if db == nil {
		panic("kvtree: nil DB")
	}
	stx, err := db.stor.BeginTx(writable)
	if err != nil {
		return nil, fmt.Errorf("kvtree: begin: %w", err)
	}
	buck := stx.Bucket(db.bucket)
	if buck == nil {
		stx.Rollback()
		return nil, fmt.Errorf("kvtree: bucket %q not found", db.bucket)
	}
	return &tx{db: db, stx: stx, buck: buck}, nil
}

// view runs f in a read-only transaction.
func (db *DB) view(f func(tx *tx) error) error {
	tx, err := db.beginTx(false)
	if err != nil {
		return err
	}
	defer tx.stx.Rollback()
	db.readCount.Inc()
	return f(tx)
}

// update runs f in a writable transaction and commits it if f succeeds.
func (db *DB) update(op string, f func(tx *tx) error) error {
	tx, err := db.beginTx(true)
	if err != nil {
		return err
	}
	defer tx.stx.Rollback()

	if err := f(tx); err != nil {
		db.failureCount.Inc()
		return err
	}
	if err := tx.stx.Commit(); err != nil {
		db.failureCount.Inc()
		return fmt.Errorf("kvtree: %s: commit: %w", op, err)
	}

	db.batchCount.Inc()
	db.putCount.Add(tx.puts)
	db.deleteCount.Add(tx.deletes)
	if db.verbose {
		db.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvtree: committed", slog.String("op", op), slog.Int("puts", tx.puts), slog.Int("deletes", tx.deletes))
	}
	return nil
}

func (tx *tx) get(key string) []byte {
	return tx.buck.Get(unsafeBytesFromString(key))
}

func (tx *tx) has(key string) bool {
	return tx.get(key) != nil
}

func (tx *tx) put(key string, value []byte) error {
	tx.mustBeWritable()
	tx.puts++
	if err := tx.buck.Put([]byte(key), value); err != nil {
		return fmt.Errorf("kvtree: put %q: %w", key, err)
	}
	return nil
}

func (tx *tx) delete(key string) error {
	tx.mustBeWritable()
	tx.deletes++
	if err := tx.buck.Delete([]byte(key)); err != nil {
		return fmt.Errorf("kvtree: delete %q: %w", key, err)
	}
	return nil
}

func (tx *tx) mustBeWritable() {
	if !tx.stx.Writable() {
		panic("kvtree: write in a read-only transaction")
	}
}

// scan iterates over every record whose key starts with prefix.
func (tx *tx) scan(prefix string, reverse bool) *rangeCursor {
	tx.db.scanCount.Inc()
	rang := prefixRange{Prefix: []byte(prefix), Reverse: reverse}
	return rang.newCursor(tx.buck.Cursor(), tx.db.logger)
}

// keysWithPrefix collects the keys under prefix before the caller starts
// modifying the bucket; Bolt cursors do not survive mutations.
func (tx *tx) keysWithPrefix(prefix string) []string {
	var keys []string
	for c := tx.scan(prefix, false); c.Next(); {
		keys = append(keys, string(c.Key()))
	}
	return keys
}
