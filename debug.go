package kvtree

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpHeaders = DumpFlags(1 << iota)
	DumpRecords
	DumpStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Roots returns the names of all root containers in ascending order.
func (db *DB) Roots() ([]string, error) {
	var names []string
	err := db.view(func(tx *tx) error {
		names = rootNames(tx)
		return nil
	})
	return names, err
}

func rootNames(tx *tx) []string {
	var names []string
	for c := tx.scan("", false); c.Next(); {
		if k := string(c.Key()); isRootName(k) {
			names = append(names, k)
		}
	}
	return names
}

// RawKeys lists the flat keys starting with prefix.
func (db *DB) RawKeys(prefix string) ([]string, error) {
	var keys []string
	err := db.view(func(tx *tx) error {
		keys = tx.keysWithPrefix(prefix)
		return nil
	})
	return keys, err
}

// Dump renders the raw records of the root container name, or of every
// root when name is empty. Undecodable records are shown with an error.
func (db *DB) Dump(name string, f DumpFlags) (string, error) {
	var buf strings.Builder
	err := db.view(func(tx *tx) error {
		names := []string{name}
		if name == "" {
			names = rootNames(tx)
		}
		for _, n := range names {
			raw := tx.get(n)
			if raw == nil {
				return &KeyError{Field: n}
			}
			dumpContainer(&buf, tx, f, n, raw)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func dumpContainer(w *strings.Builder, tx *tx, f DumpFlags, name string, raw []byte) {
	keys := tx.keysWithPrefix(subtreePrefix(name))
	if f.Contains(DumpHeaders) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (%v, %d records)\n", name, kindOfRaw(raw), len(keys)+1)
	}
	if f.Contains(DumpStats) {
		var keySize, valueSize int
		for _, k := range keys {
			keySize += len(k)
			valueSize += len(tx.get(k))
		}
		fmt.Fprintf(w, "%s.stats: key_size = %d, value_size = %d\n", name, keySize+len(name), valueSize+len(raw))
	}
	if f.Contains(DumpRecords) {
		if f.Contains(DumpStats) {
			fmt.Fprintln(w, dumpSep2)
		}
		dumpRecord(w, name, raw)
		for _, k := range keys {
			dumpRecord(w, k, tx.get(k))
		}
	}
}

func dumpRecord(w *strings.Builder, key string, raw []byte) {
	switch kindOfRaw(raw) {
	case KindList, KindMap:
		fmt.Fprintf(w, "%s = <%v>\n", key, kindOfRaw(raw))
		return
	}
	v, err := Decode(raw)
	if err != nil {
		fmt.Fprintf(w, "%s = ** ERROR: %v\n", key, err)
		return
	}
	fmt.Fprintf(w, "%s = %v\n", key, v)
}
