package kvtree

import (
	"github.com/cespare/xxhash/v2"
)

// Checksum fingerprints the content of the list. Lists with equal content
// have equal checksums regardless of their names.
func (l *List) Checksum() (uint64, error) {
	return l.db.checksum(l.name, KindList)
}

// Checksum fingerprints the content of the map.
func (m *Map) Checksum() (uint64, error) {
	return m.db.checksum(m.name, KindMap)
}

// checksum hashes the descriptor and every record below name, keyed
// relative to name, in key order.
func (db *DB) checksum(name string, kind Kind) (uint64, error) {
	var sum uint64
	err := db.view(func(tx *tx) error {
		raw := tx.get(name)
		switch {
		case raw == nil && isRootName(name):
			raw = descriptorOf(kind)
		case raw == nil:
			return &KeyError{Container: parentName(name), Field: lastSegment(name)}
		case kindOfRaw(raw) != kind:
			return conflictErrf(name, "holds a %v, not a %v", kindOfRaw(raw), kind)
		}

		h := xxhash.New()
		buf := appendVarbytes(nil, raw)
		h.Write(buf)

		prefix := subtreePrefix(name)
		for c := tx.scan(prefix, false); c.Next(); {
			buf = appendVarbytes(buf[:0], c.Key()[len(prefix):])
			buf = appendVarbytes(buf, c.Value())
			h.Write(buf)
		}
		sum = h.Sum64()
		return nil
	})
	return sum, err
}
