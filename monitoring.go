package kvtree

import (
	"strings"
)

// ContainerStats describes the records a container occupies.
type ContainerStats struct {
	Records    int // including the container's own descriptor
	Containers int // nested containers
	Scalars    int
	Counters   int
	Depth      int // 0 for a container without nested containers

	KeySize   int
	ValueSize int
}

func (cs *ContainerStats) TotalSize() int {
	return cs.KeySize + cs.ValueSize
}

func (l *List) Stats() (ContainerStats, error) {
	return l.db.containerStats(l.name)
}

func (m *Map) Stats() (ContainerStats, error) {
	return m.db.containerStats(m.name)
}

func (db *DB) containerStats(name string) (ContainerStats, error) {
	var result ContainerStats
	err := db.view(func(tx *tx) error {
		if raw := tx.get(name); raw != nil {
			result.Records++
			result.KeySize += len(name)
			result.ValueSize += len(raw)
		}
		prefix := subtreePrefix(name)
		for c := tx.scan(prefix, false); c.Next(); {
			k, v := c.Key(), c.Value()
			result.Records++
			result.KeySize += len(k)
			result.ValueSize += len(v)

			rel := string(k[len(prefix):])
			switch {
			case isDescriptor(v):
				result.Containers++
				result.Depth = max(result.Depth, strings.Count(rel, string(Separator))+1)
			case lastSegment(rel) == countSelector && isListKey(tx, string(k)):
				result.Counters++
			default:
				result.Scalars++
			}
		}
		return nil
	})
	return result, err
}

// isListKey reports whether the parent of key is a list, i.e. whether a
// "count" child is a list counter rather than a map field.
func isListKey(tx *tx, key string) bool {
	return kindOfRaw(tx.get(parentName(key))) == KindList
}

// Stats describes the whole store.
type Stats struct {
	Records   int
	Roots     int
	DataSize  int64
	DataAlloc int64
	FileSize  int64
	Batches   uint64
	Reads     uint64
	Failures  uint64
}

func (db *DB) Stats() (Stats, error) {
	var result Stats
	err := db.view(func(tx *tx) error {
		bs := tx.buck.Stats()
		result.Records = bs.KeyN
		result.DataSize = bs.LeafInuse
		result.DataAlloc = bs.TotalAlloc()
		result.FileSize = tx.stx.Size()
		result.Roots = len(rootNames(tx))
		return nil
	})
	result.Batches = db.batchCount.Get()
	result.Reads = db.readCount.Get()
	result.Failures = db.failureCount.Get()
	return result, err
}
