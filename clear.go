package kvtree

import (
	"context"
	"fmt"
	"log/slog"
)

// clearTree deletes the container at name: its descriptor and every record
// under its prefix, which covers nested descriptors, scalar leaves and list
// counters at any depth. Clearing an absent container is a no-op.
func clearTree(tx *tx, name string) (int, error) {
	keys := tx.keysWithPrefix(subtreePrefix(name))
	if tx.has(name) {
		keys = append(keys, name)
	}
	for _, k := range keys {
		if err := tx.delete(k); err != nil {
			return 0, err
		}
	}
	if tx.db.verbose {
		tx.db.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvtree: cleared", slog.String("name", name), slog.Int("records", len(keys)))
	}
	return len(keys), nil
}

// ensureContainer checks that name still holds a container of the given
// kind before it is modified through a handle. A missing root container is
// recreated; a missing nested one means the handle is stale.
func ensureContainer(tx *tx, name string, kind Kind) error {
	raw := tx.get(name)
	switch {
	case raw == nil:
		if !isRootName(name) {
			return &KeyError{Container: parentName(name), Field: lastSegment(name)}
		}
		return tx.put(name, descriptorOf(kind))
	case kindOfRaw(raw) != kind:
		return conflictErrf(name, "holds a %v, not a %v", kindOfRaw(raw), kind)
	default:
		return nil
	}
}

// resetContainer empties a container. A nested container keeps its
// descriptor so the parent entry stays a valid, empty container.
func resetContainer(tx *tx, name string, kind Kind) error {
	if _, err := clearTree(tx, name); err != nil {
		return err
	}
	if isRootName(name) {
		return nil
	}
	return tx.put(name, descriptorOf(kind))
}

// replaceEntry writes t at key, first clearing a container that was stored
// there so that none of its descendants are left behind.
func replaceEntry(tx *tx, key string, t *tree) error {
	if isDescriptor(tx.get(key)) {
		if _, err := clearTree(tx, key); err != nil {
			return err
		}
	}
	return writeTree(tx, key, t)
}

// removeEntry deletes the entry at key. For a scalar the decoded value is
// returned, for a container the zero Value. With native set, the entry is
// also exported before it is removed.
func removeEntry(tx *tx, key string, native bool) (Value, any, error) {
	raw := tx.get(key)
	if raw == nil {
		return Value{}, nil, &KeyError{Container: parentName(key), Field: lastSegment(key)}
	}
	var exported any
	if native {
		t, err := readTree(tx, key)
		if err != nil {
			return Value{}, nil, err
		}
		exported = t.native()
	}
	if isDescriptor(raw) {
		_, err := clearTree(tx, key)
		return Value{}, exported, err
	}
	v, err := Decode(raw)
	if err != nil {
		return Value{}, nil, fmt.Errorf("%s: %w", key, err)
	}
	if err := tx.delete(key); err != nil {
		return Value{}, nil, err
	}
	return v, exported, nil
}
