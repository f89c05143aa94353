package kvtree

import (
	"iter"
)

// Map is a handle to a persistent string-keyed mapping.
type Map struct {
	db   *DB
	name string
}

// Map binds a root map, creating it if name is unused.
func (db *DB) Map(name string) (*Map, error) {
	if err := validateSelector(name); err != nil {
		return nil, err
	}
	err := db.update("map", func(tx *tx) error {
		return ensureContainer(tx, name, KindMap)
	})
	if err != nil {
		return nil, err
	}
	return &Map{db: db, name: name}, nil
}

// CreateMap binds a root map and stores fields in it, nested containers
// included, as one batch. Fields already present are overwritten; other
// existing fields are kept.
func (db *DB) CreateMap(name string, fields map[string]any) (*Map, error) {
	if err := validateSelector(name); err != nil {
		return nil, err
	}
	m := &Map{db: db, name: name}
	err := db.update("create_map", func(tx *tx) error {
		if err := ensureContainer(tx, name, KindMap); err != nil {
			return err
		}
		t, err := buildTree(tx, fields)
		if err != nil {
			return err
		}
		for _, k := range t.keys {
			if err := replaceEntry(tx, childKey(name, k), t.fields[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map) DB() *DB      { return m.db }
func (m *Map) Name() string { return m.name }

func (m *Map) String() string {
	return "map(" + m.name + ")"
}

// Get returns the value of field: a scalar, or a handle for a nested
// container. A missing field is reported as a *KeyError.
func (m *Map) Get(field string) (Value, error) {
	if err := validateSelector(field); err != nil {
		return Value{}, err
	}
	var v Value
	err := m.db.view(func(tx *tx) error {
		var err error
		v, err = m.get(tx, field)
		return err
	})
	return v, err
}

func (m *Map) get(tx *tx, field string) (Value, error) {
	key := childKey(m.name, field)
	raw := tx.get(key)
	if raw == nil {
		return Value{}, &KeyError{Container: m.name, Field: field}
	}
	return entryValue(m.db, key, raw)
}

// Set stores v under field. A container previously stored there is removed
// together with all of its descendants.
func (m *Map) Set(field string, v any) error {
	if err := validateSelector(field); err != nil {
		return err
	}
	return m.db.update("map.set", func(tx *tx) error {
		return m.set(tx, field, v)
	})
}

func (m *Map) set(tx *tx, field string, v any) error {
	if err := ensureContainer(tx, m.name, KindMap); err != nil {
		return err
	}
	t, err := buildTree(tx, v)
	if err != nil {
		return err
	}
	return replaceEntry(tx, childKey(m.name, field), t)
}

func (m *Map) Contains(field string) (bool, error) {
	if err := validateSelector(field); err != nil {
		return false, err
	}
	var found bool
	err := m.db.view(func(tx *tx) error {
		found = tx.has(childKey(m.name, field))
		return nil
	})
	return found, err
}

// Pop removes field and returns its scalar value. A container is removed
// with all of its descendants and the zero Value is returned.
func (m *Map) Pop(field string) (Value, error) {
	if err := validateSelector(field); err != nil {
		return Value{}, err
	}
	var v Value
	err := m.db.update("map.pop", func(tx *tx) error {
		var err error
		v, _, err = removeEntry(tx, childKey(m.name, field), false)
		return err
	})
	return v, err
}

// PopOr is like Pop, but returns def instead of failing when field is
// missing.
func (m *Map) PopOr(field string, def Value) (Value, error) {
	if err := validateSelector(field); err != nil {
		return Value{}, err
	}
	var v Value
	err := m.db.update("map.pop", func(tx *tx) error {
		key := childKey(m.name, field)
		if !tx.has(key) {
			v = def
			return nil
		}
		var err error
		v, _, err = removeEntry(tx, key, false)
		return err
	})
	return v, err
}

// PopNative removes field and returns its content exported to plain Go
// values.
func (m *Map) PopNative(field string) (any, error) {
	if err := validateSelector(field); err != nil {
		return nil, err
	}
	var result any
	err := m.db.update("map.pop", func(tx *tx) error {
		var err error
		_, result, err = removeEntry(tx, childKey(m.name, field), true)
		return err
	})
	return result, err
}

// Fields yields the direct fields of the map in descending order. Records
// of nested containers are skipped. The sequence can be iterated more than
// once; each iteration reads the current state.
//
// The names are collected in one read transaction before the first one is
// yielded, so no transaction stays open during the loop body and the map
// may be modified while iterating. Iteration is therefore not lazy.
func (m *Map) Fields() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var fields []string
		err := m.db.view(func(tx *tx) error {
			fields = m.fields(tx, true)
			return nil
		})
		if err != nil {
			yield("", err)
			return
		}
		for _, f := range fields {
			if !yield(f, nil) {
				return
			}
		}
	}
}

func (m *Map) fields(tx *tx, reverse bool) []string {
	var fields []string
	for c := tx.scan(subtreePrefix(m.name), reverse); c.Next(); {
		k := string(c.Key())
		if isDirectChild(m.name, k) {
			fields = append(fields, lastSegment(k))
		}
	}
	return fields
}

// Keys returns the field names in ascending order.
func (m *Map) Keys() ([]string, error) {
	var keys []string
	err := m.db.view(func(tx *tx) error {
		keys = m.fields(tx, false)
		return nil
	})
	return keys, err
}

func (m *Map) Len() (int, error) {
	keys, err := m.Keys()
	return len(keys), err
}

// Clear removes every field. A root map loses its descriptor as well (the
// handle recreates it on the next write); a nested map keeps its descriptor,
// so the parent still holds it as an empty map.
func (m *Map) Clear() error {
	return m.db.update("map.clear", func(tx *tx) error {
		return resetContainer(tx, m.name, KindMap)
	})
}

// Export reads the whole map into plain Go values.
func (m *Map) Export() (map[string]any, error) {
	var result map[string]any
	err := m.db.view(func(tx *tx) error {
		t, err := readContainer(tx, m.name, KindMap)
		if err != nil {
			return err
		}
		result = t.native().(map[string]any)
		return nil
	})
	return result, err
}
