package kvtree

import (
	"fmt"
)

// List is a handle to a persistent sequence. It holds no data of its own;
// every call reads or writes the store.
type List struct {
	db   *DB
	name string
}

// List binds a root list, creating it if name is unused.
func (db *DB) List(name string) (*List, error) {
	if err := validateSelector(name); err != nil {
		return nil, err
	}
	err := db.update("list", func(tx *tx) error {
		return ensureContainer(tx, name, KindList)
	})
	if err != nil {
		return nil, err
	}
	return &List{db: db, name: name}, nil
}

// CreateList creates a root list holding values. Re-initializing a list that
// already has elements is a structural conflict.
func (db *DB) CreateList(name string, values []any) (*List, error) {
	if err := validateSelector(name); err != nil {
		return nil, err
	}
	l := &List{db: db, name: name}
	err := db.update("create_list", func(tx *tx) error {
		if raw := tx.get(name); raw != nil {
			if k := kindOfRaw(raw); k != KindList {
				return conflictErrf(name, "holds a %v, not a list", k)
			}
			n, err := readCount(tx, name)
			if err != nil {
				return err
			}
			if n > 0 {
				return conflictErrf(name, "list already has %d elements", n)
			}
		}
		t, err := buildTree(tx, values)
		if err != nil {
			return err
		}
		return writeTree(tx, name, t)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *List) DB() *DB      { return l.db }
func (l *List) Name() string { return l.name }

func (l *List) String() string {
	return "list(" + l.name + ")"
}

func (l *List) Len() (int, error) {
	var n int
	err := l.db.view(func(tx *tx) error {
		var err error
		n, err = readCount(tx, l.name)
		return err
	})
	return n, err
}

// Get returns the element at i: a scalar, or a handle for a nested
// container.
func (l *List) Get(i int) (Value, error) {
	var v Value
	err := l.db.view(func(tx *tx) error {
		var err error
		v, err = l.get(tx, i)
		return err
	})
	return v, err
}

func (l *List) get(tx *tx, i int) (Value, error) {
	if err := l.checkIndex(tx, i); err != nil {
		return Value{}, err
	}
	key := indexKey(l.name, i)
	raw := tx.get(key)
	if raw == nil {
		return Value{}, fmt.Errorf("%w: %s: element %d is missing", ErrMalformed, l.name, i)
	}
	return entryValue(l.db, key, raw)
}

func (l *List) checkIndex(tx *tx, i int) error {
	n, err := readCount(tx, l.name)
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return &IndexError{Container: l.name, Index: i, Len: n}
	}
	return nil
}

// Set replaces the element at i. A container previously stored there is
// removed together with all of its descendants.
func (l *List) Set(i int, v any) error {
	return l.db.update("list.set", func(tx *tx) error {
		return l.set(tx, i, v)
	})
}

func (l *List) set(tx *tx, i int, v any) error {
	if err := ensureContainer(tx, l.name, KindList); err != nil {
		return err
	}
	if err := l.checkIndex(tx, i); err != nil {
		return err
	}
	t, err := buildTree(tx, v)
	if err != nil {
		return err
	}
	return replaceEntry(tx, indexKey(l.name, i), t)
}

func (l *List) Append(v any) error {
	return l.db.update("list.append", func(tx *tx) error {
		return l.extend(tx, []any{v})
	})
}

// Extend appends all values with a single counter update.
func (l *List) Extend(values []any) error {
	return l.db.update("list.extend", func(tx *tx) error {
		return l.extend(tx, values)
	})
}

func (l *List) extend(tx *tx, values []any) error {
	if err := ensureContainer(tx, l.name, KindList); err != nil {
		return err
	}
	n, err := readCount(tx, l.name)
	if err != nil {
		return err
	}
	trees := make([]*tree, 0, len(values))
	for _, v := range values {
		t, err := buildTree(tx, v)
		if err != nil {
			return err
		}
		trees = append(trees, t)
	}
	if len(trees) == 0 {
		return nil
	}
	for i, t := range trees {
		if err := replaceEntry(tx, indexKey(l.name, n+i), t); err != nil {
			return err
		}
	}
	return writeCount(tx, l.name, n+len(trees))
}

// Pop removes the last element. A scalar is returned; a container is
// removed with all of its descendants and the zero Value is returned, use
// PopNative to keep its content.
func (l *List) Pop() (Value, error) {
	var v Value
	err := l.db.update("list.pop", func(tx *tx) error {
		var err error
		v, _, err = l.pop(tx, false)
		return err
	})
	return v, err
}

// PopNative removes the last element and returns it exported to plain Go
// values.
func (l *List) PopNative() (any, error) {
	var result any
	err := l.db.update("list.pop", func(tx *tx) error {
		var err error
		_, result, err = l.pop(tx, true)
		return err
	})
	return result, err
}

func (l *List) pop(tx *tx, native bool) (Value, any, error) {
	if err := ensureContainer(tx, l.name, KindList); err != nil {
		return Value{}, nil, err
	}
	n, err := readCount(tx, l.name)
	if err != nil {
		return Value{}, nil, err
	}
	if n == 0 {
		return Value{}, nil, &IndexError{Container: l.name, Index: -1, Len: 0}
	}
	v, exported, err := removeEntry(tx, indexKey(l.name, n-1), native)
	if err != nil {
		return Value{}, nil, err
	}
	if err := writeCount(tx, l.name, n-1); err != nil {
		return Value{}, nil, err
	}
	return v, exported, nil
}

// Clear removes every element. A root list loses its descriptor as well (the
// handle recreates it on the next write); a nested list keeps its descriptor,
// so the parent still holds it as an empty list.
func (l *List) Clear() error {
	return l.db.update("list.clear", func(tx *tx) error {
		return resetContainer(tx, l.name, KindList)
	})
}

// Values returns every element, with handles for nested containers.
func (l *List) Values() ([]Value, error) {
	var result []Value
	err := l.db.view(func(tx *tx) error {
		n, err := readCount(tx, l.name)
		if err != nil {
			return err
		}
		result = make([]Value, 0, n)
		for i := range n {
			v, err := l.get(tx, i)
			if err != nil {
				return err
			}
			result = append(result, v)
		}
		return nil
	})
	return result, err
}

// Export reads the whole list into plain Go values.
func (l *List) Export() ([]any, error) {
	var result []any
	err := l.db.view(func(tx *tx) error {
		t, err := readContainer(tx, l.name, KindList)
		if err != nil {
			return err
		}
		result = t.native().([]any)
		return nil
	})
	return result, err
}
