package kvtree

import (
	"fmt"
	"strconv"
	"strings"
)

// Root returns a handle for the container stored under a root name.
func (db *DB) Root(name string) (Value, error) {
	if err := validateSelector(name); err != nil {
		return Value{}, err
	}
	return db.Lookup(name)
}

// Lookup resolves a path of the form root/sel/sel... Segments below a list
// are parsed as indices, segments below a map are field names.
func (db *DB) Lookup(path string) (Value, error) {
	segs, err := splitPath(path)
	if err != nil {
		return Value{}, err
	}
	var v Value
	err = db.view(func(tx *tx) error {
		var err error
		v, err = resolve(tx, segs)
		return err
	})
	return v, err
}

// Put stores v at path. A single-segment path replaces a whole root
// container; v must then be a list or a map. A longer path sets an element
// of an existing list or a field of an existing map.
func (db *DB) Put(path string, v any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	return db.update("put", func(tx *tx) error {
		if len(segs) == 1 {
			t, err := buildTree(tx, v)
			if err != nil {
				return err
			}
			return replaceRoot(tx, segs[0], t)
		}
		parent, err := resolve(tx, segs[:len(segs)-1])
		if err != nil {
			return err
		}
		last := segs[len(segs)-1]
		switch parent.kind {
		case KindList:
			i, err := parseIndex(last)
			if err != nil {
				return err
			}
			return parent.list.set(tx, i, v)
		case KindMap:
			return parent.dict.set(tx, last, v)
		default:
			return conflictErrf(strings.Join(segs[:len(segs)-1], string(Separator)), "%v is not a container", parent.kind)
		}
	})
}

// replaceRoot stores t as the whole content of a root container, dropping
// whatever was there before.
func replaceRoot(tx *tx, name string, t *tree) error {
	if !t.kind.IsContainer() {
		return conflictErrf(name, "a root must hold a list or a map, not a %v", t.kind)
	}
	if _, err := clearTree(tx, name); err != nil {
		return err
	}
	return writeTree(tx, name, t)
}

func resolve(tx *tx, segs []string) (Value, error) {
	root := segs[0]
	raw := tx.get(root)
	if raw == nil {
		return Value{}, &KeyError{Field: root}
	}
	v, err := entryValue(tx.db, root, raw)
	if err != nil {
		return Value{}, err
	}
	for i, seg := range segs[1:] {
		switch v.kind {
		case KindList:
			idx, err := parseIndex(seg)
			if err != nil {
				return Value{}, err
			}
			v, err = v.list.get(tx, idx)
			if err != nil {
				return Value{}, err
			}
		case KindMap:
			v, err = v.dict.get(tx, seg)
			if err != nil {
				return Value{}, err
			}
		default:
			return Value{}, conflictErrf(strings.Join(segs[:i+1], string(Separator)), "%v is not a container", v.kind)
		}
	}
	return v, nil
}

func splitPath(path string) ([]string, error) {
	segs := strings.Split(path, string(Separator))
	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in path %q", ErrInvalidSelector, path)
		}
	}
	return segs, nil
}

// parseIndex accepts canonical decimal indices only ("0", "12", not "012",
// "+1" or "-0"), so each element has exactly one path.
func parseIndex(seg string) (int, error) {
	if !isCanonicalIndex(seg) {
		return 0, fmt.Errorf("%w: %q is not a list index", ErrInvalidSelector, seg)
	}
	i, err := strconv.Atoi(seg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a list index: %v", ErrInvalidSelector, seg, err)
	}
	return i, nil
}

func isCanonicalIndex(seg string) bool {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}
