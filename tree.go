package kvtree

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
)

// tree is a fully materialized value: a scalar, or a container with all of
// its descendants. Values are normalized into a tree before any record is
// written, so an unsupported type deep inside never leaves a partial write.
type tree struct {
	kind   Kind
	scalar Value
	items  []*tree
	keys   []string // sorted field names of a map
	fields map[string]*tree
}

func scalarTree(v Value) *tree {
	return &tree{kind: v.kind, scalar: v}
}

func newListTree(items []*tree) *tree {
	return &tree{kind: KindList, items: items}
}

func newMapTree() *tree {
	return &tree{kind: KindMap, fields: make(map[string]*tree)}
}

func (t *tree) setField(k string, v *tree) {
	if _, found := t.fields[k]; !found {
		t.keys = append(t.keys, k)
	}
	t.fields[k] = v
}

func (t *tree) sortKeys() {
	sort.Strings(t.keys)
}

// buildTree normalizes a Go value. Handles of containers in this DB are read
// within tx, handles bound to another DB through a read transaction of their
// own.
func buildTree(tx *tx, v any) (*tree, error) {
	switch v := v.(type) {
	case Value:
		switch v.kind {
		case KindList:
			return buildTree(tx, v.list)
		case KindMap:
			return buildTree(tx, v.dict)
		case KindInvalid:
			return nil, unsupportedTypef(v, "invalid value")
		default:
			return scalarTree(v), nil
		}
	case *List:
		return readHandle(tx, v.db, v.name, KindList)
	case *Map:
		return readHandle(tx, v.db, v.name, KindMap)
	case []any:
		items := make([]*tree, 0, len(v))
		for _, item := range v {
			t, err := buildTree(tx, item)
			if err != nil {
				return nil, err
			}
			items = append(items, t)
		}
		return newListTree(items), nil
	case map[string]any:
		t := newMapTree()
		for k, item := range v {
			if err := validateSelector(k); err != nil {
				return nil, err
			}
			ft, err := buildTree(tx, item)
			if err != nil {
				return nil, err
			}
			t.setField(k, ft)
		}
		t.sortKeys()
		return t, nil
	case *big.Int, nil:
		sv, err := scalarOf(v)
		if err != nil {
			return nil, err
		}
		return scalarTree(sv), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, unsupportedTypef(v, "byte strings are not supported")
		}
		n := rv.Len()
		items := make([]*tree, 0, n)
		for i := range n {
			t, err := buildTree(tx, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items = append(items, t)
		}
		return newListTree(items), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, unsupportedTypef(v, "map keys must be strings")
		}
		t := newMapTree()
		for iter := rv.MapRange(); iter.Next(); {
			k := iter.Key().String()
			if err := validateSelector(k); err != nil {
				return nil, err
			}
			ft, err := buildTree(tx, iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			t.setField(k, ft)
		}
		t.sortKeys()
		return t, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return scalarTree(Null()), nil
		}
		if rv.Type() != bigIntPtrType {
			return buildTree(tx, rv.Elem().Interface())
		}
	}

	sv, err := scalarOf(v)
	if err != nil {
		return nil, err
	}
	return scalarTree(sv), nil
}

func readHandle(cur *tx, db *DB, name string, kind Kind) (*tree, error) {
	if db == cur.db {
		return readContainer(cur, name, kind)
	}
	var t *tree
	err := db.view(func(otx *tx) error {
		var err error
		t, err = readContainer(otx, name, kind)
		return err
	})
	return t, err
}

// readContainer reads the container behind a handle. A root container whose
// descriptor has been cleared reads as empty.
func readContainer(tx *tx, name string, kind Kind) (*tree, error) {
	raw := tx.get(name)
	if raw == nil && isRootName(name) {
		if kind == KindList {
			return newListTree(nil), nil
		}
		return newMapTree(), nil
	}
	t, err := readTree(tx, name)
	if err != nil {
		return nil, err
	}
	if t.kind != kind {
		return nil, conflictErrf(name, "holds a %v, not a %v", t.kind, kind)
	}
	return t, nil
}

// readTree reads the entry at key and, for containers, everything below it.
func readTree(tx *tx, key string) (*tree, error) {
	raw := tx.get(key)
	if raw == nil {
		return nil, &KeyError{Container: parentName(key), Field: lastSegment(key)}
	}
	switch kindOfRaw(raw) {
	case KindList:
		n, err := readCount(tx, key)
		if err != nil {
			return nil, err
		}
		items := make([]*tree, 0, n)
		for i := range n {
			ik := indexKey(key, i)
			if !tx.has(ik) {
				return nil, fmt.Errorf("%w: %s: element %d of %d is missing", ErrMalformed, key, i, n)
			}
			t, err := readTree(tx, ik)
			if err != nil {
				return nil, err
			}
			items = append(items, t)
		}
		return newListTree(items), nil

	case KindMap:
		t := newMapTree()
		for _, k := range directChildren(tx, key) {
			ft, err := readTree(tx, k)
			if err != nil {
				return nil, err
			}
			t.setField(lastSegment(k), ft)
		}
		t.sortKeys()
		return t, nil

	default:
		v, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return scalarTree(v), nil
	}
}

// directChildren returns the keys one level below name, in ascending order.
func directChildren(tx *tx, name string) []string {
	var keys []string
	for c := tx.scan(subtreePrefix(name), false); c.Next(); {
		k := string(c.Key())
		if isDirectChild(name, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// writeTree writes t at key. The list counter is only stored for non-empty
// lists, which keeps equal content stored as identical records.
func writeTree(tx *tx, key string, t *tree) error {
	switch t.kind {
	case KindList:
		if err := tx.put(key, listDescriptor); err != nil {
			return err
		}
		for i, item := range t.items {
			if err := writeTree(tx, indexKey(key, i), item); err != nil {
				return err
			}
		}
		return writeCount(tx, key, len(t.items))
	case KindMap:
		if err := tx.put(key, mapDescriptor); err != nil {
			return err
		}
		for _, k := range t.keys {
			if err := writeTree(tx, childKey(key, k), t.fields[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		return tx.put(key, appendScalar(nil, t.scalar))
	}
}

// readCount returns the length of the list at name; a missing counter means
// an empty list.
func readCount(tx *tx, name string) (int, error) {
	raw := tx.get(countKey(name))
	if raw == nil {
		return 0, nil
	}
	v, err := Decode(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: count: %w", name, err)
	}
	if !v.IsInt64() || v.Int() < 0 || v.Int() > math.MaxInt {
		return 0, dataErrf(raw, ErrMalformed, "%s: invalid list count", name)
	}
	return int(v.Int()), nil
}

func writeCount(tx *tx, name string, n int) error {
	if n == 0 {
		if tx.has(countKey(name)) {
			return tx.delete(countKey(name))
		}
		return nil
	}
	return tx.put(countKey(name), appendScalar(nil, Int(int64(n))))
}

// entryValue turns a stored record into a Value: a handle for a container
// descriptor, the decoded scalar otherwise.
func entryValue(db *DB, key string, raw []byte) (Value, error) {
	switch kindOfRaw(raw) {
	case KindList:
		return listValue(&List{db: db, name: key}), nil
	case KindMap:
		return mapValue(&Map{db: db, name: key}), nil
	}
	v, err := Decode(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// native converts t into plain Go values: nil, bool, int64, *big.Int,
// string, []any and map[string]any.
func (t *tree) native() any {
	switch t.kind {
	case KindList:
		result := make([]any, 0, len(t.items))
		for _, item := range t.items {
			result = append(result, item.native())
		}
		return result
	case KindMap:
		result := make(map[string]any, len(t.fields))
		for k, v := range t.fields {
			result[k] = v.native()
		}
		return result
	default:
		return t.scalar.Interface()
	}
}
