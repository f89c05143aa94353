package kvtree

import (
	"errors"
	"testing"
)

func TestMapPop(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{"a": 4, "c": map[string]any{"c1": 1}}))

		v := must(m.Pop("a"))
		deepEqual(t, v.Int(), int64(4))

		_, err := m.Get("a")
		var ke *KeyError
		if !errors.As(err, &ke) || ke.Container != "m" || ke.Field != "a" {
			t.Fatalf("Get(a) after Pop = %v, wanted KeyError{m, a}", err)
		}
		isErr(t, err, ErrKeyNotFound)

		_, err = m.Pop("a")
		isErr(t, err, ErrKeyNotFound)

		v = must(m.PopOr("a", String("dflt")))
		deepEqual(t, v.Str(), "dflt")

		v = must(m.PopOr("c", String("dflt")))
		deepEqual(t, v.IsValid(), false)
		deepEqual(t, rawKeys(t, db, "m"), []string{"m"})
	})
}

func TestMapFieldsDirectChildrenOnly(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{"a": 1, "b": 2, "d": map[string]any{"d1": 1, "d2": 2}}))

		var fields []string
		for f, err := range m.Fields() {
			ensure(err)
			fields = append(fields, f)
		}
		deepEqual(t, fields, []string{"d", "b", "a"})

		// restartable
		var again []string
		for f, err := range m.Fields() {
			ensure(err)
			again = append(again, f)
		}
		deepEqual(t, again, fields)

		deepEqual(t, must(m.Keys()), []string{"a", "b", "d"})
		deepEqual(t, must(m.Len()), 3)
	})
}

func TestMapFieldsEarlyBreak(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{"a": 1, "b": 2, "c": 3}))
		var fields []string
		for f, err := range m.Fields() {
			ensure(err)
			fields = append(fields, f)
			if len(fields) == 2 {
				break
			}
		}
		deepEqual(t, fields, []string{"c", "b"})
	})
}

func TestMapSetReplacesContainer(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{
			"g": map[string]any{"x": []any{1, map[string]any{"deep": true}}},
			"h": "keep",
		}))
		ensure(m.Set("g", "hello"))
		deepEqual(t, rawKeys(t, db, "m"), []string{"m", "m/g", "m/h"})
		deepEqual(t, must(m.Get("g")).Str(), "hello")

		ensure(m.Set("g", []any{"a"}))
		deepEqual(t, rawKeys(t, db, "m"), []string{"m", "m/g", "m/g/0", "m/g/count", "m/h"})
		ensure(m.Set("g", map[string]any{"b": 1}))
		deepEqual(t, rawKeys(t, db, "m"), []string{"m", "m/g", "m/g/b", "m/h"})
	})
}

func TestMapContains(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{"a": nil, "n": map[string]any{"x": 1}}))
		deepEqual(t, must(m.Contains("a")), true)
		deepEqual(t, must(m.Contains("n")), true)
		deepEqual(t, must(m.Contains("x")), false)
		deepEqual(t, must(m.Get("a")).IsNull(), true)

		_, err := m.Contains("n/x")
		isErr(t, err, ErrInvalidSelector)
	})
}

func TestMapCountFieldIsNotSpecial(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{"count": 5, "l": []any{"a"}}))
		deepEqual(t, must(m.Keys()), []string{"count", "l"})
		deepEqual(t, must(m.Get("count")).Int(), int64(5))
		deepEqual(t, must(must(m.Get("l")).List().Len()), 1)
	})
}

func TestMapCreateOverwrites(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		must(db.CreateMap("m", map[string]any{"a": map[string]any{"x": 1}, "b": 2}))
		m := must(db.CreateMap("m", map[string]any{"a": 3}))
		deepEqual(t, must(m.Export()), map[string]any{"a": int64(3), "b": int64(2)})
		deepEqual(t, rawKeys(t, db, "m"), []string{"m", "m/a", "m/b"})

		must(db.List("l"))
		_, err := db.CreateMap("l", nil)
		isErr(t, err, ErrStructuralConflict)
	})
}

func TestMapInvalidFields(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.Map("m"))
		isErr(t, m.Set("", 1), ErrInvalidSelector)
		isErr(t, m.Set("a/b", 1), ErrInvalidSelector)
		isErr(t, m.Set("a", map[string]any{"x/y": 1}), ErrInvalidSelector)
		_, err := m.Get("")
		isErr(t, err, ErrInvalidSelector)
		_, err = db.Map("a/b")
		isErr(t, err, ErrInvalidSelector)
		deepEqual(t, rawKeys(t, db, "m"), []string{"m"})
	})
}

func TestMapClear(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{"a": 1, "n": map[string]any{"x": []any{1}}}))
		must(db.CreateMap("m2", map[string]any{"z": 0}))

		n := must(m.Get("n")).Map()
		ensure(n.Clear())
		deepEqual(t, must(m.Export()), map[string]any{"a": int64(1), "n": map[string]any{}})

		ensure(m.Clear())
		ensure(m.Clear())
		deepEqual(t, rawKeys(t, db, "m"), []string{"m2", "m2/z"})
		deepEqual(t, must(m.Export()), map[string]any{})

		ensure(m.Set("b", true))
		deepEqual(t, must(m.Export()), map[string]any{"b": true})
	})
}

func TestMapPopNative(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{"cfg": map[string]any{"hosts": []any{"a", "b"}}, "s": "x"}))
		deepEqual(t, must(m.PopNative("cfg")), any(map[string]any{"hosts": []any{"a", "b"}}))
		deepEqual(t, must(m.PopNative("s")), any("x"))
		deepEqual(t, rawKeys(t, db, "m"), []string{"m"})
	})
}

func TestMapNestedHandles(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.Map("m"))
		ensure(m.Set("inner", map[string]any{}))
		inner := must(m.Get("inner")).Map()
		ensure(inner.Set("list", []any{}))
		l := must(inner.Get("list")).List()
		ensure(l.Append("x"))
		ensure(l.Append(map[string]any{"y": 1}))

		deepEqual(t, must(m.Export()), map[string]any{
			"inner": map[string]any{
				"list": []any{"x", map[string]any{"y": int64(1)}},
			},
		})
		deepEqual(t, rawKeys(t, db, "m"), []string{"m", "m/inner", "m/inner/list", "m/inner/list/0", "m/inner/list/1", "m/inner/list/1/y", "m/inner/list/count"})
	})
}

func TestMapFieldsAllowsMutationWhileIterating(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		m := must(db.CreateMap("m", map[string]any{"a": 1, "b": []any{2}, "c": 3}))
		var fields []string
		for f, err := range m.Fields() {
			ensure(err)
			fields = append(fields, f)
			must(m.Pop(f))
		}
		deepEqual(t, fields, []string{"c", "b", "a"})
		deepEqual(t, rawKeys(t, db, "m"), []string{"m"})
	})
}
