package kvtree

import (
	"errors"
	"math/big"
	"testing"
)

func TestListNested(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("seq", []any{"a", "b", "c", "d", "e", "f", []any{"g1", "g2"}}))
		deepEqual(t, must(l.Len()), 7)

		v := must(l.Get(6))
		if v.Kind() != KindList {
			t.Fatalf("Get(6).Kind() = %v, wanted list", v.Kind())
		}
		deepEqual(t, must(v.List().Get(0)).Str(), "g1")
		deepEqual(t, must(v.List().Len()), 2)

		ensure(l.Set(0, map[string]any{"x": 1}))
		v = must(l.Get(0))
		if v.Kind() != KindMap {
			t.Fatalf("Get(0).Kind() = %v, wanted map", v.Kind())
		}
		deepEqual(t, must(v.Map().Get("x")).Int(), int64(1))

		deepEqual(t, must(l.Export()), []any{map[string]any{"x": int64(1)}, "b", "c", "d", "e", "f", []any{"g1", "g2"}})
	})
}

func TestListAppendPop(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.List("l"))

		ensure(l.Append(true))
		v := must(l.Pop())
		deepEqual(t, v.Kind(), KindBool)
		deepEqual(t, v.Bool(), true)

		ensure(l.Append(nil))
		v = must(l.Pop())
		deepEqual(t, v.IsNull(), true)

		deepEqual(t, must(l.Len()), 0)
		isempty(t, rawKeys(t, db, "l/"))

		_, err := l.Pop()
		var ie *IndexError
		if !errors.As(err, &ie) {
			t.Fatalf("Pop() on empty list = %v, wanted *IndexError", err)
		}
		isErr(t, err, ErrIndexOutOfRange)
	})
}

func TestListCreateConflict(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		must(db.CreateList("l", []any{1, 2}))
		_, err := db.CreateList("l", []any{3})
		isErr(t, err, ErrStructuralConflict)
		deepEqual(t, must(must(db.List("l")).Export()), []any{int64(1), int64(2)})

		// an existing but empty list can be initialized
		must(db.List("e"))
		must(db.CreateList("e", []any{"x"}))

		must(db.Map("m"))
		_, err = db.CreateList("m", nil)
		isErr(t, err, ErrStructuralConflict)
		_, err = db.List("m")
		isErr(t, err, ErrStructuralConflict)
	})
}

func TestListIndexErrors(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{"a"}))
		for _, i := range []int{-1, 1, 100} {
			_, err := l.Get(i)
			isErr(t, err, ErrIndexOutOfRange)
			isErr(t, l.Set(i, "x"), ErrIndexOutOfRange)
		}
		var ie *IndexError
		_, err := l.Get(3)
		if !errors.As(err, &ie) || ie.Index != 3 || ie.Len != 1 || ie.Container != "l" {
			t.Fatalf("Get(3) = %v, wanted IndexError{l, 3, 1}", err)
		}
	})
}

func TestListExtend(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{1}))
		ensure(l.Extend([]any{2, []string{"a", "b"}, map[string]int{"k": 3}}))
		ensure(l.Extend(nil))
		deepEqual(t, must(l.Len()), 4)
		deepEqual(t, must(l.Export()), []any{int64(1), int64(2), []any{"a", "b"}, map[string]any{"k": int64(3)}})

		vals := must(l.Values())
		deepEqual(t, len(vals), 4)
		deepEqual(t, vals[2].Kind(), KindList)
		deepEqual(t, vals[2].List().Name(), "l/2")
	})
}

func TestListExtendIsAtomic(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{1}))
		err := l.Extend([]any{2, 3.5})
		isErr(t, err, ErrUnsupportedType)
		deepEqual(t, must(l.Export()), []any{int64(1)})
		deepEqual(t, rawKeys(t, db, "l"), []string{"l", "l/0", "l/count"})
	})
}

func TestListSetClearsOldContainer(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{[]any{[]any{1, 2}, map[string]any{"a": "b"}}, "x"}))
		ensure(l.Set(0, "flat"))
		deepEqual(t, rawKeys(t, db, "l"), []string{"l", "l/0", "l/1", "l/count"})
		deepEqual(t, must(l.Export()), []any{"flat", "x"})
	})
}

func TestListPopContainer(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{"a", map[string]any{"k": []any{1}}}))
		v := must(l.Pop())
		deepEqual(t, v.IsValid(), false)
		deepEqual(t, rawKeys(t, db, "l"), []string{"l", "l/0", "l/count"})

		ensure(l.Append([]any{1, map[string]any{"z": nil}}))
		deepEqual(t, must(l.PopNative()), any([]any{int64(1), map[string]any{"z": nil}}))
		deepEqual(t, rawKeys(t, db, "l"), []string{"l", "l/0", "l/count"})
	})
}

func TestListClear(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{1, []any{2, []any{3}}}))
		must(db.CreateList("l2", []any{"other"}))

		ensure(l.Clear())
		deepEqual(t, rawKeys(t, db, "l"), []string{"l2", "l2/0", "l2/count"})
		deepEqual(t, must(l.Len()), 0)
		deepEqual(t, must(l.Export()), []any{})

		ensure(l.Clear())
		isempty(t, rawKeys(t, db, "l/"))

		ensure(l.Append("again"))
		deepEqual(t, must(l.Export()), []any{"again"})
		deepEqual(t, must(db.Root("l")).Kind(), KindList)
	})
}

func TestListNestedClearKeepsParentIntact(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{"a", []any{1, 2}}))
		inner := must(l.Get(1)).List()
		ensure(inner.Clear())
		deepEqual(t, must(l.Len()), 2)
		deepEqual(t, must(l.Export()), []any{"a", []any{}})
	})
}

func TestListStaleHandle(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{[]any{1}}))
		inner := must(l.Get(0)).List()
		ensure(l.Set(0, "scalar"))
		isErr(t, inner.Append(2), ErrStructuralConflict)

		ensure(l.Clear())
		isErr(t, inner.Append(2), ErrKeyNotFound)
		isempty(t, rawKeys(t, db, "l/"))
	})
}

func TestListBigInts(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		huge, _ := new(big.Int).SetString("-98765432109876543210987654321", 10)
		l := must(db.CreateList("l", []any{huge, uint64(1) << 63}))
		if a := must(l.Get(0)).BigInt(); a.Cmp(huge) != 0 {
			t.Fatalf("Get(0) = %v, wanted %v", a, huge)
		}
		deepEqual(t, must(l.Get(1)).IsInt64(), false)
	})
}

func TestListCopyFromHandle(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		src := must(db.CreateList("src", []any{1, []any{"x"}}))
		dst := must(db.CreateList("dst", []any{src}))
		ensure(src.Clear())
		deepEqual(t, must(dst.Export()), []any{[]any{int64(1), []any{"x"}}})

		// a list stored into itself is copied, not linked
		ensure(dst.Append(dst))
		deepEqual(t, must(dst.Export()), []any{
			[]any{int64(1), []any{"x"}},
			[]any{[]any{int64(1), []any{"x"}}},
		})
	})
}

func TestListCopyAcrossDBs(t *testing.T) {
	a := setupMem(t)
	b := setup(t)
	src := must(a.CreateList("src", []any{"x", map[string]any{"y": true}}))
	dst := must(b.CreateList("dst", []any{src}))
	deepEqual(t, must(dst.Export()), []any{[]any{"x", map[string]any{"y": true}}})
}

func TestListCounterInvariant(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.List("l"))
		for i := range 12 {
			ensure(l.Append(i))
		}
		for range 5 {
			must(l.Pop())
		}
		n := must(l.Len())
		deepEqual(t, n, 7)
		keys := rawKeys(t, db, "l/")
		deepEqual(t, len(keys), n+1) // elements plus the counter
		for i := range n {
			deepEqual(t, must(l.Get(i)).Int(), int64(i))
		}
	})
}

func TestListRootClearDropsDescriptor(t *testing.T) {
	eachBackend(t, func(t *testing.T, db *DB) {
		l := must(db.CreateList("l", []any{1, []any{2}}))
		ensure(l.Clear())
		isempty(t, rawKeys(t, db, "l"))
		deepEqual(t, must(l.Len()), 0)
		ensure(l.Append("x"))
		deepEqual(t, rawKeys(t, db, "l"), []string{"l", "l/0", "l/count"})
	})
}
