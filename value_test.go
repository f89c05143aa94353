package kvtree

import (
	"math/big"
	"testing"
)

func TestValueAccessors(t *testing.T) {
	deepEqual(t, Int(3).Int(), int64(3))
	deepEqual(t, String("s").Str(), "s")
	deepEqual(t, Bool(true).Bool(), true)
	deepEqual(t, Null().IsNull(), true)
	deepEqual(t, Value{}.IsValid(), false)
	deepEqual(t, Value{}.Kind(), KindInvalid)

	assertPanics(t, func() { String("s").Int() })
	assertPanics(t, func() { Int(1).Str() })
	assertPanics(t, func() { Null().List() })
	assertPanics(t, func() { Value{}.Map() })

	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	v := BigInt(huge)
	deepEqual(t, v.IsInt64(), false)
	assertPanics(t, func() { v.Int() })
	huge.SetInt64(0) // BigInt keeps its own copy
	deepEqual(t, v.String(), "1267650600228229401496703205376")

	deepEqual(t, BigInt(big.NewInt(7)).IsInt64(), true)
}

func TestValueEqualAndString(t *testing.T) {
	deepEqual(t, Int(5).Equal(BigInt(big.NewInt(5))), true)
	deepEqual(t, Int(5).Equal(String("5")), false)
	deepEqual(t, Null().Equal(Null()), true)
	deepEqual(t, String("a").String(), `"a"`)
	deepEqual(t, Bool(false).String(), "false")
	deepEqual(t, Value{}.String(), "<invalid>")

	db := setupMem(t)
	l := must(db.List("l"))
	a := listValue(l)
	b := listValue(&List{db: db, name: "l"})
	deepEqual(t, a.Equal(b), true)
	deepEqual(t, a.Equal(listValue(&List{db: db, name: "x"})), false)
	deepEqual(t, a.String(), "list(l)")
	deepEqual(t, a.Interface(), any(l))
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindNull, KindBool, KindInt, KindString} {
		if !k.IsScalar() || k.IsContainer() {
			t.Errorf("%v: IsScalar = %v, IsContainer = %v", k, k.IsScalar(), k.IsContainer())
		}
	}
	for _, k := range []Kind{KindList, KindMap} {
		if k.IsScalar() || !k.IsContainer() {
			t.Errorf("%v: IsScalar = %v, IsContainer = %v", k, k.IsScalar(), k.IsContainer())
		}
	}
	deepEqual(t, KindInvalid.IsScalar(), false)
	deepEqual(t, Kind(42).String(), "invalid kind 42")
}
