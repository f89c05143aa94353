package kvtree

import (
	"fmt"
	"math/big"
	"strconv"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("invalid kind %d", int(k))
	}
}

func (k Kind) IsScalar() bool {
	return k >= KindNull && k <= KindString
}

func (k Kind) IsContainer() bool {
	return k == KindList || k == KindMap
}

// Value is what a read returns: a scalar, or a handle to a nested list or
// map. The zero Value is invalid; it is returned for removed containers.
//
// Accessors panic when called on a Value of a different kind.
type Value struct {
	kind Kind
	b    bool
	i    int64
	bi   *big.Int // only for integers outside the int64 range
	s    string
	list *List
	dict *Map
}

func Null() Value             { return Value{kind: KindNull} }
func Bool(v bool) Value       { return Value{kind: KindBool, b: v} }
func Int(v int64) Value       { return Value{kind: KindInt, i: v} }
func String(v string) Value   { return Value{kind: KindString, s: v} }
func listValue(l *List) Value { return Value{kind: KindList, list: l} }
func mapValue(m *Map) Value   { return Value{kind: KindMap, dict: m} }

// BigInt returns an integer Value; small values are stored as int64.
func BigInt(v *big.Int) Value {
	if v.IsInt64() {
		return Int(v.Int64())
	}
	return Value{kind: KindInt, bi: new(big.Int).Set(v)}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsValid() bool  { return v.kind != KindInvalid }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsScalar() bool { return v.kind.IsScalar() }

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(fmt.Errorf("kvtree: %v value used as %v", v.kind, k))
	}
}

func (v Value) Bool() bool {
	v.mustBe(KindBool)
	return v.b
}

// Int returns the integer; it panics if the value does not fit into int64,
// use IsInt64 or BigInt for arbitrary integers.
func (v Value) Int() int64 {
	v.mustBe(KindInt)
	if v.bi != nil {
		panic(fmt.Errorf("kvtree: integer %v overflows int64", v.bi))
	}
	return v.i
}

func (v Value) IsInt64() bool {
	return v.kind == KindInt && v.bi == nil
}

func (v Value) BigInt() *big.Int {
	v.mustBe(KindInt)
	if v.bi != nil {
		return new(big.Int).Set(v.bi)
	}
	return big.NewInt(v.i)
}

// Str returns the string payload. (String is the fmt.Stringer.)
func (v Value) Str() string {
	v.mustBe(KindString)
	return v.s
}

func (v Value) List() *List {
	v.mustBe(KindList)
	return v.list
}

func (v Value) Map() *Map {
	v.mustBe(KindMap)
	return v.dict
}

// Interface returns the scalar as a plain Go value (nil, bool, int64,
// *big.Int or string), or the *List / *Map handle.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull, KindInvalid:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		if v.bi != nil {
			return new(big.Int).Set(v.bi)
		}
		return v.i
	case KindString:
		return v.s
	case KindList:
		return v.list
	case KindMap:
		return v.dict
	default:
		panic("unreachable")
	}
}

// Equal reports whether two scalars are equal, or whether two handles refer
// to the same container.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid, KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		if v.bi == nil && o.bi == nil {
			return v.i == o.i
		}
		return v.BigInt().Cmp(o.BigInt()) == 0
	case KindString:
		return v.s == o.s
	case KindList:
		return v.list.db == o.list.db && v.list.name == o.list.name
	case KindMap:
		return v.dict.db == o.dict.db && v.dict.name == o.dict.name
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<invalid>"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		if v.bi != nil {
			return v.bi.String()
		}
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return strconv.Quote(v.s)
	case KindList:
		return "list(" + v.list.name + ")"
	case KindMap:
		return "map(" + v.dict.name + ")"
	default:
		return v.kind.String()
	}
}
