package kvtree

import (
	"bytes"
	"math"
	"math/big"
	"testing"
)

type myInt int8
type myString string

func TestEncode(t *testing.T) {
	tests := []struct {
		in  any
		hex string
	}{
		{"", "73"},
		{"ab", "73 6162"},
		{true, "62 01"},
		{false, "62 00"},
		{nil, "6e"},
		{0, "69 00"},
		{1, "69 0100"},
		{-1, "69 ffff"},
		{127, "69 7f00"},
		{128, "69 8000"},
		{255, "69 ff00"},
		{256, "69 000100"},
		{-256, "69 00ffff"},
		{int64(math.MaxInt64), "69 ffffffffffffff7f00"},
		{int64(math.MinInt64), "69 0000000000000080ff"},
		{uint64(math.MaxUint64), "69 ffffffffffffffff00"},
		{myInt(-2), "69 feff"},
		{myString("x"), "73 78"},
		{Int(5), "69 0500"},
		{Null(), "6e"},
	}
	for _, tt := range tests {
		a := must(Encode(tt.in))
		if e := x(tt.hex); !bytes.Equal(a, e) {
			t.Errorf("Encode(%#v) = %x, wanted %x", tt.in, a, e)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890123456789", 10)
	negHuge := new(big.Int).Neg(huge)
	values := []Value{
		String(""),
		String("hello, мир"),
		String("with\x00nul"),
		Bool(true),
		Bool(false),
		Null(),
		Int(0),
		Int(1),
		Int(-1),
		Int(math.MaxInt64),
		Int(math.MinInt64),
		Int(math.MinInt64 + 1),
		Int(1 << 40),
		BigInt(huge),
		BigInt(negHuge),
		BigInt(new(big.Int).Lsh(big.NewInt(1), 64)),
		BigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 64))),
	}
	for _, v := range values {
		data := must(Encode(v))
		a := must(Decode(data))
		if !a.Equal(v) {
			t.Errorf("Decode(Encode(%v)) = %v", v, a)
		}
		if a.Kind() != v.Kind() {
			t.Errorf("Decode(Encode(%v)).Kind() = %v, wanted %v", v, a.Kind(), v.Kind())
		}
	}
}

func TestDecodeInt64Normalization(t *testing.T) {
	v := must(Decode(must(Encode(int64(math.MaxInt64)))))
	if !v.IsInt64() || v.Int() != math.MaxInt64 {
		t.Fatalf("Decode(MaxInt64) = %v, IsInt64 = %v", v, v.IsInt64())
	}
	v = must(Decode(must(Encode(uint64(math.MaxUint64)))))
	if v.IsInt64() {
		t.Fatalf("Decode(MaxUint64).IsInt64() = true, wanted false")
	}
	if e := new(big.Int).SetUint64(math.MaxUint64); v.BigInt().Cmp(e) != 0 {
		t.Fatalf("Decode(MaxUint64) = %v, wanted %v", v, e)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		hex string
		err error
	}{
		{"", ErrMalformed},
		{"78", ErrUnknownTag},
		{"69", ErrMalformed},
		{"62", ErrMalformed},
		{"62 0100", ErrMalformed},
		{"62 02", ErrMalformed},
		{"6e 00", ErrMalformed},
		{"6c", ErrMalformed},
		{"64", ErrMalformed},
	}
	for _, tt := range tests {
		_, err := Decode(x(tt.hex))
		if err == nil {
			t.Errorf("Decode(%s) succeeded, wanted %v", tt.hex, tt.err)
			continue
		}
		isErr(t, err, tt.err)
	}
}

func TestEncodeUnsupported(t *testing.T) {
	for _, v := range []any{1.5, []byte("x"), struct{}{}, []any{1}, map[string]any{}, Value{}} {
		_, err := Encode(v)
		isErr(t, err, ErrUnsupportedType)
	}
}

func TestKindOfRaw(t *testing.T) {
	deepEqual(t, kindOfRaw(listDescriptor), KindList)
	deepEqual(t, kindOfRaw(mapDescriptor), KindMap)
	deepEqual(t, kindOfRaw(x("6c 00")), KindInvalid)
	deepEqual(t, kindOfRaw(must(Encode("l"))), KindString)
	deepEqual(t, kindOfRaw(must(Encode(1))), KindInt)
	deepEqual(t, kindOfRaw(nil), KindInvalid)
}
