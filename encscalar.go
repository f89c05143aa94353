package kvtree

import (
	"math"
	"math/big"
	"math/bits"
	"reflect"
)

// Tag bytes. A stored value starts with its tag; container descriptors are
// exactly one byte long.
const (
	tagString byte = 's'
	tagInt    byte = 'i'
	tagBool   byte = 'b'
	tagNull   byte = 'n'
	tagList   byte = 'l'
	tagMap    byte = 'd'
)

var (
	listDescriptor = []byte{tagList}
	mapDescriptor  = []byte{tagMap}
)

var bigIntPtrType = reflect.TypeOf((*big.Int)(nil))

// Encode returns the tagged encoding of a scalar: nil, bool, string, any Go
// integer type, *big.Int or a scalar Value.
func Encode(v any) ([]byte, error) {
	sv, err := scalarOf(v)
	if err != nil {
		return nil, err
	}
	return appendScalar(nil, sv), nil
}

// Decode reverses Encode. Container descriptors and unknown tags are errors.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, dataErrf(data, ErrMalformed, "empty value")
	}
	tag, payload := data[0], data[1:]
	switch tag {
	case tagString:
		return String(string(payload)), nil
	case tagInt:
		return decodeInt(data, payload)
	case tagBool:
		if len(payload) != 1 || payload[0] > 1 {
			return Value{}, dataErrf(data, ErrMalformed, "invalid bool payload")
		}
		return Bool(payload[0] == 1), nil
	case tagNull:
		if len(payload) != 0 {
			return Value{}, dataErrf(data, ErrMalformed, "non-empty null payload")
		}
		return Null(), nil
	case tagList, tagMap:
		return Value{}, dataErrf(data, ErrMalformed, "container descriptor is not a scalar")
	default:
		return Value{}, dataErrf(data, ErrUnknownTag, "tag %q", tag)
	}
}

// scalarOf converts a Go scalar into a Value. Named types are accepted based
// on their underlying kind.
func scalarOf(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		if !v.kind.IsScalar() {
			return Value{}, unsupportedTypef(v, "%v value is not a scalar", v.kind)
		}
		return v, nil
	case *big.Int:
		if v == nil {
			return Null(), nil
		}
		return BigInt(v), nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return BigInt(new(big.Int).SetUint64(u)), nil
		}
		return Int(int64(u)), nil
	default:
		return Value{}, unsupportedTypef(v, "")
	}
}

func appendScalar(buf []byte, v Value) []byte {
	switch v.kind {
	case KindString:
		buf = append(buf, tagString)
		return append(buf, v.s...)
	case KindInt:
		buf = append(buf, tagInt)
		if v.bi != nil {
			return appendBigInt(buf, v.bi)
		}
		return appendInt64(buf, v.i)
	case KindBool:
		if v.b {
			return append(buf, tagBool, 1)
		}
		return append(buf, tagBool, 0)
	case KindNull:
		return append(buf, tagNull)
	default:
		panic("appendScalar: not a scalar: " + v.kind.String())
	}
}

// intPayloadLen mirrors the payload sizing rule: enough bytes for the
// magnitude's bit length, plus one byte of headroom for the sign.
func intPayloadLen(bitLen int) int {
	return (bitLen+7)/8 + 1
}

func appendInt64(buf []byte, v int64) []byte {
	if v == math.MinInt64 {
		return appendBigInt(buf, big.NewInt(v))
	}
	mag := v
	if mag < 0 {
		mag = -mag
	}
	n := intPayloadLen(bits.Len64(uint64(mag)))
	u := uint64(v)
	for i := 0; i < n; i++ {
		if i < 8 {
			buf = append(buf, byte(u>>(8*i)))
		} else if v < 0 {
			buf = append(buf, 0xFF)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

func appendBigInt(buf []byte, v *big.Int) []byte {
	n := intPayloadLen(v.BitLen())
	u := v
	if v.Sign() < 0 {
		// two's complement: 2^(8n) + v
		u = new(big.Int).Lsh(big.NewInt(1), uint(8*n))
		u.Add(u, v)
	}
	be := u.Bytes()
	for i := 0; i < n; i++ {
		if i < len(be) {
			buf = append(buf, be[len(be)-1-i])
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

func decodeInt(data, payload []byte) (Value, error) {
	n := len(payload)
	if n == 0 {
		return Value{}, dataErrf(data, ErrMalformed, "empty int payload")
	}
	negative := payload[n-1]&0x80 != 0

	if n <= 8 {
		var u uint64
		for i := n - 1; i >= 0; i-- {
			u = u<<8 | uint64(payload[i])
		}
		if negative && n < 8 {
			u |= ^uint64(0) << (8 * n)
		}
		return Int(int64(u)), nil
	}

	be := make([]byte, n)
	for i, b := range payload {
		be[n-1-i] = b
	}
	x := new(big.Int).SetBytes(be)
	if negative {
		x.Sub(x, new(big.Int).Lsh(big.NewInt(1), uint(8*n)))
	}
	return BigInt(x), nil
}

func isDescriptor(raw []byte) bool {
	return len(raw) == 1 && (raw[0] == tagList || raw[0] == tagMap)
}

func descriptorOf(kind Kind) []byte {
	switch kind {
	case KindList:
		return listDescriptor
	case KindMap:
		return mapDescriptor
	default:
		panic("descriptorOf: not a container: " + kind.String())
	}
}

// kindOfRaw classifies a stored value without decoding scalar payloads.
func kindOfRaw(raw []byte) Kind {
	switch {
	case len(raw) == 0:
		return KindInvalid
	case isDescriptor(raw) && raw[0] == tagList:
		return KindList
	case isDescriptor(raw):
		return KindMap
	}
	switch raw[0] {
	case tagString:
		return KindString
	case tagInt:
		return KindInt
	case tagBool:
		return KindBool
	case tagNull:
		return KindNull
	default:
		return KindInvalid
	}
}
