package kvtree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedType    = errors.New("unsupported value type")
	ErrUnknownTag         = errors.New("unknown value tag")
	ErrMalformed          = errors.New("malformed value")
	ErrKeyNotFound        = errors.New("key not found")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrStructuralConflict = errors.New("structural conflict")
	ErrInvalidSelector    = errors.New("invalid selector")
)

// EncodingError is returned when a Go value cannot be encoded, or when stored
// bytes cannot be decoded. Exactly one of Value and Data is meaningful.
type EncodingError struct {
	Value any
	Data  []byte
	Err   error
	Msg   string
}

func unsupportedTypef(v any, format string, args ...any) error {
	return &EncodingError{Value: v, Err: ErrUnsupportedType, Msg: fmt.Sprintf(format, args...)}
}

func dataErrf(data []byte, err error, format string, args ...any) error {
	return &EncodingError{Data: data, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func (e *EncodingError) Error() string {
	if e.Data == nil {
		if e.Msg == "" {
			return fmt.Sprintf("%v: %T", e.Err, e.Value)
		}
		return fmt.Sprintf("%s: %v: %T", e.Msg, e.Err, e.Value)
	}

	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
	}
}

// KeyError is returned when a map field (or a root container) does not exist.
type KeyError struct {
	Container string
	Field     string
}

func (e *KeyError) Unwrap() error {
	return ErrKeyNotFound
}

func (e *KeyError) Error() string {
	if e.Container == "" {
		return fmt.Sprintf("%q: %v", e.Field, ErrKeyNotFound)
	}
	return fmt.Sprintf("%s: field %q: %v", e.Container, e.Field, ErrKeyNotFound)
}

// IndexError is returned when a list position is outside [0, Len).
type IndexError struct {
	Container string
	Index     int
	Len       int
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d: %v (len %d)", e.Container, e.Index, ErrIndexOutOfRange, e.Len)
}

// StructuralConflictError is returned when an operation would silently
// replace existing content of a different shape, e.g. re-initializing a
// populated list.
type StructuralConflictError struct {
	Container string
	Msg       string
}

func conflictErrf(name string, format string, args ...any) error {
	return &StructuralConflictError{Container: name, Msg: fmt.Sprintf(format, args...)}
}

func (e *StructuralConflictError) Unwrap() error {
	return ErrStructuralConflict
}

func (e *StructuralConflictError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Container)
	buf.WriteString(": ")
	buf.WriteString(ErrStructuralConflict.Error())
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	return buf.String()
}
