package kvtree

import (
	"encoding/binary"
	"io"
)

// bytesBuilder is an io.Writer that appends to Buf.
type bytesBuilder struct {
	Buf []byte
}

var _ io.Writer = (*bytesBuilder)(nil)

func (bb *bytesBuilder) Write(b []byte) (int, error) {
	bb.Buf = append(bb.Buf, b...)
	return len(b), nil
}

func appendUvarint(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}

// appendVarbytes appends v prefixed with its length.
func appendVarbytes(buf []byte, v []byte) []byte {
	buf = appendUvarint(buf, uint64(len(v)))
	return append(buf, v...)
}
