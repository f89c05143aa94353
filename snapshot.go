package kvtree

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Snapshot exports the root container name as msgpack. Maps are written with
// sorted keys, so equal content yields equal bytes. Integers outside the
// int64 range are written as bin values holding their tagged encoding.
func (db *DB) Snapshot(name string) ([]byte, error) {
	if err := validateSelector(name); err != nil {
		return nil, err
	}
	var data []byte
	err := db.view(func(tx *tx) error {
		t, err := readTree(tx, name)
		if err != nil {
			return err
		}
		data, err = encodeSnapshot(t)
		return err
	})
	return data, err
}

// Restore replaces the root container name with the content of a snapshot,
// as one batch.
func (db *DB) Restore(name string, data []byte) error {
	if err := validateSelector(name); err != nil {
		return err
	}
	t, err := decodeSnapshot(data)
	if err != nil {
		return err
	}
	return db.update("restore", func(tx *tx) error {
		return replaceRoot(tx, name, t)
	})
}

func encodeSnapshot(t *tree) ([]byte, error) {
	var bb bytesBuilder
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(&bb)
	if err := encodeSnapshotTree(enc, t); err != nil {
		return nil, fmt.Errorf("kvtree: snapshot: %w", err)
	}
	return bb.Buf, nil
}

func encodeSnapshotTree(enc *msgpack.Encoder, t *tree) error {
	switch t.kind {
	case KindList:
		if err := enc.EncodeArrayLen(len(t.items)); err != nil {
			return err
		}
		for _, item := range t.items {
			if err := encodeSnapshotTree(enc, item); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if err := enc.EncodeMapLen(len(t.keys)); err != nil {
			return err
		}
		for _, k := range t.keys {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := encodeSnapshotTree(enc, t.fields[k]); err != nil {
				return err
			}
		}
		return nil
	case KindNull:
		return enc.EncodeNil()
	case KindBool:
		return enc.EncodeBool(t.scalar.b)
	case KindString:
		return enc.EncodeString(t.scalar.s)
	case KindInt:
		if t.scalar.IsInt64() {
			return enc.EncodeInt(t.scalar.i)
		}
		return enc.EncodeBytes(appendScalar(nil, t.scalar))
	default:
		panic("encodeSnapshotTree: invalid tree")
	}
}

func decodeSnapshot(data []byte) (*tree, error) {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(&r)

	t, err := decodeSnapshotTree(dec)
	if err != nil {
		return nil, dataErrf(data, ErrMalformed, "invalid snapshot: %v", err)
	}
	if r.Len() != 0 {
		return nil, dataErrf(data, ErrMalformed, "invalid snapshot: %d trailing bytes", r.Len())
	}
	return t, nil
}

func decodeSnapshotTree(dec *msgpack.Decoder) (*tree, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		items := make([]*tree, 0, n)
		for range n {
			item, err := decodeSnapshotTree(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return newListTree(items), nil

	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		t := newMapTree()
		for range n {
			k, err := dec.DecodeString()
			if err != nil {
				return nil, err
			}
			if err := validateSelector(k); err != nil {
				return nil, err
			}
			ft, err := decodeSnapshotTree(dec)
			if err != nil {
				return nil, err
			}
			t.setField(k, ft)
		}
		t.sortKeys()
		return t, nil

	case c == msgpcode.Bin8 || c == msgpcode.Bin16 || c == msgpcode.Bin32:
		b, err := dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		v, err := Decode(b)
		if err != nil {
			return nil, err
		}
		return scalarTree(v), nil

	default:
		v, err := dec.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		sv, err := scalarOf(v)
		if err != nil {
			return nil, err
		}
		return scalarTree(sv), nil
	}
}
