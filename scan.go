package kvtree

import (
	"bytes"
	"context"
	"log/slog"
)

const (
	debugLogRawScans = false
)

// prefixRange selects every key starting with Prefix, in ascending key order
// or, when Reverse is set, in descending order.
type prefixRange struct {
	Prefix  []byte
	Reverse bool
}

func (r *prefixRange) start(bcur storageCursor, logger *slog.Logger) ([]byte, []byte) {
	var k, v []byte
	if r.Reverse {
		k, v = bcur.SeekLast(r.Prefix)
		if debugLogRawScans {
			logger.LogAttrs(context.Background(), slog.LevelDebug, "SEEK to last", hexAttr("prefix", r.Prefix), hexAttr("key", k))
		}
	} else {
		k, v = bcur.Seek(r.Prefix)
		if debugLogRawScans {
			logger.LogAttrs(context.Background(), slog.LevelDebug, "SEEK to first", hexAttr("prefix", r.Prefix), hexAttr("key", k))
		}
	}
	if k != nil && r.match(k) {
		return k, v
	}
	return nil, nil
}

func (r *prefixRange) next(bcur storageCursor, logger *slog.Logger) ([]byte, []byte) {
	var k, v []byte
	if r.Reverse {
		k, v = bcur.Prev()
	} else {
		k, v = bcur.Next()
	}
	if debugLogRawScans {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "ADVANCE", hexAttr("key", k), slog.Bool("reverse", r.Reverse))
	}
	if k != nil && r.match(k) {
		return k, v
	}
	return nil, nil
}

func (r *prefixRange) match(k []byte) bool {
	return bytes.HasPrefix(k, r.Prefix)
}

func (r *prefixRange) newCursor(bcur storageCursor, logger *slog.Logger) *rangeCursor {
	return &rangeCursor{rang: *r, bcur: bcur, logger: logger}
}

// rangeCursor walks a prefixRange. Key and Value are only valid until the
// next call to Next and until the end of the transaction.
type rangeCursor struct {
	rang   prefixRange
	bcur   storageCursor
	logger *slog.Logger
	k, v   []byte
	init   bool
}

func (c *rangeCursor) Next() bool {
	if c.init {
		c.k, c.v = c.rang.next(c.bcur, c.logger)
	} else {
		c.init = true
		c.k, c.v = c.rang.start(c.bcur, c.logger)
	}
	return c.k != nil
}

func (c *rangeCursor) Key() []byte   { return c.k }
func (c *rangeCursor) Value() []byte { return c.v }
