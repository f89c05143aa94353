package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/andreyvit/kvtree"
)

// parseValue parses a JSON argument into values kvtree can store. Numbers
// must be integers; they may be arbitrarily large.
func parseValue(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON value: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid JSON value: trailing data")
	}
	return convertNumbers(v)
}

func parseValueBytes(data []byte) (any, error) {
	return parseValue(string(bytes.TrimSpace(data)))
}

func convertNumbers(v any) (any, error) {
	switch v := v.(type) {
	case json.Number:
		n, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return nil, fmt.Errorf("unsupported number %s: only integers can be stored", v)
		}
		return n, nil
	case []any:
		for i, item := range v {
			c, err := convertNumbers(item)
			if err != nil {
				return nil, err
			}
			v[i] = c
		}
		return v, nil
	case map[string]any:
		for k, item := range v {
			c, err := convertNumbers(item)
			if err != nil {
				return nil, err
			}
			v[k] = c
		}
		return v, nil
	default:
		return v, nil
	}
}

// nativeOf exports a looked-up value: containers are read in full.
func nativeOf(v kvtree.Value) (any, error) {
	switch v.Kind() {
	case kvtree.KindList:
		return v.List().Export()
	case kvtree.KindMap:
		return v.Map().Export()
	default:
		return v.Interface(), nil
	}
}
