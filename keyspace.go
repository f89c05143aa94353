package kvtree

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator joins a container's key and a child selector into the child's
// flat key. It is reserved: names and map fields must not contain it.
const Separator = '/'

// countSelector names the list length record. It never collides with an
// element key because list selectors are decimal.
const countSelector = "count"

func childKey(parent, sel string) string {
	var buf strings.Builder
	buf.Grow(len(parent) + 1 + len(sel))
	buf.WriteString(parent)
	buf.WriteByte(Separator)
	buf.WriteString(sel)
	return buf.String()
}

func indexKey(parent string, i int) string {
	return childKey(parent, strconv.Itoa(i))
}

func countKey(parent string) string {
	return childKey(parent, countSelector)
}

// subtreePrefix is shared by every descendant of name, and by nothing else.
func subtreePrefix(name string) string {
	return name + string(Separator)
}

// isDirectChild reports whether key is exactly one segment below parent.
// Keys of a nested container's own subtree carry a further separator.
func isDirectChild(parent, key string) bool {
	rest, ok := strings.CutPrefix(key, subtreePrefix(parent))
	return ok && rest != "" && strings.IndexByte(rest, Separator) < 0
}

// lastSegment returns the selector part of a child key.
func lastSegment(key string) string {
	if i := strings.LastIndexByte(key, Separator); i >= 0 {
		return key[i+1:]
	}
	return key
}

func parentName(key string) string {
	if i := strings.LastIndexByte(key, Separator); i >= 0 {
		return key[:i]
	}
	return ""
}

func isRootName(name string) bool {
	return strings.IndexByte(name, Separator) < 0
}

func validateSelector(sel string) error {
	if sel == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSelector)
	}
	if strings.IndexByte(sel, Separator) >= 0 {
		return fmt.Errorf("%w: %q contains reserved %q", ErrInvalidSelector, sel, Separator)
	}
	return nil
}
