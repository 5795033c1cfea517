package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Slug turns a display name into the form used inside a key segment.
// Only spaces change; case and every other character pass through.
func Slug(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}

// DisplayName renders a key for people: "002-desk/1-cool-jazz" -> "desk / cool jazz".
func DisplayName(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		if _, rest, ok := strings.Cut(part, "-"); ok {
			part = rest
		}
		parts[i] = strings.ReplaceAll(part, "-", " ")
	}
	return strings.Join(parts, " / ")
}

// PowerOfTen reports k when n == 10^k for some k >= 1.
// It fires only on the boundary values that widen a sibling group.
func PowerOfTen(n uint64) (int, bool) {
	if n < 10 {
		return 0, false
	}
	k := 0
	for n > 1 {
		if n%10 != 0 {
			return 0, false
		}
		n /= 10
		k++
	}
	return k, true
}

// Segment formats one key segment with the index zero-padded to width.
func Segment(index uint64, width int, slug string) string {
	return fmt.Sprintf("%0*d-%s", width, index, slug)
}

// ParseSegment splits "<index>-<slug>" and returns both parts plus the
// width of the numeric prefix as written.
func ParseSegment(seg string) (index uint64, width int, slug string, err error) {
	num, slug, ok := strings.Cut(seg, "-")
	if !ok || num == "" {
		return 0, 0, "", fmt.Errorf("segment %q: missing <index>- prefix", seg)
	}
	index, err = strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, 0, "", fmt.Errorf("segment %q: %w", seg, err)
	}
	return index, len(num), slug, nil
}

// LastSegment returns the final path segment of key.
func LastSegment(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// ParentKey returns the key of the enclosing node, or "" at the root.
func ParentKey(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return ""
}

// Index returns the numeric index of key's final segment.
func Index(key string) (uint64, error) {
	index, _, _, err := ParseSegment(LastSegment(key))
	return index, err
}

// Join builds a child key under parent ("" means the root).
func Join(parent, seg string) string {
	if parent == "" {
		return seg
	}
	return parent + "/" + seg
}

// ValidName reports why name cannot become a node, or nil.
func ValidName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("empty name")
	case strings.ContainsAny(name, "/\\"):
		return fmt.Errorf("name %q contains a path separator", name)
	case strings.ContainsAny(name, "\n\r"):
		return fmt.Errorf("name %q spans lines", name)
	}
	return nil
}
