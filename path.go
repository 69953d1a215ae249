package recmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: a map key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a map key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Idx returns a sequence index segment.
func Idx(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path addresses a node in a value tree.
type Path []Segment

// ParsePath parses a dotted path.
// Supports: "id", "device.id", "matrix.1.0", "items[2].price".
// Segments made only of digits are indices.
func ParsePath(path string) (Path, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	var out Path
	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}

		name := part
		var idx []int
		// Bracket notation: name[1][2]
		if i := strings.IndexByte(part, '['); i >= 0 {
			name = part[:i]
			rest := part[i:]
			for rest != "" {
				if rest[0] != '[' {
					return nil, fmt.Errorf("invalid path %q: malformed index in %q", path, part)
				}
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					return nil, fmt.Errorf("invalid path %q: unterminated index in %q", path, part)
				}
				n, err := strconv.Atoi(rest[1:end])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("invalid path %q: bad index %q", path, rest[1:end])
				}
				idx = append(idx, n)
				rest = rest[end+1:]
			}
		}

		if name != "" {
			if isDigits(name) {
				n, err := strconv.Atoi(name)
				if err != nil {
					return nil, fmt.Errorf("invalid path %q: %w", path, err)
				}
				out = append(out, Idx(n))
			} else {
				out = append(out, Key(name))
			}
		} else if len(idx) == 0 {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}
		for _, n := range idx {
			out = append(out, Idx(n))
		}
	}
	return out, nil
}

// MustParsePath is ParsePath for literals known to be valid.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the dotted form.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for i, s := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Pointer renders the path as a JSON Pointer (RFC 6901).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.String(), "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Field appends a key segment and returns a new path.
func (p Path) Field(name string) Path { return p.append(Key(name)) }

// Index appends an index segment and returns a new path.
func (p Path) Index(i int) Path { return p.append(Idx(i)) }

// Join appends other to p and returns a new path.
func (p Path) Join(other Path) Path {
	out := make(Path, 0, len(p)+len(other))
	out = append(out, p...)
	return append(out, other...)
}

// HasPrefix reports whether prefix is a leading part of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both paths address the same node.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

func (p Path) append(s Segment) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)
	return append(out, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
