package recmap

import (
	"fmt"
	"strconv"
)

// ResolveError reports why a path could not be resolved. Depth is the number
// of segments successfully descended before the failure.
type ResolveError struct {
	Code  string
	Path  Path
	Depth int
	Got   string // type name of the node that blocked descent
}

func (e *ResolveError) Error() string {
	at := e.Path[:min(e.Depth+1, len(e.Path))]
	if e.Got != "" {
		return fmt.Sprintf("%s at %s (got %s)", e.Code, at, e.Got)
	}
	return fmt.Sprintf("%s at %s", e.Code, at)
}

// Resolve walks root along path. A key segment selects a map entry; an index
// segment selects a sequence item, or the entry named by its decimal form in
// a map. The tree is only read.
func Resolve(root *Node, path Path) (*Node, error) {
	cur := root
	for depth, seg := range path {
		if cur == nil {
			return nil, &ResolveError{Code: CodePathNotFound, Path: path, Depth: depth}
		}
		switch cur.kind {
		case NodeMap:
			key := seg.Key
			if seg.IsIndex {
				key = strconv.Itoa(seg.Index)
			}
			next, ok := cur.values[key]
			if !ok {
				return nil, &ResolveError{Code: CodePathNotFound, Path: path, Depth: depth}
			}
			cur = next
		case NodeSequence:
			if !seg.IsIndex {
				return nil, &ResolveError{Code: CodeTypeMismatch, Path: path, Depth: depth, Got: cur.TypeName()}
			}
			if seg.Index < 0 || seg.Index >= len(cur.items) {
				return nil, &ResolveError{Code: CodeIndexOutOfRange, Path: path, Depth: depth, Got: strconv.Itoa(len(cur.items))}
			}
			cur = cur.items[seg.Index]
		default:
			return nil, &ResolveError{Code: CodeTypeMismatch, Path: path, Depth: depth, Got: cur.TypeName()}
		}
	}
	if cur == nil {
		return nil, &ResolveError{Code: CodePathNotFound, Path: path, Depth: len(path)}
	}
	return cur, nil
}

// ResolveString is Resolve with a dotted path.
func ResolveString(root *Node, path string) (*Node, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return Resolve(root, p)
}

func resolveIssue(err error, field Path) Issue {
	re, ok := err.(*ResolveError)
	if !ok {
		return Issue{Path: field.String(), Field: field.String(), Code: CodeParseError, Message: err.Error(), Cause: err}
	}
	params := map[string]any{}
	if len(re.Path) > 0 {
		params["segment"] = re.Path[min(re.Depth, len(re.Path)-1)].String()
	}
	if re.Got != "" {
		params["got"] = re.Got
	}
	is := IssueAt(re.Path, field, re.Code, params)
	is.Cause = err
	return is
}
