package layout

import (
	"errors"
	"fmt"

	"github.com/reoring/recmap"
)

// reader collects description issues while walking the tree.
type reader struct {
	issues   recmap.Issues
	wordSwap bool
}

func (r *reader) add(p recmap.Path, code, hint string) {
	is := recmap.IssueAt(p, nil, code, nil)
	is.Hint = hint
	r.issues = recmap.AppendIssues(r.issues, is)
}

func (r *reader) missing(p recmap.Path, key string) {
	r.issues = recmap.AppendIssues(r.issues, recmap.IssueAt(p.Field(key), nil, recmap.CodePathNotFound, map[string]any{"segment": key}))
}

func (r *reader) mismatch(p recmap.Path, want string, got *recmap.Node) {
	r.issues = recmap.AppendIssues(r.issues, recmap.IssueAt(p, nil, recmap.CodeTypeMismatch, map[string]any{"want": want, "got": got.TypeName()}))
}

// unknown flags keys outside allowed; typos in descriptions would otherwise
// silently change the layout.
func (r *reader) unknown(n *recmap.Node, p recmap.Path, allowed ...string) {
	for _, k := range n.Keys() {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			r.add(p.Field(k), recmap.CodeSchemaInvalid, fmt.Sprintf("unknown key %q", k))
		}
	}
}

func (r *reader) reqString(n *recmap.Node, p recmap.Path, key string) (string, bool) {
	if _, ok := n.Get(key); !ok {
		r.missing(p, key)
		return "", false
	}
	return r.optString(n, p, key)
}

func (r *reader) optString(n *recmap.Node, p recmap.Path, key string) (string, bool) {
	v, ok := n.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.Str()
	if !ok {
		r.mismatch(p.Field(key), "string", v)
		return "", false
	}
	return s, true
}

func (r *reader) optUint(n *recmap.Node, p recmap.Path, key string, limit uint64) (uint64, bool) {
	v, ok := n.Get(key)
	if !ok {
		return 0, false
	}
	u, ok := v.Uint()
	if !ok {
		r.mismatch(p.Field(key), "non-negative integer", v)
		return 0, false
	}
	if u > limit {
		r.add(p.Field(key), recmap.CodeSchemaInvalid, fmt.Sprintf("%d exceeds %d", u, limit))
		return 0, false
	}
	return u, true
}

func (r *reader) optBool(n *recmap.Node, p recmap.Path, key string) (bool, bool) {
	v, ok := n.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.BoolValue()
	if !ok {
		r.mismatch(p.Field(key), "bool", v)
		return false, false
	}
	return b, true
}

// schemaError turns a NewRecord failure into an issue on the record entry.
func (r *reader) schemaError(p recmap.Path, err error) {
	var se *recmap.SchemaError
	if !errors.As(err, &se) {
		r.add(p, recmap.CodeSchemaInvalid, err.Error())
		return
	}
	is := recmap.IssueAt(p, nil, se.Code, map[string]any{"field": se.Field})
	is.Field = se.Field
	is.Hint = se.Message
	is.Cause = err
	r.issues = recmap.AppendIssues(r.issues, is)
}
