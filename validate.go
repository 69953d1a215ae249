package recmap

// Validate checks root against every field of rec and returns all problems in
// field order (elements of one field in row-major order). An empty result
// means Encode will succeed. Options.FailFast stops at the first issue.
func Validate(rec *Record, root *Node, opts ...Options) Issues {
	c := newCoercer(lastOpt(opts), nil)
	c.record(rec, root)
	if len(c.issues) == 0 {
		return nil
	}
	return c.issues
}

// ValidateField checks a single field by dotted path. A path that names no
// value-carrying field yields path_not_found.
func ValidateField(rec *Record, root *Node, path string, opts ...Options) Issues {
	f, ok := rec.Field(path)
	if !ok || f.Kind == KindStruct {
		p, _ := ParsePath(path)
		return Issues{IssueAt(p, p, CodePathNotFound, map[string]any{"field": path})}
	}
	c := newCoercer(lastOpt(opts), nil)
	c.field(f, root)
	if len(c.issues) == 0 {
		return nil
	}
	return c.issues
}
