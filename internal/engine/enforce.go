package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation; the root package converts
// it into a full Issue. Path is dotted ("" for the document root).
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
	Line    int
	Col     int
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string {
	if e.Path == "" {
		return e.Code + ": " + e.Message
	}
	return e.Code + " at " + e.Path + ": " + e.Message
}

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives non-fatal findings (duplicate keys under DupWarn).
	IssueSink func(SimpleIssue)
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind      containerKind
	seg       string // segment addressing this container in its parent
	keys      map[string]Token
	nextIndex int
	pending   string // key awaiting its value
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		seg := e.valueSegment()
		f := frame{kind: kindArray, seg: seg}
		if tok.Kind == KindBeginObject {
			f.kind = kindObject
			f.keys = map[string]Token{}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fail(tok, "parse_error", "max depth "+strconv.Itoa(e.opt.MaxDepth)+" exceeded")
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 && e.stack[n-1].kind == kindObject {
			top := &e.stack[n-1]
			top.pending = tok.String
			if first, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
				msg := "key '" + tok.String + "' duplicated"
				if p := tok.Pos(); p != "" && first.Line > 0 {
					msg += " at " + p + " (first at " + first.Pos() + ")"
				}
				si := e.issue(tok, "duplicate_key", msg)
				if e.opt.OnDuplicate == DupError {
					return Token{}, IssueError{si}
				}
				if e.opt.IssueSink != nil {
					e.opt.IssueSink(si)
				}
			} else if !dup {
				top.keys[tok.String] = tok
			}
		}
	default:
		e.valueSegment()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return Token{}, e.fail(tok, "truncated", "max bytes "+strconv.FormatInt(e.opt.MaxBytes, 10)+" exceeded")
		}
	}
	return tok, nil
}

// valueSegment consumes the parent slot for a value and returns its segment.
func (e *enforcingTokenSource) valueSegment() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.kind == kindArray {
		seg := strconv.Itoa(top.nextIndex)
		top.nextIndex++
		return seg
	}
	seg := top.pending
	top.pending = ""
	return seg
}

func (e *enforcingTokenSource) path() string {
	segs := make([]string, 0, len(e.stack)+1)
	for i, f := range e.stack {
		if i > 0 || f.seg != "" {
			segs = append(segs, f.seg)
		}
	}
	if n := len(e.stack); n > 0 && e.stack[n-1].pending != "" {
		segs = append(segs, e.stack[n-1].pending)
	}
	return strings.Join(segs, ".")
}

func (e *enforcingTokenSource) issue(tok Token, code, msg string) SimpleIssue {
	return SimpleIssue{Code: code, Path: e.path(), Message: msg, Line: tok.Line, Col: tok.Col}
}

func (e *enforcingTokenSource) fail(tok Token, code, msg string) error {
	return IssueError{e.issue(tok, code, msg)}
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
