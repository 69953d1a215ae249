package recmap

import (
	"errors"
	"fmt"
	"io"

	eng "github.com/reoring/recmap/internal/engine"
	jsonsrc "github.com/reoring/recmap/source/json"
)

// TokenKind enumerates token kinds of a Source.
type TokenKind = eng.Kind

const (
	TokenBeginObject TokenKind = eng.KindBeginObject
	TokenEndObject   TokenKind = eng.KindEndObject
	TokenBeginArray  TokenKind = eng.KindBeginArray
	TokenEndArray    TokenKind = eng.KindEndArray
	TokenKey         TokenKind = eng.KindKey
	TokenString      TokenKind = eng.KindString
	TokenNumber      TokenKind = eng.KindNumber
	TokenBool        TokenKind = eng.KindBool
	TokenNull        TokenKind = eng.KindNull
)

// Token describes a token in the input stream.
type Token = eng.Token

// Source abstracts over document formats. Drivers under source/ produce
// Sources; DecodeSource turns one into a value tree.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return jsonsrc.NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return jsonsrc.NewBytes(b) }

// DefaultSourceOpt rejects duplicate keys and caps nesting at 256 levels.
func DefaultSourceOpt() SourceOpt {
	return SourceOpt{OnDuplicateKey: Error, MaxDepth: 256}
}

// DecodeSource reads one document from src into an ordered value tree.
// Findings that do not stop decoding (duplicate keys under Warn) are returned
// as warnings; failures come back as Issues.
func DecodeSource(src Source, opts ...SourceOpt) (*Node, Issues, error) {
	opt := DefaultSourceOpt()
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}

	var warnings Issues
	enforced := eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   func(si eng.SimpleIssue) { warnings = append(warnings, fromSimpleIssue(si)) },
	})

	tok, err := enforced.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, warnings, Issues{parseIssue(errors.New("empty document"))}
		}
		return nil, warnings, sourceError(err)
	}
	n, err := buildNode(enforced, tok)
	if err != nil {
		return nil, warnings, sourceError(err)
	}
	return n, warnings, nil
}

func buildNode(src eng.TokenSource, tok Token) (*Node, error) {
	switch tok.Kind {
	case TokenBeginObject:
		m := Map()
		for {
			kt, err := src.NextToken()
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			if kt.Kind == TokenEndObject {
				return m, nil
			}
			if kt.Kind != TokenKey {
				return nil, fmt.Errorf("expected key, got %s", kt.Kind)
			}
			vt, err := src.NextToken()
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			v, err := buildNode(src, vt)
			if err != nil {
				return nil, err
			}
			m.set(kt.String, v)
		}
	case TokenBeginArray:
		s := Seq()
		for {
			it, err := src.NextToken()
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			if it.Kind == TokenEndArray {
				return s, nil
			}
			v, err := buildNode(src, it)
			if err != nil {
				return nil, err
			}
			s.items = append(s.items, v)
		}
	case TokenString:
		return String(tok.String), nil
	case TokenNumber:
		return Number(tok.Number)
	case TokenBool:
		return Bool(tok.Bool), nil
	case TokenNull:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected %s token", tok.Kind)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func sourceError(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		is := fromSimpleIssue(ie.SimpleIssue)
		is.Cause = err
		return Issues{is}
	}
	return Issues{parseIssue(err)}
}

func parseIssue(err error) Issue {
	is := IssueAt(nil, nil, CodeParseError, nil)
	is.Message += ": " + err.Error()
	is.Cause = err
	return is
}

func fromSimpleIssue(si eng.SimpleIssue) Issue {
	params := map[string]any{}
	if si.Line > 0 {
		params["line"] = si.Line
		params["col"] = si.Col
	}
	p, _ := ParsePath(si.Path)
	is := IssueAt(p, nil, si.Code, params)
	is.Hint = si.Message
	return is
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}
