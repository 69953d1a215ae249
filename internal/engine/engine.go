package engine

import (
	"fmt"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "begin_object"
	case KindEndObject:
		return "end_object"
	case KindBeginArray:
		return "begin_array"
	case KindEndArray:
		return "end_array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token represents a streaming token. Offset is the approximate input byte
// offset (-1 if unknown); Line and Col are 1-based positions when the driver
// tracks them (0 otherwise).
type Token struct {
	Kind   Kind
	String string
	Number string // decimal or float literal, never hex/octal
	Bool   bool
	Offset int64
	Line   int
	Col    int
}

// Pos renders the token position for messages ("" when unknown).
func (t Token) Pos() string {
	if t.Line > 0 {
		return fmt.Sprintf("%d:%d", t.Line, t.Col)
	}
	if t.Offset >= 0 {
		return fmt.Sprintf("offset %d", t.Offset)
	}
	return ""
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SliceSource replays tokens produced by tree-based drivers (YAML, TOML) so
// they share the streaming enforcement path with JSON.
type SliceSource struct {
	toks []Token
	pos  int
	size int64
}

// NewSliceSource returns a TokenSource over toks. size is the input length,
// reported by Location once the stream is drained.
func NewSliceSource(toks []Token, size int64) *SliceSource {
	return &SliceSource{toks: toks, size: size}
}

func (s *SliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

// Location reports the offset of the last token, or the input size at EOF.
func (s *SliceSource) Location() int64 {
	if s.pos >= len(s.toks) {
		return s.size
	}
	if s.pos > 0 {
		return s.toks[s.pos-1].Offset
	}
	return 0
}

// Emitter accumulates tokens while a driver walks its own parse tree.
type Emitter struct {
	Tokens []Token
}

// Emit appends a token.
func (e *Emitter) Emit(t Token) { e.Tokens = append(e.Tokens, t) }

// Source returns the accumulated tokens as a TokenSource.
func (e *Emitter) Source(size int64) *SliceSource { return NewSliceSource(e.Tokens, size) }
