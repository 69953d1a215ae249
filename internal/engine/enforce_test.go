package engine

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ts TokenSource) error {
	for {
		if _, err := ts.NextToken(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// {"outer": [{"k": 1, "k": 2}]}
func dupStream() []Token {
	e := &Emitter{}
	e.Emit(Token{Kind: KindBeginObject, Line: 1, Col: 1})
	e.Emit(Token{Kind: KindKey, String: "outer", Line: 1, Col: 2})
	e.Emit(Token{Kind: KindBeginArray, Line: 1, Col: 10})
	e.Emit(Token{Kind: KindBeginObject, Line: 2, Col: 1})
	e.Emit(Token{Kind: KindKey, String: "k", Line: 2, Col: 2})
	e.Emit(Token{Kind: KindNumber, Number: "1", Line: 2, Col: 5})
	e.Emit(Token{Kind: KindKey, String: "k", Line: 3, Col: 2})
	e.Emit(Token{Kind: KindNumber, Number: "2", Line: 3, Col: 5})
	e.Emit(Token{Kind: KindEndObject})
	e.Emit(Token{Kind: KindEndArray})
	e.Emit(Token{Kind: KindEndObject})
	return e.Tokens
}

func TestEnforce_DuplicateError(t *testing.T) {
	err := drain(WrapWithEnforcement(NewSliceSource(dupStream(), -1), EnforceOptions{OnDuplicate: DupError}))
	var ie IssueError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, "duplicate_key", ie.Code)
	assert.Equal(t, "outer.0.k", ie.Path)
	assert.Equal(t, 3, ie.Line)
	assert.Contains(t, ie.Message, "first at 2:2")
}

func TestEnforce_DuplicateWarn(t *testing.T) {
	var got []SimpleIssue
	err := drain(WrapWithEnforcement(NewSliceSource(dupStream(), -1), EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "outer.0.k", got[0].Path)

	got = nil
	err = drain(WrapWithEnforcement(NewSliceSource(dupStream(), -1), EnforceOptions{
		IssueSink: func(si SimpleIssue) { got = append(got, si) },
	}))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnforce_MaxDepth(t *testing.T) {
	err := drain(WrapWithEnforcement(NewSliceSource(dupStream(), -1), EnforceOptions{MaxDepth: 2}))
	var ie IssueError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, "parse_error", ie.Code)
	assert.Equal(t, "outer.0", ie.Path)
}

func TestEnforce_MaxBytes(t *testing.T) {
	toks := []Token{
		{Kind: KindBeginArray, Offset: 0},
		{Kind: KindString, String: "aaaa", Offset: 1},
		{Kind: KindString, String: "bbbb", Offset: 100},
		{Kind: KindEndArray, Offset: 106},
	}
	err := drain(WrapWithEnforcement(NewSliceSource(toks, 107), EnforceOptions{MaxBytes: 50}))
	var ie IssueError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, "truncated", ie.Code)
}

func TestSliceSource(t *testing.T) {
	s := NewSliceSource([]Token{{Kind: KindNull, Offset: 3}}, 10)
	tok, err := s.NextToken()
	require.NoError(t, err)
	assert.Equal(t, KindNull, tok.Kind)
	_, err = s.NextToken()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, int64(10), s.Location())
}

func TestToken_Pos(t *testing.T) {
	assert.Equal(t, "4:2", Token{Line: 4, Col: 2}.Pos())
	assert.Equal(t, "offset 9", Token{Offset: 9}.Pos())
	assert.Equal(t, "", Token{Offset: -1}.Pos())
}
