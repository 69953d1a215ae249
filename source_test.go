package recmap_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recmap"
)

func TestDecodeSource_JSON(t *testing.T) {
	root, warnings, err := recmap.DecodeSource(recmap.JSONBytes([]byte(
		`{"b": 1, "a": [true, null, "x", 1.5, -3, 18446744073709551615]}`)))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"b", "a"}, root.Keys())

	a, _ := root.Get("a")
	require.Equal(t, 6, a.Len())
	kinds := make([]recmap.ScalarKind, 0, a.Len())
	for _, it := range a.Items() {
		kinds = append(kinds, it.ScalarKind())
	}
	assert.Equal(t, []recmap.ScalarKind{
		recmap.ScalarBool, recmap.ScalarNull, recmap.ScalarString,
		recmap.ScalarFloat, recmap.ScalarInt, recmap.ScalarInt,
	}, kinds)
	big, _ := a.Index(5)
	u, ok := big.Uint()
	require.True(t, ok)
	assert.Equal(t, uint64(18446744073709551615), u)
}

func TestDecodeSource_DuplicateKeys(t *testing.T) {
	doc := []byte(`{"cfg": {"id": 1, "id": 2}}`)

	_, _, err := recmap.DecodeSource(recmap.JSONBytes(doc))
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok, "got %v", err)
	require.Len(t, iss, 1)
	assert.Equal(t, recmap.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "cfg.id", iss[0].Path)

	root, warnings, err := recmap.DecodeSource(recmap.JSONBytes(doc), recmap.SourceOpt{OnDuplicateKey: recmap.Warn})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, recmap.CodeDuplicateKey, warnings[0].Code)
	v, _ := mustResolve(t, root, "cfg.id").Int()
	assert.Equal(t, int64(2), v, "last value wins")

	_, warnings, err = recmap.DecodeSource(recmap.JSONBytes(doc), recmap.SourceOpt{OnDuplicateKey: recmap.Ignore})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestDecodeSource_MaxDepth(t *testing.T) {
	doc := []byte(`{"a": {"b": {"c": 1}}}`)
	_, _, err := recmap.DecodeSource(recmap.JSONBytes(doc), recmap.SourceOpt{MaxDepth: 2})
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, recmap.CodeParseError, iss[0].Code)
	assert.Contains(t, iss[0].Hint, "max depth 2")

	_, _, err = recmap.DecodeSource(recmap.JSONBytes(doc), recmap.SourceOpt{MaxDepth: 3})
	assert.NoError(t, err)
}

func TestDecodeSource_MaxBytes(t *testing.T) {
	doc := `{"s": "` + strings.Repeat("x", 4096) + `"}`
	_, _, err := recmap.DecodeSource(recmap.JSONReader(strings.NewReader(doc)), recmap.SourceOpt{MaxBytes: 64})
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, recmap.CodeTruncated, iss[0].Code)
}

func TestDecodeSource_Malformed(t *testing.T) {
	for _, doc := range []string{``, `{"a": }`, `{"a": 1`, `[1, 2`} {
		_, _, err := recmap.DecodeSource(recmap.JSONBytes([]byte(doc)))
		iss, ok := recmap.AsIssues(err)
		require.True(t, ok, "%q: got %v", doc, err)
		assert.Equal(t, recmap.CodeParseError, iss[0].Code, doc)
	}
}
