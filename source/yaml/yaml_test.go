package yaml_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recmap"
	yamlsrc "github.com/reoring/recmap/source/yaml"
)

func decode(t *testing.T, doc string, opts ...recmap.SourceOpt) (*recmap.Node, recmap.Issues, error) {
	t.Helper()
	src, err := yamlsrc.NewBytes([]byte(doc))
	require.NoError(t, err)
	return recmap.DecodeSource(src, opts...)
}

func TestNewBytes_Scalars(t *testing.T) {
	root, _, err := decode(t, `
hex: 0x1F
octal: 0o17
legacy_octal: 017
under: 1_000
big: 18446744073709551615
float: 3.0
inf: .inf
yes: true
none: ~
text: "42"
when: 2024-01-02
list: [1, 2]
`)
	require.NoError(t, err)

	b, err := json.Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"hex": 31, "octal": 15, "legacy_octal": 15, "under": 1000,
		"big": 18446744073709551615, "float": 3.0, "inf": "+Inf",
		"yes": true, "none": null, "text": "42", "when": "2024-01-02",
		"list": [1, 2]
	}`, string(b))

	f := mustGet(t, root, "float")
	assert.Equal(t, recmap.ScalarFloat, f.ScalarKind(), "3.0 stays a float")
	assert.Equal(t, []string{"hex", "octal", "legacy_octal", "under", "big", "float", "inf", "yes", "none", "text", "when", "list"}, root.Keys())
}

func TestNewBytes_DuplicateKeyPosition(t *testing.T) {
	doc := "a: 1\nb:\n  id: 1\n  id: 2\n"
	_, _, err := decode(t, doc)
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok, "got %v", err)
	require.Len(t, iss, 1)
	assert.Equal(t, recmap.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "b.id", iss[0].Path)
	assert.Equal(t, 4, iss[0].Params["line"])
	assert.Equal(t, 3, iss[0].Params["col"])
	assert.Contains(t, iss[0].Hint, "first at 3:3")

	_, warnings, err := decode(t, doc, recmap.SourceOpt{OnDuplicateKey: recmap.Warn})
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestNewBytes_Anchors(t *testing.T) {
	root, _, err := decode(t, "base: &b {x: 1}\ncopy: *b\n")
	require.NoError(t, err)
	x := mustGet(t, mustGet(t, root, "copy"), "x")
	v, _ := x.Int()
	assert.Equal(t, int64(1), v)
}

func TestNewBytes_Errors(t *testing.T) {
	_, err := yamlsrc.NewBytes([]byte(""))
	assert.ErrorContains(t, err, "empty document")

	_, err = yamlsrc.NewBytes([]byte("a: [1, 2"))
	assert.Error(t, err)

	_, err = yamlsrc.NewReader(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty document")
}

func TestNewReader(t *testing.T) {
	src, err := yamlsrc.NewReader(strings.NewReader("counter: 7\n"))
	require.NoError(t, err)
	root, _, err := recmap.DecodeSource(src)
	require.NoError(t, err)
	v, _ := mustGet(t, root, "counter").Int()
	assert.Equal(t, int64(7), v)
}

func mustGet(t *testing.T, n *recmap.Node, key string) *recmap.Node {
	t.Helper()
	v, ok := n.Get(key)
	require.True(t, ok, key)
	return v
}
