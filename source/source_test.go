package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recmap"
	"github.com/reoring/recmap/source"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]source.Format{
		"json": source.JSON, ".JSON": source.JSON,
		"yaml": source.YAML, "yml": source.YAML,
		".toml": source.TOML,
	} {
		got, err := source.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := source.ParseFormat("xml")
	assert.True(t, errors.Is(err, source.ErrUnknownFormat))

	f, err := source.FormatFromPath("dir/data.yml")
	require.NoError(t, err)
	assert.Equal(t, source.YAML, f)
}

// The same document in every format yields the same tree.
func TestParse_FormatsAgree(t *testing.T) {
	docs := map[source.Format]string{
		source.JSON: `{"counter": 7, "device": {"id": 42}, "ip": [192, 168, 0, 1]}`,
		source.YAML: "counter: 7\ndevice:\n  id: 42\nip: [192, 168, 0, 1]\n",
		source.TOML: "counter = 7\nip = [192, 168, 0, 1]\n[device]\nid = 42\n",
	}
	rec := recmap.MustNewRecord("r", []recmap.Field{
		recmap.UintField("counter", 32),
		recmap.StructField("device", recmap.UintField("id", 16)),
		recmap.ArrayField("ip", recmap.KindUint, 8, 4),
	})

	var first []byte
	for format, text := range docs {
		doc, err := source.Parse(format, []byte(text))
		require.NoError(t, err, format)
		assert.Equal(t, format, doc.Format)
		enc, err := recmap.Transcode(rec, doc.Root)
		require.NoError(t, err, format)
		if first == nil {
			first = enc.Bytes()
			continue
		}
		assert.Equal(t, first, enc.Bytes(), format)
	}
}

func TestParse_SyntaxErrorIsIssue(t *testing.T) {
	for _, format := range []source.Format{source.JSON, source.YAML, source.TOML} {
		_, err := source.Parse(format, []byte("{{{"))
		iss, ok := recmap.AsIssues(err)
		require.True(t, ok, "%s: got %v", format, err)
		assert.Equal(t, recmap.CodeParseError, iss[0].Code, format)
	}
	_, err := source.Parse("ini", nil)
	assert.True(t, errors.Is(err, source.ErrUnknownFormat))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\na: 2\n"), 0o600))

	_, err := source.Load(path)
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, recmap.CodeDuplicateKey, iss[0].Code)

	doc, err := source.Load(path, recmap.SourceOpt{OnDuplicateKey: recmap.Warn})
	require.NoError(t, err)
	require.Len(t, doc.Warnings, 1)

	_, err = source.Load(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = source.Load(filepath.Join(dir, "doc.txt"))
	assert.True(t, errors.Is(err, source.ErrUnknownFormat))
}
