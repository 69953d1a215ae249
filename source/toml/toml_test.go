package toml_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recmap"
	tomlsrc "github.com/reoring/recmap/source/toml"
)

func TestNewBytes(t *testing.T) {
	src, err := tomlsrc.NewBytes([]byte(`
version = 3
ratio = 2.0
name = "sensor"
on = true
born = 1979-05-27T07:32:00Z
day = 1979-05-27

[device]
id = 42
ip = [192, 168, 0, 1]
`))
	require.NoError(t, err)
	root, _, err := recmap.DecodeSource(src)
	require.NoError(t, err)

	assert.Equal(t, []string{"born", "day", "device", "name", "on", "ratio", "version"}, root.Keys(), "keys are sorted")

	b, err := json.Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"born": "1979-05-27T07:32:00Z",
		"day": "1979-05-27",
		"device": {"id": 42, "ip": [192, 168, 0, 1]},
		"name": "sensor",
		"on": true,
		"ratio": 2.0,
		"version": 3
	}`, string(b))

	ratio, _ := root.Get("ratio")
	assert.Equal(t, recmap.ScalarFloat, ratio.ScalarKind(), "2.0 stays a float")
	version, _ := root.Get("version")
	assert.Equal(t, recmap.ScalarInt, version.ScalarKind())
}

func TestNewBytes_ErrorPosition(t *testing.T) {
	_, err := tomlsrc.NewBytes([]byte("a = 1\nb = \n"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "toml: 2:"), err.Error())
}

func TestNewReader(t *testing.T) {
	src, err := tomlsrc.NewReader(strings.NewReader(`counter = 7`))
	require.NoError(t, err)
	root, _, err := recmap.DecodeSource(src)
	require.NoError(t, err)
	c, _ := root.Get("counter")
	v, _ := c.Int()
	assert.Equal(t, int64(7), v)
}
