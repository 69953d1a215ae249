package recmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recmap"
)

func TestPackUnpackBits(t *testing.T) {
	f, ok := configRecord(t).Field("flags")
	require.True(t, ok)

	word, err := f.PackBits(map[string]uint64{"enabled": 1, "mode": 5, "reserved": 0x800})
	require.NoError(t, err)
	assert.Equal(t, uint64(1|5<<1|0x800<<4), word)

	assert.Equal(t, []recmap.BitValue{
		{Name: "enabled", Bits: 1, Value: 1},
		{Name: "mode", Bits: 3, Value: 5},
		{Name: "reserved", Bits: 12, Value: 0x800},
	}, f.UnpackBits(word))
}

func TestPackBits_Errors(t *testing.T) {
	f, _ := configRecord(t).Field("flags")

	_, err := f.PackBits(map[string]uint64{"enabled": 1, "mode": 1})
	assert.ErrorContains(t, err, `"reserved" missing`)

	_, err = f.PackBits(map[string]uint64{"enabled": 2, "mode": 1, "reserved": 0})
	assert.ErrorContains(t, err, "exceeds 1 bits")

	plain, _ := configRecord(t).Field("version")
	_, err = plain.PackBits(nil)
	assert.ErrorContains(t, err, "no bit table")
}
