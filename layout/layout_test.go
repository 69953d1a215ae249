package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recmap"
	"github.com/reoring/recmap/checksum"
	"github.com/reoring/recmap/layout"
)

func TestLoad_YAMLBlocks(t *testing.T) {
	f, err := layout.Load("testdata/blocks.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"config_t", "data_t"}, f.Names())
	assert.Equal(t, recmap.LittleEndian, f.Settings.Endianness)

	cfg, err := f.Record("config_t")
	require.NoError(t, err)
	assert.Equal(t, 48, cfg.Size())

	offsets := map[string]int{}
	for _, fl := range cfg.Leaves() {
		offsets[fl.Path.String()] = fl.Offset
	}
	assert.Equal(t, map[string]int{
		"device.id":    0,
		"device.name":  4,
		"version":      20,
		"flags":        22,
		"coefficients": 24,
		"matrix":       40,
	}, offsets)

	flags, ok := cfg.Field("flags")
	require.True(t, ok)
	assert.True(t, flags.IsBitmap())
	assert.Len(t, flags.Bits, 3)

	data, err := f.Record("data_t")
	require.NoError(t, err)
	cs, ok := data.Checksum()
	require.True(t, ok)
	assert.Equal(t, 28, cs.Offset)
	assert.Equal(t, checksum.IEEE, cs.Params)
	assert.Equal(t, 32, data.Size())
}

func TestLoad_TOMLSettings(t *testing.T) {
	f, err := layout.Load("testdata/blocks.toml")
	require.NoError(t, err)

	opts := f.Settings.Options()
	assert.Equal(t, recmap.BigEndian, opts.ByteOrder)
	assert.Equal(t, byte(0xFF), opts.Padding)
	assert.True(t, opts.Strict)

	rec, err := f.Record("data_t")
	require.NoError(t, err)
	ip, ok := rec.Field("ip")
	require.True(t, ok)
	assert.Equal(t, recmap.KindArray, ip.Kind)
	assert.True(t, ip.Strict)
	assert.Equal(t, 28, rec.Size())
}

func TestLoad_JSONExplicitOffsetsAndLength(t *testing.T) {
	f, err := layout.Load("testdata/blocks.json")
	require.NoError(t, err)
	rec, err := f.Record("packet")
	require.NoError(t, err)

	seq, _ := rec.Field("seq")
	payload, _ := rec.Field("payload")
	assert.Equal(t, 4, seq.Offset)
	assert.Equal(t, 8, payload.Offset)
	assert.Equal(t, 16, rec.Size())
}

func TestLoad_EndOfBlockChecksum(t *testing.T) {
	f, err := layout.Load("testdata/crc_blocks.yaml")
	require.NoError(t, err)
	assert.True(t, f.Settings.WordAddressing)

	calib, err := f.Record("calib_t")
	require.NoError(t, err)
	assert.True(t, calib.WordSwap())
	assert.Equal(t, 32, calib.Size())
	cs, ok := calib.Checksum()
	require.True(t, ok)
	assert.Equal(t, 28, cs.Offset)
	assert.True(t, cs.AtEnd)
	assert.Equal(t, recmap.AreaBlockZero, cs.Area)
	assert.Equal(t, checksum.MPEG2, cs.Params)

	tail, err := f.Record("tail_t")
	require.NoError(t, err)
	cs, _ = tail.Checksum()
	assert.Equal(t, 12, cs.Offset)
	assert.Equal(t, recmap.AreaBlockOmit, cs.Area)

	opts := f.Settings.Options()
	doc := recmap.Map(recmap.E("gain", recmap.Int(-2)), recmap.E("trim", recmap.Uint(7)))
	enc, err := recmap.Encode(calib, doc, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFF, 0xFF, 0x07}, enc.Bytes()[:4])
	got, err := recmap.Decode(calib, enc.Bytes(), opts)
	require.NoError(t, err)
	gain, _ := got.Get("gain")
	v, _ := gain.Int()
	assert.Equal(t, int64(-2), v)
}

func TestParse_ChecksumPlacementIssues(t *testing.T) {
	rec := func(name string, cs *recmap.Node, extra ...recmap.Entry) *recmap.Node {
		entries := append([]recmap.Entry{
			recmap.E("name", recmap.String(name)),
			recmap.E("checksum", cs),
			recmap.E("fields", recmap.Seq(recmap.Map(recmap.E("path", recmap.String("a")), recmap.E("type", recmap.String("u32"))))),
		}, extra...)
		return recmap.Map(entries...)
	}
	root := recmap.Map(recmap.E("records", recmap.Seq(
		rec("area", recmap.Map(recmap.E("area", recmap.String("block")))),
		rec("where", recmap.Map(recmap.E("offset", recmap.String("middle")))),
		rec("nolength", recmap.Map(recmap.E("offset", recmap.String("end_block")))),
		rec("ok", recmap.Map(recmap.E("offset", recmap.String("end_block"))), recmap.E("length", recmap.Int(8))),
	)))

	_, err := layout.Parse(root)
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok, "want Issues, got %v", err)

	got := map[string]string{}
	for _, is := range iss {
		got[is.Path] = is.Code
	}
	assert.Equal(t, map[string]string{
		"records.0.checksum.area":   recmap.CodeSchemaInvalid,
		"records.1.checksum.offset": recmap.CodeSchemaInvalid,
		"records.2":                 recmap.CodeSchemaInvalid,
	}, got)
}

func TestRecord_NotFound(t *testing.T) {
	f, err := layout.Load("testdata/blocks.yaml")
	require.NoError(t, err)
	_, err = f.Record("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config_t")
}

func TestParse_CollectsDescriptionIssues(t *testing.T) {
	root := recmap.Map(
		recmap.E("settings", recmap.Map(recmap.E("endianness", recmap.String("middle")))),
		recmap.E("records", recmap.Seq(
			recmap.Map(
				recmap.E("name", recmap.String("bad")),
				recmap.E("fields", recmap.Seq(
					recmap.Map(recmap.E("path", recmap.String("a")), recmap.E("type", recmap.String("u12"))),
					recmap.Map(recmap.E("path", recmap.String("b")), recmap.E("type", recmap.String("bytes"))),
					recmap.Map(recmap.E("path", recmap.String("c")), recmap.E("type", recmap.String("u8")), recmap.E("colour", recmap.String("red"))),
				)),
			),
		)),
	)

	_, err := layout.Parse(root)
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok, "want Issues, got %v", err)

	got := map[string]string{}
	for _, is := range iss {
		got[is.Path] = is.Code
	}
	assert.Equal(t, map[string]string{
		"settings.endianness":       recmap.CodeSchemaInvalid,
		"records.0.fields.0.type":   recmap.CodeSchemaInvalid,
		"records.0.fields.1.size":   recmap.CodePathNotFound,
		"records.0.fields.2.colour": recmap.CodeSchemaInvalid,
	}, got)
}

func TestParse_SchemaErrorsBecomeIssues(t *testing.T) {
	root := recmap.Map(recmap.E("records", recmap.Seq(
		recmap.Map(
			recmap.E("name", recmap.String("overlap")),
			recmap.E("fields", recmap.Seq(
				recmap.Map(recmap.E("path", recmap.String("a")), recmap.E("type", recmap.String("u32"))),
				recmap.Map(recmap.E("path", recmap.String("b")), recmap.E("type", recmap.String("u16")), recmap.E("offset", recmap.Int(2))),
			)),
		),
	)))

	_, err := layout.Parse(root)
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, recmap.CodeSchemaOverlap, iss[0].Code)
	assert.Equal(t, "records.0", iss[0].Path)
	assert.Equal(t, "b", iss[0].Field)
}

func TestParse_DuplicateRecordName(t *testing.T) {
	rec := func() *recmap.Node {
		return recmap.Map(
			recmap.E("name", recmap.String("r")),
			recmap.E("fields", recmap.Seq(recmap.Map(recmap.E("path", recmap.String("a")), recmap.E("type", recmap.String("u8"))))),
		)
	}
	_, err := layout.Parse(recmap.Map(recmap.E("records", recmap.Seq(rec(), rec()))))
	iss, ok := recmap.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{recmap.CodeSchemaConflict}, iss.Codes())
	assert.Equal(t, "records.1.name", iss[0].Path)
}

func TestParse_MatrixAndStrict(t *testing.T) {
	root := recmap.Map(recmap.E("records", recmap.Seq(
		recmap.Map(
			recmap.E("name", recmap.String("m")),
			recmap.E("fields", recmap.Seq(
				recmap.Map(
					recmap.E("path", recmap.String("grid")),
					recmap.E("type", recmap.String("f64")),
					recmap.E("SIZE", recmap.Seq(recmap.Int(2), recmap.Int(3))),
				),
			)),
		),
	)))
	f, err := layout.Parse(root)
	require.NoError(t, err)
	grid, ok := f.Records[0].Field("grid")
	require.True(t, ok)
	assert.Equal(t, recmap.KindMatrix, grid.Kind)
	assert.Equal(t, []int{2, 3}, grid.Dims)
	assert.True(t, grid.Strict)
	assert.Equal(t, 48, f.Records[0].Size())
}
