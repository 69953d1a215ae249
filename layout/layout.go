// Package layout reads record schema descriptions. A description is itself a
// document (JSON, YAML or TOML) with a settings section and a list of
// records:
//
//	settings:
//	  endianness: little
//	  padding: 0
//	records:
//	  - name: config_t
//	    checksum: {offset: end_data, area: data}
//	    fields:
//	      - {path: device, type: struct, fields: [{path: id, type: u32}]}
//	      - {path: coefficients, type: f32, size: 4}
//	      - {path: matrix, type: i16, size: [2, 2]}
//
// Problems in the description are reported as recmap.Issues whose paths
// point into the description (records.0.fields.3.type).
package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/recmap"
	"github.com/reoring/recmap/checksum"
	"github.com/reoring/recmap/internal/log"
	"github.com/reoring/recmap/source"
)

// Settings are the file-wide encoding options.
type Settings struct {
	Endianness     recmap.Endianness
	Padding        byte
	Strict         bool
	AllowNonFinite bool
	// WordAddressing stores every record word swapped.
	WordAddressing bool
}

// Options maps the settings onto encoder options.
func (s Settings) Options() recmap.Options {
	return recmap.Options{
		ByteOrder:      s.Endianness,
		Padding:        s.Padding,
		Strict:         s.Strict,
		AllowNonFinite: s.AllowNonFinite,
	}
}

// File is a parsed description.
type File struct {
	Settings Settings
	Records  []*recmap.Record
}

// Record returns the record with the given name.
func (f *File) Record(name string) (*recmap.Record, error) {
	names := make([]string, 0, len(f.Records))
	for _, r := range f.Records {
		if r.Name() == name {
			return r, nil
		}
		names = append(names, r.Name())
	}
	return nil, fmt.Errorf("layout: record %q not found (have %s)", name, strings.Join(names, ", "))
}

// Names lists record names in file order.
func (f *File) Names() []string {
	out := make([]string, 0, len(f.Records))
	for _, r := range f.Records {
		out = append(out, r.Name())
	}
	return out
}

// Load reads a description file in any supported format.
func Load(path string) (*File, error) {
	logger := log.WithComponent("layout")
	doc, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("layout: %s: %w", path, err)
	}
	for _, r := range f.Records {
		logger.Debug().
			Str("file", path).
			Str("format", string(doc.Format)).
			Str("record", r.Name()).
			Int("size", r.Size()).
			Int("fields", len(r.Leaves())).
			Msg("record loaded")
	}
	return f, nil
}

// Parse builds records from a description tree. All description problems are
// collected before returning.
func Parse(root *recmap.Node) (*File, error) {
	r := &reader{}
	f := &File{}
	if root == nil || root.Kind() != recmap.NodeMap {
		r.mismatch(nil, "map", root)
		return nil, r.issues
	}
	r.unknown(root, nil, "settings", "records")

	if s, ok := root.Get("settings"); ok {
		f.Settings = r.settings(s, recmap.Path{recmap.Key("settings")})
		r.wordSwap = f.Settings.WordAddressing
	}

	recs, ok := root.Get("records")
	if !ok {
		r.missing(nil, "records")
		return nil, r.issues
	}
	rp := recmap.Path{recmap.Key("records")}
	if recs.Kind() != recmap.NodeSequence {
		r.mismatch(rp, "sequence", recs)
		return nil, r.issues
	}
	seen := map[string]int{}
	for i, rn := range recs.Items() {
		p := rp.Index(i)
		rec := r.record(rn, p)
		if rec == nil {
			continue
		}
		if prev, dup := seen[rec.Name()]; dup {
			r.add(p.Field("name"), recmap.CodeSchemaConflict, fmt.Sprintf("record %q already declared at records.%d", rec.Name(), prev))
			continue
		}
		seen[rec.Name()] = i
		f.Records = append(f.Records, rec)
	}
	if len(r.issues) > 0 {
		return nil, r.issues
	}
	return f, nil
}

func (r *reader) settings(n *recmap.Node, p recmap.Path) Settings {
	var s Settings
	if n.Kind() != recmap.NodeMap {
		r.mismatch(p, "map", n)
		return s
	}
	r.unknown(n, p, "endianness", "padding", "strict", "allow_non_finite", "word_addressing")
	if v, ok := r.optString(n, p, "endianness"); ok {
		e, err := recmap.ParseEndianness(v)
		if err != nil {
			r.add(p.Field("endianness"), recmap.CodeSchemaInvalid, err.Error())
		}
		s.Endianness = e
	}
	if v, ok := r.optUint(n, p, "padding", 0xFF); ok {
		s.Padding = byte(v)
	}
	s.Strict, _ = r.optBool(n, p, "strict")
	s.AllowNonFinite, _ = r.optBool(n, p, "allow_non_finite")
	s.WordAddressing, _ = r.optBool(n, p, "word_addressing")
	return s
}

func (r *reader) record(n *recmap.Node, p recmap.Path) *recmap.Record {
	if n.Kind() != recmap.NodeMap {
		r.mismatch(p, "map", n)
		return nil
	}
	r.unknown(n, p, "name", "length", "checksum", "fields")
	before := len(r.issues)

	name, _ := r.reqString(n, p, "name")
	opts := recmap.RecordOptions{WordSwap: r.wordSwap}
	if v, ok := r.optUint(n, p, "length", 1<<30); ok {
		opts.Length = int(v)
	}
	if cn, ok := n.Get("checksum"); ok {
		opts.Checksum = r.checksum(cn, p.Field("checksum"))
	}

	fn, ok := n.Get("fields")
	if !ok {
		r.missing(p, "fields")
		return nil
	}
	fields := r.fields(fn, p.Field("fields"))
	if len(r.issues) > before {
		return nil
	}

	rec, err := recmap.NewRecord(name, fields, opts)
	if err != nil {
		r.schemaError(p, err)
		return nil
	}
	return rec
}

func (r *reader) checksum(n *recmap.Node, p recmap.Path) *recmap.ChecksumSlot {
	if n.Kind() != recmap.NodeMap {
		r.mismatch(p, "map", n)
		return nil
	}
	r.unknown(n, p, "preset", "offset", "area", "polynomial", "init", "xor_out", "ref_in", "ref_out")
	slot := &recmap.ChecksumSlot{Params: checksum.IEEE}
	if v, ok := r.optString(n, p, "preset"); ok {
		switch strings.ToLower(v) {
		case "ieee", "crc32":
			slot.Params = checksum.IEEE
		case "mpeg2":
			slot.Params = checksum.MPEG2
		case "bzip2":
			slot.Params = checksum.BZIP2
		default:
			r.add(p.Field("preset"), recmap.CodeSchemaInvalid, fmt.Sprintf("unknown preset %q", v))
		}
	}
	if on, ok := n.Get("offset"); ok {
		if s, isStr := on.Str(); isStr {
			switch s {
			case "end_data":
			case "end_block":
				slot.AtEnd = true
			default:
				r.add(p.Field("offset"), recmap.CodeSchemaInvalid, fmt.Sprintf("offset must be end_data, end_block or a number, got %q", s))
			}
		} else if v, ok := r.optUint(n, p, "offset", 1<<30); ok {
			slot.Offset, slot.Pinned = int(v), true
		}
	}
	if v, ok := r.optString(n, p, "area"); ok {
		area, known := recmap.ParseChecksumArea(v)
		if !known {
			r.add(p.Field("area"), recmap.CodeSchemaInvalid, fmt.Sprintf("unknown area %q", v))
		}
		slot.Area = area
	}
	if v, ok := r.optUint(n, p, "polynomial", 0xFFFFFFFF); ok {
		slot.Params.Polynomial = uint32(v)
	}
	if v, ok := r.optUint(n, p, "init", 0xFFFFFFFF); ok {
		slot.Params.Init = uint32(v)
	}
	if v, ok := r.optUint(n, p, "xor_out", 0xFFFFFFFF); ok {
		slot.Params.XorOut = uint32(v)
	}
	if v, ok := r.optBool(n, p, "ref_in"); ok {
		slot.Params.RefIn = v
	}
	if v, ok := r.optBool(n, p, "ref_out"); ok {
		slot.Params.RefOut = v
	}
	return slot
}

func (r *reader) fields(n *recmap.Node, p recmap.Path) []recmap.Field {
	if n.Kind() != recmap.NodeSequence {
		r.mismatch(p, "sequence", n)
		return nil
	}
	out := make([]recmap.Field, 0, n.Len())
	for i, fn := range n.Items() {
		if f, ok := r.field(fn, p.Index(i)); ok {
			out = append(out, f)
		}
	}
	return out
}

func (r *reader) field(n *recmap.Node, p recmap.Path) (recmap.Field, bool) {
	var f recmap.Field
	if n.Kind() != recmap.NodeMap {
		r.mismatch(p, "map", n)
		return f, false
	}
	r.unknown(n, p, "path", "type", "size", "SIZE", "offset", "bits", "fields")
	before := len(r.issues)

	if s, ok := r.reqString(n, p, "path"); ok {
		fp, err := recmap.ParsePath(s)
		if err != nil {
			r.add(p.Field("path"), recmap.CodeSchemaInvalid, err.Error())
		}
		f.Path = fp
	}
	typ, _ := r.reqString(n, p, "type")

	sizeKey := "size"
	sn, hasSize := n.Get("size")
	if strict, ok := n.Get("SIZE"); ok {
		if hasSize {
			r.add(p.Field("SIZE"), recmap.CodeSchemaConflict, "size and SIZE are mutually exclusive")
		}
		sn, hasSize, sizeKey = strict, true, "SIZE"
		f.Strict = true
	}
	var dims []int
	if hasSize {
		dims = r.dims(sn, p.Field(sizeKey))
	}

	switch {
	case typ == "struct":
		f.Kind = recmap.KindStruct
		if hasSize {
			r.add(p.Field(sizeKey), recmap.CodeSchemaInvalid, "struct fields take no size")
		}
		cn, ok := n.Get("fields")
		if !ok {
			r.missing(p, "fields")
		} else {
			f.Children = r.fields(cn, p.Field("fields"))
		}
	case typ == "bytes":
		f.Kind, f.Width = recmap.KindBytes, 8
		if len(dims) != 1 {
			if !hasSize {
				r.missing(p, "size")
			} else {
				r.add(p.Field(sizeKey), recmap.CodeSchemaInvalid, "bytes take a single size")
			}
		} else {
			f.Length = dims[0]
		}
	default:
		kind, width, ok := scalarType(typ)
		if !ok {
			if typ != "" {
				r.add(p.Field("type"), recmap.CodeSchemaInvalid, fmt.Sprintf("unknown type %q", typ))
			}
			break
		}
		f.Width = width
		switch len(dims) {
		case 0:
			f.Kind = kind
		case 1:
			f.Kind, f.Elem, f.Length = recmap.KindArray, kind, dims[0]
		default:
			f.Kind, f.Elem, f.Dims = recmap.KindMatrix, kind, dims
		}
	}

	if v, ok := r.optUint(n, p, "offset", 1<<30); ok {
		f.Offset, f.Pinned = int(v), true
	}
	if bn, ok := n.Get("bits"); ok {
		f.Bits = r.bits(bn, p.Field("bits"))
	}
	return f, len(r.issues) == before
}

func (r *reader) dims(n *recmap.Node, p recmap.Path) []int {
	if n.Kind() == recmap.NodeSequence {
		out := make([]int, 0, n.Len())
		for i, it := range n.Items() {
			v, ok := it.Uint()
			if !ok || v == 0 || v > 1<<30 {
				r.add(p.Index(i), recmap.CodeSchemaInvalid, "dimension must be a positive integer")
				continue
			}
			out = append(out, int(v))
		}
		return out
	}
	v, ok := n.Uint()
	if !ok || v == 0 || v > 1<<30 {
		r.add(p, recmap.CodeSchemaInvalid, "size must be a positive integer or a list of them")
		return nil
	}
	return []int{int(v)}
}

func (r *reader) bits(n *recmap.Node, p recmap.Path) []recmap.BitField {
	if n.Kind() != recmap.NodeSequence {
		r.mismatch(p, "sequence", n)
		return nil
	}
	out := make([]recmap.BitField, 0, n.Len())
	for i, bn := range n.Items() {
		bp := p.Index(i)
		if bn.Kind() != recmap.NodeMap {
			r.mismatch(bp, "map", bn)
			continue
		}
		r.unknown(bn, bp, "name", "bits")
		name, _ := r.reqString(bn, bp, "name")
		w, ok := r.optUint(bn, bp, "bits", 64)
		if !ok {
			if _, present := bn.Get("bits"); !present {
				r.missing(bp, "bits")
			}
			continue
		}
		out = append(out, recmap.BitField{Name: name, Bits: int(w)})
	}
	return out
}

// scalarType maps u8..u64, i8..i64, f32, f64 (and uint8/int8/float32 spellings).
func scalarType(s string) (recmap.Kind, int, bool) {
	s = strings.ToLower(s)
	var kind recmap.Kind
	switch {
	case strings.HasPrefix(s, "uint"):
		kind, s = recmap.KindUint, s[4:]
	case strings.HasPrefix(s, "int"):
		kind, s = recmap.KindInt, s[3:]
	case strings.HasPrefix(s, "float"):
		kind, s = recmap.KindFloat, s[5:]
	case strings.HasPrefix(s, "u"):
		kind, s = recmap.KindUint, s[1:]
	case strings.HasPrefix(s, "i"):
		kind, s = recmap.KindInt, s[1:]
	case strings.HasPrefix(s, "f"):
		kind, s = recmap.KindFloat, s[1:]
	default:
		return 0, 0, false
	}
	switch s {
	case "8", "16":
		if kind == recmap.KindFloat {
			return 0, 0, false
		}
		if s == "8" {
			return kind, 8, true
		}
		return kind, 16, true
	case "32":
		return kind, 32, true
	case "64":
		return kind, 64, true
	}
	return 0, 0, false
}

// Types lists the accepted type names.
func Types() []string {
	out := []string{"bytes", "struct", "f32", "f64"}
	for _, w := range []string{"8", "16", "32", "64"} {
		out = append(out, "u"+w, "i"+w)
	}
	sort.Strings(out)
	return out
}
