package recmap

import (
	"fmt"
	"sort"
)

const maxFieldBytes = 1 << 30

// NewRecord validates field declarations and computes byte offsets. Fields
// without a pinned offset are placed at the next naturally aligned position
// after the previous field. Errors are *SchemaError and indicate a broken
// schema.
func NewRecord(name string, fields []Field, opts ...RecordOptions) (*Record, error) {
	var opt RecordOptions
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if len(fields) == 0 {
		return nil, &SchemaError{Code: CodeSchemaInvalid, Message: "record " + name + " has no fields"}
	}

	b := &layoutBuilder{rec: &Record{name: name, byPath: map[string]int{}, align: 1}}
	cursor := 0
	for _, f := range fields {
		end, err := b.place(nil, f, cursor, 0)
		if err != nil {
			return nil, err
		}
		cursor = end
	}

	if err := b.checkConflicts(); err != nil {
		return nil, err
	}

	dataEnd := 0
	for _, i := range b.rec.leaves {
		f := b.rec.fields[i]
		dataEnd = max(dataEnd, f.Offset+f.Size())
	}
	size := dataEnd
	b.rec.dataEnd = dataEnd

	if opt.Checksum != nil {
		slot := *opt.Checksum
		switch {
		case slot.AtEnd:
			if opt.Length < 4 {
				return nil, &SchemaError{Code: CodeSchemaInvalid, Field: "checksum", Message: "end of block placement needs a record length"}
			}
			slot.Offset = opt.Length - 4
		case !slot.Pinned:
			slot.Offset = alignUp(dataEnd, 4)
		}
		if slot.Offset < 0 {
			return nil, &SchemaError{Code: CodeSchemaInvalid, Field: "checksum", Message: "negative offset"}
		}
		if slot.Area < AreaData || slot.Area > AreaBlockOmit {
			return nil, &SchemaError{Code: CodeSchemaInvalid, Field: "checksum", Message: "unknown area " + slot.Area.String()}
		}
		slot.Pinned = true
		b.rec.checksum = &slot
		size = max(size, slot.Offset+4)
	}

	if err := b.checkOverlap(); err != nil {
		return nil, err
	}

	if opt.Length > 0 {
		if opt.Length < size {
			return nil, &SchemaError{Code: CodeSchemaInvalid, Message: fmt.Sprintf("length %d smaller than laid out size %d", opt.Length, size)}
		}
		size = opt.Length
	}
	if opt.WordSwap {
		if opt.Length > 0 && opt.Length%2 != 0 {
			return nil, &SchemaError{Code: CodeSchemaInvalid, Message: fmt.Sprintf("word swapped length %d is odd", opt.Length)}
		}
		size = alignUp(size, 2)
		b.rec.wordSwap = true
	}
	b.rec.size = size
	return b.rec, nil
}

// MustNewRecord is NewRecord for schemas known to be valid.
func MustNewRecord(name string, fields []Field, opts ...RecordOptions) *Record {
	r, err := NewRecord(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

type layoutBuilder struct {
	rec *Record
}

// place lays f out at or after cursor and returns the end offset. base is the
// start of the enclosing struct, which pinned child offsets are relative to.
func (b *layoutBuilder) place(prefix Path, f Field, cursor, base int) (int, error) {
	if len(f.Path) == 0 {
		return 0, &SchemaError{Code: CodeSchemaInvalid, Field: prefix.String(), Message: "field without path"}
	}
	path := prefix.Join(f.Path)
	if err := checkDecl(path, f); err != nil {
		return 0, err
	}

	align := f.Align()
	off := alignUp(cursor, align)
	if f.Pinned {
		off = base + f.Offset
		if f.Offset < 0 {
			return 0, &SchemaError{Code: CodeSchemaInvalid, Field: path.String(), Message: "negative offset"}
		}
		if off%align != 0 {
			return 0, &SchemaError{Code: CodeSchemaMisaligned, Field: path.String(), Message: fmt.Sprintf("offset %d not a multiple of %d", off, align)}
		}
	}
	b.rec.align = max(b.rec.align, align)

	placed := f
	placed.Path = path
	placed.Offset = off
	placed.Pinned = true
	placed.Children = nil
	placed.Dims = append([]int(nil), f.Dims...)
	placed.Bits = append([]BitField(nil), f.Bits...)

	if f.Kind != KindStruct {
		b.add(placed, true)
		return off + placed.Size(), nil
	}

	idx := b.add(placed, false)
	end := off
	childCursor := off
	for _, c := range f.Children {
		ce, err := b.place(path, c, childCursor, off)
		if err != nil {
			return 0, err
		}
		childCursor = ce
		end = max(end, ce)
	}
	b.rec.fields[idx].structAlign = align
	b.rec.fields[idx].structSize = alignUp(end-off, align)
	return off + b.rec.fields[idx].structSize, nil
}

func (b *layoutBuilder) add(f Field, leaf bool) int {
	idx := len(b.rec.fields)
	b.rec.fields = append(b.rec.fields, f)
	if leaf {
		b.rec.leaves = append(b.rec.leaves, idx)
	}
	if _, dup := b.rec.byPath[f.Path.String()]; !dup {
		b.rec.byPath[f.Path.String()] = idx
	}
	return idx
}

func checkDecl(path Path, f Field) error {
	bad := func(format string, a ...any) error {
		return &SchemaError{Code: CodeSchemaInvalid, Field: path.String(), Message: fmt.Sprintf(format, a...)}
	}
	switch f.Kind {
	case KindUint, KindInt:
		if !validIntWidth(f.Width) {
			return bad("%s width %d not one of 8, 16, 32, 64", f.Kind, f.Width)
		}
	case KindFloat:
		if f.Width != 32 && f.Width != 64 {
			return bad("float width %d not one of 32, 64", f.Width)
		}
	case KindBytes:
		if f.Width != 0 && f.Width != 8 {
			return bad("bytes width must be 8")
		}
		if f.Length <= 0 {
			return bad("bytes length must be positive")
		}
	case KindArray, KindMatrix:
		switch f.Elem {
		case KindUint, KindInt:
			if !validIntWidth(f.Width) {
				return bad("element width %d not one of 8, 16, 32, 64", f.Width)
			}
		case KindFloat:
			if f.Width != 32 && f.Width != 64 {
				return bad("element width %d not one of 32, 64", f.Width)
			}
		default:
			return bad("element kind %s not numeric", f.Elem)
		}
		if f.Kind == KindArray && f.Length <= 0 {
			return bad("array length must be positive")
		}
		if f.Kind == KindMatrix {
			if len(f.Dims) < 2 {
				return bad("matrix needs at least two dims, got %d", len(f.Dims))
			}
			n := 1
			for _, d := range f.Dims {
				if d <= 0 {
					return bad("matrix dims must be positive: %v", f.Dims)
				}
				n *= d
				if n > maxFieldBytes {
					return bad("matrix too large: %v", f.Dims)
				}
			}
		}
	case KindStruct:
		if len(f.Children) == 0 {
			return bad("struct without members")
		}
	default:
		return bad("unknown kind %d", int(f.Kind))
	}
	if f.Kind != KindStruct && f.Size() > maxFieldBytes {
		return bad("field too large")
	}
	if len(f.Bits) > 0 {
		if f.Kind != KindUint {
			return bad("bitmap requires a uint field, got %s", f.Kind)
		}
		total := 0
		seen := map[string]struct{}{}
		for _, bf := range f.Bits {
			if bf.Bits <= 0 {
				return bad("bitmap entry %q must have positive bits", bf.Name)
			}
			if bf.Name == "" {
				return bad("bitmap entry without name")
			}
			if _, dup := seen[bf.Name]; dup {
				return bad("bitmap entry %q declared twice", bf.Name)
			}
			seen[bf.Name] = struct{}{}
			total += bf.Bits
		}
		if total > f.Width {
			return bad("bitmap uses %d bits, storage has %d", total, f.Width)
		}
	}
	return nil
}

// checkConflicts rejects duplicate leaf paths and leaves nested under other leaves.
func (b *layoutBuilder) checkConflicts() error {
	leaves := b.rec.leaves
	for i := 0; i < len(leaves); i++ {
		pi := b.rec.fields[leaves[i]].Path
		for j := i + 1; j < len(leaves); j++ {
			pj := b.rec.fields[leaves[j]].Path
			if pi.HasPrefix(pj) || pj.HasPrefix(pi) {
				return &SchemaError{Code: CodeSchemaConflict, Field: pj.String(), Message: "conflicts with " + pi.String()}
			}
		}
	}
	return nil
}

type span struct {
	name       string
	start, end int
}

func (b *layoutBuilder) checkOverlap() error {
	spans := make([]span, 0, len(b.rec.leaves)+1)
	for _, i := range b.rec.leaves {
		f := b.rec.fields[i]
		spans = append(spans, span{name: f.Path.String(), start: f.Offset, end: f.Offset + f.Size()})
	}
	if cs := b.rec.checksum; cs != nil {
		spans = append(spans, span{name: "checksum", start: cs.Offset, end: cs.Offset + 4})
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return &SchemaError{
				Code:    CodeSchemaOverlap,
				Field:   spans[i].name,
				Message: fmt.Sprintf("bytes [%d,%d) overlap %s [%d,%d)", spans[i].start, spans[i].end, spans[i-1].name, spans[i-1].start, spans[i-1].end),
			}
		}
	}
	return nil
}

func validIntWidth(w int) bool { return w == 8 || w == 16 || w == 32 || w == 64 }

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
