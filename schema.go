package recmap

import (
	"fmt"
	"strings"

	"github.com/reoring/recmap/checksum"
)

// Kind is the storage class of a schema field.
type Kind int

const (
	KindUint Kind = iota
	KindInt
	KindFloat
	KindBytes
	KindArray
	KindMatrix
	KindStruct
)

var kindNames = [...]string{"uint", "int", "float", "bytes", "array", "matrix", "struct"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps the text form back to a Kind.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, s) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("recmap: unknown kind %q", s)
}

// IsScalar reports whether k stores a single number.
func (k Kind) IsScalar() bool { return k == KindUint || k == KindInt || k == KindFloat }

// BitField names a run of bits inside a bitmap field. Runs are packed from
// the least significant bit upwards in declaration order.
type BitField struct {
	Name string
	Bits int
}

// Field describes one member of a fixed-layout record.
type Field struct {
	Path Path
	Kind Kind
	// Elem is the element kind of arrays and matrices (uint, int or float).
	Elem Kind
	// Width is the bit width of the value, or of one element for arrays and
	// matrices. Bytes fields are always 8.
	Width int
	// Length is the byte count of bytes fields and the element count of arrays.
	Length int
	// Dims lists matrix dimensions, outermost first.
	Dims []int
	// Offset is the byte offset in the record. It is an input only when
	// Pinned is set; NewRecord fills it for every field.
	Offset int
	Pinned bool
	// Bits optionally names the bits of a uint field.
	Bits []BitField
	// Strict demands that strings and sequences fill the declared size exactly.
	Strict bool
	// Children holds struct members; their paths are relative to the struct.
	Children []Field

	structSize  int
	structAlign int
}

// UintField declares an unsigned integer of the given bit width.
func UintField(path string, width int) Field {
	return Field{Path: MustParsePath(path), Kind: KindUint, Width: width}
}

// IntField declares a signed integer of the given bit width.
func IntField(path string, width int) Field {
	return Field{Path: MustParsePath(path), Kind: KindInt, Width: width}
}

// FloatField declares an IEEE-754 float of 32 or 64 bits.
func FloatField(path string, width int) Field {
	return Field{Path: MustParsePath(path), Kind: KindFloat, Width: width}
}

// BytesField declares a fixed-size byte string.
func BytesField(path string, length int) Field {
	return Field{Path: MustParsePath(path), Kind: KindBytes, Width: 8, Length: length}
}

// ArrayField declares length contiguous elements.
func ArrayField(path string, elem Kind, width, length int) Field {
	return Field{Path: MustParsePath(path), Kind: KindArray, Elem: elem, Width: width, Length: length}
}

// MatrixField declares a row-major matrix with the given dimensions.
func MatrixField(path string, elem Kind, width int, dims ...int) Field {
	return Field{Path: MustParsePath(path), Kind: KindMatrix, Elem: elem, Width: width, Dims: append([]int(nil), dims...)}
}

// StructField groups children under path.
func StructField(path string, children ...Field) Field {
	return Field{Path: MustParsePath(path), Kind: KindStruct, Children: children}
}

// At pins the field at an explicit byte offset (relative to the enclosing
// struct for children).
func (f Field) At(offset int) Field {
	f.Offset = offset
	f.Pinned = true
	return f
}

// WithBits attaches a named-bit table to a uint field.
func (f Field) WithBits(bits ...BitField) Field {
	f.Bits = append([]BitField(nil), bits...)
	return f
}

// Exact marks the field strict-sized.
func (f Field) Exact() Field {
	f.Strict = true
	return f
}

// ElemKind is the kind of one stored number (Kind itself for scalars, Elem for
// arrays and matrices, uint for bytes).
func (f Field) ElemKind() Kind {
	switch f.Kind {
	case KindArray, KindMatrix:
		return f.Elem
	case KindBytes:
		return KindUint
	default:
		return f.Kind
	}
}

// ElemSize is the byte size of one element.
func (f Field) ElemSize() int {
	if f.Kind == KindBytes {
		return 1
	}
	return f.Width / 8
}

// Elements returns the number of stored elements.
func (f Field) Elements() int {
	switch f.Kind {
	case KindBytes, KindArray:
		return f.Length
	case KindMatrix:
		n := 1
		for _, d := range f.Dims {
			n *= d
		}
		return n
	case KindStruct:
		return 0
	default:
		return 1
	}
}

// Size returns the byte size of the field.
func (f Field) Size() int {
	if f.Kind == KindStruct {
		return f.structSize
	}
	return f.Elements() * f.ElemSize()
}

// Align returns the natural alignment of the field.
func (f Field) Align() int {
	switch f.Kind {
	case KindBytes:
		return 1
	case KindStruct:
		if f.structAlign > 0 {
			return f.structAlign
		}
		a := 1
		for _, c := range f.Children {
			a = max(a, c.Align())
		}
		return a
	default:
		return max(f.Width/8, 1)
	}
}

// Signed reports whether elements are two's complement integers.
func (f Field) Signed() bool { return f.ElemKind() == KindInt }

// IsBitmap reports whether the field carries a named-bit table.
func (f Field) IsBitmap() bool { return f.Kind == KindUint && len(f.Bits) > 0 }

// ChecksumArea selects the bytes a checksum covers.
type ChecksumArea int

const (
	// AreaData covers every byte before the slot. For an end of block slot
	// it covers the laid out fields only.
	AreaData ChecksumArea = iota
	// AreaBlockZero covers the whole record with the slot read as zeros.
	AreaBlockZero
	// AreaBlockPad covers the whole record with the slot read as padding.
	AreaBlockPad
	// AreaBlockOmit covers the whole record except the slot.
	AreaBlockOmit
)

var areaNames = [...]string{"data", "block_zero_crc", "block_pad_crc", "block_omit_crc"}

func (a ChecksumArea) String() string {
	if a < 0 || int(a) >= len(areaNames) {
		return fmt.Sprintf("ChecksumArea(%d)", int(a))
	}
	return areaNames[a]
}

// ParseChecksumArea maps a layout area name to its ChecksumArea.
func ParseChecksumArea(s string) (ChecksumArea, bool) {
	for i, n := range areaNames {
		if n == s {
			return ChecksumArea(i), true
		}
	}
	return 0, false
}

// ChecksumSlot reserves four bytes for a CRC-32 over the record.
type ChecksumSlot struct {
	Params checksum.Params
	// Offset places the CRC when Pinned; otherwise it goes to the first
	// 4-byte boundary after the last field.
	Offset int
	Pinned bool
	// AtEnd places the CRC in the last four bytes of the record. It needs
	// RecordOptions.Length and takes precedence over Offset.
	AtEnd bool
	Area  ChecksumArea
}

// RecordOptions tune record construction.
type RecordOptions struct {
	// Length forces the record size; it must cover every field.
	Length   int
	Checksum *ChecksumSlot
	// WordSwap stores the record with the two bytes of every 16-bit word
	// exchanged, as word addressed targets expect. The size is rounded up to
	// an even number of bytes.
	WordSwap bool
}

// Record is an immutable, ordered set of placed fields. It is safe to share
// between goroutines.
type Record struct {
	name     string
	fields   []Field // flattened, document order, structs included
	leaves   []int   // indices into fields of value-carrying entries
	byPath   map[string]int
	size     int
	align    int
	checksum *ChecksumSlot
	dataEnd  int
	wordSwap bool
}

// Name returns the record name.
func (r *Record) Name() string { return r.name }

// Size returns the encoded size in bytes.
func (r *Record) Size() int { return r.size }

// Align returns the largest member alignment.
func (r *Record) Align() int { return r.align }

// Fields returns all placed fields, struct entries included.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Leaves returns the value-carrying fields in layout order.
func (r *Record) Leaves() []Field {
	out := make([]Field, 0, len(r.leaves))
	for _, i := range r.leaves {
		out = append(out, r.fields[i])
	}
	return out
}

// Field looks a placed field up by dotted path.
func (r *Record) Field(path string) (Field, bool) {
	i, ok := r.byPath[path]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// WordSwap reports whether the record is stored word swapped.
func (r *Record) WordSwap() bool { return r.wordSwap }

// Checksum returns the placed checksum slot, if any.
func (r *Record) Checksum() (ChecksumSlot, bool) {
	if r.checksum == nil {
		return ChecksumSlot{}, false
	}
	return *r.checksum, true
}
