package recmap

import (
	"encoding/binary"
	"math"
	"strconv"
)

// coercer walks schema fields against a value tree. With buf == nil it only
// collects issues (Validate); with a buffer it also writes the coerced bytes
// (Encode).
type coercer struct {
	opts   Options
	order  binary.ByteOrder
	buf    []byte
	issues Issues
	stop   bool
}

func newCoercer(opts Options, buf []byte) *coercer {
	return &coercer{opts: opts, order: opts.ByteOrder.Order(), buf: buf}
}

func (c *coercer) report(is Issue) {
	c.issues = append(c.issues, is)
	if c.opts.FailFast {
		c.stop = true
	}
}

func (c *coercer) fail(p Path, f Field, code string, params map[string]any) {
	c.report(IssueAt(p, f.Path, code, params))
}

func (c *coercer) record(rec *Record, root *Node) {
	for _, f := range rec.Leaves() {
		if c.stop {
			return
		}
		c.field(f, root)
	}
}

func (c *coercer) field(f Field, root *Node) {
	n, err := Resolve(root, f.Path)
	if err != nil {
		c.report(resolveIssue(err, f.Path))
		return
	}
	switch f.Kind {
	case KindUint, KindInt, KindFloat:
		if f.IsBitmap() && n.kind == NodeMap {
			c.bitmap(f, n)
			return
		}
		c.element(f, f.Path, n, f.Offset)
	case KindBytes:
		c.bytes(f, f.Path, n, f.Offset)
	case KindArray:
		c.array(f, n)
	case KindMatrix:
		c.matrix(f, f.Path, n, f.Dims, f.Offset)
	}
}

// absent reports a nil node as path_not_found at p.
func (c *coercer) absent(f Field, p Path, n *Node) bool {
	if n != nil {
		return false
	}
	params := map[string]any{}
	if len(p) > 0 {
		params["segment"] = p[len(p)-1].String()
	}
	c.fail(p, f, CodePathNotFound, params)
	return true
}

func (c *coercer) bytes(f Field, p Path, n *Node, off int) {
	if c.absent(f, p, n) {
		return
	}
	s, ok := n.Str()
	if !ok {
		c.fail(p, f, CodeTypeMismatch, map[string]any{"want": "string", "got": n.TypeName()})
		return
	}
	if len(s) > f.Length {
		c.fail(p, f, CodeStringTooLong, map[string]any{"max": f.Length, "got": len(s)})
		return
	}
	if f.Strict && len(s) != f.Length {
		c.fail(p, f, CodeLengthMismatch, map[string]any{"max": f.Length, "got": len(s)})
		return
	}
	if c.buf != nil {
		copy(c.buf[off:off+f.Length], s)
	}
}

func (c *coercer) array(f Field, n *Node) {
	if c.absent(f, f.Path, n) {
		return
	}
	// A byte array may be given as a string.
	if f.Elem == KindUint && f.Width == 8 && n.ScalarKind() == ScalarString {
		c.bytes(f, f.Path, n, f.Offset)
		return
	}
	if n.kind != NodeSequence {
		c.fail(f.Path, f, CodeTypeMismatch, map[string]any{"want": "sequence", "got": n.TypeName()})
		return
	}
	if !c.checkCount(f, f.Path, len(n.items), f.Length) {
		return
	}
	es := f.ElemSize()
	for i, item := range n.items {
		if c.stop {
			return
		}
		c.element(f, f.Path.Index(i), item, f.Offset+i*es)
	}
}

// matrix handles one dimension level; off is the byte offset of the first
// cell of this sub-matrix.
func (c *coercer) matrix(f Field, p Path, n *Node, dims []int, off int) {
	if c.absent(f, p, n) {
		return
	}
	if n.kind != NodeSequence {
		c.fail(p, f, CodeTypeMismatch, map[string]any{"want": "sequence", "got": n.TypeName()})
		return
	}
	if !c.checkCount(f, p, len(n.items), dims[0]) {
		return
	}
	stride := f.ElemSize()
	for _, d := range dims[1:] {
		stride *= d
	}
	for i, item := range n.items {
		if c.stop {
			return
		}
		if len(dims) == 1 {
			c.element(f, p.Index(i), item, off+i*stride)
		} else {
			c.matrix(f, p.Index(i), item, dims[1:], off+i*stride)
		}
	}
}

func (c *coercer) checkCount(f Field, p Path, got, want int) bool {
	if got > want || (f.Strict && got != want) {
		c.fail(p, f, CodeLengthMismatch, map[string]any{"max": want, "got": got})
		return false
	}
	return true
}

// element coerces one number and writes it at off.
func (c *coercer) element(f Field, p Path, n *Node, off int) {
	if c.absent(f, p, n) {
		return
	}
	var (
		raw uint64
		ok  bool
	)
	switch f.ElemKind() {
	case KindFloat:
		raw, ok = c.floatBits(f, p, n)
	default:
		raw, ok = c.intBits(f, p, n, f.ElemKind() == KindInt, f.Width)
	}
	if ok && c.buf != nil {
		putBits(c.buf[off:], c.order, f.Width, raw)
	}
}

func (c *coercer) bitmap(f Field, n *Node) {
	var word uint64
	shift := 0
	for _, bf := range f.Bits {
		if c.stop {
			return
		}
		p := f.Path.Field(bf.Name)
		v, _ := n.Get(bf.Name)
		if c.absent(f, p, v) {
			shift += bf.Bits
			continue
		}
		if raw, ok := c.intBits(f, p, v, false, bf.Bits); ok {
			word |= raw << uint(shift)
		}
		shift += bf.Bits
	}
	if c.buf != nil {
		putBits(c.buf[f.Offset:], c.order, f.Width, word)
	}
}

// intBits converts n into a two's complement word of the given bit width.
func (c *coercer) intBits(f Field, p Path, n *Node, signed bool, width int) (uint64, bool) {
	if n.kind != NodeScalar {
		c.fail(p, f, CodeTypeMismatch, map[string]any{"want": "integer", "got": n.TypeName()})
		return 0, false
	}
	overflow := func() (uint64, bool) {
		lo, hi := intRange(signed, width)
		c.fail(p, f, CodeIntegerOverflow, map[string]any{"bits": width, "min": lo, "max": hi})
		return 0, false
	}

	var neg bool
	var mag uint64
	switch n.scalar {
	case ScalarInt:
		neg, mag = n.neg, n.mag
	case ScalarBool:
		if n.b {
			mag = 1
		}
	case ScalarFloat:
		v := n.f
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.fail(p, f, CodeNonFiniteFloat, map[string]any{"got": n.f})
			return 0, false
		}
		t := math.Trunc(v)
		if t != v && c.opts.Strict {
			c.fail(p, f, CodePrecisionLoss, map[string]any{"got": v})
			return 0, false
		}
		// 2^64 is the first float64 outside the uint64 range.
		if math.Abs(t) >= 18446744073709551616.0 {
			return overflow()
		}
		neg = t < 0
		mag = uint64(math.Abs(t))
	default:
		c.fail(p, f, CodeTypeMismatch, map[string]any{"want": "integer", "got": n.TypeName()})
		return 0, false
	}

	if neg && mag == 0 {
		neg = false
	}
	if !signed {
		if neg || mag > bitMask(width) {
			return overflow()
		}
		return mag, true
	}
	limit := uint64(1) << uint(width-1) // |min|; max is limit-1
	if (!neg && mag >= limit) || (neg && mag > limit) {
		return overflow()
	}
	if neg {
		return (^mag + 1) & bitMask(width), true
	}
	return mag, true
}

func (c *coercer) floatBits(f Field, p Path, n *Node) (uint64, bool) {
	if n.kind != NodeScalar || (n.scalar != ScalarInt && n.scalar != ScalarFloat) {
		c.fail(p, f, CodeTypeMismatch, map[string]any{"want": "float", "got": n.TypeName()})
		return 0, false
	}
	v, _ := n.Float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if !c.opts.AllowNonFinite {
			c.fail(p, f, CodeNonFiniteFloat, map[string]any{"got": strconv.FormatFloat(v, 'g', -1, 64)})
			return 0, false
		}
	} else if f.Width == 32 && math.IsInf(float64(float32(v)), 0) {
		c.fail(p, f, CodeNonFiniteFloat, map[string]any{"got": v})
		return 0, false
	}
	if c.opts.Strict && !exactFloat(n, v, f.Width) {
		c.fail(p, f, CodePrecisionLoss, map[string]any{"got": n.numberText()})
		return 0, false
	}
	if f.Width == 32 {
		return uint64(math.Float32bits(float32(v))), true
	}
	return math.Float64bits(v), true
}

// exactFloat reports whether n survives conversion to a float of the given
// width unchanged. NaN and infinities count as exact.
func exactFloat(n *Node, v float64, width int) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return true
	}
	if n.scalar == ScalarInt {
		if v >= 18446744073709551616.0 || uint64(math.Abs(v)) != n.mag {
			return false
		}
	}
	if width == 32 {
		return float64(float32(v)) == v
	}
	return true
}

func (n *Node) numberText() string {
	if n.scalar == ScalarInt {
		s := strconv.FormatUint(n.mag, 10)
		if n.neg {
			return "-" + s
		}
		return s
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// intRange renders the bounds of a width-bit integer.
func intRange(signed bool, width int) (string, string) {
	if !signed {
		return "0", strconv.FormatUint(bitMask(width), 10)
	}
	limit := uint64(1) << uint(width-1)
	return "-" + strconv.FormatUint(limit, 10), strconv.FormatUint(limit-1, 10)
}

func putBits(dst []byte, order binary.ByteOrder, width int, v uint64) {
	switch width {
	case 8:
		dst[0] = byte(v)
	case 16:
		order.PutUint16(dst, uint16(v))
	case 32:
		order.PutUint32(dst, uint32(v))
	case 64:
		order.PutUint64(dst, v)
	}
}

func getBits(src []byte, order binary.ByteOrder, width int) uint64 {
	switch width {
	case 8:
		return uint64(src[0])
	case 16:
		return uint64(order.Uint16(src))
	case 32:
		return uint64(order.Uint32(src))
	default:
		return order.Uint64(src)
	}
}
