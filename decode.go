package recmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Decode rebuilds a value tree from an encoded buffer. Field paths become
// nested maps, arrays and matrices become sequences, bytes fields become
// strings with trailing padding removed. Integers and floats are bit-exact.
// When rec has a checksum slot the stored CRC is verified first. data is
// read as stored, word swapped when rec.WordSwap is set.
func Decode(rec *Record, data []byte, opts ...Options) (*Node, error) {
	o := lastOpt(opts)
	if len(data) < rec.Size() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrShortBuffer, len(data), rec.Size())
	}
	data = data[:rec.Size()]
	if rec.checksum != nil {
		if err := rec.verifyChecksum(data, o); err != nil {
			return nil, err
		}
	}
	if rec.wordSwap {
		data = bytes.Clone(data)
		swapWords(data)
	}

	root := Map()
	for _, f := range rec.Leaves() {
		v := decodeField(f, data, o)
		parent := root
		for _, seg := range f.Path[:len(f.Path)-1] {
			key := seg.String()
			next, ok := parent.values[key]
			if !ok {
				next = Map()
				parent.set(key, next)
			}
			parent = next
		}
		parent.set(f.Path[len(f.Path)-1].String(), v)
	}
	return root, nil
}

func decodeField(f Field, data []byte, o Options) *Node {
	order := o.ByteOrder.Order()
	switch f.Kind {
	case KindBytes:
		b := data[f.Offset : f.Offset+f.Length]
		for len(b) > 0 && b[len(b)-1] == o.Padding {
			b = b[:len(b)-1]
		}
		return String(string(b))
	case KindArray:
		items := make([]*Node, f.Length)
		for i := range items {
			items[i] = decodeElem(f, data[f.Offset+i*f.ElemSize():], order)
		}
		return Seq(items...)
	case KindMatrix:
		return decodeMatrix(f, data, f.Dims, f.Offset, o)
	}
	n := decodeElem(f, data[f.Offset:], order)
	if f.IsBitmap() && o.ExpandBitmaps {
		word, _ := n.Uint()
		m := Map()
		for _, bv := range f.UnpackBits(word) {
			m.set(bv.Name, Uint(bv.Value))
		}
		return m
	}
	return n
}

func decodeMatrix(f Field, data []byte, dims []int, off int, o Options) *Node {
	stride := f.ElemSize()
	for _, d := range dims[1:] {
		stride *= d
	}
	items := make([]*Node, dims[0])
	for i := range items {
		if len(dims) == 1 {
			items[i] = decodeElem(f, data[off+i*stride:], o.ByteOrder.Order())
		} else {
			items[i] = decodeMatrix(f, data, dims[1:], off+i*stride, o)
		}
	}
	return Seq(items...)
}

func decodeElem(f Field, src []byte, order binary.ByteOrder) *Node {
	raw := getBits(src, order, f.Width)
	switch f.ElemKind() {
	case KindInt:
		shift := uint(64 - f.Width)
		return Int(int64(raw<<shift) >> shift)
	case KindFloat:
		if f.Width == 32 {
			return Float(float64(math.Float32frombits(uint32(raw))))
		}
		return Float(math.Float64frombits(raw))
	default:
		return Uint(raw)
	}
}
