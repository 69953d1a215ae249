package recmap

import (
	"fmt"
	"math/bits"
)

// BitValue is one decoded entry of a bitmap field.
type BitValue struct {
	Name  string
	Bits  int
	Value uint64
}

// bitMask returns the mask for an n-bit run (n <= 64).
func bitMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// PackBits packs named values into the storage word, least significant bit
// first in table order. Every named entry must be present and fit its width.
func (f Field) PackBits(values map[string]uint64) (uint64, error) {
	if !f.IsBitmap() {
		return 0, fmt.Errorf("recmap: %s has no bit table", f.Path)
	}
	var word uint64
	shift := 0
	for _, bf := range f.Bits {
		v, ok := values[bf.Name]
		if !ok {
			return 0, fmt.Errorf("recmap: %s: bit field %q missing", f.Path, bf.Name)
		}
		if bits.Len64(v) > bf.Bits {
			return 0, fmt.Errorf("recmap: %s: bit field %q value %d exceeds %d bits", f.Path, bf.Name, v, bf.Bits)
		}
		word |= v << uint(shift)
		shift += bf.Bits
	}
	return word, nil
}

// UnpackBits splits a storage word according to the bit table.
func (f Field) UnpackBits(word uint64) []BitValue {
	out := make([]BitValue, 0, len(f.Bits))
	shift := 0
	for _, bf := range f.Bits {
		out = append(out, BitValue{Name: bf.Name, Bits: bf.Bits, Value: (word >> uint(shift)) & bitMask(bf.Bits)})
		shift += bf.Bits
	}
	return out
}
