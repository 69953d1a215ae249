package recmap

import (
	"bytes"
	"fmt"
	"slices"
)

// checksumInput returns the bytes the checksum of r covers. buf holds the
// record as stored, so it is already word swapped when r.wordSwap is set.
func (r *Record) checksumInput(buf []byte, pad byte) []byte {
	cs := r.checksum
	switch cs.Area {
	case AreaBlockZero, AreaBlockPad:
		block := bytes.Clone(buf[:r.size])
		fill := byte(0)
		if cs.Area == AreaBlockPad {
			fill = pad
		}
		for i := cs.Offset; i < cs.Offset+4; i++ {
			block[i] = fill
		}
		return block
	case AreaBlockOmit:
		return slices.Concat(buf[:cs.Offset], buf[cs.Offset+4:r.size])
	}
	if !cs.AtEnd {
		return buf[:cs.Offset]
	}
	end := r.dataEnd
	if r.wordSwap {
		end = alignUp(end, 2)
	}
	return buf[:end]
}

// putChecksum computes the CRC of buf and stores it in the slot.
func (r *Record) putChecksum(buf []byte, o Options) {
	cs := r.checksum
	slot := buf[cs.Offset : cs.Offset+4]
	o.ByteOrder.Order().PutUint32(slot, cs.Params.Checksum(r.checksumInput(buf, o.Padding)))
	if r.wordSwap {
		swapWords(slot)
	}
}

func (r *Record) verifyChecksum(data []byte, o Options) error {
	cs := r.checksum
	stored := bytes.Clone(data[cs.Offset : cs.Offset+4])
	if r.wordSwap {
		swapWords(stored)
	}
	want := o.ByteOrder.Order().Uint32(stored)
	if got := cs.Params.Checksum(r.checksumInput(data, o.Padding)); got != want {
		return fmt.Errorf("%w: stored 0x%08X, computed 0x%08X", ErrChecksumMismatch, want, got)
	}
	return nil
}

// swapWords exchanges the bytes of every 16-bit word in b. A trailing odd
// byte stays in place.
func swapWords(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}
