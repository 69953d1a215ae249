// Package checksum computes parameterized CRC-32 values (Rocksoft model:
// polynomial, initial value, final xor, input/output reflection).
package checksum

import (
	"sync"

	"github.com/sigurn/crc"
)

// Params describes a CRC-32 variant.
type Params struct {
	Polynomial uint32 // Normal (non-reflected) form, e.g. 0x04C11DB7.
	Init       uint32
	XorOut     uint32
	RefIn      bool
	RefOut     bool
}

var (
	// IEEE is CRC-32/ISO-HDLC as used by zip, PNG and hash/crc32.
	IEEE = Params{Polynomial: 0x04C11DB7, Init: 0xFFFFFFFF, XorOut: 0xFFFFFFFF, RefIn: true, RefOut: true}
	// MPEG2 is CRC-32/MPEG-2 (non-reflected, no final xor).
	MPEG2 = Params{Polynomial: 0x04C11DB7, Init: 0xFFFFFFFF, XorOut: 0, RefIn: false, RefOut: false}
	// BZIP2 is CRC-32/BZIP2.
	BZIP2 = Params{Polynomial: 0x04C11DB7, Init: 0xFFFFFFFF, XorOut: 0xFFFFFFFF, RefIn: false, RefOut: false}
)

// tables caches one lookup table per Params.
var tables sync.Map

// Checksum computes the CRC of data.
func (p Params) Checksum(data []byte) uint32 {
	return uint32(p.table().CalculateCRC(data))
}

func (p Params) table() *crc.Table {
	if t, ok := tables.Load(p); ok {
		return t.(*crc.Table)
	}
	t, _ := tables.LoadOrStore(p, crc.NewTable(&crc.Parameters{
		Width:      32,
		Polynomial: uint64(p.Polynomial),
		ReflectIn:  p.RefIn,
		ReflectOut: p.RefOut,
		Init:       uint64(p.Init),
		FinalXor:   uint64(p.XorOut),
	}))
	return t.(*crc.Table)
}
