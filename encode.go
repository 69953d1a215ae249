package recmap

import "bytes"

// EncodedRecord is the output of Encode. It is immutable: Bytes returns a copy.
type EncodedRecord struct {
	data  []byte
	rec   *Record
	order Endianness
}

// Bytes returns a copy of the encoded buffer.
func (e *EncodedRecord) Bytes() []byte { return bytes.Clone(e.data) }

// Len returns the buffer length, always Record().Size().
func (e *EncodedRecord) Len() int { return len(e.data) }

// Record returns the record the buffer was produced with.
func (e *EncodedRecord) Record() *Record { return e.rec }

// ByteOrder returns the byte order used for multi-byte fields.
func (e *EncodedRecord) ByteOrder() Endianness { return e.order }

// Encode writes every field of rec, resolved from root, at its offset. The
// buffer is first filled with Options.Padding so alignment gaps and unfilled
// string or array tails carry the padding byte. A word swapped record is
// swapped before its checksum is computed.
//
// Strings longer than their field are reported as Issues even when Validate
// was skipped. Any other coercion failure means the input did not pass
// validation and is returned as *InvariantError; rec stays usable.
func Encode(rec *Record, root *Node, opts ...Options) (*EncodedRecord, error) {
	o := lastOpt(opts)
	buf := bytes.Repeat([]byte{o.Padding}, rec.Size())

	strict := o
	strict.FailFast = true
	c := newCoercer(strict, buf)
	c.record(rec, root)
	if len(c.issues) > 0 {
		is := c.issues[0]
		if is.Code == CodeStringTooLong {
			return nil, Issues{is}
		}
		return nil, &InvariantError{Issue: is}
	}

	if rec.wordSwap {
		swapWords(buf)
	}
	if rec.checksum != nil {
		rec.putChecksum(buf, o)
	}
	return &EncodedRecord{data: buf, rec: rec, order: o.ByteOrder}, nil
}

// Transcode validates root and encodes it when no issue was found. Data
// problems come back as Issues.
func Transcode(rec *Record, root *Node, opts ...Options) (*EncodedRecord, error) {
	if iss := Validate(rec, root, opts...); len(iss) > 0 {
		return nil, iss
	}
	return Encode(rec, root, opts...)
}
