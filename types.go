package recmap

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Endianness selects the byte order of multi-byte fields.
type Endianness int

const (
	LittleEndian Endianness = iota // Default.
	BigEndian
)

// Order returns the encoding/binary byte order for e.
func (e Endianness) Order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// ParseEndianness accepts "little"/"le" and "big"/"be" (case-insensitive).
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "little", "le":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return LittleEndian, fmt.Errorf("recmap: unknown endianness %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Endianness) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Endianness) UnmarshalText(b []byte) error {
	v, err := ParseEndianness(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Severity expresses the severity level for source-level findings.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Options bundles validation and encoding options. Functions taking
// ...Options use the last value supplied.
type Options struct {
	ByteOrder Endianness
	// Padding fills unused bytes: alignment gaps, short strings, short arrays.
	Padding byte
	// Strict rejects lossy conversions (non-integral floats into integer
	// fields, floats not exactly representable in binary32).
	Strict bool
	// AllowNonFinite lets NaN and ±Inf through float fields.
	AllowNonFinite bool
	// FailFast stops validation at the first issue.
	FailFast bool
	// ExpandBitmaps makes Decode render bitmap fields as maps of named bits.
	ExpandBitmaps bool
	// Parallelism bounds EncodeAll fan-out (<= 0 means GOMAXPROCS).
	Parallelism int
}

// SourceOpt configures how documents are turned into value trees.
type SourceOpt struct {
	OnDuplicateKey Severity // Warn records a finding, Error rejects the document.
	MaxDepth       int
	MaxBytes       int64
}

func lastOpt(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}
