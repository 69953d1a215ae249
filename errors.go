package recmap

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodePathNotFound    = "path_not_found"
	CodeTypeMismatch    = "type_mismatch"
	CodeIndexOutOfRange = "index_out_of_range"
	CodeIntegerOverflow = "integer_overflow"
	CodeStringTooLong   = "string_too_long"
	CodeNonFiniteFloat  = "non_finite_float"
	CodeLengthMismatch  = "length_mismatch"
	CodePrecisionLoss   = "precision_loss"
	CodeDuplicateKey    = "duplicate_key"
	CodeParseError      = "parse_error"
	CodeTruncated       = "truncated"
	// Schema construction (fatal to NewRecord)
	CodeSchemaOverlap    = "schema_overlap"
	CodeSchemaMisaligned = "schema_misaligned"
	CodeSchemaInvalid    = "schema_invalid"
	CodeSchemaConflict   = "schema_conflict"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // Dotted path of the offending field or element (for example: coefficients.2).
	Field   string // Dotted path of the schema field the issue belongs to.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"max":255, "got":300})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. integer_overflow at device.id
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes returns the issue codes in order. Handy for assertions and logs.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i := range iss {
		out[i] = iss[i].Code
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// SchemaError reports a Record that cannot be constructed. It signals a bug
// in the schema, not in the input document.
type SchemaError struct {
	Code    string
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("recmap: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("recmap: %s at %s: %s", e.Code, e.Field, e.Message)
}

// ErrInvariant marks coercion failures the encoder hit on input that should
// already have passed validation.
var ErrInvariant = errors.New("recmap: encoder invariant violated")

// InvariantError carries the issue that broke the encoder invariant.
type InvariantError struct {
	Issue Issue
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %s at %s", ErrInvariant, e.Issue.Code, e.Issue.Path)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

var (
	// ErrShortBuffer is returned by Decode when the input is smaller than the record.
	ErrShortBuffer = errors.New("recmap: buffer shorter than record")
	// ErrChecksumMismatch is returned by Decode when the stored CRC does not match.
	ErrChecksumMismatch = errors.New("recmap: checksum mismatch")
)
