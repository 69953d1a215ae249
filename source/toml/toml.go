// Package toml turns TOML documents into recmap token streams using
// pelletier/go-toml/v2. TOML tables decode into Go maps, so keys are emitted
// in sorted order.
package toml

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/reoring/recmap"
	eng "github.com/reoring/recmap/internal/engine"
)

// NewBytes parses a TOML document.
func NewBytes(b []byte) (recmap.Source, error) {
	var doc map[string]any
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, wrap(err)
	}
	return fromMap(doc, int64(len(b)))
}

// NewReader parses a TOML document read from r.
func NewReader(r io.Reader) (recmap.Source, error) {
	var doc map[string]any
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, wrap(err)
	}
	return fromMap(doc, -1)
}

func wrap(err error) error {
	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, col := de.Position()
		return fmt.Errorf("toml: %d:%d: %w", row, col, err)
	}
	return fmt.Errorf("toml: %w", err)
}

func fromMap(doc map[string]any, size int64) (recmap.Source, error) {
	e := &eng.Emitter{}
	if err := emit(e, doc); err != nil {
		return nil, err
	}
	return e.Source(size), nil
}

func emit(e *eng.Emitter, v any) error {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.Emit(eng.Token{Kind: eng.KindBeginObject, Offset: -1})
		for _, k := range keys {
			e.Emit(eng.Token{Kind: eng.KindKey, String: k, Offset: -1})
			if err := emit(e, t[k]); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		e.Emit(eng.Token{Kind: eng.KindEndObject, Offset: -1})
	case []any:
		e.Emit(eng.Token{Kind: eng.KindBeginArray, Offset: -1})
		for i, it := range t {
			if err := emit(e, it); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		e.Emit(eng.Token{Kind: eng.KindEndArray, Offset: -1})
	case string:
		e.Emit(eng.Token{Kind: eng.KindString, String: t, Offset: -1})
	case bool:
		e.Emit(eng.Token{Kind: eng.KindBool, Bool: t, Offset: -1})
	case int64:
		e.Emit(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(t, 10), Offset: -1})
	case float64:
		lit := strconv.FormatFloat(t, 'g', -1, 64)
		if _, err := strconv.ParseInt(lit, 10, 64); err == nil {
			// Keep 3.0 a float.
			lit += ".0"
		}
		e.Emit(eng.Token{Kind: eng.KindNumber, Number: lit, Offset: -1})
	case time.Time:
		e.Emit(eng.Token{Kind: eng.KindString, String: t.Format(time.RFC3339Nano), Offset: -1})
	case fmt.Stringer:
		// LocalDate, LocalTime, LocalDateTime
		e.Emit(eng.Token{Kind: eng.KindString, String: t.String(), Offset: -1})
	case nil:
		e.Emit(eng.Token{Kind: eng.KindNull, Offset: -1})
	default:
		return fmt.Errorf("toml: unsupported value %T", v)
	}
	return nil
}
