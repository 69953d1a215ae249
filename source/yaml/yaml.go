// Package yaml turns YAML documents into recmap token streams. Parsing goes
// through yaml.Node so duplicate keys keep their line and column.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/recmap"
	eng "github.com/reoring/recmap/internal/engine"
)

// NewBytes parses the first YAML document in b.
func NewBytes(b []byte) (recmap.Source, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	return fromNode(&root, int64(len(b)))
}

// NewReader parses the first YAML document read from r.
func NewReader(r io.Reader) (recmap.Source, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("yaml: empty document")
		}
		return nil, err
	}
	return fromNode(&root, -1)
}

func fromNode(root *yaml.Node, size int64) (recmap.Source, error) {
	if root.Kind == 0 {
		return nil, fmt.Errorf("yaml: empty document")
	}
	e := &eng.Emitter{}
	if err := emit(e, root, 0); err != nil {
		return nil, err
	}
	return e.Source(size), nil
}

// maxAliasDepth bounds alias expansion (billion laughs).
const maxAliasDepth = 64

func emit(e *eng.Emitter, n *yaml.Node, aliases int) error {
	at := eng.Token{Line: n.Line, Col: n.Column, Offset: -1}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			at.Kind = eng.KindNull
			e.Emit(at)
			return nil
		}
		return emit(e, n.Content[0], aliases)
	case yaml.AliasNode:
		if aliases >= maxAliasDepth {
			return fmt.Errorf("yaml: alias nesting deeper than %d at %d:%d", maxAliasDepth, n.Line, n.Column)
		}
		return emit(e, n.Alias, aliases+1)
	case yaml.MappingNode:
		at.Kind = eng.KindBeginObject
		e.Emit(at)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			e.Emit(eng.Token{Kind: eng.KindKey, String: k.Value, Line: k.Line, Col: k.Column, Offset: -1})
			if err := emit(e, n.Content[i+1], aliases); err != nil {
				return err
			}
		}
		at.Kind = eng.KindEndObject
		e.Emit(at)
		return nil
	case yaml.SequenceNode:
		at.Kind = eng.KindBeginArray
		e.Emit(at)
		for _, c := range n.Content {
			if err := emit(e, c, aliases); err != nil {
				return err
			}
		}
		at.Kind = eng.KindEndArray
		e.Emit(at)
		return nil
	case yaml.ScalarNode:
		return emitScalar(e, n, at)
	}
	return fmt.Errorf("yaml: unsupported node kind %d at %d:%d", n.Kind, n.Line, n.Column)
}

func emitScalar(e *eng.Emitter, n *yaml.Node, at eng.Token) error {
	switch n.ShortTag() {
	case "!!null":
		at.Kind = eng.KindNull
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return fmt.Errorf("yaml: %d:%d: %w", n.Line, n.Column, err)
		}
		at.Kind, at.Bool = eng.KindBool, b
	case "!!int":
		lit, err := intLiteral(n.Value)
		if err != nil {
			return fmt.Errorf("yaml: %d:%d: %w", n.Line, n.Column, err)
		}
		at.Kind, at.Number = eng.KindNumber, lit
	case "!!float":
		lit, err := floatLiteral(n.Value)
		if err != nil {
			return fmt.Errorf("yaml: %d:%d: %w", n.Line, n.Column, err)
		}
		at.Kind, at.Number = eng.KindNumber, lit
	default:
		// !!str, timestamps, binary and custom tags stay textual.
		at.Kind, at.String = eng.KindString, n.Value
	}
	e.Emit(at)
	return nil
}

// intLiteral normalizes YAML integer forms (0x, 0o, 0b, underscores) to decimal.
func intLiteral(v string) (string, error) {
	s := strings.ReplaceAll(v, "_", "")
	if strings.HasPrefix(s, "0") && len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
		// YAML 1.1 octal
		s = "0o" + s[1:]
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 0, 64)
	if err != nil {
		// Out of 64-bit range: fall back to a float literal.
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		}
		return "", fmt.Errorf("invalid integer %q", v)
	}
	return strconv.FormatUint(u, 10), nil
}

func floatLiteral(v string) (string, error) {
	switch strings.ToLower(v) {
	case ".inf", "+.inf":
		return strconv.FormatFloat(math.Inf(1), 'g', -1, 64), nil
	case "-.inf":
		return strconv.FormatFloat(math.Inf(-1), 'g', -1, 64), nil
	case ".nan":
		return "NaN", nil
	}
	s := strings.ReplaceAll(v, "_", "")
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", fmt.Errorf("invalid float %q", v)
	}
	// Keep the literal so 3.0 stays a float.
	return s, nil
}
