package recmap

import (
	"bytes"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// MarshalJSON renders the tree as JSON, keeping map keys in document order.
// Non-finite floats have no JSON form and are rendered as strings ("NaN",
// "+Inf", "-Inf").
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.kind {
	case NodeMap:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := n.values[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case NodeSequence:
		buf.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		switch n.scalar {
		case ScalarNull:
			buf.WriteString("null")
		case ScalarBool:
			buf.WriteString(strconv.FormatBool(n.b))
		case ScalarInt:
			if n.neg {
				buf.WriteByte('-')
			}
			buf.WriteString(strconv.FormatUint(n.mag, 10))
		case ScalarFloat:
			switch {
			case math.IsNaN(n.f):
				buf.WriteString(`"NaN"`)
			case math.IsInf(n.f, 1):
				buf.WriteString(`"+Inf"`)
			case math.IsInf(n.f, -1):
				buf.WriteString(`"-Inf"`)
			default:
				fb, err := json.Marshal(n.f)
				if err != nil {
					return err
				}
				buf.Write(fb)
			}
		case ScalarString:
			sb, err := json.Marshal(n.s)
			if err != nil {
				return err
			}
			buf.Write(sb)
		}
	}
	return nil
}
