package recmap

import (
	"sort"

	js "github.com/reoring/recmap/jsonschema"
)

// JSONSchema describes the documents rec accepts: nested objects for dotted
// paths, integer bounds per width, maxLength for bytes and maxItems for
// arrays and matrices. Keys not named by the record are allowed.
func (r *Record) JSONSchema() *js.Schema {
	root := &js.Schema{Schema: js.Draft, Title: r.name, Type: "object", AdditionalProperties: true}
	for _, f := range r.Leaves() {
		parent := root
		for _, seg := range f.Path[:len(f.Path)-1] {
			parent = childObject(parent, seg.String())
		}
		addProperty(parent, f.Path[len(f.Path)-1].String(), leafSchema(f))
	}
	return root
}

func childObject(parent *js.Schema, key string) *js.Schema {
	if s, ok := parent.Properties[key]; ok {
		return s
	}
	s := &js.Schema{Type: "object", AdditionalProperties: true}
	addProperty(parent, key, s)
	return s
}

func addProperty(parent *js.Schema, key string, s *js.Schema) {
	if parent.Properties == nil {
		parent.Properties = map[string]*js.Schema{}
	}
	parent.Properties[key] = s
	parent.Required = append(parent.Required, key)
	sort.Strings(parent.Required)
}

func leafSchema(f Field) *js.Schema {
	switch f.Kind {
	case KindBytes:
		s := &js.Schema{Type: "string", MaxLength: js.Int(f.Length)}
		if f.Strict {
			s.MinLength = js.Int(f.Length)
		}
		return s
	case KindArray:
		s := &js.Schema{Type: "array", Items: elemSchema(f.ElemKind(), f.Width), MaxItems: js.Int(f.Length)}
		if f.Strict {
			s.MinItems = js.Int(f.Length)
		}
		if f.Elem == KindUint && f.Width == 8 {
			str := &js.Schema{Type: "string", MaxLength: js.Int(f.Length)}
			if f.Strict {
				str.MinLength = js.Int(f.Length)
			}
			return &js.Schema{OneOf: []*js.Schema{s, str}}
		}
		return s
	case KindMatrix:
		s := elemSchema(f.ElemKind(), f.Width)
		for i := len(f.Dims) - 1; i >= 0; i-- {
			s = &js.Schema{Type: "array", Items: s, MaxItems: js.Int(f.Dims[i])}
			if f.Strict {
				s.MinItems = js.Int(f.Dims[i])
			}
		}
		return s
	}
	s := elemSchema(f.Kind, f.Width)
	if !f.IsBitmap() {
		return s
	}
	named := &js.Schema{Type: "object", AdditionalProperties: true}
	for _, bf := range f.Bits {
		addProperty(named, bf.Name, elemSchema(KindUint, bf.Bits))
	}
	return &js.Schema{OneOf: []*js.Schema{s, named}}
}

// elemSchema works for any width up to 64, including bit runs.
func elemSchema(k Kind, width int) *js.Schema {
	if k == KindFloat {
		return &js.Schema{Type: "number"}
	}
	lo, hi := intRange(k == KindInt, width)
	return &js.Schema{Type: "integer", Minimum: js.Num(lo), Maximum: js.Num(hi)}
}
