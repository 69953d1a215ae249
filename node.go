package recmap

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// NodeKind identifies the variant held by a Node.
type NodeKind int

const (
	NodeScalar NodeKind = iota
	NodeMap
	NodeSequence
)

func (k NodeKind) String() string {
	switch k {
	case NodeMap:
		return "map"
	case NodeSequence:
		return "sequence"
	default:
		return "scalar"
	}
}

// ScalarKind identifies the scalar payload of a NodeScalar.
type ScalarKind int

const (
	ScalarNull ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarString
	ScalarBool
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarInt:
		return "integer"
	case ScalarFloat:
		return "float"
	case ScalarString:
		return "string"
	case ScalarBool:
		return "bool"
	default:
		return "null"
	}
}

// Node is one element of a parsed document: a map, a sequence or a scalar.
// Trees are built by source drivers and treated as read-only afterwards.
type Node struct {
	kind NodeKind

	// map
	keys   []string
	values map[string]*Node

	// sequence
	items []*Node

	// scalar
	scalar ScalarKind
	neg    bool   // integer sign
	mag    uint64 // integer magnitude
	f      float64
	s      string
	b      bool
}

// Entry is a key/value pair used by Map.
type Entry struct {
	Key   string
	Value *Node
}

// E is shorthand for Entry{k, v}.
func E(k string, v *Node) Entry { return Entry{Key: k, Value: v} }

// Map builds an ordered map node. Later duplicates replace earlier values but
// keep the first position.
func Map(entries ...Entry) *Node {
	n := &Node{kind: NodeMap, values: make(map[string]*Node, len(entries))}
	for _, e := range entries {
		n.set(e.Key, e.Value)
	}
	return n
}

// Seq builds a sequence node.
func Seq(items ...*Node) *Node {
	return &Node{kind: NodeSequence, items: append([]*Node(nil), items...)}
}

// Int builds an integer scalar.
func Int(v int64) *Node {
	if v < 0 {
		return &Node{kind: NodeScalar, scalar: ScalarInt, neg: true, mag: uint64(-(v + 1)) + 1}
	}
	return &Node{kind: NodeScalar, scalar: ScalarInt, mag: uint64(v)}
}

// Uint builds a non-negative integer scalar covering the full uint64 range.
func Uint(v uint64) *Node { return &Node{kind: NodeScalar, scalar: ScalarInt, mag: v} }

// Float builds a float scalar.
func Float(v float64) *Node { return &Node{kind: NodeScalar, scalar: ScalarFloat, f: v} }

// String builds a string scalar.
func String(v string) *Node { return &Node{kind: NodeScalar, scalar: ScalarString, s: v} }

// Bool builds a bool scalar.
func Bool(v bool) *Node { return &Node{kind: NodeScalar, scalar: ScalarBool, b: v} }

// Null builds a null scalar.
func Null() *Node { return &Node{kind: NodeScalar, scalar: ScalarNull} }

// Number parses a textual number (JSON/YAML/TOML literal) into an integer
// scalar when it fits in [-2^63, 2^64-1] and into a float scalar otherwise.
func Number(text string) (*Node, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(i), nil
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return Uint(u), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("recmap: invalid number %q: %w", text, err)
	}
	return Float(f), nil
}

func (n *Node) set(k string, v *Node) {
	if _, ok := n.values[k]; !ok {
		n.keys = append(n.keys, k)
	}
	n.values[k] = v
}

// Kind returns the node variant.
func (n *Node) Kind() NodeKind { return n.kind }

// ScalarKind returns the scalar payload kind (ScalarNull for non-scalars).
func (n *Node) ScalarKind() ScalarKind {
	if n.kind != NodeScalar {
		return ScalarNull
	}
	return n.scalar
}

// IsNull reports whether n is a null scalar.
func (n *Node) IsNull() bool { return n.kind == NodeScalar && n.scalar == ScalarNull }

// Keys returns map keys in document order.
func (n *Node) Keys() []string { return append([]string(nil), n.keys...) }

// Get returns the value for key in a map node.
func (n *Node) Get(key string) (*Node, bool) {
	if n.kind != NodeMap {
		return nil, false
	}
	v, ok := n.values[key]
	return v, ok
}

// Len returns the number of entries (map) or items (sequence).
func (n *Node) Len() int {
	switch n.kind {
	case NodeMap:
		return len(n.keys)
	case NodeSequence:
		return len(n.items)
	default:
		return 0
	}
}

// Index returns the i-th item of a sequence node.
func (n *Node) Index(i int) (*Node, bool) {
	if n.kind != NodeSequence || i < 0 || i >= len(n.items) {
		return nil, false
	}
	return n.items[i], true
}

// Items returns the sequence items.
func (n *Node) Items() []*Node { return append([]*Node(nil), n.items...) }

// Int returns the integer value when it fits in int64.
func (n *Node) Int() (int64, bool) {
	if n.kind != NodeScalar || n.scalar != ScalarInt {
		return 0, false
	}
	if n.neg {
		if n.mag > 1<<63 {
			return 0, false
		}
		return -int64(n.mag-1) - 1, true
	}
	if n.mag > math.MaxInt64 {
		return 0, false
	}
	return int64(n.mag), true
}

// Uint returns the integer value when it is non-negative.
func (n *Node) Uint() (uint64, bool) {
	if n.kind != NodeScalar || n.scalar != ScalarInt || n.neg {
		return 0, false
	}
	return n.mag, true
}

// Float returns the value of a float or integer scalar as float64.
func (n *Node) Float() (float64, bool) {
	if n.kind != NodeScalar {
		return 0, false
	}
	switch n.scalar {
	case ScalarFloat:
		return n.f, true
	case ScalarInt:
		f := float64(n.mag)
		if n.neg {
			f = -f
		}
		return f, true
	}
	return 0, false
}

// Str returns the value of a string scalar.
func (n *Node) Str() (string, bool) {
	if n.kind != NodeScalar || n.scalar != ScalarString {
		return "", false
	}
	return n.s, true
}

// BoolValue returns the value of a bool scalar.
func (n *Node) BoolValue() (bool, bool) {
	if n.kind != NodeScalar || n.scalar != ScalarBool {
		return false, false
	}
	return n.b, true
}

// TypeName describes n for messages ("map", "sequence", "integer", ...).
func (n *Node) TypeName() string {
	if n == nil {
		return "missing"
	}
	if n.kind == NodeScalar {
		return n.scalar.String()
	}
	return n.kind.String()
}

// FromAny converts generic Go values (as produced by encoding/json, yaml.v3
// or go-toml into interface{} targets) into a Node. Map keys of plain Go maps
// are sorted since Go maps carry no order.
func FromAny(v any) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(string(t))
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Uint(uint64(t)), nil
	case uint8:
		return Uint(uint64(t)), nil
	case uint16:
		return Uint(uint64(t)), nil
	case uint32:
		return Uint(uint64(t)), nil
	case uint64:
		return Uint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []any:
		items := make([]*Node, 0, len(t))
		for i, it := range t {
			c, err := FromAny(it)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, c)
		}
		return &Node{kind: NodeSequence, items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := Map()
		for _, k := range keys {
			c, err := FromAny(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out.set(k, c)
		}
		return out, nil
	}
	// Typed slices and maps ([]int, map[string]int, ...) go through reflection.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]*Node, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			c, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, c)
		}
		return &Node{kind: NodeSequence, items: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("recmap: unsupported map key type %s", rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return FromAny(m)
	}
	return nil, fmt.Errorf("recmap: unsupported value type %T", v)
}

// MapBuilder assembles ordered map nodes incrementally; source drivers use it
// while walking their own parse trees.
type MapBuilder struct{ n *Node }

// NewMapBuilder returns an empty builder.
func NewMapBuilder() *MapBuilder { return &MapBuilder{n: Map()} }

// Has reports whether key was already added.
func (b *MapBuilder) Has(key string) bool {
	_, ok := b.n.values[key]
	return ok
}

// Set adds or replaces key.
func (b *MapBuilder) Set(key string, v *Node) { b.n.set(key, v) }

// Node returns the built map.
func (b *MapBuilder) Node() *Node { return b.n }
