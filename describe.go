package canopy

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Description is the immutable declarative form of one node. A new tree of
// descriptions is submitted to Reconciler.Render each time the scene changes.
type Description struct {
	// Type is the registry tag, e.g. "mesh" or "boxGeometry".
	Type string
	// Key identifies the node among its siblings across renders. Optional.
	Key string
	// Args are the constructor arguments. Any change forces a rebuild.
	Args Args
	// Props are applied in order after construction and patched on update.
	Props Props
	// Children are mounted in order.
	Children []*Description
}

// El builds a Description. It is shorthand for the struct literal in code
// that assembles trees by hand.
func El(typeTag string, props Props, children ...*Description) *Description {
	return &Description{Type: typeTag, Props: props, Children: children}
}

// WithArgs returns a copy of d with constructor arguments set.
func (d *Description) WithArgs(args ...Value) *Description {
	c := *d
	c.Args = Args(args)
	return &c
}

// WithKey returns a copy of d with the key set.
func (d *Description) WithKey(key string) *Description {
	c := *d
	c.Key = key
	return &c
}

// --- YAML scene files ---

// Bindings resolves names used in scene files to values that cannot be
// written in YAML.
type Bindings struct {
	// Handlers maps a name used under an on* key to its handler.
	Handlers map[string]*Handler
	// Refs maps a name used under the ref key to its callback.
	Refs map[string]*Ref
	// Handles maps a name written as "$name" to an opaque resource.
	Handles map[string]Handle
}

// LoadDescription reads a scene file.
func LoadDescription(path string, b Bindings) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseDescription(data, b)
}

// ParseDescription decodes a YAML scene description:
//
//	type: group
//	children:
//	  - type: mesh
//	    key: box
//	    props:
//	      position: {x: 1, y: 0, z: -3}
//	      onClick: select
//	    children:
//	      - type: boxGeometry
//	        args: [1, 1, 1]
//
// Prop order in the file is preserved.
func ParseDescription(data []byte, b Bindings) (*Description, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("parse scene: empty document")
	}
	d, err := decodeDescription(doc.Content[0], b)
	if err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return d, nil
}

func decodeDescription(n *yaml.Node, b Bindings) (*Description, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: node must be a mapping", n.Line)
	}
	d := &Description{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "type":
			d.Type = v.Value
		case "key":
			d.Key = v.Value
		case "args":
			if v.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("line %d: args must be a sequence", v.Line)
			}
			for _, a := range v.Content {
				val, err := decodeValue(a, b)
				if err != nil {
					return nil, err
				}
				d.Args = append(d.Args, val)
			}
		case "props":
			if v.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: props must be a mapping", v.Line)
			}
			for j := 0; j+1 < len(v.Content); j += 2 {
				key, raw := v.Content[j].Value, v.Content[j+1]
				val, err := decodeProp(key, raw, b)
				if err != nil {
					return nil, err
				}
				d.Props = append(d.Props, Prop{Key: key, Value: val})
			}
		case "children":
			if v.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("line %d: children must be a sequence", v.Line)
			}
			for _, c := range v.Content {
				child, err := decodeDescription(c, b)
				if err != nil {
					return nil, err
				}
				d.Children = append(d.Children, child)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown field %q", k.Line, k.Value)
		}
	}
	if d.Type == "" {
		return nil, fmt.Errorf("line %d: node has no type", n.Line)
	}
	return d, nil
}

func decodeProp(key string, n *yaml.Node, b Bindings) (Value, error) {
	switch {
	case isHandlerKey(key):
		h, ok := b.Handlers[n.Value]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown handler %q for %s", n.Line, n.Value, key)
		}
		return h, nil
	case key == RefKey:
		r, ok := b.Refs[n.Value]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown ref %q", n.Line, n.Value)
		}
		return r, nil
	}
	return decodeValue(n, b)
}

func decodeValue(n *yaml.Node, b Bindings) (Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return Float(f), nil
		case "!!bool":
			var v bool
			if err := n.Decode(&v); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return Bool(v), nil
		case "!!null":
			return nil, nil
		}
		if len(n.Value) > 1 && n.Value[0] == '$' {
			h, ok := b.Handles[n.Value[1:]]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown handle %q", n.Line, n.Value)
			}
			return h, nil
		}
		return String(n.Value), nil
	case yaml.MappingNode:
		rec := make(Record, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := decodeValue(n.Content[i+1], b)
			if err != nil {
				return nil, err
			}
			rec[n.Content[i].Value] = v
		}
		return rec, nil
	case yaml.SequenceNode:
		out := make(Args, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeValue(c, b)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return decodeValue(n.Alias, b)
	}
	return nil, fmt.Errorf("line %d: unsupported value", n.Line)
}
