package canopy

import (
	"fmt"
	"sort"
	"strings"
)

// Value is a property or constructor-argument value. The set of
// implementations is closed: Float, Bool, String, Handle, Record, Args,
// *Handler and *Ref.
type Value interface {
	isValue()
}

// Float is a numeric scalar.
type Float float64

// Bool is a boolean scalar.
type Bool bool

// String is a string scalar.
type String string

// Handle wraps an opaque external resource (a texture, a pose record, an
// *ebiten.Image). Two handles are equal only when they wrap the same pointer.
type Handle struct {
	ref any
}

// NewHandle wraps p as an opaque value.
func NewHandle[T any](p *T) Handle {
	if p == nil {
		return Handle{}
	}
	return Handle{ref: p}
}

// Get returns the wrapped pointer, or nil.
func (h Handle) Get() any { return h.ref }

// Record is a composite value. Applying a Record merges its fields onto the
// existing value of the property instead of replacing it.
type Record map[string]Value

// Args is an ordered constructor-argument list.
type Args []Value

// Handler is an event-handler property value. Handlers compare by pointer
// identity, so reuse the same *Handler across renders to avoid patches.
type Handler struct {
	fn func(Event)
}

// On wraps fn as an event handler value.
func On(fn func(Event)) *Handler {
	return &Handler{fn: fn}
}

// Call invokes the handler.
func (h *Handler) Call(e Event) {
	if h != nil && h.fn != nil {
		h.fn(e)
	}
}

// Ref is a ref-callback property value. It is called with the live instance
// after props are applied and with nil when the instance is destroyed.
type Ref struct {
	fn func(*Instance)
}

// RefFunc wraps fn as a ref-callback value.
func RefFunc(fn func(*Instance)) *Ref {
	return &Ref{fn: fn}
}

func (r *Ref) call(inst *Instance) {
	if r != nil && r.fn != nil {
		r.fn(inst)
	}
}

func (Float) isValue()    {}
func (Bool) isValue()     {}
func (String) isValue()   {}
func (Handle) isValue()   {}
func (Record) isValue()   {}
func (Args) isValue()     {}
func (*Handler) isValue() {}
func (*Ref) isValue()     {}

// Vec returns a position/rotation/scale record.
func Vec(x, y, z float64) Record {
	return Record{"x": Float(x), "y": Float(y), "z": Float(z)}
}

// Equal reports deep equality. Records and Args compare structurally;
// handles, handlers and refs compare by identity.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Handle:
		bv, ok := b.(Handle)
		return ok && av.ref == bv.ref
	case *Handler:
		bv, ok := b.(*Handler)
		return ok && av == bv
	case *Ref:
		bv, ok := b.(*Ref)
		return ok && av == bv
	case Record:
		bv, ok := b.(Record)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	case Args:
		bv, ok := b.(Args)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("canopy: unknown value type %T", a))
	}
}

// merge returns a copy of r with the fields of patch written over it.
func (r Record) merge(patch Record) Record {
	out := make(Record, len(r)+len(patch))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Float returns the named field as a float64, or def.
func (r Record) Float(key string, def float64) float64 {
	if f, ok := r[key].(Float); ok {
		return float64(f)
	}
	return def
}

// vec3Of reads an {x,y,z} record, falling back to def per component.
func vec3Of(v Value, def Vec3) Vec3 {
	r, ok := v.(Record)
	if !ok {
		return def
	}
	return Vec3{r.Float("x", def.X), r.Float("y", def.Y), r.Float("z", def.Z)}
}

// FloatArg returns args[i] as a float64, or def when missing.
func (a Args) FloatArg(i int, def float64) (float64, error) {
	if i >= len(a) {
		return def, nil
	}
	f, ok := a[i].(Float)
	if !ok {
		return 0, fmt.Errorf("argument %d: want number, got %s", i, describeValue(a[i]))
	}
	return float64(f), nil
}

// describeValue returns a short human readable form for errors and logs.
func describeValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case Float:
		return fmt.Sprintf("%g", float64(x))
	case Bool:
		return fmt.Sprintf("%t", bool(x))
	case String:
		return fmt.Sprintf("%q", string(x))
	case Handle:
		return fmt.Sprintf("handle(%T)", x.ref)
	case *Handler:
		return "handler"
	case *Ref:
		return "ref"
	case Record:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + describeValue(x[k])
		}
		return "{" + strings.Join(parts, " ") + "}"
	case Args:
		parts := make([]string, len(x))
		for i, a := range x {
			parts[i] = describeValue(a)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// --- Props ---

// Prop is a single named property.
type Prop struct {
	Key   string
	Value Value
}

// Props is an ordered property list. Application follows list order;
// comparison ignores it.
type Props []Prop

// P builds a Props list from alternating key/value pairs.
// Panics if a key is not a string or the count is odd.
func P(kv ...any) Props {
	if len(kv)%2 != 0 {
		panic("canopy: P requires key/value pairs")
	}
	out := make(Props, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("canopy: P key %d is %T, want string", i/2, kv[i]))
		}
		var v Value
		if kv[i+1] != nil {
			v, ok = kv[i+1].(Value)
			if !ok {
				panic(fmt.Sprintf("canopy: P value for %q is %T, want Value", k, kv[i+1]))
			}
		}
		out = append(out, Prop{Key: k, Value: v})
	}
	return out
}

// Get returns the value for key. When a key appears more than once, the
// last occurrence wins.
func (p Props) Get(key string) (Value, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (p Props) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys returns the distinct keys in first-occurrence order.
func (p Props) Keys() []string {
	seen := make(map[string]bool, len(p))
	keys := make([]string, 0, len(p))
	for _, pr := range p {
		if !seen[pr.Key] {
			seen[pr.Key] = true
			keys = append(keys, pr.Key)
		}
	}
	return keys
}

// --- Reserved and conventional keys ---

// RefKey is the reserved ref-callback property name.
const RefKey = "ref"

// isHandlerKey reports whether key follows the "on" + capitalized verb
// convention.
func isHandlerKey(key string) bool {
	return len(key) > 2 && key[0] == 'o' && key[1] == 'n' && key[2] >= 'A' && key[2] <= 'Z'
}
