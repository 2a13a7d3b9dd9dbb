package canopy

// Object is the host-graph node an Instance wraps. The rendering engine is
// external to canopy; Object is the boundary it is reached through. Custom
// engines register their own constructors with a Registry.
type Object interface {
	// Prop returns the current value of a field.
	Prop(key string) (Value, bool)
	// SetProp assigns a field.
	SetProp(key string, v Value)
	// ClearProp removes a field so that it reads as unset.
	ClearProp(key string)
	// Dispose releases any external resources held by the object.
	Dispose()
}

// BaseObject is a field-bag Object used by the built-in catalog. It keeps
// every field as a Value so partial updates and resets need no reflection.
type BaseObject struct {
	kind     string
	props    map[string]Value
	disposed bool
}

func newBaseObject(kind string, defaults Props) *BaseObject {
	o := &BaseObject{kind: kind, props: make(map[string]Value, len(defaults)+4)}
	for _, p := range defaults {
		o.props[p.Key] = p.Value
	}
	return o
}

// Kind returns the catalog type tag the object was built for.
func (o *BaseObject) Kind() string { return o.kind }

func (o *BaseObject) Prop(key string) (Value, bool) {
	v, ok := o.props[key]
	return v, ok
}

func (o *BaseObject) SetProp(key string, v Value) {
	o.props[key] = v
}

func (o *BaseObject) ClearProp(key string) {
	delete(o.props, key)
}

func (o *BaseObject) Dispose() {
	o.disposed = true
}

// IsDisposed reports whether Dispose has been called.
func (o *BaseObject) IsDisposed() bool { return o.disposed }

// object3DDefaults are the transform fields every scene object starts with.
func object3DDefaults() Props {
	return Props{
		{"position", Vec(0, 0, 0)},
		{"rotation", Vec(0, 0, 0)},
		{"scale", Vec(1, 1, 1)},
		{"visible", Bool(true)},
	}
}

func materialDefaults() Props {
	return Props{
		{"color", String("#ffffff")},
		{"opacity", Float(1)},
		{"transparent", Bool(false)},
		{"wireframe", Bool(false)},
	}
}

func lightDefaults(args Args) (Props, error) {
	color := Value(String("#ffffff"))
	if len(args) > 0 {
		color = args[0]
	}
	intensity, err := args.FloatArg(1, 1)
	if err != nil {
		return nil, err
	}
	return append(object3DDefaults(),
		Prop{"color", color},
		Prop{"intensity", Float(intensity)},
	), nil
}

// isVisible reports the object's visible flag, defaulting to true.
func isVisible(o Object) bool {
	if o == nil {
		return true
	}
	v, ok := o.Prop("visible")
	if !ok {
		return true
	}
	b, ok := v.(Bool)
	return !ok || bool(b)
}
