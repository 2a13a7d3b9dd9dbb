package canopy

import (
	"fmt"
	"sort"
	"strings"
)

// Constructor builds the host object for a node type from its constructor
// arguments.
type Constructor func(args Args) (Object, error)

// RegistryEntry describes one node type.
type RegistryEntry struct {
	// Type is the tag used in descriptions, e.g. "boxGeometry".
	Type string
	// New constructs the host object.
	New Constructor
	// Category decides which slot, if any, the node occupies under a slot host.
	Category Category
	// SlotHost marks types whose geometry/material children go into slots.
	SlotHost bool
}

// Registry maps type tags to constructors. Lookups ignore case, so
// "boxGeometry" and "BoxGeometry" resolve to the same entry. A Registry is
// built once at startup and read during reconciliation.
type Registry struct {
	entries map[string]RegistryEntry
}

// NewRegistry returns a registry holding the given entries.
func NewRegistry(entries ...RegistryEntry) *Registry {
	r := &Registry{entries: make(map[string]RegistryEntry, len(entries))}
	for _, e := range entries {
		r.Register(e)
	}
	return r
}

// Register adds or replaces an entry. Panics if the entry has no type or
// constructor.
func (r *Registry) Register(e RegistryEntry) {
	if e.Type == "" {
		panic("canopy: registry entry needs a type")
	}
	if e.New == nil {
		panic(fmt.Sprintf("canopy: registry entry %q needs a constructor", e.Type))
	}
	r.entries[strings.ToLower(e.Type)] = e
}

// Lookup resolves a type tag.
func (r *Registry) Lookup(typeTag string) (RegistryEntry, bool) {
	e, ok := r.entries[strings.ToLower(typeTag)]
	return e, ok
}

// Types returns the registered type tags in sorted order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Type)
	}
	sort.Strings(out)
	return out
}

// construct resolves typeTag and builds its object.
func (r *Registry) construct(typeTag string, args Args) (RegistryEntry, Object, error) {
	e, ok := r.Lookup(typeTag)
	if !ok {
		return RegistryEntry{}, nil, &UnknownNodeTypeError{Type: typeTag}
	}
	obj, err := e.New(args)
	if err != nil {
		return e, nil, fmt.Errorf("construct %s: %w", typeTag, err)
	}
	if obj == nil {
		return e, nil, fmt.Errorf("construct %s: constructor returned nil", typeTag)
	}
	return e, obj, nil
}

// CreateInstance builds a new, unattached instance of typeTag owned by s.
// Props are not applied; the reconciler does that after the instance has
// been created.
func (s *Store) CreateInstance(typeTag string, args Args) (*Instance, error) {
	e, obj, err := s.registry.construct(typeTag, args)
	if err != nil {
		return nil, err
	}
	inst := &Instance{
		Type:   e.Type,
		args:   args,
		entry:  e,
		object: obj,
		store:  s,
	}
	s.adopt(inst)
	return inst, nil
}

// --- Built-in catalog ---

func objectCtor(kind string) Constructor {
	return func(Args) (Object, error) {
		return newBaseObject(kind, object3DDefaults()), nil
	}
}

func materialCtor(kind string) Constructor {
	return func(args Args) (Object, error) {
		o := newBaseObject(kind, materialDefaults())
		// A single Record argument seeds the material parameters.
		if len(args) > 0 {
			params, ok := args[0].(Record)
			if !ok {
				return nil, fmt.Errorf("argument 0: want record, got %s", describeValue(args[0]))
			}
			for k, v := range params {
				o.SetProp(k, v)
			}
		}
		return o, nil
	}
}

func lightCtor(kind string) Constructor {
	return func(args Args) (Object, error) {
		defaults, err := lightDefaults(args)
		if err != nil {
			return nil, err
		}
		return newBaseObject(kind, defaults), nil
	}
}

func newPerspectiveCameraObject(args Args) (Object, error) {
	fov, err := args.FloatArg(0, defaultFOV)
	if err != nil {
		return nil, err
	}
	aspect, err := args.FloatArg(1, 1)
	if err != nil {
		return nil, err
	}
	near, err := args.FloatArg(2, defaultNear)
	if err != nil {
		return nil, err
	}
	far, err := args.FloatArg(3, defaultFar)
	if err != nil {
		return nil, err
	}
	return newBaseObject("perspectiveCamera", append(object3DDefaults(),
		Prop{"fov", Float(fov)},
		Prop{"aspect", Float(aspect)},
		Prop{"near", Float(near)},
		Prop{"far", Float(far)},
	)), nil
}

// DefaultRegistry returns a registry with the built-in catalog.
func DefaultRegistry() *Registry {
	return NewRegistry(
		RegistryEntry{Type: "scene", New: objectCtor("scene")},
		RegistryEntry{Type: "group", New: objectCtor("group")},
		RegistryEntry{Type: "mesh", New: objectCtor("mesh"), SlotHost: true},
		RegistryEntry{Type: "points", New: objectCtor("points"), SlotHost: true},
		RegistryEntry{Type: "boxGeometry", New: newBoxGeometry, Category: CategoryGeometry},
		RegistryEntry{Type: "sphereGeometry", New: newSphereGeometry, Category: CategoryGeometry},
		RegistryEntry{Type: "planeGeometry", New: newPlaneGeometry, Category: CategoryGeometry},
		RegistryEntry{Type: "meshBasicMaterial", New: materialCtor("meshBasicMaterial"), Category: CategoryMaterial},
		RegistryEntry{Type: "meshStandardMaterial", New: materialCtor("meshStandardMaterial"), Category: CategoryMaterial},
		RegistryEntry{Type: "ambientLight", New: lightCtor("ambientLight")},
		RegistryEntry{Type: "directionalLight", New: lightCtor("directionalLight")},
		RegistryEntry{Type: "perspectiveCamera", New: newPerspectiveCameraObject},
	)
}
