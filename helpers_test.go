package canopy

import (
	"errors"
	"math"
	"testing"
)

// countingObject records every write so tests can assert that an update
// touched nothing.
type countingObject struct {
	*BaseObject
	sets   int
	clears int
}

func (o *countingObject) SetProp(key string, v Value) {
	o.sets++
	o.BaseObject.SetProp(key, v)
}

func (o *countingObject) ClearProp(key string) {
	o.clears++
	o.BaseObject.ClearProp(key)
}

func (o *countingObject) mutations() int { return o.sets + o.clears }

func testRegistry() *Registry {
	r := DefaultRegistry()
	r.Register(RegistryEntry{Type: "counted", New: func(Args) (Object, error) {
		return &countingObject{BaseObject: newBaseObject("counted", object3DDefaults())}, nil
	}})
	r.Register(RegistryEntry{Type: "broken", New: func(Args) (Object, error) {
		return nil, errors.New("boom")
	}})
	return r
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(testRegistry())
	s.SetSize(100, 100)
	return s
}

func mustRender(t *testing.T, s *Store, d *Description) {
	t.Helper()
	if err := s.Render(d); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

// findKey returns the first live instance with key, searching the whole
// store.
func findKey(s *Store, key string) *Instance {
	var found *Instance
	s.Root().walk(func(inst *Instance) {
		if found == nil && inst.Key == key {
			found = inst
		}
	})
	return found
}

func childTypes(inst *Instance) []string {
	var out []string
	for _, c := range inst.Children() {
		out = append(out, c.Type)
	}
	return out
}

func childKeys(inst *Instance) []string {
	var out []string
	for _, c := range inst.Children() {
		out = append(out, c.Key)
	}
	return out
}

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVecNear(t *testing.T, name string, got, want Vec3) {
	t.Helper()
	if got.Sub(want).Len() > 1e-6 {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

// boxMesh describes a clickable unit box at pos.
func boxMesh(key string, pos Record, h *Handler) *Description {
	props := P("position", pos)
	if h != nil {
		props = append(props, Prop{"onClick", h})
	}
	return El("mesh", props,
		El("boxGeometry", nil),
		El("meshBasicMaterial", nil),
	).WithKey(key)
}
