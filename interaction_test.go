package canopy

import (
	"errors"
	"testing"
)

// center is the pixel at the middle of the 100x100 test viewport.
var center = PointerEvent{Type: EventClick, OffsetX: 50, OffsetY: 50}

func TestNearestHitWins(t *testing.T) {
	s := newTestStore(t)
	var got []string
	handler := func(key string) *Handler {
		return On(func(Event) { got = append(got, key) })
	}
	// The camera sits at z=5 looking down -Z, and planes face +Z, so a plane
	// at z has distance 5-z.
	plane := func(key string, z float64) *Description {
		return El("mesh", P("position", Vec(0, 0, z), "onClick", handler(key)),
			El("planeGeometry", nil).WithArgs(Float(2), Float(2)),
		).WithKey(key)
	}
	mustRender(t, s, El("group", nil,
		plane("d5", 0),
		plane("d1", 4),
		plane("d3", 2),
	))

	ok, err := s.DispatchPointer(center)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("no handler invoked")
	}
	if len(got) != 1 || got[0] != "d1" {
		t.Errorf("invoked %v, want [d1]", got)
	}

	hits, err := s.Hits(Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Fatalf("hits = %d, want 3", len(hits))
	}
	wantOrder := []string{"d1", "d3", "d5"}
	wantDist := []float64{1, 3, 5}
	for i, h := range hits {
		if h.Instance.Key != wantOrder[i] {
			t.Errorf("hit %d = %q, want %q", i, h.Instance.Key, wantOrder[i])
		}
		assertNear(t, "distance", h.Distance, wantDist[i])
	}
}

func TestDispatchSkipsEntriesWithoutMatchingHandler(t *testing.T) {
	s := newTestStore(t)
	var got string
	mustRender(t, s, El("group", nil,
		El("mesh", P("position", Vec(0, 0, 2), "onPointerMove", On(func(Event) { got = "near" })),
			El("boxGeometry", nil)),
		El("mesh", P("onClick", On(func(Event) { got = "far" })),
			El("boxGeometry", nil)),
	))

	ok, err := s.DispatchPointer(center)
	if err != nil || !ok {
		t.Fatalf("Dispatch = %v, %v", ok, err)
	}
	if got != "far" {
		t.Errorf("invoked %q, want far: the nearer entry has no onClick", got)
	}
}

func TestDispatchWithNoHandler(t *testing.T) {
	s := newTestStore(t)
	mustRender(t, s, El("mesh", P("onClick", On(func(Event) { t.Error("miss invoked handler") })),
		El("boxGeometry", nil)))

	// Top-left corner misses the unit box.
	ok, err := s.DispatchPointer(PointerEvent{Type: EventClick, OffsetX: 0, OffsetY: 0})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Dispatch reported a handler for a miss")
	}

	ok, err = s.DispatchPointer(PointerEvent{Type: EventContextMenu, OffsetX: 50, OffsetY: 50})
	if err != nil || ok {
		t.Errorf("Dispatch = %v, %v; want false, nil for an event type with no handler", ok, err)
	}
}

func TestDispatchNoCamera(t *testing.T) {
	s := newTestStore(t)
	s.SetCamera(nil)
	_, err := s.DispatchPointer(center)
	if !errors.Is(err, ErrNoCamera) {
		t.Errorf("err = %v, want ErrNoCamera", err)
	}
}

func TestDispatchNoViewport(t *testing.T) {
	s := NewStore(testRegistry())
	clicks := 0
	mustRender(t, s, boxMesh("b", Vec(0, 0, 0), On(func(Event) { clicks++ })))

	ok, err := s.DispatchPointer(PointerEvent{Type: EventClick, OffsetX: 9999, OffsetY: 9999})
	if ok || !errors.Is(err, ErrNoViewport) {
		t.Errorf("Dispatch = %v, %v; want false, ErrNoViewport", ok, err)
	}
	if clicks != 0 {
		t.Errorf("clicks = %d, want 0", clicks)
	}

	s.SetSize(100, 100)
	if ok, err := s.DispatchPointer(center); err != nil || !ok {
		t.Errorf("Dispatch after SetSize = %v, %v; want true, nil", ok, err)
	}
}

func TestEndToEndClick(t *testing.T) {
	s := newTestStore(t)
	var events []Event
	onClick := On(func(e Event) { events = append(events, e) })

	mustRender(t, s, El("group", nil,
		El("mesh", P("onClick", onClick),
			El("boxGeometry", nil).WithArgs(Float(1), Float(1), Float(1)),
		),
	))
	mesh := s.Root().ChildAt(0).ChildAt(0)

	ok, err := s.DispatchPointer(center)
	if err != nil || !ok {
		t.Fatalf("Dispatch = %v, %v", ok, err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.Target != mesh || e.Object != mesh {
		t.Error("target is not the mesh")
	}
	if e.Type != EventClick {
		t.Errorf("Type = %v, want click", e.Type)
	}
	// Camera at z=5, box front face at z=0.5.
	assertNear(t, "Distance", e.Distance, 4.5)
	assertVecNear(t, "Point", e.Point, Vec3{0, 0, 0.5})
	if e.Coords != (Vec2{}) {
		t.Errorf("Coords = %+v, want center", e.Coords)
	}
}

func TestHitOnDescendantGeometry(t *testing.T) {
	s := newTestStore(t)
	var target, object *Instance
	mustRender(t, s, El("group", P("onClick", On(func(e Event) { target, object = e.Target, e.Object })),
		El("mesh", P("position", Vec(0, 0, 1)), El("sphereGeometry", nil).WithArgs(Float(0.5))).WithKey("ball"),
	).WithKey("group"))

	if ok, _ := s.DispatchPointer(center); !ok {
		t.Fatal("group handler not invoked via descendant hit")
	}
	if target != findKey(s, "group") {
		t.Error("Target should be the group")
	}
	if object != findKey(s, "ball") {
		t.Error("Object should be the mesh that was hit")
	}
}

func TestInvisibleSubtreeNotHit(t *testing.T) {
	s := newTestStore(t)
	mustRender(t, s, El("mesh", P("visible", Bool(false), "onClick", On(func(Event) { t.Error("hidden mesh hit") })),
		El("boxGeometry", nil)))
	if ok, _ := s.DispatchPointer(center); ok {
		t.Error("invisible mesh reported a hit")
	}
}

func TestTransformedHit(t *testing.T) {
	s := newTestStore(t)
	var dist float64
	// Scaled box: front face moves to z=1.
	mustRender(t, s, El("group", P("position", Vec(0, 0, -1)),
		El("mesh", P("scale", Vec(4, 4, 4), "onClick", On(func(e Event) { dist = e.Distance })),
			El("boxGeometry", nil)),
	))
	if ok, _ := s.DispatchPointer(center); !ok {
		t.Fatal("no hit")
	}
	assertNear(t, "Distance", dist, 4)
}

func TestInteractionAddRemoveDedupe(t *testing.T) {
	s := newTestStore(t)
	inst, _ := s.CreateInstance("mesh", nil)
	m := s.Interaction()
	m.add(inst)
	m.add(inst)
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
	m.remove(inst)
	m.remove(inst)
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestToNDC(t *testing.T) {
	s := newTestStore(t)
	s.SetSize(200, 100)
	tests := []struct {
		x, y float64
		want Vec2
	}{
		{0, 0, Vec2{-1, 1}},
		{200, 100, Vec2{1, -1}},
		{100, 50, Vec2{0, 0}},
		{150, 25, Vec2{0.5, 0.5}},
	}
	for _, tt := range tests {
		got := s.Interaction().ToNDC(tt.x, tt.y)
		if got != tt.want {
			t.Errorf("ToNDC(%v, %v) = %+v, want %+v", tt.x, tt.y, got, tt.want)
		}
	}
}

type recordingSink struct {
	events []InteractionEvent
}

func (r *recordingSink) EmitEvent(e InteractionEvent) { r.events = append(r.events, e) }

func TestEventSinkReceivesDispatchedEvents(t *testing.T) {
	s := newTestStore(t)
	sink := &recordingSink{}
	s.SetEventSink(sink)
	mustRender(t, s, boxMesh("crate", Vec(0, 0, 0), On(func(Event) {})))

	if ok, _ := s.DispatchPointer(center); !ok {
		t.Fatal("no dispatch")
	}
	if _, err := s.DispatchPointer(PointerEvent{Type: EventClick}); err != nil {
		t.Fatal(err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("sink events = %d, want 1 (misses are not forwarded)", len(sink.events))
	}
	e := sink.events[0]
	if e.Key != "crate" || e.Target != findKey(s, "crate").ID {
		t.Errorf("sink event = %+v", e)
	}
}

func TestHandlerMayRerender(t *testing.T) {
	s := newTestStore(t)
	count := 0
	var h *Handler
	scene := func() *Description {
		return El("group", nil, boxMesh("crate", Vec(0, 0, 0), h),
			El("group", P("label", Float(float64(count)))))
	}
	h = On(func(Event) {
		count++
		if err := s.Render(scene()); err != nil {
			t.Error(err)
		}
	})
	mustRender(t, s, scene())

	for i := 0; i < 3; i++ {
		if ok, err := s.DispatchPointer(center); !ok || err != nil {
			t.Fatalf("dispatch %d = %v, %v", i, ok, err)
		}
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}
