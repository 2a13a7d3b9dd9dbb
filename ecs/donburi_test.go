package ecs

import (
	"testing"

	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []canopy.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		received = append(received, e)
	})

	sink.EmitEvent(canopy.InteractionEvent{
		Type:     canopy.EventPointerDown,
		Target:   42,
		Key:      "box",
		Distance: 4,
	})
	sink.EmitEvent(canopy.InteractionEvent{
		Type:   canopy.EventClick,
		Target: 42,
	})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("events delivered before processing: %d", len(received))
	}
	InteractionEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != canopy.EventPointerDown || e0.Target != 42 || e0.Key != "box" {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.Distance != 4 {
		t.Errorf("event 0 distance = %v, want 4", e0.Distance)
	}
	if received[1].Type != canopy.EventClick {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiSink_ImplementsEventSink(t *testing.T) {
	world := donburi.NewWorld()
	var sink canopy.EventSink = NewDonburiSink(world)
	_ = sink
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		count1++
	})
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		count2++
	})

	sink.EmitEvent(canopy.InteractionEvent{Type: canopy.EventClick})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiSink_EndToEnd(t *testing.T) {
	world := donburi.NewWorld()
	store := canopy.NewStore(nil)
	store.SetSize(100, 100)
	store.SetEventSink(NewDonburiSink(world))
	store.RegisterFrameCallback("ecs", FrameCallback(world))

	var got []canopy.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		got = append(got, e)
	})

	clicks := 0
	tree := canopy.El("mesh", canopy.P("onClick", canopy.On(func(canopy.Event) { clicks++ })),
		canopy.El("boxGeometry", nil),
	).WithKey("box")
	if err := store.Render(tree); err != nil {
		t.Fatalf("Render: %v", err)
	}

	store.InjectClick(50, 50)
	store.RunFrameForced(0, nil)

	if clicks != 1 {
		t.Fatalf("clicks = %d, want 1", clicks)
	}
	if len(got) != 1 {
		t.Fatalf("ecs events = %d, want 1", len(got))
	}
	if got[0].Key != "box" || got[0].Type != canopy.EventClick {
		t.Errorf("ecs event = %+v", got[0])
	}
}
