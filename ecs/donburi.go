// Package ecs provides ECS adapters for canopy.
package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for canopy interaction events.
var InteractionEventType = events.NewEventType[canopy.InteractionEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// queued on InteractionEventType and delivered by ProcessEvents.
func NewDonburiSink(world donburi.World) canopy.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event canopy.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// FrameCallback returns a frame callback that processes queued interaction
// events once per pass. Register it under a key that sorts before "render".
func FrameCallback(world donburi.World) canopy.FrameCallback {
	return func(float64, any) {
		InteractionEventType.ProcessEvents(world)
	}
}
