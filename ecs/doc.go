// Package ecs provides ECS adapters for canopy's interaction events.
//
// The primary adapter is [NewDonburiSink], which forwards every dispatched
// pointer event into a [Donburi] world as a typed event. Subscribe to
// [InteractionEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	store.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
