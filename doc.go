// Package canopy is a declarative reconciler for 3D and AR scenes.
//
// Applications describe the scene as a tree of [Description] values and hand
// it to [Reconciler.Render]. canopy keeps a retained graph of [Instance]
// values in sync with the latest description: unchanged props are left
// alone, changed props are patched in place, and a change of constructor
// arguments rebuilds the instance while keeping its children. Pointer events
// are ray-cast against the instances that carry event-handler props, and
// per-frame work runs through keyed frame callbacks.
//
// # Quick start
//
//	store := canopy.NewStore(nil)
//	store.SetSize(640, 480)
//
//	selected := canopy.On(func(e canopy.Event) {
//		fmt.Println("hit", e.Target.Key, "at", e.Distance)
//	})
//	err := store.Render(canopy.El("group", nil,
//		canopy.El("mesh", canopy.P("onClick", selected, "position", canopy.Vec(0, 0, -2)),
//			canopy.El("boxGeometry", nil).WithArgs(canopy.Float(1), canopy.Float(1), canopy.Float(1)),
//			canopy.El("meshBasicMaterial", canopy.P("color", canopy.String("#ff8800"))),
//		).WithKey("box"),
//	))
//
//	canopy.Run(store, canopy.RunConfig{Title: "canopy", Width: 640, Height: 480})
//
// Scenes can also be loaded from YAML with [LoadDescription], and a whole
// store can be set up from a YAML [Config].
//
// # Slots
//
// Slot hosts such as "mesh" and "points" take geometry and material children
// into single-valued slots instead of their child list. Mounting a second
// geometry replaces and destroys the first. A geometry or material under a
// non-slot-host is appended as an ordinary child with a warning, or rejected
// with [ErrInvalidSlotChild] when strict slots are enabled.
//
// # Frames
//
// [Store.RunFrame] runs every registered [FrameCallback] once, in key order,
// with the reserved "render" callback last. Injected pointer events are
// dispatched at the start of each pass. Tweens ([Store.TweenVec]) and the AR
// pose bridge ([Store.AttachPoseSource]) are ordinary frame callbacks.
//
// # Logging
//
// canopy is silent by default. Use [SetLogger] to receive warnings and, in
// debug mode, per-pass timing.
//
// canopy is not safe for concurrent use. Drive a Store from one goroutine.
//
// ECS integration is available via the [Donburi] adapter in canopy/ecs.
//
// [Donburi]: https://github.com/yohamta/donburi
package canopy
