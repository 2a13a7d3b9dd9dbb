package canopy

import "time"

// Store is the container that owns the instance arena, the root instance,
// the active camera, the frame scheduler and the interaction manager.
// A Store is not safe for concurrent use.
type Store struct {
	root        *Instance
	camera      *Camera
	frames      *FrameScheduler
	interaction *InteractionManager
	registry    *Registry
	reconciler  *Reconciler

	instances map[InstanceID]*Instance
	nextID    InstanceID
	tweens    map[string]*Tween

	width, height float64

	debug       bool
	strictSlots bool
	frameLoop   FrameLoop
	invalidated bool
	disposed    bool
}

// NewStore creates a store backed by reg, with a "scene" root and a default
// camera. A nil reg uses DefaultRegistry.
func NewStore(reg *Registry) *Store {
	if reg == nil {
		reg = DefaultRegistry()
	}
	s := &Store{
		camera:      NewCamera(),
		frames:      NewFrameScheduler(),
		registry:    reg,
		instances:   make(map[InstanceID]*Instance),
		invalidated: true,
	}
	s.interaction = newInteractionManager(s)
	s.reconciler = &Reconciler{store: s}

	entry, ok := reg.Lookup("scene")
	if !ok {
		entry = RegistryEntry{Type: "scene", New: objectCtor("scene")}
	}
	obj, err := entry.New(nil)
	if err != nil || obj == nil {
		obj = newBaseObject("scene", object3DDefaults())
	}
	s.root = &Instance{Type: entry.Type, entry: entry, object: obj, store: s}
	s.adopt(s.root)
	return s
}

// adopt assigns inst a fresh ID and adds it to the arena.
func (s *Store) adopt(inst *Instance) {
	s.nextID++
	inst.ID = s.nextID
	s.instances[inst.ID] = inst
}

// forget drops inst from the arena.
func (s *Store) forget(inst *Instance) {
	delete(s.instances, inst.ID)
}

// Instance resolves id. Destroyed instances resolve to nil.
func (s *Store) Instance(id InstanceID) *Instance {
	return s.instances[id]
}

// Len returns the number of live instances, root included.
func (s *Store) Len() int {
	return len(s.instances)
}

// Root returns the container root.
func (s *Store) Root() *Instance {
	return s.root
}

// Registry returns the registry instances are created from.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Frames returns the frame scheduler.
func (s *Store) Frames() *FrameScheduler {
	return s.frames
}

// Interaction returns the interaction manager.
func (s *Store) Interaction() *InteractionManager {
	return s.interaction
}

// Render is shorthand for s.Reconciler().Render(desc).
func (s *Store) Render(desc *Description) error {
	return s.reconciler.Render(desc)
}

// Invalidate requests a frame pass. In FrameLoopDemand mode nothing runs
// until something invalidates the store.
func (s *Store) Invalidate() {
	s.invalidated = true
}

// Invalidated reports whether a pass has been requested since the last one.
func (s *Store) Invalidated() bool {
	return s.invalidated
}

// SetSize sets the viewport size in pixels and updates the camera aspect.
func (s *Store) SetSize(width, height float64) {
	s.width, s.height = width, height
	if s.camera != nil && width > 0 && height > 0 {
		s.camera.Aspect = width / height
	}
	s.Invalidate()
}

// Size returns the viewport size in pixels.
func (s *Store) Size() (width, height float64) {
	return s.width, s.height
}

// SetCamera replaces the active camera. A nil camera disables dispatch.
func (s *Store) SetCamera(c *Camera) {
	s.camera = c
	if c != nil && s.width > 0 && s.height > 0 {
		c.Aspect = s.width / s.height
	}
	s.Invalidate()
}

// Camera returns the active camera, or nil.
func (s *Store) Camera() *Camera {
	return s.camera
}

// SetStrictSlots selects whether a geometry or material child under a
// non-slot-host fails the mount instead of being appended structurally.
func (s *Store) SetStrictSlots(strict bool) {
	s.strictSlots = strict
}

// SetDebugMode enables or disables debug mode. When enabled, operations on
// disposed instances panic, tree depth and child count warnings are logged,
// and per-pass timing stats are logged at Debug level.
func (s *Store) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// SetFrameLoop selects when RunFrame performs a pass.
func (s *Store) SetFrameLoop(mode FrameLoop) {
	s.frameLoop = mode
}

// FrameLoop returns the current frame loop mode.
func (s *Store) FrameLoop() FrameLoop {
	return s.frameLoop
}

// SetEventSink sets the optional ECS bridge.
func (s *Store) SetEventSink(sink EventSink) {
	s.interaction.SetEventSink(sink)
}

// RegisterFrameCallback adds or replaces the frame callback for id.
func (s *Store) RegisterFrameCallback(id string, cb FrameCallback) {
	s.frames.Register(id, cb)
	s.Invalidate()
}

// DeregisterFrameCallback removes the frame callback for id.
func (s *Store) DeregisterFrameCallback(id string) {
	s.frames.Deregister(id)
}

// DispatchPointer ray-casts evt against the interactive instances and
// invokes at most one handler. It reports whether a handler ran.
func (s *Store) DispatchPointer(evt PointerEvent) (bool, error) {
	return s.interaction.Dispatch(evt)
}

// Hits returns the interactive instances under ndc, nearest first.
func (s *Store) Hits(ndc Vec2) ([]Hit, error) {
	return s.interaction.Hits(ndc)
}

// RunFrame performs one frame pass subject to the frame loop mode and
// reports whether it ran. In FrameLoopDemand mode the pass is skipped unless
// the store was invalidated; in FrameLoopNever mode it is always skipped.
func (s *Store) RunFrame(timestamp float64, frame any) bool {
	switch s.frameLoop {
	case FrameLoopNever:
		return false
	case FrameLoopDemand:
		if !s.invalidated && len(s.interaction.injectQueue) == 0 {
			return false
		}
	}
	s.runFrame(timestamp, frame)
	return true
}

// RunFrameForced performs one frame pass regardless of the frame loop mode.
func (s *Store) RunFrameForced(timestamp float64, frame any) {
	s.runFrame(timestamp, frame)
}

func (s *Store) runFrame(timestamp float64, frame any) {
	if s.disposed {
		return
	}
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.invalidated = false
	// A callback may dispose the store; the tree goes once the pass is over.
	defer func() {
		if s.disposed {
			s.root.destroy()
		}
	}()
	s.drainInjected()

	if s.debug {
		stats.drainTime = time.Since(t0)
		t0 = time.Now()
	}

	n := s.frames.Run(timestamp, frame)

	if s.debug && !s.disposed {
		stats.callbackTime = time.Since(t0)
		stats.callbackCount = n
		stats.instanceCount = len(s.instances)
		stats.interactive = s.interaction.Len()
		s.debugLog(stats)
	}
}

// Dispose destroys every instance and deregisters every frame callback.
// The store is unusable afterwards. Called from a frame callback, the rest
// of the pass still runs and the instances are destroyed when it ends.
func (s *Store) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.frames.Clear()
	s.interaction.injectQueue = nil
	if s.frames.running {
		return
	}
	s.root.destroy()
}

// IsDisposed reports whether Dispose has been called.
func (s *Store) IsDisposed() bool {
	return s.disposed
}
