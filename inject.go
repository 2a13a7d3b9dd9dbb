package canopy

// InjectPointer queues a synthetic pointer event in canvas pixel coordinates.
// Queued events are dispatched at the start of the next frame pass, before
// any frame callback runs, exactly as real pointer input would be.
func (s *Store) InjectPointer(evt PointerEvent) {
	s.interaction.injectQueue = append(s.interaction.injectQueue, evt)
	s.Invalidate()
}

// InjectClick is a convenience that queues a pointer down, pointer up and
// click at the same position. All three are dispatched in one pass.
func (s *Store) InjectClick(x, y float64) {
	s.InjectPointer(PointerEvent{Type: EventPointerDown, OffsetX: x, OffsetY: y})
	s.InjectPointer(PointerEvent{Type: EventPointerUp, OffsetX: x, OffsetY: y})
	s.InjectPointer(PointerEvent{Type: EventClick, OffsetX: x, OffsetY: y})
}

// PendingInput returns the number of queued synthetic events.
func (s *Store) PendingInput() int {
	return len(s.interaction.injectQueue)
}

// drainInjected dispatches every queued event. Events queued by handlers
// during the drain wait for the next pass.
func (s *Store) drainInjected() {
	m := s.interaction
	if len(m.injectQueue) == 0 {
		return
	}
	queue := m.injectQueue
	m.injectQueue = nil
	for _, evt := range queue {
		if _, err := m.Dispatch(evt); err != nil {
			Logger().Warn("canopy: dropped injected pointer event",
				"type", evt.Type.String(), "x", evt.OffsetX, "y", evt.OffsetY, "err", err)
		}
	}
}
