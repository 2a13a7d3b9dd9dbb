package canopy

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectClickDrainsAtFrameStart(t *testing.T) {
	s := newTestStore(t)
	var got []EventType
	rec := On(func(e Event) { got = append(got, e.Type) })
	mustRender(t, s, El("mesh", P("onClick", rec, "onPointerDown", rec, "onPointerUp", rec),
		El("boxGeometry", nil),
	))

	s.InjectClick(50, 50)
	assert.Equal(t, 3, s.PendingInput())
	assert.Empty(t, got, "injection does not dispatch immediately")

	var seenInCallback []EventType
	s.RegisterFrameCallback("probe", func(float64, any) {
		seenInCallback = append(seenInCallback, got...)
	})
	s.RunFrameForced(0, nil)

	want := []EventType{EventPointerDown, EventPointerUp, EventClick}
	assert.Equal(t, want, got)
	assert.Equal(t, want, seenInCallback, "input is dispatched before callbacks run")
	assert.Zero(t, s.PendingInput())
}

func TestInjectWakesDemandLoop(t *testing.T) {
	s := newTestStore(t)
	s.SetFrameLoop(FrameLoopDemand)
	s.RunFrame(0, nil)
	require.False(t, s.RunFrame(1, nil))

	clicks := 0
	mustRender(t, s, El("mesh", P("onClick", On(func(Event) { clicks++ })), El("boxGeometry", nil)))
	s.RunFrame(2, nil)

	s.InjectClick(50, 50)
	assert.True(t, s.RunFrame(3, nil))
	assert.Equal(t, 1, clicks)
}

func TestInjectFromHandlerWaitsForNextPass(t *testing.T) {
	s := newTestStore(t)
	moves := 0
	mustRender(t, s, El("mesh", P(
		"onClick", On(func(Event) {
			s.InjectPointer(PointerEvent{Type: EventPointerMove, OffsetX: 50, OffsetY: 50})
		}),
		"onPointerMove", On(func(Event) { moves++ }),
	), El("boxGeometry", nil)))

	s.InjectPointer(PointerEvent{Type: EventClick, OffsetX: 50, OffsetY: 50})
	s.RunFrameForced(0, nil)
	assert.Equal(t, 0, moves)
	assert.Equal(t, 1, s.PendingInput())

	s.RunFrameForced(1, nil)
	assert.Equal(t, 1, moves)
	assert.Zero(t, s.PendingInput())
}

func TestInjectWithoutCameraIsDropped(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { SetLogger(nil) })

	s := newTestStore(t)
	s.SetCamera(nil)
	s.InjectClick(10, 10)
	s.RunFrameForced(0, nil)

	assert.Zero(t, s.PendingInput())
	assert.Contains(t, buf.String(), "dropped injected pointer event")
	assert.Contains(t, buf.String(), "type=pointerdown")
}
