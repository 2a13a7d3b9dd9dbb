package canopy

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const doubleClickWindow = 300 * time.Millisecond

// RunConfig holds the window options for Run.
type RunConfig struct {
	Title        string
	Width        int
	Height       int
	ShowFPS      bool
	Background   string // hex color; dark default when empty
	WindowResize bool
}

// game adapts a Store to ebiten.Game.
type game struct {
	store  *Store
	cfg    RunConfig
	start  time.Time
	w, h   int
	lastX  int
	lastY  int
	moved  bool
	prevUp time.Time
}

// Run opens a window and drives s until the window closes. Mouse input is
// dispatched as pointer events; each drawn frame runs one frame pass with the
// screen as the frame value. Unless a "render" callback is already
// registered, a WireframeRenderer is installed under it.
func Run(s *Store, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("run: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	if !s.frames.Has(RenderCallbackID) {
		s.RegisterFrameCallback(RenderCallbackID, NewWireframeRenderer(s, cfg.Background).Render)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.WindowResize {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	// A skipped pass must leave the previous frame on screen.
	ebiten.SetScreenClearedEveryFrame(s.frameLoop == FrameLoopAlways)
	s.SetSize(float64(cfg.Width), float64(cfg.Height))

	g := &game{store: s, cfg: cfg, start: time.Now(), w: cfg.Width, h: cfg.Height}
	g.lastX, g.lastY = ebiten.CursorPosition()
	return ebiten.RunGame(g)
}

func (g *game) Update() error {
	x, y := ebiten.CursorPosition()
	if x != g.lastX || y != g.lastY {
		g.lastX, g.lastY = x, y
		g.dispatch(EventPointerMove, x, y)
	}
	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight} {
		if inpututil.IsMouseButtonJustPressed(b) {
			g.dispatch(EventPointerDown, x, y)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dispatch(EventPointerUp, x, y)
		g.dispatch(EventClick, x, y)
		now := time.Now()
		if now.Sub(g.prevUp) < doubleClickWindow {
			g.dispatch(EventDoubleClick, x, y)
			g.prevUp = time.Time{}
		} else {
			g.prevUp = now
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		g.dispatch(EventPointerUp, x, y)
		g.dispatch(EventContextMenu, x, y)
	}
	return nil
}

func (g *game) dispatch(t EventType, x, y int) {
	_, err := g.store.DispatchPointer(PointerEvent{Type: t, OffsetX: float64(x), OffsetY: float64(y)})
	if err != nil && !errors.Is(err, ErrNoCamera) && !errors.Is(err, ErrNoViewport) {
		Logger().Warn("canopy: pointer dispatch failed", "type", t.String(), "err", err)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	ts := float64(time.Since(g.start).Microseconds()) / 1000
	g.store.RunFrame(ts, screen)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.store.SetSize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}
