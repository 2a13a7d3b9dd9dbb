package canopy

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	defaultBackground = "#101018"
	wireStrokeWidth   = 1
)

// line is one projected wireframe edge in screen pixels.
type line struct {
	x0, y0, x1, y1 float32
	color          color.RGBA
}

// WireframeRenderer draws the edges of every visible slot host's geometry,
// projected through the store's camera. It is registered as the "render"
// frame callback by Run; the frame value must be the *ebiten.Image to draw
// into.
type WireframeRenderer struct {
	store      *Store
	background color.RGBA
	lines      []line
}

// NewWireframeRenderer returns a renderer for s. background is a hex color;
// an empty or invalid value uses a dark default.
func NewWireframeRenderer(s *Store, background string) *WireframeRenderer {
	if background == "" {
		background = defaultBackground
	}
	bg, ok := parseHexColor(background)
	if !ok {
		bg, _ = parseHexColor(defaultBackground)
	}
	return &WireframeRenderer{store: s, background: bg}
}

// Render is a FrameCallback. It collects lines every pass and draws them
// when frame is an *ebiten.Image.
func (r *WireframeRenderer) Render(_ float64, frame any) {
	r.collect()
	screen, ok := frame.(*ebiten.Image)
	if !ok || screen == nil {
		return
	}
	screen.Fill(r.background)
	for _, l := range r.lines {
		vector.StrokeLine(screen, l.x0, l.y0, l.x1, l.y1, wireStrokeWidth, l.color, true)
	}
}

// collect projects every visible edge into r.lines.
func (r *WireframeRenderer) collect() {
	r.lines = r.lines[:0]
	cam := r.store.camera
	if cam == nil {
		return
	}
	w, h := r.store.Size()
	if w <= 0 || h <= 0 {
		return
	}
	r.collectInstance(r.store.root, identityTransform, cam, w, h)
}

func (r *WireframeRenderer) collectInstance(inst *Instance, parentWorld affine, cam *Camera, w, h float64) {
	if !isVisible(inst.object) {
		return
	}
	world := multiplyAffine(parentWorld, inst.localTransform())
	if geo := inst.SlotChild(SlotGeometry); geo != nil {
		if shape, ok := geo.object.(Shape); ok {
			clr := materialColor(inst.SlotChild(SlotMaterial))
			for _, e := range shape.Edges() {
				a, _, okA := cam.Project(transformPoint(world, e[0]))
				b, _, okB := cam.Project(transformPoint(world, e[1]))
				if !okA || !okB {
					continue
				}
				r.lines = append(r.lines, line{
					x0: float32((a.X + 1) / 2 * w), y0: float32((1 - a.Y) / 2 * h),
					x1: float32((b.X + 1) / 2 * w), y1: float32((1 - b.Y) / 2 * h),
					color: clr,
				})
			}
		}
	}
	for _, c := range inst.Children() {
		r.collectInstance(c, world, cam, w, h)
	}
}

// materialColor reads color and opacity from a material instance. Missing
// materials draw white.
func materialColor(mat *Instance) color.RGBA {
	white := color.RGBA{255, 255, 255, 255}
	if mat == nil {
		return white
	}
	clr := white
	if v, ok := mat.Prop("color"); ok {
		if s, ok := v.(String); ok {
			if c, ok := parseHexColor(string(s)); ok {
				clr = c
			}
		}
	}
	if v, ok := mat.Prop("opacity"); ok {
		if f, ok := v.(Float); ok && f >= 0 && f < 1 {
			// Premultiplied alpha.
			a := float64(f)
			clr = color.RGBA{
				R: uint8(float64(clr.R) * a),
				G: uint8(float64(clr.G) * a),
				B: uint8(float64(clr.B) * a),
				A: uint8(255 * a),
			}
		}
	}
	return clr
}

// parseHexColor parses "#rgb" or "#rrggbb".
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
