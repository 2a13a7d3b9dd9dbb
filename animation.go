package canopy

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates up to 3 float fields of one instance prop. It runs as a
// frame callback keyed "tween:<id>:<prop>" and deregisters itself when done
// or when the target instance is destroyed. Starting a second tween on the
// same prop replaces the first.
type Tween struct {
	tweens [3]*gween.Tween
	count  int
	target *Instance
	key    string
	vector bool
	last   float64
	primed bool
	Done   bool
}

func tweenID(inst *Instance, key string) string {
	return fmt.Sprintf("tween:%d:%s", inst.ID, key)
}

// TweenFloat animates a scalar prop of inst from its current value to `to`
// over duration seconds.
func (s *Store) TweenFloat(inst *Instance, key string, to float64, duration float32, fn ease.TweenFunc) *Tween {
	from := 0.0
	if v, ok := inst.Prop(key); ok {
		if f, ok := v.(Float); ok {
			from = float64(f)
		}
	}
	if fn == nil {
		fn = ease.Linear
	}
	t := &Tween{count: 1, target: inst, key: key}
	t.tweens[0] = gween.New(float32(from), float32(to), duration, fn)
	s.startTween(t)
	return t
}

// TweenVec animates a vector prop such as position or scale.
func (s *Store) TweenVec(inst *Instance, key string, to Vec3, duration float32, fn ease.TweenFunc) *Tween {
	var from Vec3
	if v, ok := inst.Prop(key); ok {
		from = vec3Of(v, Vec3{})
	}
	if fn == nil {
		fn = ease.Linear
	}
	t := &Tween{count: 3, target: inst, key: key, vector: true}
	t.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	t.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	t.tweens[2] = gween.New(float32(from.Z), float32(to.Z), duration, fn)
	s.startTween(t)
	return t
}

func (s *Store) startTween(t *Tween) {
	id := tweenID(t.target, t.key)
	if s.tweens == nil {
		s.tweens = make(map[string]*Tween)
	}
	if prev := s.tweens[id]; prev != nil {
		prev.Done = true
	}
	s.tweens[id] = t
	s.RegisterFrameCallback(id, func(timestamp float64, _ any) {
		dt := 0.0
		if t.primed {
			dt = (timestamp - t.last) / 1000
		}
		t.last, t.primed = timestamp, true
		if t.Update(float32(dt)) {
			s.Invalidate()
			return
		}
		s.releaseTween(id, t)
	})
}

// releaseTween deregisters id only while t still owns it; a tween replaced
// by a newer one on the same prop must not remove its successor.
func (s *Store) releaseTween(id string, t *Tween) {
	if s.tweens[id] != t {
		return
	}
	delete(s.tweens, id)
	s.DeregisterFrameCallback(id)
}

// Stop ends the tween where it is.
func (t *Tween) Stop() {
	if t.Done {
		return
	}
	t.Done = true
	if s := t.target.store; s != nil {
		s.releaseTween(tweenID(t.target, t.key), t)
	}
}

// Update advances the tween by dt seconds, writes the prop and reports
// whether it is still running.
func (t *Tween) Update(dt float32) bool {
	if t.Done {
		return false
	}
	if t.target.disposed || t.target.object == nil {
		t.Done = true
		return false
	}
	var vals [3]float64
	done := true
	for i := 0; i < t.count; i++ {
		v, finished := t.tweens[i].Update(dt)
		vals[i] = float64(v)
		done = done && finished
	}
	if t.vector {
		t.target.object.SetProp(t.key, Vec(vals[0], vals[1], vals[2]))
	} else {
		t.target.object.SetProp(t.key, Float(vals[0]))
	}
	t.Done = done
	return !done
}

// MoveCameraTo animates the active camera to pos over duration seconds
// through the "camera" frame callback.
func (s *Store) MoveCameraTo(pos Vec3, duration float32, fn ease.TweenFunc) {
	cam := s.camera
	if cam == nil {
		return
	}
	cam.MoveTo(pos, duration, fn)
	var last float64
	primed := false
	s.RegisterFrameCallback("camera", func(timestamp float64, _ any) {
		dt := 0.0
		if primed {
			dt = (timestamp - last) / 1000
		}
		last, primed = timestamp, true
		if cam.Update(float32(dt)) {
			s.Invalidate()
			return
		}
		s.DeregisterFrameCallback("camera")
	})
}
