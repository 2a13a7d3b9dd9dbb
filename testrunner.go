package canopy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TestRunnerCallbackID is the frame-callback key SetTestRunner registers.
const TestRunnerCallbackID = "testrunner"

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `yaml:"action"`
	Event  string  `yaml:"event,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	Z      float64 `yaml:"z,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
}

// testScript is the top-level structure for a test script.
type testScript struct {
	Steps []testStep `yaml:"steps"`
}

// TestRunner sequences injected input across frame passes for scripted
// playback. Attach to a Store via SetTestRunner.
//
// Actions:
//   - click: x, y in canvas pixels
//   - pointer: event ("pointermove", "contextmenu", ...), x, y
//   - camera: moves the camera to x, y, z
//   - wait: frames
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a YAML or JSON test script.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "click", "camera", "wait":
		case "pointer":
			if _, ok := ParseEventType(st.Event); !ok {
				return nil, fmt.Errorf("parse test script: step %d: unknown event %q", i, st.Event)
			}
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner registers runner as a frame callback. A nil runner detaches.
func (s *Store) SetTestRunner(runner *TestRunner) {
	if runner == nil {
		s.DeregisterFrameCallback(TestRunnerCallbackID)
		return
	}
	s.RegisterFrameCallback(TestRunnerCallbackID, func(float64, any) {
		runner.step(s)
	})
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame pass.
func (r *TestRunner) step(s *Store) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if s.PendingInput() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "click":
		s.InjectClick(st.X, st.Y)
	case "pointer":
		t, _ := ParseEventType(st.Event)
		s.InjectPointer(PointerEvent{Type: t, OffsetX: st.X, OffsetY: st.Y})
	case "camera":
		if s.camera != nil {
			s.camera.Position = Vec3{st.X, st.Y, st.Z}
			s.Invalidate()
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this pass counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && s.PendingInput() == 0 {
		r.done = true
	}
}
