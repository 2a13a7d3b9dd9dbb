package canopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestRunnerSequence(t *testing.T) {
	s := newTestStore(t)
	clicks, moves := 0, 0
	mustRender(t, s, El("mesh", P(
		"onClick", On(func(Event) { clicks++ }),
		"onPointerMove", On(func(Event) { moves++ }),
	), El("boxGeometry", nil)))

	runner, err := LoadTestScript([]byte(`
steps:
  - action: click
    x: 50
    y: 50
  - action: wait
    frames: 2
  - action: pointer
    event: pointermove
    x: 50
    y: 50
  - action: camera
    x: 0
    y: 0
    z: 10
`))
	require.NoError(t, err)
	s.SetTestRunner(runner)

	// Pass 1 queues the click; pass 2 dispatches it and starts the wait.
	s.RunFrameForced(0, nil)
	assert.Equal(t, 0, clicks)
	s.RunFrameForced(1, nil)
	assert.Equal(t, 1, clicks)

	// Pass 3 consumes the second wait frame; pass 4 queues the move.
	s.RunFrameForced(2, nil)
	s.RunFrameForced(3, nil)
	assert.Equal(t, 0, moves)
	assert.Equal(t, 1, s.PendingInput())

	// Pass 5 dispatches the move and moves the camera.
	s.RunFrameForced(4, nil)
	assert.Equal(t, 1, moves)
	assert.Equal(t, 10.0, s.Camera().Position.Z)
	assert.True(t, runner.Done())
	assert.Equal(t, 1, clicks)

	s.SetTestRunner(nil)
	assert.False(t, s.Frames().Has(TestRunnerCallbackID))
}

func TestLoadTestScriptJSON(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "wait", "frames": 1}]}`))
	require.NoError(t, err)
	require.Len(t, runner.steps, 1)
	assert.Equal(t, 1, runner.steps[0].Frames)
}

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"empty", "steps: []\n", "no steps"},
		{"unknown action", "steps:\n  - action: jump\n", `unknown action "jump"`},
		{"unknown event", "steps:\n  - action: pointer\n    event: hover\n", `unknown event "hover"`},
		{"malformed", "steps: [\n", "parse test script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.script))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
