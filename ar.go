package canopy

// ARCallbackID is the frame-callback key used by AttachPoseSource. It sorts
// before "render", so a pose acquired in a pass is drawn in the same pass.
const ARCallbackID = "ar"

// Pose is a tracked viewer pose in world space.
type Pose struct {
	Position Vec3
	// Forward is the viewing direction. It need not be unit length.
	Forward Vec3
	// Up is the viewer's up direction. Zero keeps the camera's current Up.
	Up Vec3
	// FOV overrides the camera field of view in degrees when positive.
	FOV float64
}

// PoseSource supplies viewer poses, typically from an AR session. LatestPose
// must not block; ok is false when no new pose is available.
type PoseSource interface {
	LatestPose() (pose Pose, ok bool)
}

// PoseSourceFunc adapts a function to PoseSource.
type PoseSourceFunc func() (Pose, bool)

func (f PoseSourceFunc) LatestPose() (Pose, bool) { return f() }

// AttachPoseSource registers the "ar" frame callback, which polls src once
// per pass and writes the pose into the active camera. A nil src detaches.
func (s *Store) AttachPoseSource(src PoseSource) {
	if src == nil {
		s.DeregisterFrameCallback(ARCallbackID)
		return
	}
	s.RegisterFrameCallback(ARCallbackID, func(float64, any) {
		pose, ok := src.LatestPose()
		if !ok || s.camera == nil {
			return
		}
		applyPose(s.camera, pose)
		s.Invalidate()
	})
}

func applyPose(c *Camera, p Pose) {
	c.Position = p.Position
	fwd := p.Forward
	if fwd.Len() < 1e-12 {
		fwd = Vec3{0, 0, -1}
	}
	c.Target = p.Position.Add(fwd.Normalize())
	if p.Up != (Vec3{}) {
		c.Up = p.Up
	}
	if p.FOV > 0 {
		c.FOV = p.FOV
	}
}
