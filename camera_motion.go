package rt

import "github.com/chewxy/math32"

// Interactive camera speeds, per step.
const (
	// CameraMoveSpeed is the distance moved per step at full input.
	CameraMoveSpeed float32 = 0.3

	// CameraRotateSpeed is the rotation in radians per pixel of mouse travel.
	CameraRotateSpeed float32 = 0.001
)

// MoveInput is one step of interactive camera input.
//
// Forward is -1 to move ahead (W) and +1 to move back (S); Side is -1 for left
// (A) and +1 for right (D). DX and DY are the mouse travel in pixels since the
// previous step and only apply when Rotate is set.
type MoveInput struct {
	Forward, Side float32
	DX, DY        float32
	Rotate        bool
}

// Step returns the camera moved by one step of input. Movement is along the
// camera's own axes with diagonal input normalized to unit length; rotation
// pitches by DY and yaws by DX in the camera's local space.
func (c Camera) Step(in MoveInput) Camera {
	length := math32.Max(math32.Sqrt(in.Forward*in.Forward+in.Side*in.Side), 1)
	cf := c.CFrame.TranslateLocal(
		in.Side/length*CameraMoveSpeed,
		0,
		in.Forward/length*CameraMoveSpeed,
	)
	if in.Rotate {
		cf = cf.RotateLocal(in.DY*CameraRotateSpeed, in.DX*CameraRotateSpeed, 0)
	}
	c.CFrame = cf
	return c
}
