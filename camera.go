package rt

import "github.com/chewxy/math32"

// CameraSize is the number of float32 values in a serialized Camera.
const CameraSize = CFrameSize + 1

// Camera is a pinhole camera. FOV is the horizontal field of view in degrees
// and FocalLength the distance from the eye to the projection plane in scene
// units. Only CFrame is expected to change after creation.
type Camera struct {
	FOV         float32
	FocalLength float32
	CFrame      CFrame
}

// NewCamera creates a camera at the origin looking down -Z.
func NewCamera(fov, focalLength float32) Camera {
	return Camera{
		FOV:         fov,
		FocalLength: focalLength,
		CFrame:      IdentityCFrame(),
	}
}

// Floats returns the wire form: the CFrame followed by the FOV.
func (c Camera) Floats() [CameraSize]float32 {
	var out [CameraSize]float32
	f := c.CFrame.Floats()
	copy(out[:], f[:])
	out[CFrameSize] = c.FOV
	return out
}

// ProjectionPlane returns the size of the projection plane for an image of
// width x height pixels. The width follows from the law of sines on the focal
// triangle; the height keeps the image aspect ratio, so the vertical field of
// view is implied rather than configured.
func (c Camera) ProjectionPlane(width, height int) (planeWidth, planeHeight float32) {
	half := c.FOV / 180 * math32.Pi / 2
	planeWidth = c.FocalLength * (math32.Sin(half) / math32.Sin(math32.Pi/2-half))
	planeHeight = planeWidth * (float32(height) / float32(width))
	return planeWidth, planeHeight
}
