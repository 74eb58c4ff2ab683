package rt

import "github.com/go-gl/mathgl/mgl32"

// DefaultLightDirection points down and away from the default camera at 45
// degrees on every axis.
var DefaultLightDirection = mgl32.Vec3{0.577350269, -0.577350269, -0.577350269}

// DirectionalLight is a light infinitely far away. Direction is the unit
// vector along which light travels into the scene.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     RGB
}

// NewDirectionalLight returns a light travelling along dir (normalized here).
// A zero dir falls back to DefaultLightDirection.
func NewDirectionalLight(dir mgl32.Vec3, c RGB) DirectionalLight {
	if dir.Len() == 0 {
		dir = DefaultLightDirection
	}
	return DirectionalLight{Direction: dir.Normalize(), Color: c}
}

// DefaultDirectionalLight returns a white light along DefaultLightDirection.
func DefaultDirectionalLight() DirectionalLight {
	return DirectionalLight{Direction: DefaultLightDirection, Color: White}
}
