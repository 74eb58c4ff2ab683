package rt

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ObjectKind is the primitive discriminant carried in the frame contract.
type ObjectKind uint8

const (
	// KindSphere is a sphere centered on the object position. Params: [radius].
	KindSphere ObjectKind = iota
)

// String returns the kind name used in scene files.
func (k ObjectKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	default:
		return fmt.Sprintf("ObjectKind(%d)", uint8(k))
	}
}

// ParamCount returns the number of shape parameters the kind uses.
func (k ObjectKind) ParamCount() int {
	switch k {
	case KindSphere:
		return 1
	default:
		return 0
	}
}

// Object is a renderable primitive: a placement, a kind tag, the kind's shape
// parameters and a color. It is a tagged variant; code that needs the shape
// switches on Kind.
type Object struct {
	CFrame CFrame
	Kind   ObjectKind
	Params []float32
	Color  RGB
}

// NewSphere returns a white sphere of the given radius at the origin.
func NewSphere(radius float32) Object {
	return Object{
		CFrame: IdentityCFrame(),
		Kind:   KindSphere,
		Params: []float32{radius},
		Color:  White,
	}
}

// Radius returns the sphere radius, or 0 if o is not a sphere.
func (o Object) Radius() float32 {
	if o.Kind != KindSphere || len(o.Params) == 0 {
		return 0
	}
	return o.Params[0]
}

// Position returns the object center.
func (o Object) Position() mgl32.Vec3 {
	return o.CFrame.Position()
}

// SetPosition moves the object to (x, y, z), keeping its rotation.
func (o *Object) SetPosition(x, y, z float32) {
	o.CFrame = o.CFrame.WithPosition(mgl32.Vec3{x, y, z})
}

// SetCFrame replaces the object placement.
func (o *Object) SetCFrame(c CFrame) {
	o.CFrame = c
}

// SetColor sets the object color.
func (o *Object) SetColor(r, g, b uint8) {
	o.Color = RGB{R: r, G: g, B: b}
}

// clone returns o with its own copy of Params.
func (o Object) clone() Object {
	o.Params = append([]float32(nil), o.Params...)
	return o
}
