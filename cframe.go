package rt

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CFrameSize is the number of float32 values in a serialized CFrame.
const CFrameSize = 12

// CFrame is a coordinate frame: a position plus a 3x3 rotation stored
// row-major. The rotation columns are the frame's local right, up and forward
// axes expressed in world space.
//
// CFrame is a value type. Every operation returns a new CFrame and leaves the
// receiver untouched, so owners replace their frame wholesale.
type CFrame struct {
	X, Y, Z float32

	R00, R01, R02 float32
	R10, R11, R12 float32
	R20, R21, R22 float32
}

// IdentityCFrame returns a frame at the origin with no rotation.
func IdentityCFrame() CFrame {
	return CFrame{
		R00: 1,
		R11: 1,
		R22: 1,
	}
}

// NewCFrame returns an unrotated frame positioned at (x, y, z).
func NewCFrame(x, y, z float32) CFrame {
	c := IdentityCFrame()
	c.X, c.Y, c.Z = x, y, z
	return c
}

// CFrameFromFloats rebuilds a frame from its serialized form.
func CFrameFromFloats(v [CFrameSize]float32) CFrame {
	return CFrame{
		X: v[0], Y: v[1], Z: v[2],
		R00: v[3], R01: v[4], R02: v[5],
		R10: v[6], R11: v[7], R12: v[8],
		R20: v[9], R21: v[10], R22: v[11],
	}
}

// Floats returns the wire form [x, y, z, r00, r01, r02, r10, r11, r12, r20, r21, r22].
func (c CFrame) Floats() [CFrameSize]float32 {
	return [CFrameSize]float32{
		c.X, c.Y, c.Z,
		c.R00, c.R01, c.R02,
		c.R10, c.R11, c.R12,
		c.R20, c.R21, c.R22,
	}
}

// AppendFloats appends the wire form of c to dst.
func (c CFrame) AppendFloats(dst []float32) []float32 {
	v := c.Floats()
	return append(dst, v[:]...)
}

// Position returns the frame origin.
func (c CFrame) Position() mgl32.Vec3 {
	return mgl32.Vec3{c.X, c.Y, c.Z}
}

// WithPosition returns c moved to p, keeping its rotation.
func (c CFrame) WithPosition(p mgl32.Vec3) CFrame {
	c.X, c.Y, c.Z = p[0], p[1], p[2]
	return c
}

// Rotation returns the rotation block as an mgl32 matrix (column-major storage).
func (c CFrame) Rotation() mgl32.Mat3 {
	return mgl32.Mat3{
		c.R00, c.R10, c.R20,
		c.R01, c.R11, c.R21,
		c.R02, c.R12, c.R22,
	}
}

// WithRotation returns c with its rotation block replaced by m.
func (c CFrame) WithRotation(m mgl32.Mat3) CFrame {
	c.R00, c.R01, c.R02 = m.At(0, 0), m.At(0, 1), m.At(0, 2)
	c.R10, c.R11, c.R12 = m.At(1, 0), m.At(1, 1), m.At(1, 2)
	c.R20, c.R21, c.R22 = m.At(2, 0), m.At(2, 1), m.At(2, 2)
	return c
}

// RightVector returns rotation column 0.
func (c CFrame) RightVector() mgl32.Vec3 { return mgl32.Vec3{c.R00, c.R10, c.R20} }

// UpVector returns rotation column 1.
func (c CFrame) UpVector() mgl32.Vec3 { return mgl32.Vec3{c.R01, c.R11, c.R21} }

// LookVector returns rotation column 2, the forward column of the wire layout.
// Rays built from a frame travel along the negated LookVector.
func (c CFrame) LookVector() mgl32.Vec3 { return mgl32.Vec3{c.R02, c.R12, c.R22} }

// TranslateLocal moves the frame by (dx, dy, dz) measured along its own axes:
// position += R * (dx, dy, dz). The rotation is unchanged.
func (c CFrame) TranslateLocal(dx, dy, dz float32) CFrame {
	c.X += c.R00*dx + c.R01*dy + c.R02*dz
	c.Y += c.R10*dx + c.R11*dy + c.R12*dz
	c.Z += c.R20*dx + c.R21*dy + c.R22*dz
	return c
}

// RotateLocal composes the rotation built by RotationFromAngles in the frame's
// local space: R = R * Rnew. The position is unchanged.
func (c CFrame) RotateLocal(alpha, beta, gamma float32) CFrame {
	return c.mulRotation(RotationFromAngles(alpha, beta, gamma))
}

// mulRotation returns c with R = R * m, m given row-major.
func (c CFrame) mulRotation(m [9]float32) CFrame {
	r := c.rows()
	var out [9]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i*3+j] = r[i*3]*m[j] + r[i*3+1]*m[3+j] + r[i*3+2]*m[6+j]
		}
	}
	c.setRows(out)
	return c
}

func (c CFrame) rows() [9]float32 {
	return [9]float32{c.R00, c.R01, c.R02, c.R10, c.R11, c.R12, c.R20, c.R21, c.R22}
}

func (c *CFrame) setRows(r [9]float32) {
	c.R00, c.R01, c.R02 = r[0], r[1], r[2]
	c.R10, c.R11, c.R12 = r[3], r[4], r[5]
	c.R20, c.R21, c.R22 = r[6], r[7], r[8]
}

// Orthonormalize re-projects the rotation onto a proper rotation with
// Gram-Schmidt on the right and up columns. Repeated RotateLocal calls drift
// slowly; nothing in the renderer calls this implicitly.
func (c CFrame) Orthonormalize() CFrame {
	right := c.RightVector().Normalize()
	up := c.UpVector()
	up = up.Sub(right.Mul(right.Dot(up))).Normalize()
	look := right.Cross(up)
	return c.WithRotation(mgl32.Mat3FromCols(right, up, look))
}

// RotationFromAngles builds the row-major rotation matrix
//
//	r00 = cb*cg   r01 = sa*sb*cg - ca*sg   r02 = ca*sb*cg + sa*sg
//	r10 = cb*sg   r11 = sa*sb*sg + ca*cg   r12 = ca*sb*sg - sa*cg
//	r20 = -sb     r21 = sa*cb              r22 = ca*cb
//
// where sa, ca, sb, cb, sg, cg are the sines and cosines of alpha, beta, gamma.
func RotationFromAngles(alpha, beta, gamma float32) [9]float32 {
	sa, ca := math32.Sincos(alpha)
	sb, cb := math32.Sincos(beta)
	sg, cg := math32.Sincos(gamma)
	return [9]float32{
		cb * cg, sa*sb*cg - ca*sg, ca*sb*cg + sa*sg,
		cb * sg, sa*sb*sg + ca*cg, ca*sb*sg - sa*cg,
		-sb, sa * cb, ca * cb,
	}
}
