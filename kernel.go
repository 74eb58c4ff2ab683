package rt

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Kernel constants shared by every executor.
const (
	// NoHitDistance is the initial nearest-hit distance; hits farther than
	// this are ignored.
	NoHitDistance float32 = 9999999

	// ShadowBias is how far along the surface normal a shadow ray starts.
	ShadowBias float32 = 0.01
)

// Background is the color of pixels whose primary ray hits nothing, and of
// shadowed pixels.
func Background() [BytesPerPixel]uint8 {
	return [BytesPerPixel]uint8{0, 0, 0, 0xff}
}

// Ray is a half-line starting at Origin and travelling along Direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns Origin + t*Direction.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// PrimaryRay returns the camera ray for pixel (x, y). The pixel's offset on
// the projection plane deflects the ray by a pitch alpha and a yaw beta; the
// deflection, expressed in the camera frame, is rotated into world space by
// the camera rotation. Row 0 is the top of the image, column 0 the left.
func PrimaryRay(f *FrameData, x, y int) Ray {
	camX := -f.CameraWidth/2 + (float32(x)/float32(f.Width))*f.CameraWidth
	camY := -f.CameraHeight/2 + (float32(y)/float32(f.Height))*f.CameraHeight

	fl := f.FocalLength
	alpha := math32.Asin(camY / math32.Sqrt(fl*fl+camY*camY))
	beta := math32.Asin(camX / math32.Sqrt(fl*fl+camX*camX))

	// Negated forward column of transpose(RotationFromAngles(alpha, beta, 0)).
	sa, ca := math32.Sincos(alpha)
	sb, cb := math32.Sincos(beta)
	local := mgl32.Vec3{sb, -sa * cb, -ca * cb}

	cam := CFrameFromFloats(cameraFrame(f))
	return Ray{
		Origin:    cam.Position(),
		Direction: cam.Rotation().Mul3x1(local),
	}
}

func cameraFrame(f *FrameData) [CFrameSize]float32 {
	var v [CFrameSize]float32
	copy(v[:], f.Camera[:CFrameSize])
	return v
}

// IntersectSphere returns the smallest strictly positive t at which ray meets
// the sphere, or ok=false if there is none.
func IntersectSphere(center mgl32.Vec3, radius float32, ray Ray) (t float32, ok bool) {
	d := ray.Direction
	l := center.Sub(ray.Origin)
	a := d.Dot(d)
	b := -2 * d.Dot(l)
	c := l.Dot(l) - radius*radius

	t0, t1, ok := solveQuadratic(a, b, c)
	if !ok {
		return 0, false
	}
	switch {
	case t0 > 0 && t1 > 0:
		return math32.Min(t0, t1), true
	case t0 > 0:
		return t0, true
	case t1 > 0:
		return t1, true
	}
	return 0, false
}

// solveQuadratic returns the real roots of a*x^2 + b*x + c = 0 using the
// cancellation-free form x0 = q/a, x1 = c/q.
func solveQuadratic(a, b, c float32) (x0, x1 float32, ok bool) {
	discr := b*b - 4*a*c
	if discr < 0 || a == 0 {
		return 0, 0, false
	}
	if discr == 0 {
		x := -0.5 * b / a
		return x, x, true
	}
	var q float32
	if b > 0 {
		q = -0.5 * (b + math32.Sqrt(discr))
	} else {
		q = -0.5 * (b - math32.Sqrt(discr))
	}
	return q / a, c / q, true
}

// objectCenter returns the position of object i.
func (f *FrameData) objectCenter(i int) mgl32.Vec3 {
	o := i * CFrameSize
	return mgl32.Vec3{f.ObjectTransforms[o], f.ObjectTransforms[o+1], f.ObjectTransforms[o+2]}
}

// objectParam returns parameter k of object i, or 0 if it has none.
func (f *FrameData) objectParam(i, k int) float32 {
	if int(f.PropSize) <= k {
		return 0
	}
	return f.ObjectParams[i*int(f.PropSize)+k]
}

// NearestHit scans all objects in order and returns the index and distance of
// the closest hit. A later object replaces the current best only when
// strictly closer, so the lowest index wins ties. index is -1 on a miss, in
// which case t is NoHitDistance.
func NearestHit(f *FrameData, ray Ray) (index int, t float32) {
	index, t = -1, NoHitDistance
	for i := 0; i < int(f.ObjectCount); i++ {
		var lt float32
		var ok bool
		switch ObjectKind(f.ObjectKinds[i]) {
		case KindSphere:
			lt, ok = IntersectSphere(f.objectCenter(i), f.objectParam(i, 0), ray)
		}
		if ok && lt < t {
			index, t = i, lt
		}
	}
	return index, t
}

// TraceRay shades the nearest hit of ray: the object color scaled by the light
// color and the Lambert factor, or black when the shadow ray from the hit
// point reaches another object first.
func TraceRay(f *FrameData, ray Ray) [BytesPerPixel]uint8 {
	index, t := NearestHit(f, ray)
	if index < 0 {
		return Background()
	}

	hit := ray.At(t)
	normal := hit.Sub(f.objectCenter(index)).Normalize()
	light := mgl32.Vec3{f.LightDirection[0], f.LightDirection[1], f.LightDirection[2]}

	shadow := Ray{
		Origin:    hit.Add(normal.Mul(ShadowBias)),
		Direction: light.Mul(f.Shadow.Sign()),
	}
	if occluder, _ := NearestHit(f, shadow); occluder >= 0 && occluder != index {
		return Background()
	}

	diffuse := math32.Max(normal.Dot(light.Mul(-1)), 0)
	o := index * 3
	return [BytesPerPixel]uint8{
		shadeChannel(f.ObjectColors[o], f.LightColor[0], diffuse),
		shadeChannel(f.ObjectColors[o+1], f.LightColor[1], diffuse),
		shadeChannel(f.ObjectColors[o+2], f.LightColor[2], diffuse),
		0xff,
	}
}

// shadeChannel returns object * (light * diffuse / 255), truncated.
func shadeChannel(object, light uint8, diffuse float32) uint8 {
	v := float32(object) * (float32(light) * diffuse / 0xff)
	if v >= 0xff {
		return 0xff
	}
	return uint8(v)
}

// RenderPixel runs the kernel for pixel (x, y).
func RenderPixel(f *FrameData, x, y int) [BytesPerPixel]uint8 {
	return TraceRay(f, PrimaryRay(f, x, y))
}

// RenderSpan runs the kernel for the linear pixel indices [start, end) and
// writes RGBA8 results to out, which is indexed the same way (4 bytes per
// pixel, index y*width+x).
func RenderSpan(f *FrameData, out []uint8, start, end int) {
	w := int(f.Width)
	for i := start; i < end; i++ {
		px := RenderPixel(f, i%w, i/w)
		copy(out[i*BytesPerPixel:i*BytesPerPixel+BytesPerPixel], px[:])
	}
}
