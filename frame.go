package rt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MaxDimension is the largest width or height a frame can carry.
const MaxDimension = math.MaxUint16

// BytesPerPixel is the size of one RGBA8 output pixel.
const BytesPerPixel = 4

// ShadowMode selects which way shadow rays travel from a hit point.
type ShadowMode uint8

const (
	// ShadowTowardLight casts shadow rays against the light direction, toward
	// the light source.
	ShadowTowardLight ShadowMode = iota

	// ShadowAlongLight casts shadow rays along the light direction.
	ShadowAlongLight
)

// Sign returns the factor applied to the light direction to get the shadow
// ray's direction of travel.
func (m ShadowMode) Sign() float32 {
	if m == ShadowAlongLight {
		return 1
	}
	return -1
}

// String returns the mode name accepted by ParseShadowMode.
func (m ShadowMode) String() string {
	switch m {
	case ShadowTowardLight:
		return "toward"
	case ShadowAlongLight:
		return "along"
	default:
		return fmt.Sprintf("ShadowMode(%d)", uint8(m))
	}
}

// ParseShadowMode parses "toward" or "along". The empty string means toward.
func ParseShadowMode(s string) (ShadowMode, error) {
	switch s {
	case "", "toward":
		return ShadowTowardLight, nil
	case "along":
		return ShadowAlongLight, nil
	default:
		return 0, fmt.Errorf("rt: unknown shadow mode %q", s)
	}
}

// FrameData is the flattened, read-only input of one frame: every buffer and
// scalar the per-pixel kernel reads. Object i occupies
// ObjectTransforms[12i:12i+12], ObjectParams[P*i:P*i+P] with P = PropSize,
// ObjectColors[3i:3i+3] and ObjectKinds[i].
type FrameData struct {
	Width, Height uint16

	CameraWidth  float32
	CameraHeight float32
	FocalLength  float32

	ObjectCount uint32
	PropSize    uint8
	Shadow      ShadowMode

	ObjectTransforms []float32
	ObjectParams     []float32
	ObjectColors     []uint8
	ObjectKinds      []uint8

	Camera         [CameraSize]float32
	LightDirection [3]float32
	LightColor     [3]uint8
}

// CheckDimensions validates an image size against the 16-bit frame contract.
func CheckDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrDimensionsTooLarge, width, height)
	}
	return nil
}

// PackFrame flattens camera and world into a new FrameData.
func PackFrame(width, height int, camera Camera, world *World, shadow ShadowMode) (*FrameData, error) {
	f := &FrameData{}
	if err := f.Pack(width, height, camera, world, shadow); err != nil {
		return nil, err
	}
	return f, nil
}

// Pack refills f from camera and world, reusing its buffers. On error f is
// left unchanged.
func (f *FrameData) Pack(width, height int, camera Camera, world *World, shadow ShadowMode) error {
	if err := CheckDimensions(width, height); err != nil {
		return err
	}

	var objects []Object
	light := DefaultDirectionalLight()
	if world != nil {
		objects = world.objects
		light = world.light
	}

	var propSize int
	if len(objects) > 0 {
		propSize = len(objects[0].Params)
	}
	for i, o := range objects {
		if len(o.Params) != propSize {
			return fmt.Errorf("%w: object 0 has %d, object %d has %d",
				ErrMixedPropSize, propSize, i, len(o.Params))
		}
	}
	if propSize > math.MaxUint8 {
		return fmt.Errorf("%w: %d parameters per object", ErrMixedPropSize, propSize)
	}

	f.Width = uint16(width)   //nolint:gosec // checked above
	f.Height = uint16(height) //nolint:gosec // checked above
	f.CameraWidth, f.CameraHeight = camera.ProjectionPlane(width, height)
	f.FocalLength = camera.FocalLength
	f.ObjectCount = uint32(len(objects)) //nolint:gosec // slice length
	f.PropSize = uint8(propSize)         //nolint:gosec // checked above
	f.Shadow = shadow

	f.ObjectTransforms = f.ObjectTransforms[:0]
	f.ObjectParams = f.ObjectParams[:0]
	f.ObjectColors = f.ObjectColors[:0]
	f.ObjectKinds = f.ObjectKinds[:0]
	for _, o := range objects {
		f.ObjectTransforms = o.CFrame.AppendFloats(f.ObjectTransforms)
		f.ObjectParams = append(f.ObjectParams, o.Params...)
		f.ObjectColors = append(f.ObjectColors, o.Color.R, o.Color.G, o.Color.B)
		f.ObjectKinds = append(f.ObjectKinds, uint8(o.Kind))
	}

	f.Camera = camera.Floats()
	f.LightDirection = [3]float32{light.Direction[0], light.Direction[1], light.Direction[2]}
	f.LightColor = light.Color.Bytes()
	return nil
}

// PixelCount returns Width*Height.
func (f *FrameData) PixelCount() int {
	return int(f.Width) * int(f.Height)
}

// OutputSize returns the size in bytes of the RGBA8 output buffer.
func (f *FrameData) OutputSize() int {
	return f.PixelCount() * BytesPerPixel
}

// TransformBytes returns ObjectTransforms as little-endian float32 bytes.
func (f *FrameData) TransformBytes() []byte {
	return AppendFloat32s(nil, f.ObjectTransforms)
}

// ParamBytes returns ObjectParams as little-endian float32 bytes.
func (f *FrameData) ParamBytes() []byte {
	return AppendFloat32s(nil, f.ObjectParams)
}

// CameraBytes returns Camera as little-endian float32 bytes.
func (f *FrameData) CameraBytes() []byte {
	return AppendFloat32s(nil, f.Camera[:])
}

// LightDirectionBytes returns LightDirection as little-endian float32 bytes.
func (f *FrameData) LightDirectionBytes() []byte {
	return AppendFloat32s(nil, f.LightDirection[:])
}

// WriteTo writes the frame to w in little-endian order: the scalar header
// (width, height, camera width, camera height, focal length, object count,
// prop size, shadow mode) followed by the buffers in declaration order.
func (f *FrameData) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	fields := []any{
		f.Width, f.Height,
		f.CameraWidth, f.CameraHeight, f.FocalLength,
		f.ObjectCount, f.PropSize, uint8(f.Shadow),
		f.ObjectTransforms, f.ObjectParams, f.ObjectColors, f.ObjectKinds,
		f.Camera[:], f.LightDirection[:], f.LightColor[:],
	}
	for _, v := range fields {
		if err := binary.Write(cw, binary.LittleEndian, v); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// AppendFloat32s appends v to dst as little-endian IEEE 754 words.
func AppendFloat32s(dst []byte, v []float32) []byte {
	for _, x := range v {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(x))
	}
	return dst
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
