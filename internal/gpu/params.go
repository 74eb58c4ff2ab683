//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/gogpu/rt"
)

// Pass phases selected through frameParams.Phase.
const (
	phaseClear uint32 = iota
	phasePrimary
	phaseShadow
	phaseResolve
)

// workgroupSize must match @workgroup_size in raytrace.wgsl.
const workgroupSize = 64

// maxGroupsPerDim is the per-dimension dispatch limit of DefaultLimits.
const maxGroupsPerDim = 65535

// frameParams is the uniform block of raytrace.wgsl. Field order and sizes
// match the WGSL Params struct; the Go layout has no padding.
type frameParams struct {
	Width       uint32
	Height      uint32
	ObjectCount uint32
	PropSize    uint32

	CameraWidth  float32
	CameraHeight float32
	FocalLength  float32
	ShadowSign   float32

	LightX     float32
	LightY     float32
	LightZ     float32
	LightColor uint32

	Phase       uint32
	ObjectIndex uint32
	Stride      uint32
	_           uint32

	CameraPos  [4]float32
	CameraRow0 [4]float32
	CameraRow1 [4]float32
	CameraRow2 [4]float32
}

const frameParamsSize = uint64(unsafe.Sizeof(frameParams{}))

// newFrameParams fills the frame-wide fields from f. Phase and ObjectIndex
// are set per pass.
func newFrameParams(f *rt.FrameData, stride uint32) frameParams {
	c := f.Camera
	return frameParams{
		Width:        uint32(f.Width),
		Height:       uint32(f.Height),
		ObjectCount:  f.ObjectCount,
		PropSize:     uint32(f.PropSize),
		CameraWidth:  f.CameraWidth,
		CameraHeight: f.CameraHeight,
		FocalLength:  f.FocalLength,
		ShadowSign:   f.Shadow.Sign(),
		LightX:       f.LightDirection[0],
		LightY:       f.LightDirection[1],
		LightZ:       f.LightDirection[2],
		LightColor:   packRGB(f.LightColor[0], f.LightColor[1], f.LightColor[2], 0),
		Stride:       stride,
		CameraPos:    [4]float32{c[0], c[1], c[2], 0},
		CameraRow0:   [4]float32{c[3], c[4], c[5], 0},
		CameraRow1:   [4]float32{c[6], c[7], c[8], 0},
		CameraRow2:   [4]float32{c[9], c[10], c[11], 0},
	}
}

func (p *frameParams) bytes() []byte {
	return structToBytes(unsafe.Pointer(p), unsafe.Sizeof(*p)) //nolint:gosec // fixed-layout uniform
}

// pass is one compute pass of a frame.
type pass struct {
	phase  uint32
	object uint32
}

// framePasses returns the pass sequence for n objects: clear, one primary
// pass per object, one shadow pass per object, resolve.
func framePasses(n uint32) []pass {
	passes := make([]pass, 0, 2*n+2)
	passes = append(passes, pass{phase: phaseClear})
	for i := uint32(0); i < n; i++ {
		passes = append(passes, pass{phase: phasePrimary, object: i})
	}
	for i := uint32(0); i < n; i++ {
		passes = append(passes, pass{phase: phaseShadow, object: i})
	}
	return append(passes, pass{phase: phaseResolve})
}

// dispatchSize returns the workgroup grid covering pixels invocations and the
// invocation stride between grid rows. Grids wider than the per-dimension
// limit wrap into a second dimension; the shader drops invocations past the
// last pixel.
func dispatchSize(pixels uint32) (x, y, stride uint32) {
	groups := (pixels + workgroupSize - 1) / workgroupSize
	if groups == 0 {
		return 0, 0, 0
	}
	x = min(groups, maxGroupsPerDim)
	y = (groups + x - 1) / x
	return x, y, x * workgroupSize
}

func packRGB(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// packObjects returns one u32 per object: r | g<<8 | b<<16 | kind<<24.
func packObjects(f *rt.FrameData) []byte {
	out := make([]byte, 4*int(f.ObjectCount))
	for i := 0; i < int(f.ObjectCount); i++ {
		c := f.ObjectColors[i*3 : i*3+3]
		binary.LittleEndian.PutUint32(out[i*4:], packRGB(c[0], c[1], c[2], f.ObjectKinds[i]))
	}
	return out
}

func packFloats(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(x))
	}
	return out
}

// storageSize rounds n up to a non-empty multiple of 16 bytes.
func storageSize(n int) uint64 {
	if n < 16 {
		return 16
	}
	return uint64((n + 15) &^ 15) //nolint:gosec // n is a buffer length
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}

func unpackPixelsFromGPU(packed []byte, dst []uint8, pixelCount int) {
	for i := 0; i < pixelCount; i++ {
		val := binary.LittleEndian.Uint32(packed[i*4:])
		dstIdx := i * 4
		dst[dstIdx+0] = uint8(val & 0xFF)         //nolint:gosec // masked to 8 bits
		dst[dstIdx+1] = uint8((val >> 8) & 0xFF)  //nolint:gosec // masked to 8 bits
		dst[dstIdx+2] = uint8((val >> 16) & 0xFF) //nolint:gosec // masked to 8 bits
		dst[dstIdx+3] = uint8((val >> 24) & 0xFF) //nolint:gosec // masked to 8 bits
	}
}
