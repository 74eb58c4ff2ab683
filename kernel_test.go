package rt

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// =============================================================================
// Intersection
// =============================================================================

func TestIntersectSphere(t *testing.T) {
	forward := mgl32.Vec3{0, 0, -1}
	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		ray    Ray
		wantOK bool
		wantT  float32
	}{
		{"head on", mgl32.Vec3{0, 0, -10}, 5, Ray{Direction: forward}, true, 5},
		{"from inside", mgl32.Vec3{0, 0, 0}, 3, Ray{Direction: forward}, true, 3},
		{"behind", mgl32.Vec3{0, 0, 10}, 5, Ray{Direction: forward}, false, 0},
		{"passes beside", mgl32.Vec3{6, 0, -10}, 5, Ray{Direction: forward}, false, 0},
		{"grazing", mgl32.Vec3{5, 0, -10}, 5, Ray{Direction: forward}, true, 10},
		{"unnormalized direction", mgl32.Vec3{0, 0, -10}, 5, Ray{Direction: mgl32.Vec3{0, 0, -2}}, true, 2.5},
		{"offset origin", mgl32.Vec3{0, 10, 0}, 1, Ray{Origin: mgl32.Vec3{0, 0, 0}, Direction: mgl32.Vec3{0, 1, 0}}, true, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectSphere(tt.center, tt.radius, tt.ray)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (t=%v)", ok, tt.wantOK, got)
			}
			if ok && !approx(got, tt.wantT, 1e-4) {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestSolveQuadratic(t *testing.T) {
	// (x-2)(x-3) = x^2 - 5x + 6
	x0, x1, ok := solveQuadratic(1, -5, 6)
	if !ok {
		t.Fatal("no roots")
	}
	lo, hi := min(x0, x1), max(x0, x1)
	if !approx(lo, 2, eps) || !approx(hi, 3, eps) {
		t.Errorf("roots = %v, %v; want 2, 3", x0, x1)
	}
	if _, _, ok := solveQuadratic(1, 0, 1); ok {
		t.Error("x^2+1 reported real roots")
	}
	if x0, x1, ok := solveQuadratic(1, -4, 4); !ok || x0 != 2 || x1 != 2 {
		t.Errorf("double root = %v, %v, %v; want 2, 2", x0, x1, ok)
	}
}

// =============================================================================
// Nearest hit
// =============================================================================

func packWorld(t *testing.T, w *World, shadow ShadowMode) *FrameData {
	t.Helper()
	f, err := PackFrame(64, 64, NewCamera(90, 1), w, shadow)
	if err != nil {
		t.Fatalf("PackFrame: %v", err)
	}
	return f
}

func sphereAt(x, y, z, r float32, c RGB) Object {
	s := NewSphere(r)
	s.SetPosition(x, y, z)
	s.Color = c
	return s
}

func TestNearestHitTieLowestIndexWins(t *testing.T) {
	w := NewWorld()
	w.Add(sphereAt(0, 0, -10, 2, Red))
	w.Add(sphereAt(0, 0, -10, 2, Green))
	f := packWorld(t, w, ShadowTowardLight)

	idx, dist := NearestHit(f, Ray{Direction: mgl32.Vec3{0, 0, -1}})
	if idx != 0 {
		t.Errorf("index = %d, want 0", idx)
	}
	if !approx(dist, 8, 1e-4) {
		t.Errorf("t = %v, want 8", dist)
	}
}

func TestNearestHitPicksClosest(t *testing.T) {
	w := NewWorld()
	w.Add(sphereAt(0, 0, -30, 2, Red))
	w.Add(sphereAt(0, 0, -10, 2, Green))
	w.Add(sphereAt(0, 0, -20, 2, Blue))
	f := packWorld(t, w, ShadowTowardLight)

	if idx, _ := NearestHit(f, Ray{Direction: mgl32.Vec3{0, 0, -1}}); idx != 1 {
		t.Errorf("index = %d, want 1", idx)
	}
}

func TestNearestHitMiss(t *testing.T) {
	f := packWorld(t, NewWorld(), ShadowTowardLight)
	idx, dist := NearestHit(f, Ray{Direction: mgl32.Vec3{0, 0, -1}})
	if idx != -1 || dist != NoHitDistance {
		t.Errorf("NearestHit on empty world = %d, %v", idx, dist)
	}
	if got := TraceRay(f, Ray{Direction: mgl32.Vec3{0, 0, -1}}); got != Background() {
		t.Errorf("TraceRay miss = %v, want background", got)
	}
}

func TestBackgroundIsFixed(t *testing.T) {
	bg := Background()
	bg[0] = 200
	if got := Background(); got != [BytesPerPixel]uint8{0, 0, 0, 0xff} {
		t.Errorf("Background() = %v after caller mutation, want opaque black", got)
	}
}

// =============================================================================
// Shading and shadows
// =============================================================================

// shadowWorld places a red sphere at the origin under a light shining straight
// down, optionally with a small occluder directly above it. The test ray
// comes in diagonally, misses the occluder and hits the sphere's top at
// (0, 5, 0) where the normal is +Y.
func shadowWorld(withOccluder bool) *World {
	w := NewWorld()
	w.SetLight(NewDirectionalLight(mgl32.Vec3{0, -1, 0}, White))
	w.Add(sphereAt(0, 0, 0, 5, Red))
	if withOccluder {
		w.Add(sphereAt(0, 12, 0, 2, Green))
	}
	return w
}

var shadowTestRay = Ray{
	Origin:    mgl32.Vec3{20, 25, 0},
	Direction: mgl32.Vec3{-1, -1, 0}.Normalize(),
}

func TestShadowOcclusion(t *testing.T) {
	tests := []struct {
		name     string
		occluder bool
		mode     ShadowMode
		lit      bool
	}{
		{"toward light, clear", false, ShadowTowardLight, true},
		{"toward light, occluded", true, ShadowTowardLight, false},
		{"along light, occluder behind the source", true, ShadowAlongLight, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := packWorld(t, shadowWorld(tt.occluder), tt.mode)

			idx, _ := NearestHit(f, shadowTestRay)
			if idx != 0 {
				t.Fatalf("test ray hit object %d, want 0", idx)
			}

			got := TraceRay(f, shadowTestRay)
			if !tt.lit {
				if got != Background() {
					t.Errorf("shadowed pixel = %v, want %v", got, Background())
				}
				return
			}
			if got[0] < 254 || got[1] != 0 || got[2] != 0 || got[3] != 0xff {
				t.Errorf("lit pixel = %v, want full red", got)
			}
		})
	}
}

func TestShadeFacingAway(t *testing.T) {
	// Light from below: the top of the sphere faces away and gets diffuse 0.
	w := shadowWorld(false)
	w.SetLight(NewDirectionalLight(mgl32.Vec3{0, 1, 0}, White))
	f := packWorld(t, w, ShadowAlongLight)

	got := TraceRay(f, shadowTestRay)
	if got != Background() {
		t.Errorf("unlit side = %v, want %v", got, Background())
	}
}

func TestShadeChannel(t *testing.T) {
	tests := []struct {
		object, light uint8
		diffuse       float32
		want          uint8
	}{
		{255, 255, 1, 255},
		{200, 255, 0.5, 100},
		{100, 100, 0.999, 39},
		{10, 255, 0, 0},
		{255, 255, 1.0001, 255},
	}
	for _, tt := range tests {
		if got := shadeChannel(tt.object, tt.light, tt.diffuse); got != tt.want {
			t.Errorf("shadeChannel(%d, %d, %v) = %d, want %d", tt.object, tt.light, tt.diffuse, got, tt.want)
		}
	}
}

// =============================================================================
// Primary rays
// =============================================================================

func TestPrimaryRayOrientation(t *testing.T) {
	f, err := PackFrame(1280, 720, NewCamera(90, 0.1), NewWorld(), ShadowTowardLight)
	if err != nil {
		t.Fatal(err)
	}

	center := PrimaryRay(f, 640, 360)
	if !vecApprox(center.Direction, mgl32.Vec3{0, 0, -1}, eps) {
		t.Errorf("center direction = %v, want -Z", center.Direction)
	}
	if !approx(center.Direction.Len(), 1, eps) {
		t.Errorf("|center direction| = %v", center.Direction.Len())
	}

	if d := PrimaryRay(f, 1000, 360).Direction; d.X() <= 0 {
		t.Errorf("pixel right of center points %v, want +X", d)
	}
	if d := PrimaryRay(f, 640, 600).Direction; d.Y() >= 0 {
		t.Errorf("pixel below center points %v, want -Y", d)
	}

	// Left edge: half the plane width over the focal length.
	if d := PrimaryRay(f, 0, 360).Direction; !approx(d.X()/d.Z(), 0.5, 1e-4) || d.X() >= 0 {
		t.Errorf("left edge direction = %v, want tan(yaw) = -0.5", d)
	}
}

func TestPrimaryRayFollowsCamera(t *testing.T) {
	cam := NewCamera(90, 0.1)
	cam.CFrame = NewCFrame(3, 4, 5).RotateLocal(0, math32.Pi/2, 0)
	f, err := PackFrame(64, 64, cam, NewWorld(), ShadowTowardLight)
	if err != nil {
		t.Fatal(err)
	}

	r := PrimaryRay(f, 32, 32)
	if r.Origin != (mgl32.Vec3{3, 4, 5}) {
		t.Errorf("origin = %v", r.Origin)
	}
	if !vecApprox(r.Direction, mgl32.Vec3{-1, 0, 0}, 1e-4) {
		t.Errorf("direction = %v, want -X", r.Direction)
	}
}

func TestRenderSpan(t *testing.T) {
	w := NewWorld()
	w.Add(sphereAt(0, 0, -10, 4, Blue))
	f, err := PackFrame(8, 8, NewCamera(90, 1), w, ShadowTowardLight)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]uint8, f.OutputSize())
	RenderSpan(f, out, 0, f.PixelCount())

	for i := 0; i < f.PixelCount(); i++ {
		want := RenderPixel(f, i%8, i/8)
		got := [4]uint8(out[i*4 : i*4+4])
		if got != want {
			t.Fatalf("pixel %d = %v, want %v", i, got, want)
		}
		if got[3] != 0xff {
			t.Fatalf("pixel %d alpha = %d", i, got[3])
		}
	}
	// Corner pixel misses.
	if [4]uint8(out[0:4]) != Background() {
		t.Errorf("corner = %v, want background", out[0:4])
	}
}

func BenchmarkRenderPixel(b *testing.B) {
	w := NewWorld()
	for i := 0; i < 16; i++ {
		w.Add(sphereAt(float32(i*3-24), 0, -40, 1.5, Red))
	}
	f, err := PackFrame(256, 256, NewCamera(90, 0.1), w, ShadowTowardLight)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = RenderPixel(f, i%256, (i/256)%256)
	}
}
