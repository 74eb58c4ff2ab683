package rt

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// =============================================================================
// World
// =============================================================================

func TestWorldAddRemove(t *testing.T) {
	w := NewWorld()
	if w.Len() != 0 {
		t.Fatalf("new world has %d objects", w.Len())
	}
	if w.Light() != DefaultDirectionalLight() {
		t.Errorf("new world light = %+v", w.Light())
	}

	for i, r := range []float32{1, 2, 3} {
		if got := w.Add(NewSphere(r)); got != i {
			t.Errorf("Add returned %d, want %d", got, i)
		}
	}

	w.Remove(1)
	if w.Len() != 2 || w.Object(1).Radius() != 3 {
		t.Errorf("after Remove(1): len %d, object 1 radius %v", w.Len(), w.Object(1).Radius())
	}

	w.Remove(-1)
	w.Remove(5)
	if w.Len() != 2 {
		t.Errorf("out-of-range Remove changed len to %d", w.Len())
	}
}

func TestWorldCopiesObjects(t *testing.T) {
	w := NewWorld()
	s := NewSphere(1)
	w.Add(s)

	// Mutating the caller's object must not reach the world
	s.Params[0] = 9
	if got := w.Object(0).Radius(); got != 1 {
		t.Errorf("world object radius = %v after caller mutation", got)
	}

	// Nor may mutating a returned copy
	o := w.Object(0)
	o.Params[0] = 7
	w.Objects()[0].Params[0] = 7
	if got := w.Object(0).Radius(); got != 1 {
		t.Errorf("world object radius = %v after copy mutation", got)
	}

	o.SetPosition(1, 2, 3)
	w.SetObject(0, o)
	if got := w.Object(0).Position(); got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("SetObject position = %v", got)
	}
}

func TestWorldSetLight(t *testing.T) {
	w := NewWorld()
	l := NewDirectionalLight(mgl32.Vec3{0, -2, 0}, Red)
	w.SetLight(l)
	if got := w.Light(); got.Direction != (mgl32.Vec3{0, -1, 0}) || got.Color != Red {
		t.Errorf("Light = %+v", got)
	}
}

// =============================================================================
// Object
// =============================================================================

func TestObjectKind(t *testing.T) {
	tests := []struct {
		kind   ObjectKind
		name   string
		params int
	}{
		{KindSphere, "sphere", 1},
		{ObjectKind(7), "ObjectKind(7)", 0},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.kind.ParamCount(); got != tt.params {
			t.Errorf("%s.ParamCount() = %d, want %d", tt.name, got, tt.params)
		}
	}
}

func TestObjectSetters(t *testing.T) {
	o := NewSphere(2)
	if o.Color != White || o.Position() != (mgl32.Vec3{}) {
		t.Fatalf("NewSphere = %+v", o)
	}

	o.SetColor(1, 2, 3)
	if o.Color != (RGB{1, 2, 3}) {
		t.Errorf("SetColor = %+v", o.Color)
	}

	c := NewCFrame(4, 5, 6).RotateLocal(0, 0.5, 0)
	o.SetCFrame(c)
	o.SetPosition(-1, 0, 1)
	if o.Position() != (mgl32.Vec3{-1, 0, 1}) || o.CFrame.Rotation() != c.Rotation() {
		t.Errorf("SetPosition changed rotation or missed position: %+v", o.CFrame)
	}

	if r := (Object{Kind: ObjectKind(3), Params: []float32{5}}).Radius(); r != 0 {
		t.Errorf("non-sphere Radius = %v", r)
	}
}
