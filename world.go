package rt

// World is the scene: an ordered list of objects plus one directional light.
// Object order only determines traversal order and which object wins an exact
// distance tie.
//
// A World must not be mutated while a Renderer is rendering it.
type World struct {
	objects []Object
	light   DirectionalLight
}

// NewWorld returns an empty world lit by DefaultDirectionalLight.
func NewWorld() *World {
	return &World{light: DefaultDirectionalLight()}
}

// Add appends an object and returns its index.
func (w *World) Add(o Object) int {
	w.objects = append(w.objects, o.clone())
	return len(w.objects) - 1
}

// Remove deletes the object at index i, shifting later objects down.
// Out-of-range indices are ignored.
func (w *World) Remove(i int) {
	if i < 0 || i >= len(w.objects) {
		return
	}
	w.objects = append(w.objects[:i], w.objects[i+1:]...)
}

// Len returns the number of objects.
func (w *World) Len() int {
	return len(w.objects)
}

// Object returns a copy of the object at index i.
func (w *World) Object(i int) Object {
	return w.objects[i].clone()
}

// SetObject replaces the object at index i.
func (w *World) SetObject(i int, o Object) {
	w.objects[i] = o.clone()
}

// Objects returns copies of all objects in traversal order.
func (w *World) Objects() []Object {
	out := make([]Object, len(w.objects))
	for i, o := range w.objects {
		out[i] = o.clone()
	}
	return out
}

// Light returns the scene light.
func (w *World) Light() DirectionalLight {
	return w.light
}

// SetLight replaces the scene light.
func (w *World) SetLight(l DirectionalLight) {
	w.light = l
}
