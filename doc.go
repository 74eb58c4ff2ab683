// Package rt provides a real-time ray tracer for scenes made of spheres lit
// by a single directional light.
//
// # Overview
//
// rt casts one primary ray per pixel from a pinhole camera, finds the nearest
// sphere along it, and shades the hit point with diffuse lighting and a hard
// shadow test. The whole pipeline is expressed as a per-pixel kernel that reads
// a flat, little-endian frame contract (FrameData), so the same kernel runs on
// the CPU worker pool or as a GPU compute shader.
//
// # Quick Start
//
//	import "github.com/gogpu/rt"
//
//	cfg := rt.DefaultSceneConfig()
//	camera, world, err := cfg.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := rt.NewRenderer(cfg.Width, cfg.Height)
//	if err := r.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	img, err := r.RenderImage(camera, world)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = img.SavePNG("frame.png")
//
// # Executors
//
// The CPU executor (CPUAccelerator) is always available. GPU execution is
// enabled by a blank import:
//
//	import _ "github.com/gogpu/rt/gpu"
//
// If the GPU cannot be initialized the renderer keeps using the CPU.
//
// # Coordinate System
//
// Right-handed world space. A CFrame's rotation columns are its local right,
// up and forward axes; a camera looks along the negative forward axis, so the
// identity camera looks down -Z with +Y up. Image origin is the top-left
// pixel, rows grow downward.
package rt

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
