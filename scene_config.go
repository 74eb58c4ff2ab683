package rt

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RotDeg is a rotation in degrees for scene files (friendlier than radians).
// Pitch, yaw and roll feed RotationFromAngles as alpha, beta and gamma.
type RotDeg struct {
	Pitch float32 `json:"pitch,omitempty"`
	Yaw   float32 `json:"yaw,omitempty"`
	Roll  float32 `json:"roll,omitempty"`
}

// Radians returns (alpha, beta, gamma) in radians.
func (r RotDeg) Radians() (alpha, beta, gamma float32) {
	const k = math32.Pi / 180
	return r.Pitch * k, r.Yaw * k, r.Roll * k
}

// CameraCfg describes the camera in a scene file.
type CameraCfg struct {
	Position    [3]float32 `json:"position"`
	RotDeg      RotDeg     `json:"rotDeg"`
	FOV         float32    `json:"fov"`
	FocalLength float32    `json:"focalLength"`
}

// LightCfg describes the directional light. Direction is normalized on Build;
// Color is "#rrggbb" or "#rgb".
type LightCfg struct {
	Direction [3]float32 `json:"direction"`
	Color     string     `json:"color"`
}

// SphereCfg describes one sphere.
type SphereCfg struct {
	Center [3]float32 `json:"center"`
	Radius float32    `json:"radius"`
	Color  string     `json:"color"`
}

// SceneConfig is the JSON form of a complete frame setup.
type SceneConfig struct {
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Shadow  string      `json:"shadow,omitempty"` // "toward" (default) or "along"
	Camera  CameraCfg   `json:"camera"`
	Light   LightCfg    `json:"light"`
	Spheres []SphereCfg `json:"spheres"`
}

// DefaultSceneConfig returns the demo scene: a red and a green sphere in
// front of the camera above a very large blue sphere acting as the ground,
// lit from above-left-behind, rendered at 1280x720.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Width:  1280,
		Height: 720,
		Shadow: ShadowTowardLight.String(),
		Camera: CameraCfg{FOV: 90, FocalLength: 0.1},
		Light: LightCfg{
			Direction: [3]float32{DefaultLightDirection[0], DefaultLightDirection[1], DefaultLightDirection[2]},
			Color:     White.Hex(),
		},
		Spheres: []SphereCfg{
			{Center: [3]float32{-10, 15, -70}, Radius: 10, Color: Red.Hex()},
			{Center: [3]float32{15, 5, -70}, Radius: 10, Color: Green.Hex()},
			{Center: [3]float32{0, -100002, 0}, Radius: 100000, Color: Blue.Hex()},
		},
	}
}

// LoadSceneConfig reads a scene file.
func LoadSceneConfig(path string) (SceneConfig, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return SceneConfig{}, err
	}
	defer func() {
		_ = f.Close()
	}()
	cfg, err := ParseSceneConfig(f)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseSceneConfig decodes a scene from r. Unknown keys are rejected so that
// typos do not silently fall back to zero values.
func ParseSceneConfig(r io.Reader) (SceneConfig, error) {
	var cfg SceneConfig
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return SceneConfig{}, fmt.Errorf("rt: decode scene: %w", err)
	}
	return cfg, nil
}

// WriteTo encodes the scene as indented JSON.
func (c SceneConfig) WriteTo(w io.Writer) (int64, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(b, '\n'))
	return int64(n), err
}

// ShadowMode returns the parsed shadow setting.
func (c SceneConfig) ShadowMode() (ShadowMode, error) {
	return ParseShadowMode(c.Shadow)
}

// Build validates the configuration and constructs the camera and world.
func (c SceneConfig) Build() (Camera, *World, error) {
	if err := CheckDimensions(c.Width, c.Height); err != nil {
		return Camera{}, nil, err
	}
	if _, err := c.ShadowMode(); err != nil {
		return Camera{}, nil, err
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return Camera{}, nil, fmt.Errorf("rt: camera fov must be in (0, 180), got %v", c.Camera.FOV)
	}
	if c.Camera.FocalLength <= 0 {
		return Camera{}, nil, fmt.Errorf("rt: camera focal length must be > 0, got %v", c.Camera.FocalLength)
	}

	cam := NewCamera(c.Camera.FOV, c.Camera.FocalLength)
	p := c.Camera.Position
	cam.CFrame = NewCFrame(p[0], p[1], p[2]).RotateLocal(c.Camera.RotDeg.Radians())

	light, err := c.Light.build()
	if err != nil {
		return Camera{}, nil, err
	}
	world := NewWorld()
	world.SetLight(light)

	for i, s := range c.Spheres {
		if s.Radius <= 0 {
			return Camera{}, nil, fmt.Errorf("rt: sphere %d: radius must be > 0, got %v", i, s.Radius)
		}
		col, err := ParseHex(s.Color)
		if err != nil {
			return Camera{}, nil, fmt.Errorf("rt: sphere %d: %w", i, err)
		}
		o := NewSphere(s.Radius)
		o.SetPosition(s.Center[0], s.Center[1], s.Center[2])
		o.Color = col
		world.Add(o)
	}
	return cam, world, nil
}

func (l LightCfg) build() (DirectionalLight, error) {
	col := White
	if l.Color != "" {
		c, err := ParseHex(l.Color)
		if err != nil {
			return DirectionalLight{}, fmt.Errorf("rt: light: %w", err)
		}
		col = c
	}
	return NewDirectionalLight(mgl32.Vec3(l.Direction), col), nil
}
