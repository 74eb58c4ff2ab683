// Command rtview opens a window and renders a sphere scene every frame.
//
// Controls: W/S move forward and back, A/D strafe, dragging with the left
// mouse button turns the camera, Escape quits. A render error stops the loop
// and is reported on exit.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/rt"
	_ "github.com/gogpu/rt/gpu" // enable GPU rendering
	"github.com/gogpu/rt/internal/caption"
)

const helpText = "WASD move, drag to look, Esc quit"

func main() {
	var (
		scenePath = flag.String("scene", "", "scene JSON file (default: built-in scene)")
		width     = flag.Int("width", 0, "frame width (default: scene width)")
		height    = flag.Int("height", 0, "frame height (default: scene height)")
		workers   = flag.Int("workers", 0, "CPU worker goroutines (0 = GOMAXPROCS)")
		cpuOnly   = flag.Bool("cpu", false, "render on the CPU even if a GPU is available")
		verbose   = flag.Bool("v", false, "log every frame")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	rt.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := rt.DefaultSceneConfig()
	if *scenePath != "" {
		var err error
		if cfg, err = rt.LoadSceneConfig(*scenePath); err != nil {
			fatal(err)
		}
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}

	v, err := newViewer(cfg, *workers, *cpuOnly)
	if err != nil {
		fatal(err)
	}
	defer v.close()

	ebiten.SetWindowTitle("rtview")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		v.close()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "rtview:", err)
	os.Exit(1)
}

// viewer renders the scene into frame on every tick and presents it.
type viewer struct {
	renderer *rt.Renderer
	camera   rt.Camera
	world    *rt.World
	label    *caption.Caption

	frame   *rt.Image
	texture *ebiten.Image

	lastX, lastY int
	closed       bool
}

func newViewer(cfg rt.SceneConfig, workers int, cpuOnly bool) (*viewer, error) {
	cam, world, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.ShadowMode()
	if err != nil {
		return nil, err
	}

	opts := []rt.RendererOption{rt.WithShadowMode(mode), rt.WithWorkers(workers)}
	if cpuOnly {
		opts = append(opts, rt.WithCPUOnly())
	}
	r := rt.NewRenderer(cfg.Width, cfg.Height, opts...)
	if err := r.Init(); err != nil {
		return nil, err
	}
	label, err := caption.New(caption.DefaultSize)
	if err != nil {
		r.Close()
		return nil, err
	}

	return &viewer{
		renderer: r,
		camera:   cam,
		world:    world,
		label:    label,
		frame:    rt.NewImage(cfg.Width, cfg.Height),
		texture:  ebiten.NewImage(cfg.Width, cfg.Height),
	}, nil
}

func (v *viewer) close() {
	if v.closed {
		return
	}
	v.closed = true
	_ = v.label.Close()
	v.renderer.Close()
}

// input reads one step of camera input from the keyboard and mouse.
func (v *viewer) input() rt.MoveInput {
	var in rt.MoveInput
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		in.Forward--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		in.Forward++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		in.Side--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		in.Side++
	}

	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) &&
		!inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		in.Rotate = true
		in.DX = float32(x - v.lastX)
		in.DY = float32(y - v.lastY)
	}
	v.lastX, v.lastY = x, y
	return in
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	v.camera = v.camera.Step(v.input())

	if err := v.renderer.RenderTo(v.frame.Pix, v.camera, v.world); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	v.label.DrawLabel(v.frame, 8, 8, 4, fmt.Sprintf("%.0f fps  %v  %s",
		ebiten.ActualFPS(), v.renderer.LastFrameDuration(), v.renderer.AcceleratorName()))
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	v.texture.WritePixels(v.frame.Pix)
	screen.DrawImage(v.texture, nil)
	ebitenutil.DebugPrintAt(screen, helpText, 8, v.frame.Height-20)
}

func (v *viewer) Layout(int, int) (int, int) {
	return v.frame.Width, v.frame.Height
}
