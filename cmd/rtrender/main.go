// Command rtrender renders one frame of a sphere scene to an image file.
//
// Usage:
//
//	rtrender [-scene scene.json] [-out frame.png] [-width 1280 -height 720]
//
// Without -scene the built-in three-sphere scene is rendered. The GPU
// executor is used when a Vulkan adapter is available, unless -cpu is set.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rt"
	_ "github.com/gogpu/rt/gpu" // enable GPU rendering
	"github.com/gogpu/rt/internal/caption"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "rtrender:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rtrender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		scenePath  = fs.String("scene", "", "scene JSON file (default: built-in scene)")
		output     = fs.String("out", "frame.png", "output file (.png, .bmp, .tif, .tiff)")
		format     = fs.String("format", "", "output format, overriding the file extension")
		width      = fs.Int("width", 0, "image width (default: scene width)")
		height     = fs.Int("height", 0, "image height (default: scene height)")
		shadow     = fs.String("shadow", "", "shadow ray direction: toward or along (default: scene setting)")
		workers    = fs.Int("workers", 0, "CPU worker goroutines (0 = GOMAXPROCS)")
		cpuOnly    = fs.Bool("cpu", false, "render on the CPU even if a GPU is available")
		label      = fs.Bool("label", false, "stamp frame statistics into the image")
		writeScene = fs.String("write-scene", "", "also write the effective scene JSON to this file")
		dumpFrame  = fs.String("dump-frame", "", "also write the packed frame buffers to this file")
		verbose    = fs.Bool("v", false, "verbose (debug) logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	rt.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg := rt.DefaultSceneConfig()
	if *scenePath != "" {
		var err error
		if cfg, err = rt.LoadSceneConfig(*scenePath); err != nil {
			return err
		}
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *shadow != "" {
		cfg.Shadow = *shadow
	}

	cam, world, err := cfg.Build()
	if err != nil {
		return err
	}
	mode, err := cfg.ShadowMode()
	if err != nil {
		return err
	}

	opts := []rt.RendererOption{rt.WithShadowMode(mode), rt.WithWorkers(*workers)}
	if *cpuOnly {
		opts = append(opts, rt.WithCPUOnly())
	}
	r := rt.NewRenderer(cfg.Width, cfg.Height, opts...)
	if err := r.Init(); err != nil {
		return err
	}
	defer r.Close()

	img, err := r.RenderImage(cam, world)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	stats := p.Sprintf("%d×%d, %d objects, %v on %s",
		cfg.Width, cfg.Height, world.Len(), r.LastFrameDuration().Round(time.Microsecond), r.AcceleratorName())
	if *label {
		if err := stamp(img, stats); err != nil {
			return err
		}
	}

	if *format != "" {
		f, err := rt.ParseFormat(*format)
		if err != nil {
			return err
		}
		if err := img.SaveAs(*output, f); err != nil {
			return err
		}
	} else if err := img.Save(*output); err != nil {
		return err
	}

	if *writeScene != "" {
		if err := writeFile(*writeScene, cfg.WriteTo); err != nil {
			return err
		}
	}
	if *dumpFrame != "" {
		frame, err := rt.PackFrame(cfg.Width, cfg.Height, cam, world, mode)
		if err != nil {
			return err
		}
		if err := writeFile(*dumpFrame, frame.WriteTo); err != nil {
			return err
		}
	}

	_, err = p.Fprintf(stdout, "rendered %s (%d pixels) to %s\n", stats, cfg.Width*cfg.Height, *output)
	return err
}

// stamp draws text in the top-left corner of img.
func stamp(img *rt.Image, text string) error {
	c, err := caption.New(caption.DefaultSize)
	if err != nil {
		return err
	}
	defer c.Close()
	c.DrawLabel(img, 8, 8, 4, text)
	return nil
}

func writeFile(path string, write func(io.Writer) (int64, error)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
