package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/rt"
)

func TestRunWritesImage(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "frame.png")
	scene := filepath.Join(dir, "scene.json")
	dump := filepath.Join(dir, "frame.bin")

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-cpu", "-width", "64", "-height", "36", "-label",
		"-out", out, "-write-scene", scene, "-dump-frame", dump,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 36 {
		t.Errorf("image bounds = %v", b)
	}

	cfg, err := rt.LoadSceneConfig(scene)
	if err != nil {
		t.Fatalf("written scene: %v", err)
	}
	if cfg.Width != 64 || len(cfg.Spheres) != 3 {
		t.Errorf("written scene = %+v", cfg)
	}

	if st, err := os.Stat(dump); err != nil || st.Size() == 0 {
		t.Errorf("frame dump not written: %v", err)
	}
	if !strings.Contains(stdout.String(), "64×36, 3 objects") || !strings.Contains(stdout.String(), "2,304 pixels") {
		t.Errorf("summary = %q", stdout.String())
	}
}

func TestRunFormatOverride(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.img")
	err := run([]string{"-cpu", "-width", "8", "-height", "8", "-format", "bmp", "-out", out}, &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("BM")) {
		t.Errorf("output is not a BMP: % x", data[:min(4, len(data))])
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad shadow", []string{"-cpu", "-shadow", "sideways"}},
		{"too wide", []string{"-cpu", "-width", "70000"}},
		{"missing scene", []string{"-cpu", "-scene", "does-not-exist.json"}},
		{"bad format", []string{"-cpu", "-width", "4", "-height", "4", "-format", "gif"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "-out", filepath.Join(t.TempDir(), "x.png"))
			if err := run(args, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
				t.Error("run succeeded")
			}
		})
	}
}
