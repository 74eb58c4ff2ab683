package rt

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *Image {
	img := NewImage(3, 2)
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(2, 1, color.NRGBA{G: 128, B: 7, A: 255})
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

func TestImagePixelAccess(t *testing.T) {
	img := testImage()
	if p := img.Pixel(0, 0); p != [4]uint8{255, 0, 0, 255} {
		t.Errorf("Pixel(0,0) = %v", p)
	}
	if p := img.Pixel(2, 1); p != [4]uint8{0, 128, 7, 255} {
		t.Errorf("Pixel(2,1) = %v", p)
	}
	if p := img.Pixel(5, 5); p != [4]uint8{} {
		t.Errorf("out of range Pixel = %v", p)
	}
	img.Set(-1, 0, color.White) // ignored

	rgba := img.RGBA()
	if &rgba.Pix[0] != &img.Pix[0] {
		t.Error("RGBA() copied the pixels")
	}
	if got := rgba.RGBAAt(2, 1); got != (color.RGBA{0, 128, 7, 255}) {
		t.Errorf("RGBAAt(2,1) = %v", got)
	}
}

func TestImageEncodeRoundTrip(t *testing.T) {
	img := testImage()
	decoders := map[Format]func(*bytes.Buffer) (image.Image, error){
		FormatPNG:  func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) },
		FormatBMP:  func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) },
		FormatTIFF: func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(b) },
	}
	for format, decode := range decoders {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := img.Encode(&buf, format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := decode(&buf)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Bounds() != img.Bounds() {
				t.Fatalf("bounds = %v", got.Bounds())
			}
			for y := 0; y < img.Height; y++ {
				for x := 0; x < img.Width; x++ {
					r1, g1, b1, _ := got.At(x, y).RGBA()
					r2, g2, b2, _ := img.At(x, y).RGBA()
					if r1>>8 != r2>>8 || g1>>8 != g2>>8 || b1>>8 != b2>>8 {
						t.Errorf("(%d,%d) = %v, want %v", x, y, got.At(x, y), img.At(x, y))
					}
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{".PNG", FormatPNG, false},
		{"bmp", FormatBMP, false},
		{"tif", FormatTIFF, false},
		{".tiff", FormatTIFF, false},
		{"jpeg", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || (!tt.wantErr && got != tt.want) {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestImageSave(t *testing.T) {
	dir := t.TempDir()
	img := testImage()

	for _, name := range []string{"frame.png", "frame.bmp", "frame.tiff"} {
		path := filepath.Join(dir, name)
		if err := img.Save(path); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		if st, err := os.Stat(path); err != nil || st.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if err := img.Save(filepath.Join(dir, "frame.gif")); err == nil {
		t.Error("Save with unknown extension succeeded")
	}
}
