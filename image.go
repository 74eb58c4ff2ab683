package rt

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Image is a rendered frame: Width*Height RGBA8 pixels in Pix, row-major,
// top row first. Frames are always opaque.
type Image struct {
	Width, Height int
	Pix           []uint8
}

// NewImage allocates a width x height image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*BytesPerPixel),
	}
}

// Pixel returns the RGBA bytes of pixel (x, y), or zeros outside the image.
func (img *Image) Pixel(x, y int) [BytesPerPixel]uint8 {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return [BytesPerPixel]uint8{}
	}
	i := (y*img.Width + x) * BytesPerPixel
	return [BytesPerPixel]uint8(img.Pix[i : i+BytesPerPixel])
}

// At implements image.Image.
func (img *Image) At(x, y int) color.Color {
	p := img.Pixel(x, y)
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set implements draw.Image, so overlays can draw straight onto a frame.
func (img *Image) Set(x, y int, c color.Color) {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	i := (y*img.Width + x) * BytesPerPixel
	img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = n.R, n.G, n.B, n.A
}

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// RGBA returns an *image.RGBA sharing img's pixels. Opaque pixels are the
// same premultiplied or not, so no conversion is needed.
func (img *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    img.Pix,
		Stride: img.Width * BytesPerPixel,
		Rect:   img.Bounds(),
	}
}

// Format is an image file encoding.
type Format uint8

const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
)

// String returns the usual file extension without the dot.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name or extension ("png", ".bmp", "tif", ...).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return 0, fmt.Errorf("rt: unknown image format %q", s)
	}
}

// Encode writes img to w in the given format.
func (img *Image) Encode(w io.Writer, f Format) error {
	rgba := img.RGBA()
	switch f {
	case FormatPNG:
		return png.Encode(w, rgba)
	case FormatBMP:
		return bmp.Encode(w, rgba)
	case FormatTIFF:
		return tiff.Encode(w, rgba, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("rt: unknown image format %v", f)
	}
}

// Save writes img to path, choosing the format from the extension.
func (img *Image) Save(path string) error {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	return img.SaveAs(path, f)
}

// SavePNG writes img to path as PNG.
func (img *Image) SavePNG(path string) error {
	return img.SaveAs(path, FormatPNG)
}

// SaveAs writes img to path in the given format.
func (img *Image) SaveAs(path string, f Format) error {
	file, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if err := img.Encode(w, f); err != nil {
		_ = file.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
