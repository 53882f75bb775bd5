// Package texture decodes image files into CPU-side RGBA pixels ready for
// GPU upload.
package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/Faultbox/scenedemo/internal/engine/asset"
)

// Load reads and decodes the image at path.
func Load(path string) (image.Image, error) {
	data, err := asset.ReadFile("texture", path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// Decode decodes image bytes. The name is used only to pick the TGA decoder,
// which has no magic number the standard registry could sniff.
func Decode(data []byte, name string) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, asset.Formatf("texture", name, "%v", err)
	}
	return img, nil
}

// Channels returns 3 for images without meaningful alpha and 4 otherwise.
func Channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr:
		return 3
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

// ToRGBA returns img as a tightly packed *image.RGBA with origin (0,0).
// Images already in that form are returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// PackRGB drops the alpha channel from an RGBA image.
func PackRGB(img *image.RGBA) []byte {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	out := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			out = append(out, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}

// FlipVertical returns a copy of img mirrored top to bottom.
func FlipVertical(img *image.RGBA) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	rowSize := w * 4
	for y := 0; y < h; y++ {
		src := img.Pix[(h-1-y)*img.Stride:]
		copy(out.Pix[y*out.Stride:y*out.Stride+rowSize], src[:rowSize])
	}
	return out
}

// Checkerboard builds the fallback texture bound for untextured meshes.
func Checkerboard(size, cell int, a, b color.RGBA) *image.RGBA {
	if cell < 1 {
		cell = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// DefaultCheckerboard is the magenta/black pattern used for missing textures.
func DefaultCheckerboard() *image.RGBA {
	return Checkerboard(64, 8, color.RGBA{R: 255, B: 255, A: 255}, color.RGBA{A: 255})
}
