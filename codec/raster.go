package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// IsGray reports whether img stores a single luminance channel.
func IsGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	m := img.ColorModel()
	return m == color.GrayModel || m == color.Gray16Model
}

// GrayPixels returns 8-bit luminance samples, row-major, no padding.
func GrayPixels(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, 0, w*h)

	if g, ok := img.(*image.Gray); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := g.PixOffset(b.Min.X, y)
			out = append(out, g.Pix[off:off+w]...)
		}
		return out
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
	return out
}

// RGBPixels returns 8-bit non-premultiplied RGB samples, row-major.
func RGBPixels(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, 0, w*h*3)

	if n, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := n.Pix[n.PixOffset(b.Min.X, y):]
			for x := 0; x < w; x++ {
				out = append(out, row[x*4], row[x*4+1], row[x*4+2])
			}
		}
		return out
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}

// AlphaPixels returns 8-bit alpha samples, or false when img is fully opaque.
func AlphaPixels(img image.Image) ([]byte, bool) {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return nil, false
	}
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy())
	opaque := true
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := color.AlphaModel.Convert(img.At(x, y)).(color.Alpha).A
			if a != 0xff {
				opaque = false
			}
			out = append(out, a)
		}
	}
	if opaque {
		return nil, false
	}
	return out, true
}

// EncodePNG re-encodes img as an 8-bit PNG, gray or NRGBA.
func EncodePNG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	var src image.Image
	if IsGray(img) {
		g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
		src = g
	} else {
		n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
		src = n
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
