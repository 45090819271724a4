// Package codec decodes raw bytes into images ready for page assembly.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"img2pdf/contracts"
)

// Image is an immutable decoded raster. It implements contracts.DecodedImage.
type Image struct {
	img     image.Image
	format  string
	encoded []byte
	dpiX    float64
	dpiY    float64
}

// Decode decodes data in any registered format. The slice is retained for
// JPEG input and must not be modified afterwards.
func Decode(data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDecode, err)
	}
	if err := checkBounds(img); err != nil {
		return nil, err
	}

	out := &Image{img: img, format: format}
	if format == "jpeg" {
		out.encoded = data
	}
	if x, y, ok := detectResolution(format, data); ok {
		out.dpiX, out.dpiY = x, y
	}
	return out, nil
}

func DecodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading image file %s: %w", path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// FromImage wraps an in-memory image. The caller must not mutate img later.
func FromImage(img image.Image) (*Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", contracts.ErrInvalidImage)
	}
	if err := checkBounds(img); err != nil {
		return nil, err
	}
	return &Image{img: img}, nil
}

func checkBounds(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", contracts.ErrDecode, b.Dx(), b.Dy())
	}
	return nil
}

func (i *Image) Width() int         { return i.img.Bounds().Dx() }
func (i *Image) Height() int        { return i.img.Bounds().Dy() }
func (i *Image) Image() image.Image { return i.img }
func (i *Image) Format() string     { return i.format }
func (i *Image) Encoded() []byte    { return i.encoded }

// Resolution reports the pixel density declared by the source file, if any.
func (i *Image) Resolution() (dpiX, dpiY float64, ok bool) {
	if i.dpiX <= 0 || i.dpiY <= 0 {
		return 0, 0, false
	}
	return i.dpiX, i.dpiY, true
}
