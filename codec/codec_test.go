package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"img2pdf/contracts"
)

func testRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	return img
}

func encodeWith(t *testing.T, enc func(*bytes.Buffer, image.Image) error, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, enc(&buf, img))
	return buf.Bytes()
}

func TestDecodeFormats(t *testing.T) {
	src := testRGBA(12, 7)

	cases := map[string]func(*bytes.Buffer, image.Image) error{
		"png": func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) },
		"jpeg": func(b *bytes.Buffer, m image.Image) error {
			return jpeg.Encode(b, m, &jpeg.Options{Quality: 90})
		},
		"tiff": func(b *bytes.Buffer, m image.Image) error { return tiff.Encode(b, m, nil) },
		"bmp":  func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) },
	}

	for format, enc := range cases {
		t.Run(format, func(t *testing.T) {
			data := encodeWith(t, enc, src)
			img, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, format, img.Format())
			assert.Equal(t, 12, img.Width())
			assert.Equal(t, 7, img.Height())
			if format == "jpeg" {
				assert.Equal(t, data, img.Encoded())
			} else {
				assert.Nil(t, img.Encoded())
			}
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrDecode))
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile("testdata/does-not-exist.png")
	assert.Error(t, err)
}

func TestFromImage(t *testing.T) {
	img, err := FromImage(testRGBA(3, 4))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width())
	assert.Equal(t, 4, img.Height())
	assert.Equal(t, "", img.Format())
	_, _, ok := img.Resolution()
	assert.False(t, ok)

	_, err = FromImage(nil)
	assert.True(t, errors.Is(err, contracts.ErrInvalidImage))

	_, err = FromImage(image.NewRGBA(image.Rect(0, 0, 0, 5)))
	assert.True(t, errors.Is(err, contracts.ErrDecode))
}

// withPHYs inserts a pHYs chunk right after IHDR.
func withPHYs(t *testing.T, data []byte, pxPerMetre uint32, unit byte) []byte {
	t.Helper()
	const ihdrEnd = 8 + 4 + 4 + 13 + 4

	var body bytes.Buffer
	body.WriteString("pHYs")
	require.NoError(t, binary.Write(&body, binary.BigEndian, pxPerMetre))
	require.NoError(t, binary.Write(&body, binary.BigEndian, pxPerMetre))
	body.WriteByte(unit)

	var chunk bytes.Buffer
	require.NoError(t, binary.Write(&chunk, binary.BigEndian, uint32(9)))
	chunk.Write(body.Bytes())
	require.NoError(t, binary.Write(&chunk, binary.BigEndian, crc32.ChecksumIEEE(body.Bytes())))

	out := append([]byte{}, data[:ihdrEnd]...)
	out = append(out, chunk.Bytes()...)
	return append(out, data[ihdrEnd:]...)
}

func TestPNGResolution(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testRGBA(4, 4)))

	// 11811 px/m is 300 dpi (rounded)
	data := withPHYs(t, buf.Bytes(), 11811, 1)
	img, err := Decode(data)
	require.NoError(t, err)

	x, y, ok := img.Resolution()
	require.True(t, ok)
	assert.InDelta(t, 300, x, 0.01)
	assert.InDelta(t, 300, y, 0.01)

	unknownUnit := withPHYs(t, buf.Bytes(), 11811, 0)
	img, err = Decode(unknownUnit)
	require.NoError(t, err)
	_, _, ok = img.Resolution()
	assert.False(t, ok)

	img, err = Decode(buf.Bytes())
	require.NoError(t, err)
	_, _, ok = img.Resolution()
	assert.False(t, ok)
}

func TestJPEGWithoutExifHasNoResolution(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testRGBA(8, 8), nil))
	_, _, ok := exifResolution(buf.Bytes())
	assert.False(t, ok)
}

func TestRasterHelpers(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(gray.Pix, []byte{1, 2, 3, 4, 5, 6})
	assert.True(t, IsGray(gray))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, GrayPixels(gray))

	sub := gray.SubImage(image.Rect(1, 0, 3, 2))
	assert.Equal(t, []byte{2, 3, 5, 6}, GrayPixels(sub))

	rgba := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	rgba.Set(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 128})
	assert.False(t, IsGray(rgba))
	assert.Equal(t, []byte{10, 20, 30, 40, 50, 60}, RGBPixels(rgba))

	alpha, ok := AlphaPixels(rgba)
	require.True(t, ok)
	assert.Equal(t, []byte{255, 128}, alpha)

	_, ok = AlphaPixels(gray)
	assert.False(t, ok)
}

func TestEncodePNGRoundTrip(t *testing.T) {
	src := testRGBA(5, 3)
	data, err := EncodePNG(src)
	require.NoError(t, err)

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Width())
	assert.Equal(t, 3, img.Height())
	assert.Equal(t, RGBPixels(src), RGBPixels(img.Image()))
}
