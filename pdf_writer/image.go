package pdf_writer

import (
	"bytes"
	"image"

	"github.com/klauspost/compress/zlib"

	"img2pdf/codec"
	"img2pdf/contracts"
)

const (
	colorSpaceGray = "/DeviceGray"
	colorSpaceRGB  = "/DeviceRGB"

	filterDCT   = "/DCTDecode"
	filterFlate = "/FlateDecode"
)

type imageObject struct {
	width      int
	height     int
	colorSpace string
	filter     string
	data       []byte
	smask      *imageObject
}

func encodeImage(img contracts.DecodedImage) (*imageObject, error) {
	src := img.Image()

	if img.Format() == "jpeg" && len(img.Encoded()) > 0 {
		// CMYK JPEGs go through the raw path.
		switch src.(type) {
		case *image.Gray:
			return jpegObject(img, colorSpaceGray), nil
		case *image.YCbCr:
			return jpegObject(img, colorSpaceRGB), nil
		}
	}

	obj := &imageObject{
		width:  img.Width(),
		height: img.Height(),
		filter: filterFlate,
	}
	var samples []byte
	if codec.IsGray(src) {
		obj.colorSpace = colorSpaceGray
		samples = codec.GrayPixels(src)
	} else {
		obj.colorSpace = colorSpaceRGB
		samples = codec.RGBPixels(src)
	}

	var err error
	if obj.data, err = deflate(samples); err != nil {
		return nil, err
	}

	if alpha, ok := codec.AlphaPixels(src); ok {
		mask, err := deflate(alpha)
		if err != nil {
			return nil, err
		}
		obj.smask = &imageObject{
			width:      obj.width,
			height:     obj.height,
			colorSpace: colorSpaceGray,
			filter:     filterFlate,
			data:       mask,
		}
	}
	return obj, nil
}

func jpegObject(img contracts.DecodedImage, colorSpace string) *imageObject {
	return &imageObject{
		width:      img.Width(),
		height:     img.Height(),
		colorSpace: colorSpace,
		filter:     filterDCT,
		data:       img.Encoded(),
	}
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
