package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

const (
	resolutionUnitInch       = 2
	resolutionUnitCentimeter = 3
)

func detectResolution(format string, data []byte) (float64, float64, bool) {
	switch format {
	case "png":
		return pngResolution(data)
	case "jpeg", "tiff":
		return exifResolution(data)
	}
	return 0, 0, false
}

func exifResolution(data []byte) (float64, float64, bool) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return 0, 0, false
	}

	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return 0, 0, false
	}
	ti := exif.NewTagIndex()

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return 0, 0, false
	}

	rational := func(name string) (float64, bool) {
		tags, err := index.RootIfd.FindTagWithName(name)
		if err != nil || len(tags) == 0 {
			return 0, false
		}
		val, err := tags[0].Value()
		if err != nil {
			return 0, false
		}
		rats, ok := val.([]exifcommon.Rational)
		if !ok || len(rats) == 0 || rats[0].Denominator == 0 {
			return 0, false
		}
		return float64(rats[0].Numerator) / float64(rats[0].Denominator), true
	}

	dpiX, okX := rational("XResolution")
	dpiY, okY := rational("YResolution")
	if !okX || !okY {
		return 0, 0, false
	}

	unit := uint16(resolutionUnitInch)
	if tags, err := index.RootIfd.FindTagWithName("ResolutionUnit"); err == nil && len(tags) > 0 {
		if val, err := tags[0].Value(); err == nil {
			if u, ok := val.([]uint16); ok && len(u) > 0 {
				unit = u[0]
			}
		}
	}
	switch unit {
	case resolutionUnitInch:
	case resolutionUnitCentimeter:
		dpiX *= 2.54
		dpiY *= 2.54
	default:
		return 0, 0, false
	}
	return dpiX, dpiY, dpiX > 0 && dpiY > 0
}

// pngResolution reads the pHYs chunk. Only the metre unit carries an
// absolute density.
func pngResolution(data []byte) (float64, float64, bool) {
	const signatureLen = 8
	if len(data) < signatureLen {
		return 0, 0, false
	}
	buf := bytes.NewReader(data[signatureLen:])

	for {
		var length uint32
		if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
			return 0, 0, false
		}
		var chunkType [4]byte
		if _, err := io.ReadFull(buf, chunkType[:]); err != nil {
			return 0, 0, false
		}

		switch string(chunkType[:]) {
		case "pHYs":
			var phys struct {
				PxPerUnitX uint32
				PxPerUnitY uint32
				Unit       byte
			}
			if err := binary.Read(buf, binary.BigEndian, &phys); err != nil {
				return 0, 0, false
			}
			if phys.Unit != 1 || phys.PxPerUnitX == 0 || phys.PxPerUnitY == 0 {
				return 0, 0, false
			}
			return float64(phys.PxPerUnitX) * 0.0254, float64(phys.PxPerUnitY) * 0.0254, true
		case "IDAT", "IEND":
			// pHYs must precede image data
			return 0, 0, false
		}

		// skip chunk data + CRC
		if _, err := buf.Seek(int64(length)+4, io.SeekCurrent); err != nil {
			return 0, 0, false
		}
	}
}
