// Package geometry maps pixel dimensions to page dimensions in points.
package geometry

import (
	"fmt"
	"math"

	"img2pdf/contracts"
)

// PointsPerInch is the PDF user space unit: 1pt = 1/72 inch.
const PointsPerInch = 72.0

// MaxPixelDimension is the largest width or height the encoders can write
// into an image dictionary.
const MaxPixelDimension = math.MaxInt32

// PageGeometry is a page size in points.
type PageGeometry struct {
	WidthPt  float64
	HeightPt float64
}

// ValidateDPI rejects NaN, infinite and non-positive resolutions.
func ValidateDPI(dpi float64) error {
	if math.IsNaN(dpi) || math.IsInf(dpi, 0) || dpi <= 0 {
		return fmt.Errorf("%w (got %v)", contracts.ErrInvalidDPI, dpi)
	}
	return nil
}

func validatePixels(widthPx, heightPx int) error {
	if widthPx <= 0 || widthPx > MaxPixelDimension {
		return fmt.Errorf("%w: width %d", contracts.ErrPixelRange, widthPx)
	}
	if heightPx <= 0 || heightPx > MaxPixelDimension {
		return fmt.Errorf("%w: height %d", contracts.ErrPixelRange, heightPx)
	}
	return nil
}

// PxToPt converts a pixel count at dpi to points.
func PxToPt(px int, dpi float64) float64 {
	return float64(px) * PointsPerInch / dpi
}

// PageSize returns the page that exactly fits a widthPx x heightPx image at dpi.
func PageSize(widthPx, heightPx int, dpi float64) (PageGeometry, error) {
	if err := ValidateDPI(dpi); err != nil {
		return PageGeometry{}, err
	}
	if err := validatePixels(widthPx, heightPx); err != nil {
		return PageGeometry{}, err
	}
	return PageGeometry{
		WidthPt:  PxToPt(widthPx, dpi),
		HeightPt: PxToPt(heightPx, dpi),
	}, nil
}
