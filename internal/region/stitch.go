package region

import (
	"errors"
	"image"
	"image/draw"

	"github.com/pixelatelabs/mapforge/internal/logger"
)

// ErrEmptyRegionSet is returned when stitching an empty region list.
var ErrEmptyRegionSet = errors.New("no regions to stitch")

// Stitch composites the regions onto one canvas covering the bounding
// box of all their extents. Regions are pasted in input order, so on
// overlap the last region wins; callers rely on later expansions
// overriding placeholder edges, making the order significant and the
// result deterministic.
func Stitch(regions []*MapRegion) (*image.RGBA, error) {
	if len(regions) == 0 {
		return nil, ErrEmptyRegionSet
	}

	bounds := regions[0].Bounds()
	for _, reg := range regions[1:] {
		bounds = bounds.Union(reg.Bounds())
	}

	logger.Debug("Stitching regions", "count", len(regions),
		"width", bounds.Dx(), "height", bounds.Dy())

	// Canvas coordinates start at (0,0); origins may be negative, so
	// every region is shifted by the bounding box minimum.
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for _, reg := range regions {
		target := reg.Bounds().Sub(bounds.Min)
		draw.Draw(canvas, target, reg.Image, reg.Image.Bounds().Min, draw.Src)
	}

	return canvas, nil
}
