// Package region generates rectangular map regions directly through
// the external service (no autotiling) and stitches positioned regions
// into one composite image.
package region

import (
	"fmt"
	"image"
	"time"
)

// Direction is the side of a region an expansion grows towards.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Directions returns the four expansion directions.
func Directions() []Direction {
	return []Direction{DirUp, DirDown, DirLeft, DirRight}
}

// MapRegion is an independently generated rectangular image positioned
// by pixel offset in a larger composite. Regions are immutable:
// expansion and inpainting always create a new MapRegion.
type MapRegion struct {
	// ID identifies the region in logs and filenames.
	ID string

	// Image is the region's pixels.
	Image image.Image

	// Width and Height are in pixels.
	Width  int
	Height int

	// Origin is the region's offset in the composite. May be negative
	// after expanding left or up from the initial region.
	Origin image.Point

	// Description is the text the region was generated from.
	Description string

	CreatedAt time.Time
}

// Bounds returns the region's extent in composite coordinates.
func (r *MapRegion) Bounds() image.Rectangle {
	return image.Rect(r.Origin.X, r.Origin.Y, r.Origin.X+r.Width, r.Origin.Y+r.Height)
}

// InvalidMaskError reports an inpainting mask outside the region.
type InvalidMaskError struct {
	Mask   image.Rectangle
	Bounds image.Rectangle
}

func (e *InvalidMaskError) Error() string {
	return fmt.Sprintf("mask %v is outside region bounds %v", e.Mask, e.Bounds)
}
