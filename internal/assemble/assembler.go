// Package assemble composes Wang tiles into complete map rasters.
// Assembly is pure and deterministic: identical grid and tileset inputs
// always produce byte-identical images.
package assemble

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/pixelatelabs/mapforge/internal/tileset"
	"github.com/pixelatelabs/mapforge/internal/wang"
)

// IncompleteTilesetError reports a tileset missing a tile the grid needs.
// Assembly never papers over a missing tile with a blank cell.
type IncompleteTilesetError struct {
	PairID string
	Index  int
}

func (e *IncompleteTilesetError) Error() string {
	return fmt.Sprintf("tileset %s has no tile for corner index %d", e.PairID, e.Index)
}

// FromGrid renders the terrain grid with the tileset. Every cell's
// corner index selects the tile pasted at (col*tileSize, row*tileSize).
func FromGrid(ts *tileset.TilePairResult, grid *wang.Grid) (*image.RGBA, error) {
	rows, cols := grid.Rows(), grid.Cols()
	size := ts.TileSize

	out := image.NewRGBA(image.Rect(0, 0, cols*size, rows*size))

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			index := grid.CellIndex(r, c)
			tile, ok := ts.Tiles[index]
			if !ok || tile == nil {
				return nil, &IncompleteTilesetError{PairID: ts.PairID, Index: index}
			}
			rect := image.Rect(c*size, r*size, (c+1)*size, (r+1)*size)
			draw.Draw(out, rect, tile, tile.Bounds().Min, draw.Src)
		}
	}

	return out, nil
}

// Pattern synthesizes a terrain grid procedurally and renders it.
// width and height are in cells; seed only affects the random pattern.
func Pattern(ts *tileset.TilePairResult, width, height int, pattern wang.Pattern, seed *int64) (*image.RGBA, error) {
	grid, err := wang.Generate(pattern, height, width, seed)
	if err != nil {
		return nil, err
	}
	return FromGrid(ts, grid)
}

// ExportPNG writes the image to path, upscaling by an integer factor
// with nearest-neighbour sampling so pixel art stays crisp.
func ExportPNG(img image.Image, path string, scale int) error {
	if scale < 1 {
		scale = 1
	}

	if scale > 1 {
		b := img.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
		img = scaled
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
