package assemble

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixelatelabs/mapforge/internal/tileset"
	"github.com/pixelatelabs/mapforge/internal/wang"
)

// tileShade is the solid color used for the tile at a corner index, so
// tests can read back which tile landed in which cell.
func tileShade(index int) color.RGBA {
	return color.RGBA{R: uint8(index * 16), G: uint8(255 - index*16), B: 77, A: 255}
}

// testTileset builds a ready tileset whose 16 tiles are solid colors.
func testTileset(size int) *tileset.TilePairResult {
	tiles := make(map[int]image.Image, wang.TileCount)
	for i := 0; i < wang.TileCount; i++ {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		shade := tileShade(i)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				img.Set(x, y, shade)
			}
		}
		tiles[i] = img
	}
	return &tileset.TilePairResult{
		PairID:   "test-pair",
		Lower:    "grass",
		Upper:    "water",
		TileSize: size,
		Status:   tileset.StatusReady,
		Tiles:    tiles,
	}
}

func TestFromGridDimensions(t *testing.T) {
	const size = 8
	ts := testTileset(size)

	grid, err := wang.Generate(wang.PatternCheckerboard, 2, 3, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	img, err := FromGrid(ts, grid)
	if err != nil {
		t.Fatalf("FromGrid returned error: %v", err)
	}

	// 2 rows x 3 cols of cells
	if got := img.Bounds().Dx(); got != 3*size {
		t.Errorf("image width = %d, want %d", got, 3*size)
	}
	if got := img.Bounds().Dy(); got != 2*size {
		t.Errorf("image height = %d, want %d", got, 2*size)
	}
}

func TestFromGridPlacesTilesByCornerIndex(t *testing.T) {
	const size = 4
	ts := testTileset(size)

	grid, err := wang.FromVertices([][]uint8{
		{1, 0},
		{0, 1},
	})
	if err != nil {
		t.Fatalf("FromVertices returned error: %v", err)
	}

	img, err := FromGrid(ts, grid)
	if err != nil {
		t.Fatalf("FromGrid returned error: %v", err)
	}

	// The single cell has TL=1, TR=0, BL=0, BR=1: corner index 9.
	want := tileShade(9)
	if got := img.RGBAAt(0, 0); got != want {
		t.Errorf("pixel (0,0) = %v, want tile 9 shade %v", got, want)
	}
	if got := img.RGBAAt(size-1, size-1); got != want {
		t.Errorf("pixel (%d,%d) = %v, want tile 9 shade %v", size-1, size-1, got, want)
	}
}

func TestFromGridDeterministic(t *testing.T) {
	ts := testTileset(4)
	grid, err := wang.Generate(wang.PatternGradient, 5, 5, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	a, err := FromGrid(ts, grid)
	if err != nil {
		t.Fatalf("FromGrid returned error: %v", err)
	}
	b, err := FromGrid(ts, grid)
	if err != nil {
		t.Fatalf("FromGrid returned error: %v", err)
	}

	if len(a.Pix) != len(b.Pix) {
		t.Fatalf("renders differ in size: %d vs %d", len(a.Pix), len(b.Pix))
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("renders differ at byte %d", i)
		}
	}
}

func TestFromGridIncompleteTileset(t *testing.T) {
	ts := testTileset(4)
	delete(ts.Tiles, 15)

	grid, err := wang.Generate(wang.PatternSolidUpper, 2, 2, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	// Solid upper terrain needs tile 15 in every cell.
	_, err = FromGrid(ts, grid)
	var incErr *IncompleteTilesetError
	if !errors.As(err, &incErr) {
		t.Fatalf("error = %v (%T), want *IncompleteTilesetError", err, err)
	}
	if incErr.Index != 15 {
		t.Errorf("missing index = %d, want 15", incErr.Index)
	}
	if incErr.PairID != "test-pair" {
		t.Errorf("pair id = %q, want test-pair", incErr.PairID)
	}
}

func TestPatternSeeded(t *testing.T) {
	ts := testTileset(4)
	seed := int64(7)

	a, err := Pattern(ts, 6, 4, wang.PatternRandom, &seed)
	if err != nil {
		t.Fatalf("Pattern returned error: %v", err)
	}
	b, err := Pattern(ts, 6, 4, wang.PatternRandom, &seed)
	if err != nil {
		t.Fatalf("Pattern returned error: %v", err)
	}

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatal("same seed produced different renders")
		}
	}

	// width=6, height=4 cells
	if a.Bounds().Dx() != 6*4 || a.Bounds().Dy() != 4*4 {
		t.Errorf("render is %dx%d, want 24x16", a.Bounds().Dx(), a.Bounds().Dy())
	}
}

func TestExportPNGScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.RGBA{R: 200, A: 255})

	path := filepath.Join(t.TempDir(), "maps", "out.png")
	if err := ExportPNG(src, path, 4); err != nil {
		t.Fatalf("ExportPNG returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening exported file: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding exported file: %v", err)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 8 {
		t.Errorf("exported image is %dx%d, want 12x8", img.Bounds().Dx(), img.Bounds().Dy())
	}
}
