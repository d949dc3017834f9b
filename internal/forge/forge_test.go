package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixelatelabs/mapforge/internal/config"
	"github.com/pixelatelabs/mapforge/internal/pixellab"
	"github.com/pixelatelabs/mapforge/internal/region"
	"github.com/pixelatelabs/mapforge/internal/store"
	"github.com/pixelatelabs/mapforge/internal/wang"
)

// fakeService stands in for the generation API across both the tileset
// and region paths. Every tileset job completes on the first poll.
type fakeService struct {
	tiles [][]byte
}

func newFakeService(t *testing.T, tileSize int) *fakeService {
	t.Helper()
	tiles := make([][]byte, wang.TileCount)
	for i := range tiles {
		img := image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))
		shade := color.RGBA{R: uint8(i * 16), G: 99, B: 180, A: 255}
		for y := 0; y < tileSize; y++ {
			for x := 0; x < tileSize; x++ {
				img.Set(x, y, shade)
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("encoding test tile: %v", err)
		}
		tiles[i] = buf.Bytes()
	}
	return &fakeService{tiles: tiles}
}

func (s *fakeService) CreateTileset(ctx context.Context, req pixellab.TilesetRequest) (string, error) {
	return fmt.Sprintf("job-%s-%s", req.LowerDescription, req.UpperDescription), nil
}

func (s *fakeService) GetTileset(ctx context.Context, jobID string) (*pixellab.TilesetJob, error) {
	return &pixellab.TilesetJob{
		ID:              jobID,
		Status:          pixellab.StatusCompleted,
		LowerBaseTileID: "lb-" + jobID,
		UpperBaseTileID: "ub-" + jobID,
		Tiles:           s.tiles,
	}, nil
}

func (s *fakeService) GenerateImage(ctx context.Context, req pixellab.ImageRequest) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *fakeService) Inpaint(ctx context.Context, req pixellab.InpaintRequest) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func testForge(t *testing.T) *Forge {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Generation.PollIntervalSeconds = 0
	cfg.Generation.MaxWaitSeconds = 1
	svc := newFakeService(t, 16)
	return newForge(cfg, svc, svc, store.NewMemory())
}

func TestForgePipeline(t *testing.T) {
	f := testForge(t)
	defer f.Close()

	chain, err := f.CreateChain(context.Background(), []string{"grass", "water"}, f.DefaultTilesetParams())
	if err != nil {
		t.Fatalf("CreateChain returned error: %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("chain has %d pairs, want 1", len(chain))
	}

	img, err := f.MapFromPattern(chain[0], 4, 3, wang.PatternCheckerboard, nil)
	if err != nil {
		t.Fatalf("MapFromPattern returned error: %v", err)
	}
	if img.Bounds().Dx() != 4*16 || img.Bounds().Dy() != 3*16 {
		t.Errorf("map is %dx%d, want 64x48", img.Bounds().Dx(), img.Bounds().Dy())
	}

	path := filepath.Join(t.TempDir(), "map.png")
	if err := f.SaveMap(img, path, 2); err != nil {
		t.Fatalf("SaveMap returned error: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening saved map: %v", err)
	}
	defer file.Close()
	saved, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decoding saved map: %v", err)
	}
	if saved.Bounds().Dx() != 128 || saved.Bounds().Dy() != 96 {
		t.Errorf("saved map is %dx%d, want 128x96", saved.Bounds().Dx(), saved.Bounds().Dy())
	}

	tilesets, err := f.ListTilesets()
	if err != nil {
		t.Fatalf("ListTilesets returned error: %v", err)
	}
	if len(tilesets) != 1 {
		t.Errorf("ListTilesets returned %d entries, want 1", len(tilesets))
	}
}

func TestForgeGridVertexLimit(t *testing.T) {
	f := testForge(t)
	defer f.Close()
	f.cfg.Limits.MaxGridVertices = 25

	chain, err := f.CreateChain(context.Background(), []string{"grass", "water"}, f.DefaultTilesetParams())
	if err != nil {
		t.Fatalf("CreateChain returned error: %v", err)
	}

	// 4x4 cells needs 25 vertices: exactly at the limit.
	if _, err := f.MapFromPattern(chain[0], 4, 4, wang.PatternRandom, nil); err != nil {
		t.Errorf("map at the vertex limit returned error: %v", err)
	}

	_, err = f.MapFromPattern(chain[0], 5, 4, wang.PatternRandom, nil)
	var dimErr *wang.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("error = %v (%T), want *wang.DimensionError", err, err)
	}
}

func TestForgeRegionRoundTrip(t *testing.T) {
	f := testForge(t)
	defer f.Close()

	base, err := f.GenerateRegion(context.Background(), "meadow", 64, 64, region.DefaultParams())
	if err != nil {
		t.Fatalf("GenerateRegion returned error: %v", err)
	}

	expanded, err := f.ExpandRegion(context.Background(), base, region.DirRight, "meadow continues", region.DefaultParams())
	if err != nil {
		t.Fatalf("ExpandRegion returned error: %v", err)
	}
	if expanded.Origin.X != 64 {
		t.Errorf("expanded origin X = %d, want 64", expanded.Origin.X)
	}

	combined, err := f.StitchRegions([]*region.MapRegion{base, expanded})
	if err != nil {
		t.Fatalf("StitchRegions returned error: %v", err)
	}
	if combined.Bounds().Dx() != 128 || combined.Bounds().Dy() != 64 {
		t.Errorf("stitched map is %dx%d, want 128x64", combined.Bounds().Dx(), combined.Bounds().Dy())
	}
}
