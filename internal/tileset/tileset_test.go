package tileset

import (
	"errors"
	"testing"

	"github.com/pixelatelabs/mapforge/internal/pixellab"
)

func TestCacheKeyDeterministic(t *testing.T) {
	params := DefaultParams()

	a := CacheKey("grass", "water", params)
	b := CacheKey("grass", "water", params)
	if a != b {
		t.Errorf("identical inputs produced different keys: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("key length = %d, want 32 hex chars", len(a))
	}
}

func TestCacheKeyDistinguishesInputs(t *testing.T) {
	params := DefaultParams()
	base := CacheKey("grass", "water", params)

	tests := []struct {
		name string
		key  string
	}{
		{"swapped terrains", CacheKey("water", "grass", params)},
		{"different upper", CacheKey("grass", "sand", params)},
	}
	for _, tc := range tests {
		if tc.key == base {
			t.Errorf("%s produced the same key as the base pair", tc.name)
		}
	}

	bigger := params
	bigger.TileSize = 32
	if CacheKey("grass", "water", bigger) == base {
		t.Error("different tile size produced the same key")
	}

	chained := params
	chained.LowerBaseTileID = "tile-123"
	if CacheKey("grass", "water", chained) == base {
		t.Error("different lower base tile produced the same key")
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults", func(p *Params) {}, false},
		{"tile size 32", func(p *Params) { p.TileSize = 32 }, false},
		{"tile size 24", func(p *Params) { p.TileSize = 24 }, true},
		{"transition 0.25", func(p *Params) { p.TransitionSize = 0.25 }, false},
		{"transition 0.75", func(p *Params) { p.TransitionSize = 0.75 }, true},
		{"low top-down view", func(p *Params) { p.View = "low top-down" }, false},
		{"sideways view", func(p *Params) { p.View = "sideways" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParams()
			tc.mutate(&params)

			err := params.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				var reqErr *pixellab.RequestError
				if !errors.As(err, &reqErr) {
					t.Errorf("error = %T, want *pixellab.RequestError", err)
				}
			}
		})
	}
}

func TestComplete(t *testing.T) {
	result := &TilePairResult{Status: StatusReady}
	if result.Complete() {
		t.Error("result with no tiles reported complete")
	}

	result.Tiles = makeTileImages(16)
	if !result.Complete() {
		t.Error("result with 16 tiles reported incomplete")
	}

	delete(result.Tiles, 7)
	if result.Complete() {
		t.Error("result missing tile 7 reported complete")
	}
}
