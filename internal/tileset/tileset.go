// Package tileset generates and caches Wang tilesets through the
// external generation service, and chains tilesets across multiple
// terrains while keeping shared boundaries visually consistent.
package tileset

import (
	"encoding/hex"
	"encoding/json"
	"image"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/pixelatelabs/mapforge/internal/pixellab"
	"github.com/pixelatelabs/mapforge/internal/wang"
)

// Status is the lifecycle state of a tile pair.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Params are the generation options for one tileset. All fields are
// named and validated; defaults come from DefaultParams.
type Params struct {
	// TileSize is the tile edge length in pixels. The service supports 16 and 32.
	TileSize int `json:"tile_size"`

	// TransitionSize controls the blend band between terrains:
	// 0, 0.25, 0.5, or 1.0.
	TransitionSize float64 `json:"transition_size,omitempty"`

	// TransitionDescription describes the blend band when TransitionSize > 0.
	TransitionDescription string `json:"transition_description,omitempty"`

	// Outline, Shading and Detail are optional style hints passed through
	// to the service ("lineless", "flat shading", "highly detailed", ...).
	Outline string `json:"outline,omitempty"`
	Shading string `json:"shading,omitempty"`
	Detail  string `json:"detail,omitempty"`

	// View is the camera angle: "high top-down" or "low top-down".
	View string `json:"view"`

	// LowerBaseTileID and UpperBaseTileID reference existing tiles so a
	// new tileset reuses a terrain's look. CreateChain fills the lower
	// reference from the previous pair automatically.
	LowerBaseTileID string `json:"lower_base_tile_id,omitempty"`
	UpperBaseTileID string `json:"upper_base_tile_id,omitempty"`
}

// DefaultParams returns the default generation options.
func DefaultParams() Params {
	return Params{
		TileSize: 16,
		View:     "high top-down",
	}
}

// Validate checks the parameter values against what the service accepts.
func (p Params) Validate() error {
	if p.TileSize != 16 && p.TileSize != 32 {
		return &pixellab.RequestError{Message: "tile size must be 16 or 32"}
	}
	switch p.TransitionSize {
	case 0, 0.25, 0.5, 1.0:
	default:
		return &pixellab.RequestError{Message: "transition size must be 0, 0.25, 0.5 or 1.0"}
	}
	if p.View != "high top-down" && p.View != "low top-down" {
		return &pixellab.RequestError{Message: "view must be \"high top-down\" or \"low top-down\""}
	}
	return nil
}

// request builds the service request for the pair.
func (p Params) request(lower, upper string) pixellab.TilesetRequest {
	return pixellab.TilesetRequest{
		LowerDescription:      lower,
		UpperDescription:      upper,
		TileSize:              p.TileSize,
		TransitionSize:        p.TransitionSize,
		TransitionDescription: p.TransitionDescription,
		Outline:               p.Outline,
		Shading:               p.Shading,
		Detail:                p.Detail,
		View:                  p.View,
		LowerBaseTileID:       p.LowerBaseTileID,
		UpperBaseTileID:       p.UpperBaseTileID,
	}
}

// CacheKey computes the deterministic cache key for a terrain pair and
// its generation parameters. Identical inputs always hash to the same
// key, which makes repeated generation requests idempotent.
func CacheKey(lower, upper string, params Params) string {
	payload, _ := json.Marshal(struct {
		Lower  string `json:"lower"`
		Upper  string `json:"upper"`
		Params Params `json:"params"`
	}{lower, upper, params})
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:16])
}

// Job is a handle to a tileset generation running on the service side.
// It stays valid after a local timeout, so a wait can be resumed.
type Job struct {
	ID        string
	Lower     string
	Upper     string
	Params    Params
	CacheKey  string
	CreatedAt time.Time
}

// TilePairResult is a resolved 16-tile Wang tileset for one ordered
// terrain pair. Immutable once Status is ready.
type TilePairResult struct {
	// PairID is the deterministic cache key of (lower, upper, params).
	PairID string

	// JobID is the service-side job that produced the tiles.
	JobID string

	Lower    string
	Upper    string
	TileSize int
	Status   Status

	// Tiles maps corner index (0..15) to the tile image.
	// Exactly 16 entries once ready.
	Tiles map[int]image.Image

	// LowerBaseTileID and UpperBaseTileID are the service's reference
	// tiles, used to chain the next tileset onto this one.
	LowerBaseTileID string
	UpperBaseTileID string

	Params    Params
	CreatedAt time.Time

	// encoded holds the original PNG bytes per corner index for persistence.
	encoded [][]byte
}

// Complete reports whether the result carries all 16 tiles.
func (r *TilePairResult) Complete() bool {
	if r.Status != StatusReady || len(r.Tiles) != wang.TileCount {
		return false
	}
	for i := 0; i < wang.TileCount; i++ {
		if r.Tiles[i] == nil {
			return false
		}
	}
	return true
}

// TerrainChain is an ordered sequence of tile pairs covering adjacent
// terrains in a terrain list: chain[i].Lower == chain[i-1].Upper.
type TerrainChain []*TilePairResult
