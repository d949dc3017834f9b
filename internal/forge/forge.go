// Package forge wires the mapforge components into one explicitly
// constructed engine: a service client, a blob store, the tileset
// manager and the region generator. There is no package-level default
// instance; callers create and own their Forge.
package forge

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/pixelatelabs/mapforge/internal/assemble"
	"github.com/pixelatelabs/mapforge/internal/config"
	"github.com/pixelatelabs/mapforge/internal/pixellab"
	"github.com/pixelatelabs/mapforge/internal/region"
	"github.com/pixelatelabs/mapforge/internal/store"
	"github.com/pixelatelabs/mapforge/internal/tileset"
	"github.com/pixelatelabs/mapforge/internal/wang"
)

// Forge is the high-level entry point combining tileset generation,
// map assembly and region generation.
type Forge struct {
	cfg *config.EngineConfig
	st  store.Store

	Tilesets *tileset.Manager
	Regions  *region.Generator
}

// New builds a Forge from configuration: it opens the configured store,
// creates the service client, and wires the managers.
func New(cfg *config.EngineConfig) (*Forge, error) {
	var st store.Store
	var err error

	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.OpenPostgres(cfg.Store.DSN)
	default:
		st, err = store.Open(cfg.Store.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	client := pixellab.NewClient(
		cfg.Service.BaseURL,
		cfg.Service.APIKey(),
		time.Duration(cfg.Service.RequestTimeoutSeconds)*time.Second,
	)

	return NewWithDeps(cfg, client, st), nil
}

// NewWithDeps builds a Forge from explicit dependencies. Tests use it
// to substitute service stubs and in-memory stores.
func NewWithDeps(cfg *config.EngineConfig, client *pixellab.Client, st store.Store) *Forge {
	return newForge(cfg, client, client, st)
}

func newForge(cfg *config.EngineConfig, tilesetSvc tileset.Service, regionSvc region.Service, st store.Store) *Forge {
	manager := tileset.NewManager(tilesetSvc, st, tileset.Options{
		PollInterval:     time.Duration(cfg.Generation.PollIntervalSeconds) * time.Second,
		MaxWait:          time.Duration(cfg.Generation.MaxWaitSeconds) * time.Second,
		MaxChainTerrains: cfg.Limits.MaxChainTerrains,
	})

	return &Forge{
		cfg:      cfg,
		st:       st,
		Tilesets: manager,
		Regions:  region.NewGenerator(regionSvc, cfg.Generation.ExpandOverlapPx),
	}
}

// Close releases the store.
func (f *Forge) Close() error {
	return f.st.Close()
}

// DefaultTilesetParams returns tileset parameters seeded from config.
func (f *Forge) DefaultTilesetParams() tileset.Params {
	params := tileset.DefaultParams()
	if f.cfg.Generation.TileSize != 0 {
		params.TileSize = f.cfg.Generation.TileSize
	}
	if f.cfg.Generation.View != "" {
		params.View = f.cfg.Generation.View
	}
	return params
}

// CreateChain generates connected tilesets for the terrain list.
func (f *Forge) CreateChain(ctx context.Context, terrains []string, params tileset.Params) (tileset.TerrainChain, error) {
	return f.Tilesets.CreateChain(ctx, terrains, params)
}

// MapFromPattern renders a width x height cell map from a tileset using
// a procedural pattern.
func (f *Forge) MapFromPattern(ts *tileset.TilePairResult, width, height int, pattern wang.Pattern, seed *int64) (image.Image, error) {
	vertices := (width + 1) * (height + 1)
	if limit := f.cfg.Limits.MaxGridVertices; limit > 0 && vertices > limit {
		return nil, &wang.DimensionError{
			Reason: fmt.Sprintf("%dx%d cells needs %d vertices, limit is %d", height, width, vertices, limit),
		}
	}
	return assemble.Pattern(ts, width, height, pattern, seed)
}

// MapFromGrid renders an explicit terrain grid with a tileset.
func (f *Forge) MapFromGrid(ts *tileset.TilePairResult, grid *wang.Grid) (image.Image, error) {
	return assemble.FromGrid(ts, grid)
}

// GenerateRegion creates an initial region from a description.
func (f *Forge) GenerateRegion(ctx context.Context, description string, width, height int, params region.Params) (*region.MapRegion, error) {
	return f.Regions.CreateInitialRegion(ctx, description, width, height, params)
}

// ExpandRegion grows the map from base in the given direction.
func (f *Forge) ExpandRegion(ctx context.Context, base *region.MapRegion, dir region.Direction, description string, params region.Params) (*region.MapRegion, error) {
	return f.Regions.ExpandRegion(ctx, base, dir, description, params)
}

// StitchRegions composites positioned regions into one image.
func (f *Forge) StitchRegions(regions []*region.MapRegion) (image.Image, error) {
	return region.Stitch(regions)
}

// SaveMap writes a composite map to a PNG file with integer upscaling.
func (f *Forge) SaveMap(img image.Image, path string, scale int) error {
	return assemble.ExportPNG(img, path, scale)
}

// ListTilesets returns metadata for every cached tileset.
func (f *Forge) ListTilesets() ([]tileset.Metadata, error) {
	return f.Tilesets.ListCached()
}
