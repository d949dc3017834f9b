package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/pixelatelabs/mapforge/internal/assemble"
	"github.com/pixelatelabs/mapforge/internal/config"
	"github.com/pixelatelabs/mapforge/internal/forge"
	"github.com/pixelatelabs/mapforge/internal/logger"
	"github.com/pixelatelabs/mapforge/internal/pixellab"
	"github.com/pixelatelabs/mapforge/internal/region"
	"github.com/pixelatelabs/mapforge/internal/wang"
)

const usage = `mapforge - pixel art map generation toolkit

Usage:
  mapforge tileset create <terrain> <terrain> [<terrain>...]  generate a tileset chain
  mapforge tileset list                                       list cached tilesets
  mapforge map from-tileset <pair-id>                         assemble a map from a cached tileset
  mapforge map generate <description>                         generate a map region directly
  mapforge map expand <base.png> <description>                expand a region image in a direction
  mapforge map inpaint <base.png> <description>               regenerate a rectangle of a region
  mapforge map stitch <img.png@x,y> [<img.png@x,y>...]        composite positioned images into one map

Run any command with -h for its flags.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	logConfig, _ := logger.LoadConfig(os.Getenv("MAPFORGE_LOGGING"))
	logger.Initialize(logConfig)

	var err error
	switch os.Args[1] {
	case "tileset":
		err = runTileset(os.Args[2:])
	case "map":
		err = runMap(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openForge loads the engine config and builds a Forge.
func openForge(configPath string) (*forge.Forge, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return forge.New(cfg)
}

func runTileset(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mapforge tileset <create|list>")
	}

	switch args[0] {
	case "create":
		return cmdTilesetCreate(args[1:])
	case "list":
		return cmdTilesetList(args[1:])
	default:
		return fmt.Errorf("unknown tileset command %q", args[0])
	}
}

func cmdTilesetCreate(args []string) error {
	fs := flag.NewFlagSet("tileset create", flag.ExitOnError)
	configPath := fs.String("config", "data/mapforge.yaml", "Path to engine config YAML file")
	tileSize := fs.Int("tile-size", 0, "Tile size in pixels (16 or 32, default from config)")
	transition := fs.Float64("transition", 0, "Transition size (0, 0.25, 0.5, or 1.0)")
	outline := fs.String("outline", "", "Outline style hint")
	shading := fs.String("shading", "", "Shading style hint")
	detail := fs.String("detail", "", "Detail style hint")
	fs.Parse(args)

	terrains := fs.Args()
	if len(terrains) < 2 {
		return fmt.Errorf("need at least 2 terrain descriptions")
	}

	f, err := openForge(*configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	params := f.DefaultTilesetParams()
	if *tileSize != 0 {
		params.TileSize = *tileSize
	}
	params.TransitionSize = *transition
	params.Outline = *outline
	params.Shading = *shading
	params.Detail = *detail

	fmt.Printf("Creating tileset chain: %s\n", strings.Join(terrains, " -> "))

	chain, err := f.CreateChain(context.Background(), terrains, params)
	if err != nil {
		return err
	}

	fmt.Printf("Created %d tileset(s):\n", len(chain))
	for _, pair := range chain {
		fmt.Printf("  %s  %s -> %s\n", pair.PairID, pair.Lower, pair.Upper)
	}
	return nil
}

func cmdTilesetList(args []string) error {
	fs := flag.NewFlagSet("tileset list", flag.ExitOnError)
	configPath := fs.String("config", "data/mapforge.yaml", "Path to engine config YAML file")
	fs.Parse(args)

	f, err := openForge(*configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	tilesets, err := f.ListTilesets()
	if err != nil {
		return err
	}
	if len(tilesets) == 0 {
		fmt.Println("No cached tilesets found.")
		return nil
	}

	fmt.Printf("Cached tilesets (%d):\n", len(tilesets))
	for _, meta := range tilesets {
		fmt.Printf("  %s  %s -> %s  %dpx  %s\n",
			meta.PairID, meta.Lower, meta.Upper, meta.TileSize,
			meta.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runMap(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mapforge map <from-tileset|generate|expand|inpaint>")
	}

	switch args[0] {
	case "from-tileset":
		return cmdMapFromTileset(args[1:])
	case "generate":
		return cmdMapGenerate(args[1:])
	case "expand":
		return cmdMapExpand(args[1:])
	case "inpaint":
		return cmdMapInpaint(args[1:])
	case "stitch":
		return cmdMapStitch(args[1:])
	default:
		return fmt.Errorf("unknown map command %q", args[0])
	}
}

func cmdMapFromTileset(args []string) error {
	fs := flag.NewFlagSet("map from-tileset", flag.ExitOnError)
	configPath := fs.String("config", "data/mapforge.yaml", "Path to engine config YAML file")
	width := fs.Int("width", 10, "Map width in tiles")
	height := fs.Int("height", 10, "Map height in tiles")
	pattern := fs.String("pattern", "random", "Terrain pattern: random, gradient, checkerboard, solid_lower, solid_upper")
	seed := fs.Int64("seed", 0, "Random pattern seed (0 = non-reproducible)")
	scale := fs.Int("scale", 1, "Integer output scale factor")
	output := fs.String("output", "map.png", "Output PNG path")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mapforge map from-tileset <pair-id> [flags]")
	}
	pairID := fs.Arg(0)

	f, err := openForge(*configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	ts, ok, err := f.Tilesets.Get(pairID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no cached tileset with pair id %s", pairID)
	}

	var seedPtr *int64
	if *seed != 0 {
		seedPtr = seed
	}

	img, err := f.MapFromPattern(ts, *width, *height, wang.Pattern(*pattern), seedPtr)
	if err != nil {
		return err
	}

	if err := f.SaveMap(img, *output, *scale); err != nil {
		return err
	}
	fmt.Printf("Map saved: %s\n", *output)
	return nil
}

func cmdMapGenerate(args []string) error {
	fs := flag.NewFlagSet("map generate", flag.ExitOnError)
	configPath := fs.String("config", "data/mapforge.yaml", "Path to engine config YAML file")
	width := fs.Int("width", 64, "Region width in pixels")
	height := fs.Int("height", 64, "Region height in pixels")
	mode := fs.String("mode", "pixflux", "Generation mode: pixflux or bitforge")
	scale := fs.Int("scale", 1, "Integer output scale factor")
	output := fs.String("output", "region.png", "Output PNG path")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mapforge map generate <description> [flags]")
	}

	f, err := openForge(*configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	params := region.DefaultParams()
	params.Mode = pixellab.Mode(*mode)

	reg, err := f.GenerateRegion(context.Background(), fs.Arg(0), *width, *height, params)
	if err != nil {
		return err
	}

	if err := f.SaveMap(reg.Image, *output, *scale); err != nil {
		return err
	}
	fmt.Printf("Region saved: %s\n", *output)
	return nil
}

func cmdMapExpand(args []string) error {
	fs := flag.NewFlagSet("map expand", flag.ExitOnError)
	configPath := fs.String("config", "data/mapforge.yaml", "Path to engine config YAML file")
	direction := fs.String("direction", "right", "Expansion direction: up, down, left, right")
	mode := fs.String("mode", "pixflux", "Generation mode: pixflux or bitforge")
	scale := fs.Int("scale", 1, "Integer output scale factor")
	output := fs.String("output", "expanded.png", "Output PNG path")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("usage: mapforge map expand <base.png> <description> [flags]")
	}

	base, err := loadRegion(fs.Arg(0))
	if err != nil {
		return err
	}

	f, err := openForge(*configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	params := region.DefaultParams()
	params.Mode = pixellab.Mode(*mode)

	expanded, err := f.ExpandRegion(context.Background(), base, region.Direction(*direction), fs.Arg(1), params)
	if err != nil {
		return err
	}

	combined, err := f.StitchRegions([]*region.MapRegion{base, expanded})
	if err != nil {
		return err
	}

	if err := f.SaveMap(combined, *output, *scale); err != nil {
		return err
	}
	fmt.Printf("Expanded map saved: %s\n", *output)
	return nil
}

func cmdMapInpaint(args []string) error {
	fs := flag.NewFlagSet("map inpaint", flag.ExitOnError)
	configPath := fs.String("config", "data/mapforge.yaml", "Path to engine config YAML file")
	rect := fs.String("rect", "", "Area to regenerate as x,y,width,height")
	scale := fs.Int("scale", 1, "Integer output scale factor")
	output := fs.String("output", "inpainted.png", "Output PNG path")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("usage: mapforge map inpaint <base.png> <description> -rect x,y,w,h [flags]")
	}

	maskRect, err := parseRect(*rect)
	if err != nil {
		return err
	}

	base, err := loadRegion(fs.Arg(0))
	if err != nil {
		return err
	}

	f, err := openForge(*configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	reworked, err := f.Regions.InpaintArea(context.Background(), base, maskRect, fs.Arg(1), region.DefaultParams())
	if err != nil {
		return err
	}

	if err := f.SaveMap(reworked.Image, *output, *scale); err != nil {
		return err
	}
	fmt.Printf("Inpainted map saved: %s\n", *output)
	return nil
}

func cmdMapStitch(args []string) error {
	fs := flag.NewFlagSet("map stitch", flag.ExitOnError)
	scale := fs.Int("scale", 1, "Integer output scale factor")
	output := fs.String("output", "stitched.png", "Output PNG path")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: mapforge map stitch <img.png@x,y> [<img.png@x,y>...] [flags]")
	}

	regions := make([]*region.MapRegion, 0, fs.NArg())
	for _, arg := range fs.Args() {
		reg, err := loadPositionedRegion(arg)
		if err != nil {
			return err
		}
		regions = append(regions, reg)
	}

	combined, err := region.Stitch(regions)
	if err != nil {
		return err
	}

	if err := assemble.ExportPNG(combined, *output, *scale); err != nil {
		return err
	}
	fmt.Printf("Stitched map saved: %s\n", *output)
	return nil
}

// loadPositionedRegion parses "path@x,y" (offset optional) into a MapRegion.
func loadPositionedRegion(arg string) (*region.MapRegion, error) {
	path := arg
	var origin image.Point

	if at := strings.LastIndex(arg, "@"); at >= 0 {
		path = arg[:at]
		parts := strings.Split(arg[at+1:], ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("region position must be path@x,y, got %q", arg)
		}
		x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("region position must be path@x,y, got %q", arg)
		}
		origin = image.Point{X: x, Y: y}
	}

	reg, err := loadRegion(path)
	if err != nil {
		return nil, err
	}
	reg.Origin = origin
	return reg, nil
}

// loadRegion reads a PNG file as a MapRegion anchored at the origin.
func loadRegion(path string) (*region.MapRegion, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	b := img.Bounds()
	return &region.MapRegion{
		ID:     path,
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// parseRect parses "x,y,width,height" into a rectangle.
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("rect must be x,y,width,height, got %q", s)
	}
	vals := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("rect must be x,y,width,height, got %q", s)
		}
		vals[i] = v
	}
	return image.Rect(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3]), nil
}
