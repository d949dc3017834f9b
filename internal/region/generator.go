package region

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"

	"github.com/google/uuid"

	"github.com/pixelatelabs/mapforge/internal/logger"
	"github.com/pixelatelabs/mapforge/internal/pixellab"
)

// Service is the slice of the generation API the region generator needs.
// *pixellab.Client satisfies it; tests substitute stubs.
type Service interface {
	GenerateImage(ctx context.Context, req pixellab.ImageRequest) ([]byte, error)
	Inpaint(ctx context.Context, req pixellab.InpaintRequest) ([]byte, error)
}

// DefaultOverlap is how many edge pixels are handed to the service as
// context when expanding, unless configured otherwise.
const DefaultOverlap = 16

// Params are the generation options for direct region generation.
type Params struct {
	// Mode selects the generation model. The two modes have different
	// maximum canvas sizes; see pixellab.Mode.MaxDim.
	Mode pixellab.Mode

	// Seed makes generation reproducible when set.
	Seed *int64

	// NoBackground asks the service for a transparent background,
	// used for free-standing map objects.
	NoBackground bool

	// StyleImage is a style reference; only the bitforge mode accepts one.
	StyleImage image.Image
}

// DefaultParams returns region generation defaults.
func DefaultParams() Params {
	return Params{Mode: pixellab.ModePixflux}
}

// Generator creates and reworks map regions through the external service.
type Generator struct {
	svc     Service
	overlap int
}

// NewGenerator creates a Generator. overlap is the edge-context width
// in pixels used by ExpandRegion; pass 0 for the default.
func NewGenerator(svc Service, overlap int) *Generator {
	if overlap <= 0 {
		overlap = DefaultOverlap
	}
	return &Generator{svc: svc, overlap: overlap}
}

// CreateInitialRegion generates a width x height region from the
// description with origin (0,0).
func (g *Generator) CreateInitialRegion(ctx context.Context, description string, width, height int, params Params) (*MapRegion, error) {
	if err := validateSize(width, height, params.Mode); err != nil {
		return nil, err
	}
	if params.StyleImage != nil && params.Mode != pixellab.ModeBitforge {
		return nil, &pixellab.RequestError{Message: "style images require bitforge mode"}
	}

	req := pixellab.ImageRequest{
		Description:  description,
		Width:        width,
		Height:       height,
		Mode:         params.Mode,
		Seed:         params.Seed,
		NoBackground: params.NoBackground,
	}
	if params.StyleImage != nil {
		encoded, err := encodePNG(params.StyleImage)
		if err != nil {
			return nil, err
		}
		req.StyleImage = encoded
	}

	return g.generate(ctx, req, image.Point{}, description)
}

// ExpandRegion generates a new region of base's size adjacent to base
// in the given direction, handing the service base's edge pixels as
// init-image context so the seam stays visually continuous. The new
// region's origin is offset from base's by a full region width or
// height. base is never modified.
func (g *Generator) ExpandRegion(ctx context.Context, base *MapRegion, direction Direction, description string, params Params) (*MapRegion, error) {
	if err := validateSize(base.Width, base.Height, params.Mode); err != nil {
		return nil, err
	}

	overlap := g.overlap
	if overlap > base.Width {
		overlap = base.Width
	}
	if overlap > base.Height {
		overlap = base.Height
	}

	var strip image.Rectangle
	origin := base.Origin

	switch direction {
	case DirRight:
		strip = image.Rect(base.Width-overlap, 0, base.Width, base.Height)
		origin.X += base.Width
	case DirLeft:
		strip = image.Rect(0, 0, overlap, base.Height)
		origin.X -= base.Width
	case DirDown:
		strip = image.Rect(0, base.Height-overlap, base.Width, base.Height)
		origin.Y += base.Height
	case DirUp:
		strip = image.Rect(0, 0, base.Width, overlap)
		origin.Y -= base.Height
	default:
		return nil, &pixellab.RequestError{Message: fmt.Sprintf("invalid expansion direction %q", direction)}
	}

	edge := image.NewRGBA(image.Rect(0, 0, strip.Dx(), strip.Dy()))
	draw.Draw(edge, edge.Bounds(), base.Image, base.Image.Bounds().Min.Add(strip.Min), draw.Src)
	encoded, err := encodePNG(edge)
	if err != nil {
		return nil, err
	}

	logger.Info("Expanding region", "base_id", base.ID, "direction", direction, "origin_x", origin.X, "origin_y", origin.Y)

	req := pixellab.ImageRequest{
		Description: description,
		Width:       base.Width,
		Height:      base.Height,
		Mode:        params.Mode,
		Seed:        params.Seed,
		InitImage:   encoded,
	}
	return g.generate(ctx, req, origin, description)
}

// InpaintArea regenerates only maskRect (in region-local pixel
// coordinates) and returns a new region whose remaining pixels are
// unchanged. The source region is never modified.
func (g *Generator) InpaintArea(ctx context.Context, reg *MapRegion, maskRect image.Rectangle, description string, params Params) (*MapRegion, error) {
	bounds := image.Rect(0, 0, reg.Width, reg.Height)
	if maskRect.Empty() || !maskRect.In(bounds) {
		return nil, &InvalidMaskError{Mask: maskRect, Bounds: bounds}
	}

	source, err := encodePNG(reg.Image)
	if err != nil {
		return nil, err
	}

	// White marks the area to regenerate, black the area to keep.
	mask := image.NewRGBA(bounds)
	draw.Draw(mask, maskRect, image.White, image.Point{}, draw.Src)
	maskEncoded, err := encodePNG(mask)
	if err != nil {
		return nil, err
	}

	raw, err := g.svc.Inpaint(ctx, pixellab.InpaintRequest{
		Description: description,
		Width:       reg.Width,
		Height:      reg.Height,
		Image:       source,
		Mask:        maskEncoded,
	})
	if err != nil {
		return nil, fmt.Errorf("inpainting region %s: %w", reg.ID, err)
	}

	generated, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding inpainted image: %w", err)
	}

	// Composite only the masked window onto a copy of the original so
	// pixels outside the mask stay byte-identical.
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, reg.Image, reg.Image.Bounds().Min, draw.Src)
	draw.Draw(out, maskRect, generated, generated.Bounds().Min.Add(maskRect.Min), draw.Src)

	return &MapRegion{
		ID:          uuid.NewString(),
		Image:       out,
		Width:       reg.Width,
		Height:      reg.Height,
		Origin:      reg.Origin,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// generate runs one service call and wraps the response in a MapRegion.
func (g *Generator) generate(ctx context.Context, req pixellab.ImageRequest, origin image.Point, description string) (*MapRegion, error) {
	raw, err := g.svc.GenerateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generating region %q: %w", truncate(description, 50), err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding generated region: %w", err)
	}

	return &MapRegion{
		ID:          uuid.NewString(),
		Image:       img,
		Width:       req.Width,
		Height:      req.Height,
		Origin:      origin,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// validateSize checks region dimensions against the mode's ceiling.
func validateSize(width, height int, mode pixellab.Mode) error {
	if width < 1 || height < 1 {
		return &pixellab.RequestError{Message: fmt.Sprintf("region size %dx%d is invalid", width, height)}
	}
	if maxDim := mode.MaxDim(); width > maxDim || height > maxDim {
		return &pixellab.RequestError{
			Message: fmt.Sprintf("region size %dx%d exceeds the %s mode maximum of %dx%d",
				width, height, mode, maxDim, maxDim),
		}
	}
	return nil
}

// encodePNG renders an image to PNG bytes for the service wire format.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate shortens long descriptions for error messages and logs.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
