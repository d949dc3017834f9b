package region

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pixelatelabs/mapforge/internal/pixellab"
)

// stubRegionService answers every generation call with a solid-color
// image of the requested size and records the last request.
type stubRegionService struct {
	fill color.RGBA

	lastImage   *pixellab.ImageRequest
	lastInpaint *pixellab.InpaintRequest
}

func (s *stubRegionService) GenerateImage(ctx context.Context, req pixellab.ImageRequest) ([]byte, error) {
	s.lastImage = &req
	return encodeSolid(req.Width, req.Height, s.fill)
}

func (s *stubRegionService) Inpaint(ctx context.Context, req pixellab.InpaintRequest) ([]byte, error) {
	s.lastInpaint = &req
	return encodeSolid(req.Width, req.Height, s.fill)
}

func encodeSolid(width, height int, fill color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func solidRegion(width, height int, fill color.RGBA, origin image.Point) *MapRegion {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	return &MapRegion{
		ID:     "base",
		Image:  img,
		Width:  width,
		Height: height,
		Origin: origin,
	}
}

func TestCreateInitialRegion(t *testing.T) {
	svc := &stubRegionService{fill: color.RGBA{R: 10, G: 20, B: 30, A: 255}}
	g := NewGenerator(svc, 0)

	reg, err := g.CreateInitialRegion(context.Background(), "mossy forest clearing", 64, 48, DefaultParams())
	if err != nil {
		t.Fatalf("CreateInitialRegion returned error: %v", err)
	}

	if reg.Width != 64 || reg.Height != 48 {
		t.Errorf("region is %dx%d, want 64x48", reg.Width, reg.Height)
	}
	if reg.Origin != (image.Point{}) {
		t.Errorf("origin = %v, want (0,0)", reg.Origin)
	}
	if reg.Description != "mossy forest clearing" {
		t.Errorf("description = %q", reg.Description)
	}
	if reg.ID == "" {
		t.Error("region has no id")
	}
}

func TestCreateInitialRegionSizeLimits(t *testing.T) {
	svc := &stubRegionService{fill: color.RGBA{A: 255}}
	g := NewGenerator(svc, 0)

	tests := []struct {
		name          string
		width, height int
		mode          pixellab.Mode
		wantErr       bool
	}{
		{"pixflux at limit", 400, 400, pixellab.ModePixflux, false},
		{"pixflux over limit", 401, 400, pixellab.ModePixflux, true},
		{"bitforge at limit", 200, 200, pixellab.ModeBitforge, false},
		{"bitforge over limit", 200, 201, pixellab.ModeBitforge, true},
		{"zero width", 0, 100, pixellab.ModePixflux, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParams()
			params.Mode = tc.mode

			_, err := g.CreateInitialRegion(context.Background(), "desc", tc.width, tc.height, params)
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

func TestCreateInitialRegionStyleImageRequiresBitforge(t *testing.T) {
	svc := &stubRegionService{fill: color.RGBA{A: 255}}
	g := NewGenerator(svc, 0)

	params := DefaultParams()
	params.StyleImage = image.NewRGBA(image.Rect(0, 0, 8, 8))

	if _, err := g.CreateInitialRegion(context.Background(), "desc", 100, 100, params); err == nil {
		t.Fatal("style image with pixflux mode should be rejected")
	}

	params.Mode = pixellab.ModeBitforge
	if _, err := g.CreateInitialRegion(context.Background(), "desc", 100, 100, params); err != nil {
		t.Fatalf("style image with bitforge mode returned error: %v", err)
	}
	if len(svc.lastImage.StyleImage) == 0 {
		t.Error("style image was not passed to the service")
	}
}

func TestExpandRegionOrigins(t *testing.T) {
	tests := []struct {
		direction Direction
		base      image.Point
		want      image.Point
	}{
		{DirRight, image.Point{}, image.Point{X: 64}},
		{DirLeft, image.Point{}, image.Point{X: -64}},
		{DirDown, image.Point{}, image.Point{Y: 64}},
		{DirUp, image.Point{}, image.Point{Y: -64}},
		{DirRight, image.Point{X: 64, Y: 64}, image.Point{X: 128, Y: 64}},
	}

	for _, tc := range tests {
		t.Run(string(tc.direction), func(t *testing.T) {
			svc := &stubRegionService{fill: color.RGBA{A: 255}}
			g := NewGenerator(svc, 16)
			base := solidRegion(64, 64, color.RGBA{G: 100, A: 255}, tc.base)

			expanded, err := g.ExpandRegion(context.Background(), base, tc.direction, "more forest", DefaultParams())
			if err != nil {
				t.Fatalf("ExpandRegion returned error: %v", err)
			}

			if expanded.Origin != tc.want {
				t.Errorf("origin = %v, want %v", expanded.Origin, tc.want)
			}
			if expanded.Width != base.Width || expanded.Height != base.Height {
				t.Errorf("expanded region is %dx%d, want the base size %dx%d",
					expanded.Width, expanded.Height, base.Width, base.Height)
			}
		})
	}
}

func TestExpandRegionSendsEdgeStrip(t *testing.T) {
	svc := &stubRegionService{fill: color.RGBA{A: 255}}
	g := NewGenerator(svc, 16)
	base := solidRegion(64, 48, color.RGBA{B: 200, A: 255}, image.Point{})

	if _, err := g.ExpandRegion(context.Background(), base, DirRight, "desc", DefaultParams()); err != nil {
		t.Fatalf("ExpandRegion returned error: %v", err)
	}

	if len(svc.lastImage.InitImage) == 0 {
		t.Fatal("expansion sent no init image")
	}
	strip, err := png.Decode(bytes.NewReader(svc.lastImage.InitImage))
	if err != nil {
		t.Fatalf("decoding init image: %v", err)
	}
	if strip.Bounds().Dx() != 16 || strip.Bounds().Dy() != 48 {
		t.Errorf("edge strip is %dx%d, want 16x48", strip.Bounds().Dx(), strip.Bounds().Dy())
	}
}

func TestExpandRegionInvalidDirection(t *testing.T) {
	svc := &stubRegionService{fill: color.RGBA{A: 255}}
	g := NewGenerator(svc, 16)
	base := solidRegion(32, 32, color.RGBA{A: 255}, image.Point{})

	_, err := g.ExpandRegion(context.Background(), base, Direction("diagonal"), "desc", DefaultParams())
	var reqErr *pixellab.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v (%T), want *pixellab.RequestError", err, err)
	}
}

func TestInpaintAreaPreservesUnmaskedPixels(t *testing.T) {
	original := color.RGBA{R: 40, G: 80, B: 120, A: 255}
	reworked := color.RGBA{R: 250, G: 10, B: 10, A: 255}

	svc := &stubRegionService{fill: reworked}
	g := NewGenerator(svc, 0)
	base := solidRegion(32, 32, original, image.Point{X: 5, Y: 7})

	mask := image.Rect(8, 8, 16, 16)
	out, err := g.InpaintArea(context.Background(), base, mask, "a pond", DefaultParams())
	if err != nil {
		t.Fatalf("InpaintArea returned error: %v", err)
	}

	rgba, ok := out.Image.(*image.RGBA)
	if !ok {
		t.Fatalf("inpainted image is %T, want *image.RGBA", out.Image)
	}

	if got := rgba.RGBAAt(10, 10); got != reworked {
		t.Errorf("masked pixel (10,10) = %v, want regenerated %v", got, reworked)
	}
	if got := rgba.RGBAAt(0, 0); got != original {
		t.Errorf("unmasked pixel (0,0) = %v, want original %v", got, original)
	}
	if got := rgba.RGBAAt(31, 31); got != original {
		t.Errorf("unmasked pixel (31,31) = %v, want original %v", got, original)
	}

	if out.Origin != base.Origin {
		t.Errorf("inpainted origin = %v, want %v", out.Origin, base.Origin)
	}
	if out.ID == base.ID {
		t.Error("inpainting reused the source region id")
	}
}

func TestInpaintAreaInvalidMask(t *testing.T) {
	svc := &stubRegionService{fill: color.RGBA{A: 255}}
	g := NewGenerator(svc, 0)
	base := solidRegion(32, 32, color.RGBA{A: 255}, image.Point{})

	tests := []struct {
		name string
		mask image.Rectangle
	}{
		{"empty", image.Rectangle{}},
		{"outside", image.Rect(30, 30, 40, 40)},
		{"negative", image.Rect(-4, 0, 8, 8)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.InpaintArea(context.Background(), base, tc.mask, "desc", DefaultParams())
			var maskErr *InvalidMaskError
			if !errors.As(err, &maskErr) {
				t.Errorf("error = %v (%T), want *InvalidMaskError", err, err)
			}
		})
	}
}
