package pixellab

// JobStatus is the lifecycle state the service reports for a background job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Mode selects which image generation model the service uses.
// The two modes have different size ceilings and capability sets.
type Mode string

const (
	// ModePixflux is the text-to-pixel-art model. Largest canvas, no style image.
	ModePixflux Mode = "pixflux"

	// ModeBitforge is the style-conditioned model. Smaller canvas,
	// accepts a style reference image.
	ModeBitforge Mode = "bitforge"
)

// MaxDim returns the largest width/height in pixels the mode accepts.
func (m Mode) MaxDim() int {
	switch m {
	case ModeBitforge:
		return 200
	default:
		return 400
	}
}

// endpoint returns the generation endpoint path for the mode.
func (m Mode) endpoint() string {
	switch m {
	case ModeBitforge:
		return "/generate-image-bitforge"
	default:
		return "/generate-image-pixflux"
	}
}

// TilesetRequest describes one Wang tileset generation job.
// Lower/upper are the two terrains at a tile's corners; the base tile
// ids let consecutive tilesets in a chain share a terrain's look.
type TilesetRequest struct {
	LowerDescription      string
	UpperDescription      string
	TileSize              int
	TransitionSize        float64
	TransitionDescription string
	Outline               string
	Shading               string
	Detail                string
	View                  string
	LowerBaseTileID       string
	UpperBaseTileID       string
}

// TilesetJob is the service-side state of a tileset generation job.
type TilesetJob struct {
	ID              string
	Status          JobStatus
	LowerBaseTileID string
	UpperBaseTileID string

	// Tiles holds the 16 tile images as PNG bytes, indexed by corner
	// index, once the job completes.
	Tiles [][]byte

	// Error carries the service diagnostic when Status is failed.
	Error string
}

// ImageRequest describes a direct (non-tiled) image generation call.
type ImageRequest struct {
	Description  string
	Width        int
	Height       int
	Mode         Mode
	Seed         *int64
	NoBackground bool

	// InitImage is an optional starting image the service blends from,
	// used to keep expanded regions visually continuous.
	InitImage []byte

	// StyleImage is an optional style reference (bitforge only).
	StyleImage []byte
}

// InpaintRequest regenerates the masked part of an image.
// White mask pixels are regenerated, black pixels are kept.
type InpaintRequest struct {
	Description string
	Width       int
	Height      int
	Image       []byte
	Mask        []byte
}

// imageRef is the wire format the service uses for inline images.
type imageRef struct {
	Type   string `json:"type"`
	Base64 string `json:"base64"`
}

// sizeRef is the wire format for image dimensions.
type sizeRef struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
