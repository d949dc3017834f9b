// Package pixellab implements the HTTP client for the PixelLab
// generation service. The engine treats the service as opaque: any
// backend that accepts the same request/poll contract is substitutable.
package pixellab

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pixelatelabs/mapforge/internal/logger"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.pixellab.ai/v2"

// Client is an HTTP client for the generation service.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a client for the given API root and key.
// timeout bounds a single round trip, not a background job.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// errorEnvelope is the body the service returns on a rejected request.
type errorEnvelope struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// do performs one request against the API and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	if c.apiKey == "" {
		return &RequestError{Endpoint: endpoint, Message: "API key is not set"}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	reqID := uuid.NewString()
	logger.Debug("Calling generation service", "request_id", reqID, "method", method, "endpoint", endpoint)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("generation service request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		_ = json.Unmarshal(data, &envelope)
		msg := envelope.Error
		if msg == "" {
			msg = envelope.Detail
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		logger.Warning("Generation service rejected request", "request_id", reqID, "status", resp.StatusCode, "message", msg)
		return &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}

	return nil
}

// CreateTileset submits a Wang tileset generation job and returns the job id.
// The job runs in the background on the service side; poll with GetTileset.
func (c *Client) CreateTileset(ctx context.Context, req TilesetRequest) (string, error) {
	payload := map[string]any{
		"lower_description": req.LowerDescription,
		"upper_description": req.UpperDescription,
		"transition_size":   req.TransitionSize,
		"tile_size":         sizeRef{Width: req.TileSize, Height: req.TileSize},
		"view":              req.View,
	}
	if req.TransitionSize > 0 && req.TransitionDescription != "" {
		payload["transition_description"] = req.TransitionDescription
	}
	if req.Outline != "" {
		payload["outline"] = req.Outline
	}
	if req.Shading != "" {
		payload["shading"] = req.Shading
	}
	if req.Detail != "" {
		payload["detail"] = req.Detail
	}
	if req.LowerBaseTileID != "" {
		payload["lower_base_tile_id"] = req.LowerBaseTileID
	}
	if req.UpperBaseTileID != "" {
		payload["upper_base_tile_id"] = req.UpperBaseTileID
	}

	var resp struct {
		Data struct {
			TilesetID string `json:"tileset_id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/create-topdown-tileset", payload, &resp); err != nil {
		return "", err
	}
	if resp.Data.TilesetID == "" {
		return "", &RequestError{Endpoint: "/create-topdown-tileset", Message: "service returned no tileset id"}
	}

	logger.Info("Tileset job submitted", "job_id", resp.Data.TilesetID,
		"lower", req.LowerDescription, "upper", req.UpperDescription)
	return resp.Data.TilesetID, nil
}

// GetTileset fetches the current status of a tileset job. Tile images
// arrive base64-encoded and are returned as PNG bytes.
func (c *Client) GetTileset(ctx context.Context, jobID string) (*TilesetJob, error) {
	var resp struct {
		Data struct {
			Status          string `json:"status"`
			LowerBaseTileID string `json:"lower_base_tile_id"`
			UpperBaseTileID string `json:"upper_base_tile_id"`
			Tiles           []struct {
				Image string `json:"image"`
			} `json:"tiles"`
			Error string `json:"error"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/topdown-tilesets/"+jobID, nil, &resp); err != nil {
		return nil, err
	}

	job := &TilesetJob{
		ID:              jobID,
		Status:          JobStatus(resp.Data.Status),
		LowerBaseTileID: resp.Data.LowerBaseTileID,
		UpperBaseTileID: resp.Data.UpperBaseTileID,
		Error:           resp.Data.Error,
	}

	for i, tile := range resp.Data.Tiles {
		raw, err := base64.StdEncoding.DecodeString(tile.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to decode tile %d of job %s: %w", i, jobID, err)
		}
		job.Tiles = append(job.Tiles, raw)
	}

	return job, nil
}

// GenerateImage performs one synchronous image generation call in the
// requested mode and returns the image as PNG bytes.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	payload := map[string]any{
		"description": req.Description,
		"image_size":  sizeRef{Width: req.Width, Height: req.Height},
	}
	if req.Seed != nil {
		payload["seed"] = *req.Seed
	}
	if req.NoBackground {
		payload["no_background"] = true
	}
	if len(req.InitImage) > 0 {
		payload["init_image"] = imageRef{Type: "base64", Base64: base64.StdEncoding.EncodeToString(req.InitImage)}
	}
	if len(req.StyleImage) > 0 {
		payload["style_image"] = imageRef{Type: "base64", Base64: base64.StdEncoding.EncodeToString(req.StyleImage)}
	}

	endpoint := req.Mode.endpoint()

	var resp struct {
		Data struct {
			Image struct {
				Base64 string `json:"base64"`
			} `json:"image"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &resp); err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data.Image.Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}
	if len(raw) == 0 {
		return nil, &RequestError{Endpoint: endpoint, Message: "service returned an empty image"}
	}

	return raw, nil
}

// Inpaint regenerates the white-masked area of an image and returns the
// full reworked image as PNG bytes.
func (c *Client) Inpaint(ctx context.Context, req InpaintRequest) ([]byte, error) {
	payload := map[string]any{
		"description":      req.Description,
		"image_size":       sizeRef{Width: req.Width, Height: req.Height},
		"inpainting_image": imageRef{Type: "base64", Base64: base64.StdEncoding.EncodeToString(req.Image)},
		"mask_image":       imageRef{Type: "base64", Base64: base64.StdEncoding.EncodeToString(req.Mask)},
	}

	var resp struct {
		Data struct {
			Image struct {
				Base64 string `json:"base64"`
			} `json:"image"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/inpaint", payload, &resp); err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data.Image.Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode inpainted image: %w", err)
	}

	return raw, nil
}
