package tileset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/pixelatelabs/mapforge/internal/wang"
)

// keyPrefix namespaces tileset entries in the blob store.
const keyPrefix = "tilesets/"

// Metadata is the JSON document persisted next to a pair's 16 tiles.
type Metadata struct {
	PairID          string    `json:"pair_id"`
	JobID           string    `json:"job_id"`
	Lower           string    `json:"lower"`
	Upper           string    `json:"upper"`
	TileSize        int       `json:"tile_size"`
	LowerBaseTileID string    `json:"lower_base_tile_id,omitempty"`
	UpperBaseTileID string    `json:"upper_base_tile_id,omitempty"`
	Params          Params    `json:"params"`
	CreatedAt       time.Time `json:"created_at"`
}

func metadataKey(pairID string) string {
	return keyPrefix + pairID + "/metadata.json"
}

func tileKey(pairID string, index int) string {
	return fmt.Sprintf("%s%s/tile_%02d.png", keyPrefix, pairID, index)
}

// persist writes the 16 tile PNGs and the metadata document. The
// metadata goes last so a partially written pair never looks complete.
func (m *Manager) persist(result *TilePairResult) error {
	for i, raw := range result.encoded {
		if err := m.st.Put(tileKey(result.PairID, i), raw); err != nil {
			return err
		}
	}

	meta := Metadata{
		PairID:          result.PairID,
		JobID:           result.JobID,
		Lower:           result.Lower,
		Upper:           result.Upper,
		TileSize:        result.TileSize,
		LowerBaseTileID: result.LowerBaseTileID,
		UpperBaseTileID: result.UpperBaseTileID,
		Params:          result.Params,
		CreatedAt:       result.CreatedAt,
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding tileset metadata: %w", err)
	}
	return m.st.Put(metadataKey(result.PairID), payload)
}

// loadCached returns the cached result for a pair key, or false when
// the cache has no complete entry. A pair missing any of its 16 tiles
// counts as absent.
func (m *Manager) loadCached(pairID string) (*TilePairResult, bool, error) {
	raw, ok, err := m.st.Get(metadataKey(pairID))
	if err != nil || !ok {
		return nil, false, err
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, false, fmt.Errorf("decoding metadata for pair %s: %w", pairID, err)
	}

	result := &TilePairResult{
		PairID:          meta.PairID,
		JobID:           meta.JobID,
		Lower:           meta.Lower,
		Upper:           meta.Upper,
		TileSize:        meta.TileSize,
		Status:          StatusReady,
		Tiles:           make(map[int]image.Image, wang.TileCount),
		LowerBaseTileID: meta.LowerBaseTileID,
		UpperBaseTileID: meta.UpperBaseTileID,
		Params:          meta.Params,
		CreatedAt:       meta.CreatedAt,
		encoded:         make([][]byte, wang.TileCount),
	}

	for i := 0; i < wang.TileCount; i++ {
		data, ok, err := m.st.Get(tileKey(pairID, i))
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, false, fmt.Errorf("decoding cached tile %d of pair %s: %w", i, pairID, err)
		}
		result.Tiles[i] = img
		result.encoded[i] = data
	}

	return result, true, nil
}

// Get returns the cached tileset for a pair id, or false when the
// store has no complete entry for it.
func (m *Manager) Get(pairID string) (*TilePairResult, bool, error) {
	return m.loadCached(pairID)
}

// ListCached returns the metadata of every complete tileset in the store.
func (m *Manager) ListCached() ([]Metadata, error) {
	keys, err := m.st.List(keyPrefix)
	if err != nil {
		return nil, err
	}

	var out []Metadata
	for _, key := range keys {
		if !strings.HasSuffix(key, "/metadata.json") {
			continue
		}
		raw, ok, err := m.st.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var meta Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("decoding metadata %s: %w", key, err)
		}
		out = append(out, meta)
	}
	return out, nil
}
