// Package wang implements corner-indexed Wang tile selection and the
// terrain vertex grids that drive it.
//
// A Wang tileset has 16 tiles, one per combination of the two terrain
// states at a tile's four corners:
//
//	TL -- TR
//	|      |
//	BL -- BR
package wang

import "fmt"

// TileCount is the number of tiles in a complete Wang tileset.
const TileCount = 16

// DefaultMaxVertices caps grid allocations when no limit is configured.
const DefaultMaxVertices = 1 << 20

// CornerIndex maps four corner states (0=lower terrain, 1=upper terrain)
// to a tile index in 0..15. The bit weights TL=8, TR=4, BL=2, BR=1 are
// the canonical enumeration shared with externally generated tilesets;
// reordering them breaks compatibility.
func CornerIndex(tl, tr, bl, br uint8) int {
	return int(tl)<<3 | int(tr)<<2 | int(bl)<<1 | int(br)
}

// Corners is the inverse of CornerIndex: it returns (tl, tr, bl, br)
// for a tile index in 0..15.
func Corners(index int) (tl, tr, bl, br uint8) {
	return uint8(index >> 3 & 1), uint8(index >> 2 & 1), uint8(index >> 1 & 1), uint8(index & 1)
}

// DimensionError reports a vertex grid whose shape cannot describe a map.
type DimensionError struct {
	Reason string
}

func (e *DimensionError) Error() string {
	return "invalid terrain grid: " + e.Reason
}

// Grid is a terrain map expressed as vertex states. A map of rows x cols
// cells has (rows+1) x (cols+1) vertices; each cell derives its corner
// index from the four vertices around it.
type Grid struct {
	verts [][]uint8
}

// NewGrid allocates an all-lower grid for a rows x cols cell map.
func NewGrid(rows, cols int) (*Grid, error) {
	return NewGridWithLimit(rows, cols, DefaultMaxVertices)
}

// NewGridWithLimit allocates a grid, rejecting maps whose vertex count
// exceeds maxVertices.
func NewGridWithLimit(rows, cols, maxVertices int) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, &DimensionError{Reason: fmt.Sprintf("map must be at least 1x1 cells, got %dx%d", rows, cols)}
	}
	vertices := (rows + 1) * (cols + 1)
	if maxVertices > 0 && vertices > maxVertices {
		return nil, &DimensionError{
			Reason: fmt.Sprintf("%dx%d cells needs %d vertices, limit is %d", rows, cols, vertices, maxVertices),
		}
	}

	verts := make([][]uint8, rows+1)
	for r := range verts {
		verts[r] = make([]uint8, cols+1)
	}
	return &Grid{verts: verts}, nil
}

// FromVertices builds a grid from an explicit vertex matrix. The matrix
// must be rectangular, at least 2x2, and contain only 0/1 values.
func FromVertices(verts [][]uint8) (*Grid, error) {
	if len(verts) < 2 {
		return nil, &DimensionError{Reason: fmt.Sprintf("need at least 2 vertex rows, got %d", len(verts))}
	}
	width := len(verts[0])
	if width < 2 {
		return nil, &DimensionError{Reason: fmt.Sprintf("need at least 2 vertex columns, got %d", width)}
	}
	for r, row := range verts {
		if len(row) != width {
			return nil, &DimensionError{
				Reason: fmt.Sprintf("row %d has %d vertices, expected %d", r, len(row), width),
			}
		}
		for c, v := range row {
			if v > 1 {
				return nil, &DimensionError{Reason: fmt.Sprintf("vertex (%d,%d) has value %d, expected 0 or 1", r, c, v)}
			}
		}
	}

	g := &Grid{verts: make([][]uint8, len(verts))}
	for r, row := range verts {
		g.verts[r] = make([]uint8, width)
		copy(g.verts[r], row)
	}
	return g, nil
}

// Rows returns the map height in cells.
func (g *Grid) Rows() int {
	return len(g.verts) - 1
}

// Cols returns the map width in cells.
func (g *Grid) Cols() int {
	return len(g.verts[0]) - 1
}

// Vertex returns the terrain state at vertex (r, c).
func (g *Grid) Vertex(r, c int) uint8 {
	return g.verts[r][c]
}

// SetVertex sets the terrain state at vertex (r, c).
func (g *Grid) SetVertex(r, c int, v uint8) {
	if v > 1 {
		v = 1
	}
	g.verts[r][c] = v
}

// CellIndex returns the Wang tile index for cell (r, c), derived from
// the four surrounding vertices.
func (g *Grid) CellIndex(r, c int) int {
	return CornerIndex(g.verts[r][c], g.verts[r][c+1], g.verts[r+1][c], g.verts[r+1][c+1])
}
