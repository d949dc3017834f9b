package wang

import (
	"fmt"
	"math/rand"
	"time"
)

// Pattern names a procedural terrain layout.
type Pattern string

const (
	// PatternRandom fills each vertex independently with 0 or 1.
	PatternRandom Pattern = "random"

	// PatternGradient transitions from lower terrain at the top-left to
	// upper terrain at the bottom-right: a vertex is upper iff
	// (r+c)/(rows+cols) > 0.5.
	PatternGradient Pattern = "gradient"

	// PatternCheckerboard alternates vertices by (r+c) mod 2.
	PatternCheckerboard Pattern = "checkerboard"

	// PatternSolidLower is all lower terrain.
	PatternSolidLower Pattern = "solid_lower"

	// PatternSolidUpper is all upper terrain.
	PatternSolidUpper Pattern = "solid_upper"
)

// Patterns returns the supported pattern names.
func Patterns() []Pattern {
	return []Pattern{PatternRandom, PatternGradient, PatternCheckerboard, PatternSolidLower, PatternSolidUpper}
}

// Generate builds a vertex grid for a rows x cols cell map using the
// given pattern. seed only affects PatternRandom; pass nil for a
// non-reproducible layout.
func Generate(pattern Pattern, rows, cols int, seed *int64) (*Grid, error) {
	g, err := NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}

	switch pattern {
	case PatternRandom:
		s := time.Now().UnixNano()
		if seed != nil {
			s = *seed
		}
		rng := rand.New(rand.NewSource(s))
		for r := 0; r <= rows; r++ {
			for c := 0; c <= cols; c++ {
				g.verts[r][c] = uint8(rng.Intn(2))
			}
		}

	case PatternGradient:
		span := float64(rows + cols)
		for r := 0; r <= rows; r++ {
			for c := 0; c <= cols; c++ {
				if float64(r+c)/span > 0.5 {
					g.verts[r][c] = 1
				}
			}
		}

	case PatternCheckerboard:
		for r := 0; r <= rows; r++ {
			for c := 0; c <= cols; c++ {
				g.verts[r][c] = uint8((r + c) % 2)
			}
		}

	case PatternSolidLower:
		// NewGrid already zeroes every vertex

	case PatternSolidUpper:
		for r := 0; r <= rows; r++ {
			for c := 0; c <= cols; c++ {
				g.verts[r][c] = 1
			}
		}

	default:
		return nil, fmt.Errorf("unknown pattern: %q", pattern)
	}

	return g, nil
}
