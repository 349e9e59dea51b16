package layout

import (
	"math"

	"github.com/codeatlas/codeatlas/pkg/model"
)

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Config configures layout parameters. Zero values fall back to defaults.
type Config struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Padding    float64 // Padding from edges
	RestLength float64 // Target edge length for the force simulation
	MaxSteps   int     // Simulation step cap before truncation
	Seed       int64   // Pseudo-random seed for initial placement
}

// Default tuning. The rest length and the hierarchy spacings are policy
// constants, not correctness requirements.
const (
	DefaultWidth      = 1200.0
	DefaultHeight     = 800.0
	DefaultPadding    = 50.0
	DefaultRestLength = 100.0
	DefaultMaxSteps   = 300
)

func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Padding == 0 {
		c.Padding = DefaultPadding
	}
	if c.RestLength == 0 {
		c.RestLength = DefaultRestLength
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	return c
}

// Radius returns the collision radius used for a node kind. Files and
// modules are drawn larger than the entities they contain.
func Radius(kind model.Kind) float64 {
	switch kind {
	case model.KindFile, model.KindModule:
		return 26
	case model.KindFunction, model.KindClass:
		return 14
	default:
		return 10
	}
}

// Normalize scales positions to fit within the given bounds, preserving
// their relative arrangement.
func Normalize(positions map[string]Position, width, height, padding float64) map[string]Position {
	if len(positions) == 0 {
		return positions
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, pos := range positions {
		minX = math.Min(minX, pos.X)
		maxX = math.Max(maxX, pos.X)
		minY = math.Min(minY, pos.Y)
		maxY = math.Max(maxY, pos.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX < 0.01 {
		rangeX = 1
	}
	if rangeY < 0.01 {
		rangeY = 1
	}

	targetWidth := width - 2*padding
	targetHeight := height - 2*padding

	normalized := make(map[string]Position, len(positions))
	for id, pos := range positions {
		normalized[id] = Position{
			X: padding + ((pos.X-minX)/rangeX)*targetWidth,
			Y: padding + ((pos.Y-minY)/rangeY)*targetHeight,
		}
	}
	return normalized
}
