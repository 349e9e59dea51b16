package layout

import (
	"context"
	"math"
	"math/rand"

	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/model"
)

// Force model tuning constants.
const (
	springStrength    = 0.02  // attraction along edges toward the rest length
	centeringStrength = 0.005 // pull toward the viewport center
	axisStrength      = 0.02  // weak correction of mean drift per axis
	velocityDamping   = 0.85
	coolingFactor     = 0.95
	minTemperature    = 0.5
	reheatTemperature = 30.0 // applied when a dragged node is released
	convergenceEnergy = 0.05 // mean kinetic energy threshold
)

type simNode struct {
	id     string
	kind   model.Kind
	x, y   float64
	vx, vy float64
	pinned bool
}

// ForceSimulation is an iterative force-directed layout over every node and
// edge of a graph. Stepping is explicit so a host scheduler can interleave
// pointer events between ticks; nothing inside blocks.
//
// The simulation is not safe for concurrent use: the owner must serialize
// Step, Pin, and Release, which a single event loop does for free.
type ForceSimulation struct {
	cfg   Config
	log   logging.Logger
	nodes []*simNode
	index map[string]int
	links [][2]int

	temperature float64
	steps       int
	converged   bool
}

// NewForceSimulation seeds initial positions from cfg.Seed, so the same
// graph and seed reproduce the same layout.
func NewForceSimulation(g *model.Graph, cfg Config, log logging.Logger) *ForceSimulation {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logging.NewNopLogger()
	}

	sim := &ForceSimulation{
		cfg:         cfg,
		log:         log.With(logging.Component("layout")),
		index:       make(map[string]int),
		temperature: cfg.Width / 10.0,
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for _, n := range g.Nodes() {
		sim.index[n.ID] = len(sim.nodes)
		sim.nodes = append(sim.nodes, &simNode{
			id:   n.ID,
			kind: n.Kind,
			x:    cfg.Padding + rng.Float64()*(cfg.Width-2*cfg.Padding),
			y:    cfg.Padding + rng.Float64()*(cfg.Height-2*cfg.Padding),
		})
	}

	// Parallel edges act as a single spring.
	seen := make(map[[2]int]bool)
	for _, e := range g.Edges() {
		a, okA := sim.index[e.Source]
		b, okB := sim.index[e.Target]
		if !okA || !okB || a == b {
			continue
		}
		pair := [2]int{a, b}
		if a > b {
			pair = [2]int{b, a}
		}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		sim.links = append(sim.links, pair)
	}

	return sim
}

// Step advances the simulation by one tick and returns the mean kinetic
// energy after integration.
func (sim *ForceSimulation) Step() float64 {
	n := len(sim.nodes)
	if n == 0 {
		sim.converged = true
		return 0
	}
	sim.steps++

	fx := make([]float64, n)
	fy := make([]float64, n)

	// Pairwise repulsion with an inverse-distance charge.
	charge := sim.cfg.RestLength * sim.cfg.RestLength
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := sim.nodes[i].x - sim.nodes[j].x
			dy := sim.nodes[i].y - sim.nodes[j].y
			dist := math.Hypot(dx, dy)
			if dist < 0.01 {
				dist = 0.01
			}
			force := charge / (dist * dist)
			ux, uy := dx/dist, dy/dist
			fx[i] += ux * force
			fy[i] += uy * force
			fx[j] -= ux * force
			fy[j] -= uy * force
		}
	}

	// Spring attraction along edges toward the rest length.
	for _, link := range sim.links {
		a, b := sim.nodes[link[0]], sim.nodes[link[1]]
		dx := b.x - a.x
		dy := b.y - a.y
		dist := math.Hypot(dx, dy)
		if dist < 0.01 {
			continue
		}
		stretch := dist - sim.cfg.RestLength
		force := stretch * springStrength
		ux, uy := dx/dist, dy/dist
		fx[link[0]] += ux * force
		fy[link[0]] += uy * force
		fx[link[1]] -= ux * force
		fy[link[1]] -= uy * force
	}

	// Centering plus a weak recentering of the mean to prevent drift.
	cx, cy := sim.cfg.Width/2, sim.cfg.Height/2
	var meanX, meanY float64
	for _, node := range sim.nodes {
		meanX += node.x
		meanY += node.y
	}
	meanX /= float64(n)
	meanY /= float64(n)
	for i, node := range sim.nodes {
		fx[i] += (cx - node.x) * centeringStrength
		fy[i] += (cy - node.y) * centeringStrength
		fx[i] += (cx - meanX) * axisStrength
		fy[i] += (cy - meanY) * axisStrength
	}

	// Integrate with temperature-capped displacement.
	energy := 0.0
	for i, node := range sim.nodes {
		if node.pinned {
			node.vx, node.vy = 0, 0
			continue
		}
		node.vx = (node.vx + fx[i]) * velocityDamping
		node.vy = (node.vy + fy[i]) * velocityDamping

		speed := math.Hypot(node.vx, node.vy)
		if speed > sim.temperature && speed > 0 {
			scale := sim.temperature / speed
			node.vx *= scale
			node.vy *= scale
		}
		node.x += node.vx
		node.y += node.vy
		energy += node.vx*node.vx + node.vy*node.vy
	}

	sim.resolveCollisions()

	if sim.temperature > minTemperature {
		sim.temperature *= coolingFactor
		if sim.temperature < minTemperature {
			sim.temperature = minTemperature
		}
	}

	energy /= float64(n)
	if energy < convergenceEnergy && sim.steps > 1 {
		sim.converged = true
	}
	return energy
}

// resolveCollisions pushes overlapping nodes apart using per-kind radii.
// Pinned nodes hold their ground; their partner absorbs the full push.
func (sim *ForceSimulation) resolveCollisions() {
	n := len(sim.nodes)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := sim.nodes[i], sim.nodes[j]
			if a.pinned && b.pinned {
				continue
			}
			minDist := Radius(a.kind) + Radius(b.kind)
			dx := b.x - a.x
			dy := b.y - a.y
			dist := math.Hypot(dx, dy)
			if dist >= minDist {
				continue
			}
			if dist < 0.01 {
				dist = 0.01
				dx, dy = 1, 0
			}
			overlap := minDist - dist
			ux, uy := dx/dist, dy/dist
			switch {
			case a.pinned:
				b.x += ux * overlap
				b.y += uy * overlap
			case b.pinned:
				a.x -= ux * overlap
				a.y -= uy * overlap
			default:
				a.x -= ux * overlap / 2
				a.y -= uy * overlap / 2
				b.x += ux * overlap / 2
				b.y += uy * overlap / 2
			}
		}
	}
}

// Run steps until convergence or the step cap, checking ctx between steps.
// Hitting the cap is not an error: the last positions are used as-is.
func (sim *ForceSimulation) Run(ctx context.Context) error {
	for !sim.converged && sim.steps < sim.cfg.MaxSteps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		sim.Step()
	}
	if !sim.converged {
		sim.log.Warn("layout truncated before convergence", logging.Int("steps", sim.steps))
	}
	return nil
}

// Pin fixes a node at the given coordinates for the duration of a drag.
// The node is excluded from integration until Release.
func (sim *ForceSimulation) Pin(id string, x, y float64) {
	if i, ok := sim.index[id]; ok {
		node := sim.nodes[i]
		node.pinned = true
		node.x, node.y = x, y
		node.vx, node.vy = 0, 0
	}
}

// Release unpins a node and reheats the simulation so its neighborhood can
// resettle around the new position.
func (sim *ForceSimulation) Release(id string) {
	if i, ok := sim.index[id]; ok {
		sim.nodes[i].pinned = false
		if sim.temperature < reheatTemperature {
			sim.temperature = reheatTemperature
		}
		sim.converged = false
	}
}

// Converged reports whether the kinetic energy dropped below the threshold.
func (sim *ForceSimulation) Converged() bool { return sim.converged }

// Steps returns the number of ticks taken so far.
func (sim *ForceSimulation) Steps() int { return sim.steps }

// Positions returns the current raw coordinates.
func (sim *ForceSimulation) Positions() map[string]Position {
	out := make(map[string]Position, len(sim.nodes))
	for _, node := range sim.nodes {
		out[node.id] = Position{X: node.x, Y: node.y}
	}
	return out
}

// NormalizedPositions returns the current coordinates scaled into the
// configured bounds, for the first paint and for export.
func (sim *ForceSimulation) NormalizedPositions() map[string]Position {
	return Normalize(sim.Positions(), sim.cfg.Width, sim.cfg.Height, sim.cfg.Padding)
}
