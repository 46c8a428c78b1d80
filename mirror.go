package meshmirror

import (
	"fmt"
	"math"

	"github.com/soypat/meshmirror/internal/d3"
)

// DefaultTolerance is the coincidence tolerance used when Config.Tolerance is zero.
const DefaultTolerance = 1e-14

// Coincidence selects how a reflected point is compared to its source.
type Coincidence int

const (
	// CoincidenceSignedSum flags a duplicate when the sum of the signed
	// coordinate differences is below the tolerance. For reflections that
	// tile outward the sum is the non-negative reflection offset.
	CoincidenceSignedSum Coincidence = iota
	// CoincidenceSquared flags a duplicate when the squared euclidean
	// distance is below the squared tolerance.
	CoincidenceSquared
)

// Config configures a mirror operation. The zero value is ready to use.
type Config struct {
	// Tolerance below which a reflected point is taken as coincident
	// with its source. Zero selects DefaultTolerance.
	Tolerance   float64
	Coincidence Coincidence
	// Observer, if not nil, is notified around every phase.
	Observer Observer
}

func (cfg *Config) tolerance() float64 {
	if cfg.Tolerance <= 0 {
		return DefaultTolerance
	}
	return cfg.Tolerance
}

func (cfg *Config) observer() Observer {
	if cfg.Observer == nil {
		return nopObserver{}
	}
	return cfg.Observer
}

// Mirror replicates the mesh counts[axis] times along each axis by
// reflection across the maximum face of the mesh bounding box, processing
// x, y and z in that order. Points lying on a mirror plane are shared
// between the original and reflected copies and elements that would lie
// entirely on a mirror plane are discarded.
//
// A nil cfg is equivalent to &Config{}. Use StatusOf to classify a
// returned error. Negative counts and failures to reserve memory for the
// mirrored mesh are detected before the mesh is modified.
func Mirror(m *Mesh, counts [3]int, cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	for axis, n := range counts {
		if n < 0 {
			return fmt.Errorf("axis %s count %d: %w", Axis(axis), n, ErrNegativeCount)
		}
	}
	c := blockCounts{
		np: m.Points.Len(),
		ne: m.Tetras.Len(),
		nt: m.Trias.Len(),
		na: m.Edges.Len(),
	}
	mult := 1
	for _, n := range counts {
		if mult > math.MaxInt32/(n+1) {
			return fmt.Errorf("mirror multiplicity overflow: %w", ErrMemory)
		}
		mult *= n + 1
	}
	total, ok := c.scale(mult)
	if !ok {
		return fmt.Errorf("mirrored mesh size overflows: %w", ErrMemory)
	}
	if err := m.reserve(total); err != nil {
		return fmt.Errorf("reserving mirrored mesh: %w", err)
	}

	bb := d3.Box(m.Bounds())
	obs := cfg.observer()
	canon := make([]int, total.np+1)
	for i := 1; i <= c.np; i++ {
		canon[i] = i
	}
	for axis := AxisX; axis <= AxisZ; axis++ {
		n := counts[axis]
		obs.BeforePhase(PhaseReflect, axis, m)
		reflectAxis(m.Points, canon, c.np, n, axis, bb, cfg)
		obs.AfterPhase(PhaseReflect, axis, m)

		obs.BeforePhase(PhaseReplicate, axis, m)
		err := replicateAxis(m, canon, c, n)
		if err != nil {
			return &FatalError{Err: fmt.Errorf("replicating along %s: %w", axis, err)}
		}
		c, _ = c.scale(n + 1)
		obs.AfterPhase(PhaseReplicate, axis, m)
	}

	obs.BeforePhase(PhaseCompact, AxisX, m)
	m.Tetras.Compact()
	m.Trias.Compact()
	m.Edges.Compact()
	// Duplicates are no longer referenced by any element.
	for i := 1; i <= m.Points.Len(); i++ {
		p := m.Points.At(i)
		if p.Tag&TagDuplicate != 0 {
			p.Tag |= TagUnused
		}
	}
	obs.AfterPhase(PhaseCompact, AxisX, m)
	return nil
}

// blockCounts holds the slot counts of a block of the four mesh arenas.
type blockCounts struct {
	np, ne, nt, na int
}

func (c blockCounts) scale(k int) (blockCounts, bool) {
	const lim = math.MaxInt32
	if k != 0 && (c.np > lim/k || c.ne > lim/k || c.nt > lim/k || c.na > lim/k) {
		return c, false
	}
	return blockCounts{np: c.np * k, ne: c.ne * k, nt: c.nt * k, na: c.na * k}, true
}

// reserve grows all arenas to hold c slots. On failure arenas already grown
// keep their contents and the mesh remains valid.
func (m *Mesh) reserve(c blockCounts) error {
	if err := m.Points.Reserve(c.np); err != nil {
		return fmt.Errorf("points: %w", err)
	}
	if err := m.Tetras.Reserve(c.ne); err != nil {
		return fmt.Errorf("tetrahedra: %w", err)
	}
	if err := m.Trias.Reserve(c.nt); err != nil {
		return fmt.Errorf("triangles: %w", err)
	}
	if err := m.Edges.Reserve(c.na); err != nil {
		return fmt.Errorf("edges: %w", err)
	}
	return nil
}
