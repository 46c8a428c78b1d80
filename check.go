package meshmirror

import (
	"errors"
	"fmt"
)

// ErrInvalidMesh is wrapped by errors returned from Mesh.Check.
var ErrInvalidMesh = errors.New("invalid mesh")

// Check verifies that arena lengths do not exceed capacities and that every
// live tetrahedron, triangle and edge references live points only.
func (m *Mesh) Check() error {
	np := m.Points.Len()
	if np > m.Points.Cap() || m.Tetras.Len() > m.Tetras.Cap() ||
		m.Trias.Len() > m.Trias.Cap() || m.Edges.Len() > m.Edges.Cap() {
		return fmt.Errorf("length exceeds capacity: %w", ErrInvalidMesh)
	}
	vertex := func(kind string, i, v int) error {
		if v < 1 || v > np {
			return fmt.Errorf("%s %d: vertex index %d out of range [1,%d]: %w", kind, i, v, np, ErrInvalidMesh)
		}
		if m.Points.At(v).Deleted() {
			return fmt.Errorf("%s %d: vertex %d is unused: %w", kind, i, v, ErrInvalidMesh)
		}
		return nil
	}
	for i := 1; i <= m.Tetras.Len(); i++ {
		t := m.Tetras.At(i)
		if t.Deleted() {
			continue
		}
		for _, v := range t.V {
			if err := vertex("tetrahedron", i, v); err != nil {
				return err
			}
		}
	}
	for i := 1; i <= m.Trias.Len(); i++ {
		t := m.Trias.At(i)
		if t.Deleted() {
			continue
		}
		for _, v := range t.V {
			if err := vertex("triangle", i, v); err != nil {
				return err
			}
		}
	}
	for i := 1; i <= m.Edges.Len(); i++ {
		e := m.Edges.At(i)
		if e.Deleted() {
			continue
		}
		for _, v := range e.V {
			if err := vertex("edge", i, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Orientation counts live tetrahedra by the sign of their volume. A
// tetrahedron whose six-fold volume magnitude is at most tol is degenerate.
func (m *Mesh) Orientation(tol float64) (positive, negative, degenerate int) {
	for i := 1; i <= m.Tetras.Len(); i++ {
		if m.Tetras.At(i).Deleted() {
			continue
		}
		vol := m.SignedVolume(i)
		switch {
		case vol > tol:
			positive++
		case vol < -tol:
			negative++
		default:
			degenerate++
		}
	}
	return positive, negative, degenerate
}
