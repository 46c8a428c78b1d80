package meshmirror

import (
	"math/rand"
	"testing"

	"github.com/soypat/meshmirror/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func mustAdd(t testing.TB, _ int, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// unitTetMesh returns the tetrahedron (0,0,0),(1,0,0),(0,1,0),(0,0,1)
// with its four faces as boundary triangles and its six edges.
func unitTetMesh(t testing.TB) *Mesh {
	m := NewMesh()
	for _, p := range []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}} {
		i, err := m.AddPoint(p, 0)
		mustAdd(t, i, err)
	}
	i, err := m.AddTetra([4]int{1, 2, 3, 4}, 1)
	mustAdd(t, i, err)
	for _, f := range [][3]int{{1, 3, 2}, {1, 2, 4}, {1, 4, 3}, {2, 3, 4}} {
		i, err := m.AddTria(f, 2)
		mustAdd(t, i, err)
	}
	for _, e := range [][2]int{{1, 2}, {1, 3}, {1, 4}, {2, 3}, {2, 4}, {3, 4}} {
		i, err := m.AddEdge(e[0], e[1], 3)
		mustAdd(t, i, err)
	}
	return m
}

// gridMesh returns a mesh holding every point of a 3x3x3 integer lattice
// spanning [0,2]^3 and ntet random positively oriented tetrahedra over
// them. Each tetrahedron contributes one boundary triangle and one edge.
func gridMesh(t testing.TB, rng *rand.Rand, ntet int) *Mesh {
	m := NewMesh()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				idx, err := m.AddPoint(r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)}, 0)
				mustAdd(t, idx, err)
			}
		}
	}
	for m.Tetras.Len() < ntet {
		var v [4]int
		for i := range v {
			v[i] = 1 + rng.Intn(27)
		}
		vol := d3.SignedVolume(m.Points.At(v[0]).X, m.Points.At(v[1]).X, m.Points.At(v[2]).X, m.Points.At(v[3]).X)
		if vol == 0 {
			continue
		}
		if vol < 0 {
			v[2], v[3] = v[3], v[2]
		}
		idx, err := m.AddTetra(v, 1)
		mustAdd(t, idx, err)
		idx, err = m.AddTria([3]int{v[0], v[1], v[2]}, 2)
		mustAdd(t, idx, err)
		idx, err = m.AddEdge(v[0], v[3], 3)
		mustAdd(t, idx, err)
	}
	return m
}

func tetraSet(m *Mesh) map[Tetra]int {
	set := make(map[Tetra]int)
	for i := 1; i <= m.Tetras.Len(); i++ {
		if t := m.Tetras.Get(i); !t.Deleted() {
			set[t]++
		}
	}
	return set
}

func triaSet(m *Mesh) map[Tria]int {
	set := make(map[Tria]int)
	for i := 1; i <= m.Trias.Len(); i++ {
		if t := m.Trias.Get(i); !t.Deleted() {
			set[t]++
		}
	}
	return set
}

func edgeSet(m *Mesh) map[Edge]int {
	set := make(map[Edge]int)
	for i := 1; i <= m.Edges.Len(); i++ {
		if e := m.Edges.Get(i); !e.Deleted() {
			set[e]++
		}
	}
	return set
}

func equalSets[K comparable](a, b map[K]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, n := range a {
		if b[k] != n {
			return false
		}
	}
	return true
}
