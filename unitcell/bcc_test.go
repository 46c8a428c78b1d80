package unitcell

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/meshmirror"
	"gonum.org/v1/gonum/spatial/r3"
)

var unitBox = r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}

func volume(m *meshmirror.Mesh) (v float64) {
	for i := 1; i <= m.Tetras.Len(); i++ {
		if !m.Tetras.At(i).Deleted() {
			v += m.SignedVolume(i) / 6
		}
	}
	return v
}

func TestBCCUnitCube(t *testing.T) {
	m, err := BCC(unitBox, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Check(); err != nil {
		t.Fatal(err)
	}
	// 27 lattice corners, 8 cell centers and 24 boundary face centers.
	if m.Points.Len() != 59 {
		t.Errorf("want 59 points, got %d", m.Points.Len())
	}
	if m.Tetras.Len() != 144 {
		t.Errorf("want 144 tetrahedra, got %d", m.Tetras.Len())
	}
	if m.Trias.Len() != 96 {
		t.Errorf("want 96 boundary triangles, got %d", m.Trias.Len())
	}
	pos, neg, deg := m.Orientation(1e-12)
	if pos != m.Tetras.Len() || neg != 0 || deg != 0 {
		t.Errorf("want all tetrahedra positive, got +%d -%d 0:%d", pos, neg, deg)
	}
	if v := volume(m); math.Abs(v-1) > 1e-12 {
		t.Errorf("want unit volume, got %g", v)
	}
	if m.Bounds() != unitBox {
		t.Errorf("bounds %v", m.Bounds())
	}
	// Box edges are split in two by the lattice.
	if m.Edges.Len() != 24 {
		t.Errorf("want 24 ridge edges, got %d", m.Edges.Len())
	}
	for i := 1; i <= m.Edges.Len(); i++ {
		if m.Edges.At(i).Tag&meshmirror.TagRidge == 0 {
			t.Fatalf("edge %d not tagged ridge", i)
		}
	}
	corners := 0
	for i := 1; i <= m.Points.Len(); i++ {
		if m.Points.At(i).Tag&meshmirror.TagCorner != 0 {
			corners++
		}
	}
	if corners != 8 {
		t.Errorf("want 8 corners, got %d", corners)
	}
	refs := make(map[int]int)
	for i := 1; i <= m.Trias.Len(); i++ {
		refs[m.Trias.At(i).Ref]++
	}
	for ref := 1; ref <= 6; ref++ {
		if refs[ref] != 16 {
			t.Errorf("want 16 triangles on box face %d, got %d", ref, refs[ref])
		}
	}
}

func TestBCCBoundaryOutward(t *testing.T) {
	m, err := BCC(unitBox, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	center := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	for i := 1; i <= m.Trias.Len(); i++ {
		tri := m.Triangle(i)
		n := r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0]))
		if r3.Dot(n, r3.Sub(tri[0], center)) <= 0 {
			t.Fatalf("triangle %d faces inward", i)
		}
	}
}

func TestBCCUneven(t *testing.T) {
	box := r3.Box{Min: r3.Vec{X: -1, Y: 0.25, Z: 3}, Max: r3.Vec{X: 0, Y: 2.25, Z: 3.7}}
	m, err := BCC(box, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Check(); err != nil {
		t.Fatal(err)
	}
	if m.Bounds() != box {
		t.Errorf("want bounds %v, got %v", box, m.Bounds())
	}
	if v := volume(m); math.Abs(v-1.4) > 1e-9 {
		t.Errorf("want volume 1.4, got %g", v)
	}
	if pairs := m.CoincidentPoints(1e-9); len(pairs) != 0 {
		t.Errorf("coincident points %v", pairs)
	}
}

func TestBCCMirror(t *testing.T) {
	m, err := BCC(unitBox, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	err = meshmirror.Mirror(m, [3]int{1, 1, 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Check(); err != nil {
		t.Fatal(err)
	}
	// A 4x4x4 lattice: 125 corners, 64 centers, 96 face centers on the
	// outer boundary and 48 on the three mirror planes.
	if got := m.LivePoints(); got != 333 {
		t.Errorf("want 333 live points, got %d", got)
	}
	if m.Tetras.Len() != 8*144 {
		t.Errorf("want %d tetrahedra, got %d", 8*144, m.Tetras.Len())
	}
	pos, _, _ := m.Orientation(1e-12)
	if pos != m.Tetras.Len() {
		t.Errorf("want all tetrahedra positive, got %d of %d", pos, m.Tetras.Len())
	}
	if v := volume(m); math.Abs(v-8) > 1e-9 {
		t.Errorf("want volume 8, got %g", v)
	}
	if pairs := m.CoincidentPoints(1e-9); len(pairs) != 0 {
		t.Errorf("coincident points after mirroring %v", pairs)
	}
}

func TestBCCErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		box  r3.Box
		res  float64
	}{
		{"zero resolution", unitBox, 0},
		{"NaN resolution", unitBox, math.NaN()},
		{"flat box", r3.Box{Max: r3.Vec{X: 1, Y: 1}}, 0.1},
		{"inverted box", r3.Box{Min: r3.Vec{X: 1, Y: 1, Z: 1}}, 0.1},
		{"too many cells", unitBox, 1e-4},
	} {
		_, err := BCC(test.box, test.res)
		if !errors.Is(err, ErrResolution) {
			t.Errorf("%s: want ErrResolution, got %v", test.name, err)
		}
	}
}
