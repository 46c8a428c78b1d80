package meshmirror

import (
	"unsafe"

	"github.com/soypat/meshmirror/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tag is a bit set of point and edge attributes.
type Tag uint16

const (
	// TagUnused marks a point slot that holds no point.
	TagUnused Tag = 1 << iota
	// TagDuplicate marks a point found to coincide with another point
	// during mirroring. Live elements never reference it.
	TagDuplicate
	// TagRequired marks required points or edges (Medit RequiredVertices/RequiredEdges).
	TagRequired
	// TagCorner marks corner points (Medit Corners).
	TagCorner
	// TagRidge marks ridge edges (Medit Ridges).
	TagRidge
)

// Point is a mesh vertex.
type Point struct {
	X   r3.Vec
	Ref int
	Tag Tag
}

// Tetra is a tetrahedron. The order of V encodes its orientation.
type Tetra struct {
	V   [4]int
	Ref int
}

// Tria is a boundary triangle.
type Tria struct {
	V   [3]int
	Ref int
}

// Edge is a boundary edge with endpoints V[0] and V[1].
type Edge struct {
	V   [2]int
	Ref int
	Tag Tag
}

func (p Point) Deleted() bool { return p.Tag&TagUnused != 0 }
func (p *Point) markDeleted() { *p = Point{Tag: TagUnused} }

func (t Tetra) Deleted() bool { return t.V[0] == 0 }
func (t *Tetra) markDeleted() { *t = Tetra{} }

func (t Tria) Deleted() bool { return t.V[0] == 0 }
func (t *Tria) markDeleted() { *t = Tria{} }

func (e Edge) Deleted() bool { return e.V[0] == 0 }
func (e *Edge) markDeleted() { *e = Edge{} }

// Mesh owns the point, tetrahedron, boundary triangle and boundary edge
// arenas of a volumetric mesh. All arenas are 1-indexed.
type Mesh struct {
	Points *Arena[Point, *Point]
	Tetras *Arena[Tetra, *Tetra]
	Trias  *Arena[Tria, *Tria]
	Edges  *Arena[Edge, *Edge]
	mem    *memory
}

// NewMesh returns an empty mesh with no memory limit.
func NewMesh() *Mesh {
	mem := &memory{}
	return &Mesh{
		Points: newArena[Point](false, int64(unsafe.Sizeof(Point{})), mem),
		Tetras: newArena[Tetra](true, int64(unsafe.Sizeof(Tetra{})), mem),
		Trias:  newArena[Tria](false, int64(unsafe.Sizeof(Tria{})), mem),
		Edges:  newArena[Edge](true, int64(unsafe.Sizeof(Edge{})), mem),
		mem:    mem,
	}
}

// SetMemoryLimit bounds the bytes all arenas of the mesh may reserve.
// A limit <= 0 removes the bound. Storage already reserved counts
// towards the limit.
func (m *Mesh) SetMemoryLimit(bytes int64) { m.mem.limit = bytes }

// MemoryUsed returns the bytes currently reserved by the mesh arenas.
func (m *Mesh) MemoryUsed() int64 { return m.mem.used }

// AddPoint appends a point and returns its index.
func (m *Mesh) AddPoint(x r3.Vec, ref int) (int, error) {
	return m.Points.Add(Point{X: x, Ref: ref})
}

// AddTetra appends a tetrahedron and returns its index.
func (m *Mesh) AddTetra(v [4]int, ref int) (int, error) {
	return m.Tetras.Add(Tetra{V: v, Ref: ref})
}

// AddTria appends a boundary triangle and returns its index.
func (m *Mesh) AddTria(v [3]int, ref int) (int, error) {
	return m.Trias.Add(Tria{V: v, Ref: ref})
}

// AddEdge appends a boundary edge and returns its index.
func (m *Mesh) AddEdge(a, b, ref int) (int, error) {
	return m.Edges.Add(Edge{V: [2]int{a, b}, Ref: ref})
}

// Bounds returns the bounding box of the live points. The box
// is empty (Min > Max) for a mesh without live points.
func (m *Mesh) Bounds() r3.Box {
	bb := d3.EmptyBox()
	for i := 1; i <= m.Points.Len(); i++ {
		p := m.Points.At(i)
		if p.Deleted() {
			continue
		}
		bb = bb.Include(p.X)
	}
	return r3.Box(bb)
}

// LivePoints returns the number of points not tagged unused.
func (m *Mesh) LivePoints() (n int) {
	for i := 1; i <= m.Points.Len(); i++ {
		if !m.Points.At(i).Deleted() {
			n++
		}
	}
	return n
}

// Renumber returns a table mapping every point index to a dense
// 1-based numbering of the live points. Unused points map to 0.
// The second value is the number of live points.
func (m *Mesh) Renumber() (perm []int, n int) {
	perm = make([]int, m.Points.Len()+1)
	for i := 1; i <= m.Points.Len(); i++ {
		if m.Points.At(i).Deleted() {
			continue
		}
		n++
		perm[i] = n
	}
	return perm, n
}

// Tetrahedron returns the vertex coordinates of tetrahedron i.
func (m *Mesh) Tetrahedron(i int) [4]r3.Vec {
	t := m.Tetras.At(i)
	return [4]r3.Vec{
		m.Points.At(t.V[0]).X,
		m.Points.At(t.V[1]).X,
		m.Points.At(t.V[2]).X,
		m.Points.At(t.V[3]).X,
	}
}

// Triangle returns the vertex coordinates of boundary triangle i.
func (m *Mesh) Triangle(i int) [3]r3.Vec {
	t := m.Trias.At(i)
	return [3]r3.Vec{
		m.Points.At(t.V[0]).X,
		m.Points.At(t.V[1]).X,
		m.Points.At(t.V[2]).X,
	}
}

// SignedVolume returns six times the signed volume of tetrahedron i.
func (m *Mesh) SignedVolume(i int) float64 {
	v := m.Tetrahedron(i)
	return d3.SignedVolume(v[0], v[1], v[2], v[3])
}
