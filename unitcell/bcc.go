// Package unitcell generates tetrahedral meshes of axis aligned boxes on a
// body centered cubic (BCC) lattice. Generated meshes carry their boundary
// triangles and ridge edges so they can be mirrored into larger blocks.
package unitcell

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/meshmirror"
	"github.com/soypat/meshmirror/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Ref is the reference given to generated tetrahedra. Boundary triangles
// are referenced by the box face they lie on: 1 and 2 for the -x and +x
// faces, 3 and 4 for y and 5 and 6 for z.
const Ref = 1

// maxCells bounds the lattice so that node and element indices fit in 32 bits.
const maxCells = math.MaxInt32 / 64

// ErrResolution is returned when a box can not be divided at the requested resolution.
var ErrResolution = errors.New("bad lattice resolution")

// BCC returns a tetrahedral mesh filling box. The box is divided into cells
// of side close to res. Neighboring cell centers are joined through the
// shared cube face by four tetrahedra and cube faces on the box boundary
// are closed with a face center node, so the mesh boundary is the box
// surface.
func BCC(box r3.Box, res float64) (*meshmirror.Mesh, error) {
	b := d3.Box(box)
	sz := b.Size()
	if !(res > 0) || b.IsEmpty() || d3.Min(sz) <= 0 {
		return nil, fmt.Errorf("box %v at resolution %g: %w", box, res, ErrResolution)
	}
	var div [3]int
	cells := 1.0
	for axis := 0; axis < 3; axis++ {
		d := math.Max(1, math.Round(d3.Comp(sz, axis)/res))
		cells *= d
		if cells > maxCells {
			return nil, fmt.Errorf("more than %d cells at resolution %g: %w", maxCells, res, ErrResolution)
		}
		div[axis] = int(d)
	}
	lat := newLattice(b, div)
	nodes, tetras := lat.tetrahedralize()
	return build(nodes, tetras)
}

// bccidx indexes the nodes of a cell. Corners follow the ordering of
// d3.Box.Vertices.
type bccidx int

const (
	i000 bccidx = iota
	ix00
	ixy0
	i0y0
	i00z
	ix0z
	ixyz
	i0yz
	ictr // BCC central node index.
	nBCC // number of BCC nodes.
)

// cornerOffset is the lattice offset of each cell corner.
var cornerOffset = [ictr][3]int{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}

// cubeFaces lists the corner loop of each cube face, ordered -x, +x, -y, +y, -z, +z.
var cubeFaces = [6]struct {
	axis, side int
	loop       [4]bccidx
}{
	{0, -1, [4]bccidx{i000, i0y0, i0yz, i00z}},
	{0, 1, [4]bccidx{ix00, ixy0, ixyz, ix0z}},
	{1, -1, [4]bccidx{i000, ix00, ix0z, i00z}},
	{1, 1, [4]bccidx{i0y0, ixy0, ixyz, i0yz}},
	{2, -1, [4]bccidx{i000, ix00, ixy0, i0y0}},
	{2, 1, [4]bccidx{i00z, ix0z, ixyz, i0yz}},
}

type bccNode struct {
	bccnod [nBCC]int
	box    d3.Box
}

type bccMatrix struct {
	nodes []bccNode
	div   [3]int
	box   d3.Box
	step  r3.Vec
}

func newLattice(b d3.Box, div [3]int) *bccMatrix {
	m := &bccMatrix{
		nodes: make([]bccNode, div[0]*div[1]*div[2]),
		div:   div,
		box:   b,
	}
	sz := b.Size()
	m.step = r3.Vec{X: sz.X / float64(div[0]), Y: sz.Y / float64(div[1]), Z: sz.Z / float64(div[2])}
	ncorner := (div[0] + 1) * (div[1] + 1) * (div[2] + 1)
	n := 0
	m.foreach(func(i, j, k int, node *bccNode) {
		node.box = d3.Box{Min: m.corner(i, j, k), Max: m.corner(i+1, j+1, k+1)}
		for in := i000; in < ictr; in++ {
			o := cornerOffset[in]
			node.bccnod[in] = m.cornerIndex(i+o[0], j+o[1], k+o[2])
		}
		node.bccnod[ictr] = ncorner + n
		n++
	})
	return m
}

// corner returns the position of lattice corner (i,j,k). Corners on the
// maximum faces are exact so mirror planes are hit without rounding.
func (m *bccMatrix) corner(i, j, k int) r3.Vec {
	var v r3.Vec
	for axis, n := range [3]int{i, j, k} {
		f := d3.Comp(m.box.Min, axis) + float64(n)*d3.Comp(m.step, axis)
		if n == m.div[axis] {
			f = d3.Comp(m.box.Max, axis)
		}
		v = d3.SetComp(v, axis, f)
	}
	return v
}

func (m *bccMatrix) cornerIndex(i, j, k int) int {
	return i*(m.div[1]+1)*(m.div[2]+1) + j*(m.div[2]+1) + k
}

func (m *bccMatrix) at(i, j, k int) *bccNode {
	if i < 0 || j < 0 || k < 0 || i >= m.div[0] || j >= m.div[1] || k >= m.div[2] {
		return nil
	}
	return &m.nodes[i*m.div[1]*m.div[2]+j*m.div[2]+k]
}

func (m *bccMatrix) foreach(f func(i, j, k int, nod *bccNode)) {
	for i := 0; i < m.div[0]; i++ {
		ii := i * m.div[1] * m.div[2]
		for j := 0; j < m.div[1]; j++ {
			jj := j * m.div[2]
			for k := 0; k < m.div[2]; k++ {
				f(i, j, k, &m.nodes[ii+jj+k])
			}
		}
	}
}

// tetrahedralize returns the lattice node positions and the tetrahedra
// joining them. Node indices are 0-based and tetrahedra are not oriented.
func (m *bccMatrix) tetrahedralize() (nodes []r3.Vec, tetras [][4]int) {
	ncorner := (m.div[0] + 1) * (m.div[1] + 1) * (m.div[2] + 1)
	nodes = make([]r3.Vec, ncorner+len(m.nodes))
	for i := 0; i <= m.div[0]; i++ {
		for j := 0; j <= m.div[1]; j++ {
			for k := 0; k <= m.div[2]; k++ {
				nodes[m.cornerIndex(i, j, k)] = m.corner(i, j, k)
			}
		}
	}
	tetras = make([][4]int, 0, 12*len(m.nodes))
	m.foreach(func(i, j, k int, node *bccNode) {
		nodes[node.bccnod[ictr]] = node.box.Center()
		idx := [3]int{i, j, k}
		for _, face := range cubeFaces {
			nb := idx
			nb[face.axis] += face.side
			neighbor := m.at(nb[0], nb[1], nb[2])
			var apex int
			switch {
			case neighbor == nil:
				// Close the box boundary with the face center.
				apex = len(nodes)
				onFace := node.box.Min
				if face.side > 0 {
					onFace = node.box.Max
				}
				fc := d3.SetComp(node.box.Center(), face.axis, d3.Comp(onFace, face.axis))
				nodes = append(nodes, fc)
			case face.side < 0:
				// Tetrahedra through internal faces are meshed from the minor side.
				apex = neighbor.bccnod[ictr]
			default:
				continue
			}
			tetras = append(tetras, node.faceTetras(face.loop, apex)...)
		}
	})
	return nodes, tetras
}

// faceTetras joins the cell center to apex through the face with corners loop.
func (node *bccNode) faceTetras(loop [4]bccidx, apex int) [][4]int {
	nctr := node.bccnod[ictr]
	tetras := make([][4]int, 4)
	for i := range loop {
		a := node.bccnod[loop[i]]
		b := node.bccnod[loop[(i+1)%4]]
		tetras[i] = [4]int{nctr, a, b, apex}
	}
	return tetras
}
