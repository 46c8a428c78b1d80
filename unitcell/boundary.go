package unitcell

import (
	"math"
	"sort"

	"github.com/soypat/meshmirror"
	"github.com/soypat/meshmirror/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ridgeCos is the cosine of the smallest dihedral deviation between
// neighboring boundary triangles that marks their shared edge as a ridge.
var ridgeCos = math.Cos(math.Pi / 6)

// tetFaces lists the faces of a positively oriented tetrahedron, each
// ordered so its normal points away from the opposite vertex.
var tetFaces = [4][3]int{{1, 2, 3}, {0, 3, 2}, {0, 1, 3}, {0, 2, 1}}

type faceKey [3]int

func keyOf(f [3]int) faceKey {
	k := faceKey(f)
	sort.Ints(k[:])
	return k
}

// build orients tetras positively and assembles a mesh with the boundary
// triangles of the tetrahedra and the ridge edges of that boundary.
func build(nodes []r3.Vec, tetras [][4]int) (*meshmirror.Mesh, error) {
	for i, t := range tetras {
		if d3.SignedVolume(nodes[t[0]], nodes[t[1]], nodes[t[2]], nodes[t[3]]) < 0 {
			tetras[i][2], tetras[i][3] = t[3], t[2]
		}
	}
	faces := boundaryFaces(tetras)
	ridges := ridgeEdges(nodes, faces)

	m := meshmirror.NewMesh()
	for _, err := range []error{
		m.Points.Reserve(len(nodes)),
		m.Tetras.Reserve(len(tetras)),
		m.Trias.Reserve(len(faces)),
		m.Edges.Reserve(len(ridges)),
	} {
		if err != nil {
			return nil, err
		}
	}
	for _, x := range nodes {
		if _, err := m.AddPoint(x, 0); err != nil {
			return nil, err
		}
	}
	for _, t := range tetras {
		if _, err := m.AddTetra([4]int{t[0] + 1, t[1] + 1, t[2] + 1, t[3] + 1}, Ref); err != nil {
			return nil, err
		}
	}
	for _, f := range faces {
		v := [3]int{f[0] + 1, f[1] + 1, f[2] + 1}
		if _, err := m.AddTria(v, faceRef(nodes, f)); err != nil {
			return nil, err
		}
	}
	nridge := make([]int, len(nodes))
	for _, e := range ridges {
		i, err := m.AddEdge(e[0]+1, e[1]+1, 0)
		if err != nil {
			return nil, err
		}
		m.Edges.At(i).Tag |= meshmirror.TagRidge
		nridge[e[0]]++
		nridge[e[1]]++
	}
	for i, n := range nridge {
		if n >= 3 {
			m.Points.At(i+1).Tag |= meshmirror.TagCorner
		}
	}
	return m, nil
}

// boundaryFaces returns the faces owned by a single tetrahedron, oriented
// outward, in tetrahedron order.
func boundaryFaces(tetras [][4]int) [][3]int {
	count := make(map[faceKey]int, 2*len(tetras))
	for _, t := range tetras {
		for _, lf := range tetFaces {
			count[keyOf([3]int{t[lf[0]], t[lf[1]], t[lf[2]]})]++
		}
	}
	var faces [][3]int
	for _, t := range tetras {
		for _, lf := range tetFaces {
			f := [3]int{t[lf[0]], t[lf[1]], t[lf[2]]}
			if count[keyOf(f)] == 1 {
				faces = append(faces, f)
			}
		}
	}
	return faces
}

// ridgeEdges returns the edges shared by boundary faces whose normals
// deviate by more than the ridge angle. Edges with a single adjacent
// face lie on an open border and are ridges as well.
func ridgeEdges(nodes []r3.Vec, faces [][3]int) [][2]int {
	adj := make(map[[2]int][]int, 3*len(faces)/2)
	for i, f := range faces {
		for j := range f {
			k := edgeKey(f[j], f[(j+1)%3])
			adj[k] = append(adj[k], i)
		}
	}
	normals := make([]r3.Vec, len(faces))
	for i, f := range faces {
		normals[i] = faceNormal(nodes, f)
	}
	seen := make(map[[2]int]bool, len(adj))
	var ridges [][2]int
	for _, f := range faces {
		for j := range f {
			e := [2]int{f[j], f[(j+1)%3]}
			k := edgeKey(e[0], e[1])
			if seen[k] {
				continue
			}
			seen[k] = true
			a := adj[k]
			if len(a) == 2 && r3.Dot(normals[a[0]], normals[a[1]]) >= ridgeCos {
				continue
			}
			ridges = append(ridges, e)
		}
	}
	return ridges
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func faceNormal(nodes []r3.Vec, f [3]int) r3.Vec {
	return r3.Unit(r3.Cross(r3.Sub(nodes[f[1]], nodes[f[0]]), r3.Sub(nodes[f[2]], nodes[f[0]])))
}

// faceRef references a boundary face by the box face its normal points to.
func faceRef(nodes []r3.Vec, f [3]int) int {
	n := faceNormal(nodes, f)
	axis := 0
	for a := 1; a < 3; a++ {
		if math.Abs(d3.Comp(n, a)) > math.Abs(d3.Comp(n, axis)) {
			axis = a
		}
	}
	ref := 2*axis + 1
	if d3.Comp(n, axis) > 0 {
		ref++
	}
	return ref
}
