package meshmirror

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ kdtree.Interface = kdPoints{}

// CoincidentPoints returns the pairs of live points closer to each other
// than tol, lower index first, sorted. A correctly mirrored mesh has none
// for tol well below its smallest edge length.
func (m *Mesh) CoincidentPoints(tol float64) [][2]int {
	pts := make(kdPoints, 0, m.Points.Len())
	for i := 1; i <= m.Points.Len(); i++ {
		p := m.Points.At(i)
		if p.Deleted() {
			continue
		}
		pts = append(pts, kdPoint{X: p.X, idx: i})
	}
	if len(pts) < 2 {
		return nil
	}
	query := make(kdPoints, len(pts))
	copy(query, pts) // kdtree.New reorders its argument.
	tree := kdtree.New(pts, false)

	var pairs [][2]int
	for _, q := range query {
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, q)
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			other := c.Comparable.(kdPoint)
			if other.idx > q.idx {
				pairs = append(pairs, [2]int{q.idx, other.idx})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

type kdPoint struct {
	X   r3.Vec
	idx int
}

type kdPoints []kdPoint

func (k kdPoints) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdPoints) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdPoints) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), points: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdPoints) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdPoint) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a, b.(kdPoint), int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdPoint) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.X, b.(kdPoint).X))
}

// c = a.dim - b.dim
func kdComp(a, b kdPoint, dim int) float64 {
	switch dim {
	case 0:
		return a.X.X - b.X.X
	case 1:
		return a.X.Y - b.X.Y
	case 2:
		return a.X.Z - b.X.Z
	}
	panic("unreachable")
}

type kdPlane struct {
	dim    int
	points kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.points[i], p.points[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p kdPlane) Len() int {
	return len(p.points)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
