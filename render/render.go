// Package render exports the boundary surface of a mesh as binary STL
// and as PNG previews.
package render

import (
	"github.com/soypat/meshmirror"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle.
type Triangle3 [3]r3.Vec

// Normal returns the unit normal of the triangle following the right hand
// rule over its vertex order.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Boundary returns the live boundary triangles of m.
func Boundary(m *meshmirror.Mesh) []Triangle3 {
	model := make([]Triangle3, 0, m.Trias.Len())
	for i := 1; i <= m.Trias.Len(); i++ {
		if m.Trias.At(i).Deleted() {
			continue
		}
		model = append(model, Triangle3(m.Triangle(i)))
	}
	return model
}
