package meshmirror

import (
	"github.com/soypat/meshmirror/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// reflectAxis extends the np points of pts with n mirrored blocks along
// axis. Block imir is block imir-1 reflected across the plane
// bb.Max[axis] + (imir-1)*delta, delta being the box extent along axis,
// so blocks tile outward. canon receives, for every new point, its own
// index or, when it coincides with its source, the source's canonical index.
//
// Duplicate tags are recomputed for every block and copies of unused
// slots stay unused. Points already tagged duplicate before the pass (by
// a previous axis) stay duplicates in every block and alias the copy of
// their canonical point.
func reflectAxis(pts *Arena[Point, *Point], canon []int, np, n int, axis Axis, bb d3.Box, cfg *Config) {
	if n == 0 || np == 0 {
		return
	}
	ax := int(axis)
	delta := d3.Comp(bb.Size(), ax)
	bmax := d3.Comp(bb.Max, ax)
	eps := cfg.tolerance()
	pts.SetLen((n + 1) * np)
	for imir := 1; imir <= n; imir++ {
		off := imir * np
		for k := 1; k <= np; k++ {
			src := off - np + k
			dst := off + k
			p := pts.Get(src)
			q := p
			q.Tag &^= TagDuplicate
			canon[dst] = dst

			x := d3.Comp(p.X, ax)
			f := 2 * (float64(imir-1)*delta + bmax - x)
			q.X = d3.SetComp(p.X, ax, x+f)
			switch {
			case pts.At(k).Tag&TagDuplicate != 0:
				q.Tag |= TagDuplicate
			case coincident(q.X, p.X, eps, cfg.Coincidence):
				q.Tag |= TagDuplicate
				canon[dst] = canon[src]
			}
			pts.Set(dst, q)
		}
		for k := 1; k <= np; k++ {
			if pts.At(k).Tag&TagDuplicate != 0 {
				canon[off+k] = canon[canon[k]+off]
			}
		}
	}
}

func coincident(a, b r3.Vec, eps float64, mode Coincidence) bool {
	d := r3.Sub(a, b)
	if mode == CoincidenceSquared {
		return r3.Norm2(d) < eps*eps
	}
	return d.X+d.Y+d.Z < eps
}
