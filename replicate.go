package meshmirror

// replicateAxis copies the c.ne tetrahedra, c.nt triangles and c.na edges
// of the pre-pass mesh into n new blocks, block imir+1 being the image of
// the original block through the point block imir+1 built by reflectAxis.
// A copy whose vertices all map onto duplicate points lies on a mirror
// plane and is discarded in place (left as a deleted slot).
//
// A reflection reverses orientation: tetrahedra swap their last two
// vertices on even imir, triangles and edges swap on odd imir.
func replicateAxis(m *Mesh, canon []int, c blockCounts, n int) error {
	if n == 0 {
		return nil
	}
	grown, ok := c.scale(n + 1)
	if !ok {
		return ErrMemory
	}
	if err := m.reserve(grown); err != nil {
		return err
	}
	m.Tetras.SetLen(grown.ne)
	m.Trias.SetLen(grown.nt)
	m.Edges.SetLen(grown.na)

	pts := m.Points
	// image returns the canonical index of the mirrored image of v in
	// block imir+1 and whether that image is a new point.
	image := func(v, imir int) (int, bool) {
		w := v + (imir+1)*c.np
		return canon[w], pts.At(w).Tag&TagDuplicate == 0
	}

	for imir := 0; imir < n; imir++ {
		for k := 1; k <= c.ne; k++ {
			t := m.Tetras.Get(k)
			if !t.Deleted() {
				keep := false
				for i, v := range t.V {
					w, fresh := image(v, imir)
					t.V[i] = w
					keep = keep || fresh
				}
				if !keep {
					t = Tetra{}
				} else if imir%2 == 0 {
					t.V[2], t.V[3] = t.V[3], t.V[2]
				}
			}
			m.Tetras.Set((imir+1)*c.ne+k, t)
		}

		for k := 1; k <= c.nt; k++ {
			t := m.Trias.Get(k)
			if !t.Deleted() {
				keep := false
				for i, v := range t.V {
					w, fresh := image(v, imir)
					t.V[i] = w
					keep = keep || fresh
				}
				if !keep {
					t = Tria{}
				} else if imir%2 == 1 {
					t.V[1], t.V[2] = t.V[2], t.V[1]
				}
			}
			m.Trias.Set((imir+1)*c.nt+k, t)
		}

		for k := 1; k <= c.na; k++ {
			e := m.Edges.Get(k)
			if !e.Deleted() {
				keep := false
				for i, v := range e.V {
					w, fresh := image(v, imir)
					e.V[i] = w
					keep = keep || fresh
				}
				if !keep {
					e = Edge{}
				} else if imir%2 == 1 {
					e.V[0], e.V[1] = e.V[1], e.V[0]
				}
			}
			m.Edges.Set((imir+1)*c.na+k, e)
		}
	}
	return nil
}
