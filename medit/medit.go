// Package medit reads and writes volumetric meshes in the Medit ASCII
// ".mesh" format.
//
// Supported keywords are MeshVersionFormatted, Dimension (3 only),
// Vertices, Tetrahedra, Triangles, Edges, Corners, RequiredVertices,
// Ridges, RequiredEdges and End. Comments start with '#'. Sections that
// carry no information mirrored by meshmirror, such as Normals, Tangents
// and the required element lists, are skipped on read.
package medit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/soypat/meshmirror"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrFormat is wrapped by all errors caused by malformed input.
var ErrFormat = errors.New("malformed mesh file")

// skipped maps the keywords of ignored sections to the number of fields
// in each of their records.
var skipped = map[string]int{
	"RequiredTriangles":        1,
	"RequiredTetrahedra":       1,
	"Normals":                  3,
	"NormalAtVertices":         2,
	"NormalAtTriangleVertices": 3,
	"Tangents":                 3,
	"TangentAtVertices":        2,
	"TangentAtEdges":           3,
}

// ReadFile reads the mesh file at path.
func ReadFile(path string) (*meshmirror.Mesh, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	m, err := Read(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteFile writes m to a new file at path.
func WriteFile(path string, m *meshmirror.Mesh) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	err = Write(fp, m)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

// Read parses a Medit mesh. Indices in the file are validated against the
// number of vertices read.
func Read(r io.Reader) (*meshmirror.Mesh, error) {
	sc := newScanner(r)
	m := meshmirror.NewMesh()
	var corners, required, ridges, reqEdges []int
	for {
		kw, err := sc.word()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		switch kw {
		case "End":
			return finish(m, corners, required, ridges, reqEdges)
		case "MeshVersionFormatted":
			if _, err := sc.int(); err != nil {
				return nil, err
			}
		case "Dimension":
			dim, err := sc.int()
			if err != nil {
				return nil, err
			}
			if dim != 3 {
				return nil, sc.errorf("dimension %d not supported", dim)
			}
		case "Vertices":
			err = sc.records(func() error {
				x, ref, err := sc.vertex()
				if err != nil {
					return err
				}
				_, err = m.AddPoint(x, ref)
				return err
			})
		case "Tetrahedra":
			err = sc.records(func() error {
				var v [4]int
				ref, err := sc.ints(v[:])
				if err != nil {
					return err
				}
				_, err = m.AddTetra(v, ref)
				return err
			})
		case "Triangles":
			err = sc.records(func() error {
				var v [3]int
				ref, err := sc.ints(v[:])
				if err != nil {
					return err
				}
				_, err = m.AddTria(v, ref)
				return err
			})
		case "Edges":
			err = sc.records(func() error {
				var v [2]int
				ref, err := sc.ints(v[:])
				if err != nil {
					return err
				}
				_, err = m.AddEdge(v[0], v[1], ref)
				return err
			})
		case "Corners":
			corners, err = sc.indexList(corners)
		case "RequiredVertices":
			required, err = sc.indexList(required)
		case "Ridges":
			ridges, err = sc.indexList(ridges)
		case "RequiredEdges":
			reqEdges, err = sc.indexList(reqEdges)
		default:
			nfield, ok := skipped[kw]
			if !ok {
				return nil, sc.errorf("unsupported keyword %q", kw)
			}
			err = sc.records(func() error {
				for i := 0; i < nfield; i++ {
					if _, err := sc.word(); err != nil {
						return sc.unexpected(err)
					}
				}
				return nil
			})
		}
		if err != nil {
			return nil, err
		}
	}
	return finish(m, corners, required, ridges, reqEdges)
}

// finish validates element references and applies tag lists.
func finish(m *meshmirror.Mesh, corners, required, ridges, reqEdges []int) (*meshmirror.Mesh, error) {
	np, na := m.Points.Len(), m.Edges.Len()
	for _, c := range [...]struct {
		name string
		idx  []int
		max  int
		tag  meshmirror.Tag
		edge bool
	}{
		{"Corners", corners, np, meshmirror.TagCorner, false},
		{"RequiredVertices", required, np, meshmirror.TagRequired, false},
		{"Ridges", ridges, na, meshmirror.TagRidge, true},
		{"RequiredEdges", reqEdges, na, meshmirror.TagRequired, true},
	} {
		for _, i := range c.idx {
			if i < 1 || i > c.max {
				return nil, fmt.Errorf("%s index %d out of range [1,%d]: %w", c.name, i, c.max, ErrFormat)
			}
			if c.edge {
				m.Edges.At(i).Tag |= c.tag
			} else {
				m.Points.At(i).Tag |= c.tag
			}
		}
	}
	if err := m.Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", err, ErrFormat)
	}
	return m, nil
}

// Write writes the live entities of m. Unused points are skipped and the
// remaining points renumbered densely.
func Write(w io.Writer, m *meshmirror.Mesh) error {
	perm, np := m.Renumber()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "MeshVersionFormatted 2\n\nDimension 3\n\n")

	fmt.Fprintf(bw, "Vertices\n%d\n", np)
	var corners, required []int
	for i := 1; i <= m.Points.Len(); i++ {
		p := m.Points.At(i)
		if perm[i] == 0 {
			continue
		}
		fmt.Fprintf(bw, "%s %s %s %d\n", ftoa(p.X.X), ftoa(p.X.Y), ftoa(p.X.Z), p.Ref)
		if p.Tag&meshmirror.TagCorner != 0 {
			corners = append(corners, perm[i])
		}
		if p.Tag&meshmirror.TagRequired != 0 {
			required = append(required, perm[i])
		}
	}

	if n := m.Tetras.Count(); n > 0 {
		fmt.Fprintf(bw, "\nTetrahedra\n%d\n", n)
		for i := 1; i <= m.Tetras.Len(); i++ {
			t := m.Tetras.At(i)
			if t.Deleted() {
				continue
			}
			fmt.Fprintf(bw, "%d %d %d %d %d\n", perm[t.V[0]], perm[t.V[1]], perm[t.V[2]], perm[t.V[3]], t.Ref)
		}
	}
	if n := m.Trias.Count(); n > 0 {
		fmt.Fprintf(bw, "\nTriangles\n%d\n", n)
		for i := 1; i <= m.Trias.Len(); i++ {
			t := m.Trias.At(i)
			if t.Deleted() {
				continue
			}
			fmt.Fprintf(bw, "%d %d %d %d\n", perm[t.V[0]], perm[t.V[1]], perm[t.V[2]], t.Ref)
		}
	}
	var ridges, reqEdges []int
	if n := m.Edges.Count(); n > 0 {
		fmt.Fprintf(bw, "\nEdges\n%d\n", n)
		k := 0
		for i := 1; i <= m.Edges.Len(); i++ {
			e := m.Edges.At(i)
			if e.Deleted() {
				continue
			}
			k++
			fmt.Fprintf(bw, "%d %d %d\n", perm[e.V[0]], perm[e.V[1]], e.Ref)
			if e.Tag&meshmirror.TagRidge != 0 {
				ridges = append(ridges, k)
			}
			if e.Tag&meshmirror.TagRequired != 0 {
				reqEdges = append(reqEdges, k)
			}
		}
	}
	writeIndexList(bw, "Corners", corners)
	writeIndexList(bw, "RequiredVertices", required)
	writeIndexList(bw, "Ridges", ridges)
	writeIndexList(bw, "RequiredEdges", reqEdges)
	fmt.Fprintf(bw, "\nEnd\n")
	return bw.Flush()
}

func writeIndexList(w io.Writer, kw string, idx []int) {
	if len(idx) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n%d\n", kw, len(idx))
	for _, i := range idx {
		fmt.Fprintf(w, "%d\n", i)
	}
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// scanner splits a mesh file into whitespace separated words and keeps
// track of the line for error messages.
type scanner struct {
	sc    *bufio.Scanner
	words []string
	line  int
}

func newScanner(r io.Reader) *scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &scanner{sc: sc}
}

func (s *scanner) word() (string, error) {
	for len(s.words) == 0 {
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		s.line++
		line := s.sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		s.words = strings.Fields(line)
	}
	w := s.words[0]
	s.words = s.words[1:]
	return w, nil
}

func (s *scanner) int() (int, error) {
	w, err := s.word()
	if err != nil {
		return 0, s.unexpected(err)
	}
	i, err := strconv.Atoi(w)
	if err != nil {
		return 0, s.errorf("want integer, got %q", w)
	}
	return i, nil
}

func (s *scanner) float() (float64, error) {
	w, err := s.word()
	if err != nil {
		return 0, s.unexpected(err)
	}
	f, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0, s.errorf("want number, got %q", w)
	}
	return f, nil
}

func (s *scanner) vertex() (x r3.Vec, ref int, err error) {
	if x.X, err = s.float(); err != nil {
		return x, 0, err
	}
	if x.Y, err = s.float(); err != nil {
		return x, 0, err
	}
	if x.Z, err = s.float(); err != nil {
		return x, 0, err
	}
	ref, err = s.int()
	return x, ref, err
}

// ints reads len(dst) indices followed by a reference.
func (s *scanner) ints(dst []int) (ref int, err error) {
	for i := range dst {
		if dst[i], err = s.int(); err != nil {
			return 0, err
		}
		if dst[i] < 1 {
			return 0, s.errorf("vertex index %d must be positive", dst[i])
		}
	}
	return s.int()
}

// records reads a count and calls fn that many times.
func (s *scanner) records(fn func() error) error {
	n, err := s.int()
	if err != nil {
		return err
	}
	if n < 0 {
		return s.errorf("negative count %d", n)
	}
	for i := 0; i < n; i++ {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (s *scanner) indexList(dst []int) ([]int, error) {
	err := s.records(func() error {
		i, err := s.int()
		dst = append(dst, i)
		return err
	})
	return dst, err
}

func (s *scanner) unexpected(err error) error {
	if err == io.EOF {
		return s.errorf("unexpected end of file")
	}
	return err
}

func (s *scanner) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s: %w", s.line, fmt.Sprintf(format, args...), ErrFormat)
}
