package render_test

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/soypat/meshmirror"
	"github.com/soypat/meshmirror/internal/d3"
	"github.com/soypat/meshmirror/render"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

// mirroredTet returns the corner tetrahedron mirrored once along every axis.
func mirroredTet(t *testing.T) *meshmirror.Mesh {
	m := meshmirror.NewMesh()
	for _, p := range []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}} {
		if _, err := m.AddPoint(p, 0); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.AddTetra([4]int{1, 2, 3, 4}, 0); err != nil {
		t.Fatal(err)
	}
	for _, f := range [][3]int{{1, 3, 2}, {1, 2, 4}, {1, 4, 3}, {2, 3, 4}} {
		if _, err := m.AddTria(f, 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := meshmirror.Mirror(m, [3]int{1, 1, 1}, nil); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSTLWriteReadback(t *testing.T) {
	const tol = 1e-6
	input := render.Boundary(mirroredTet(t))
	if len(input) != 32 {
		t.Fatalf("want 32 boundary triangles, got %d", len(input))
	}
	var b bytes.Buffer
	err := render.WriteSTL(&b, input)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 84+50*len(input) {
		t.Fatalf("unexpected STL size %d", b.Len())
	}
	output, err := render.ReadSTL(&b)
	if err != nil && !errors.Is(err, render.ErrNormalMismatch) {
		t.Fatal(err)
	}
	if len(output) != len(input) {
		t.Fatal("length of triangles written/read not equal")
	}
	for i := range input {
		for j := range input[i] {
			if !d3.EqualWithin(input[i][j], output[i][j], tol) {
				t.Errorf("triangle %d vertex %d: wrote %v, read %v", i, j, input[i][j], output[i][j])
			}
		}
	}
}

func TestSTLEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
	if _, err := render.ReadSTL(bytes.NewReader(make([]byte, 84))); err == nil {
		t.Error("expected error reading STL with zero triangles")
	}
}

func TestPreviewDeterministic(t *testing.T) {
	const width, height = 96, 64
	model := render.Boundary(mirroredTet(t))
	var pngs [2][]byte
	for i := range pngs {
		img, err := render.Preview(model, width, height, render.DefaultView)
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
			t.Fatalf("want %dx%d preview, got %v", width, height, b)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		pngs[i] = buf.Bytes()
	}
	equal, err := cmpimg.EqualApprox("png", pngs[0], pngs[1], 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("two renders of the same model differ")
	}
	if _, err := render.Preview(nil, width, height, render.DefaultView); err == nil {
		t.Error("expected error previewing empty model")
	}
}
