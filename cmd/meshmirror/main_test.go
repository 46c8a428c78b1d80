package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/meshmirror"
	"github.com/soypat/meshmirror/medit"
	"github.com/soypat/meshmirror/unitcell"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRunUnitCell(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "block.mesh")
	stl := filepath.Join(dir, "block.stl")
	prom := filepath.Join(dir, "metrics.prom")
	status := run([]string{"-v", "2", "-unitcell", "1,1,1,0.5", "-nx", "1", "-ny", "1", "-nz", "1",
		"-check", "-out", out, "-stl", stl, "-metrics", prom})
	if status != int(meshmirror.Success) {
		t.Fatalf("exit status %d", status)
	}
	m, err := medit.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if m.Points.Len() != 333 || m.Tetras.Len() != 8*144 {
		t.Errorf("unexpected output size: %d points %d tetrahedra", m.Points.Len(), m.Tetras.Len())
	}
	if got, want := m.Bounds(), (r3.Box{Max: r3.Vec{X: 2, Y: 2, Z: 2}}); got != want {
		t.Errorf("want bounds %v, got %v", want, got)
	}
	if fi, err := os.Stat(stl); err != nil || fi.Size() <= 84 {
		t.Errorf("STL not written: %v", err)
	}
	b, err := os.ReadFile(prom)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "meshmirror_phase_duration_seconds") {
		t.Errorf("metrics file lacks phase durations:\n%s", b)
	}
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "never.mesh")
	for _, test := range []struct {
		name string
		args []string
	}{
		{"no input", []string{"-out", out}},
		{"both inputs", []string{"-in", "x.mesh", "-unitcell", "1,1,1,0.5", "-out", out}},
		{"missing file", []string{"-in", filepath.Join(dir, "missing.mesh"), "-out", out}},
		{"bad flag", []string{"-nope"}},
		{"extra argument", []string{"-unitcell", "1,1,1,0.5", out, filepath.Join(dir, "extra.mesh")}},
	} {
		status := run(test.args)
		if status != int(meshmirror.StrongFailure) {
			t.Errorf("%s: want exit status %d, got %d", test.name, meshmirror.StrongFailure, status)
		}
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output written on failure")
	}
	status := run([]string{"-unitcell", "1,1,1,0.5", "-out", filepath.Join(dir, "nodir", "x.mesh")})
	if status != int(meshmirror.StrongFailure) {
		t.Errorf("unwritable output: want exit status %d, got %d", meshmirror.StrongFailure, status)
	}
}

func TestRunRejectedMirrorSavesInput(t *testing.T) {
	dir := t.TempDir()
	for _, test := range []struct {
		name string
		cell string
		args []string
	}{
		{"negative count", "1,1,1,0.5", []string{"-ny", "-1"}},
		{"memory", "1,1,1,0.1", []string{"-nx", "3", "-m", "1"}},
	} {
		box, res, err := parseCell(test.cell)
		if err != nil {
			t.Fatal(err)
		}
		want, err := unitcell.BCC(box, res)
		if err != nil {
			t.Fatal(err)
		}
		out := filepath.Join(dir, strings.ReplaceAll(test.name, " ", "_")+".mesh")
		args := append([]string{"-v", "0", "-unitcell", test.cell, "-out", out}, test.args...)
		status := run(args)
		if status != int(meshmirror.LowFailure) {
			t.Errorf("%s: want exit status %d, got %d", test.name, meshmirror.LowFailure, status)
			continue
		}
		got, err := medit.ReadFile(out)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if got.Points.Len() != want.Points.Len() || got.Tetras.Len() != want.Tetras.Len() {
			t.Errorf("%s: want unchanged mesh of %d points %d tetrahedra, got %d and %d", test.name,
				want.Points.Len(), want.Tetras.Len(), got.Points.Len(), got.Tetras.Len())
		}
	}
}

func TestRunPositional(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cell.mesh")
	status := run([]string{"-v", "0", "-nx", "0", "-ny", "0", "-nz", "0", "-unitcell", "1,1,1,0.5", in})
	if status != int(meshmirror.Success) {
		t.Fatalf("generating input: exit status %d", status)
	}
	out := filepath.Join(dir, "block.mesh")
	// Counts default to one reflection per axis.
	status = run([]string{"-v", "0", in, out})
	if status != int(meshmirror.Success) {
		t.Fatalf("exit status %d", status)
	}
	m, err := medit.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if m.Points.Len() != 333 || m.Tetras.Len() != 8*144 {
		t.Errorf("unexpected output size: %d points %d tetrahedra", m.Points.Len(), m.Tetras.Len())
	}

	status = run([]string{"-v", "0", in})
	if status != int(meshmirror.Success) {
		t.Fatalf("default output: exit status %d", status)
	}
	if _, err := os.Stat(filepath.Join(dir, "cell.o.mesh")); err != nil {
		t.Error(err)
	}
}

func TestRunHelp(t *testing.T) {
	if status := run([]string{"-h"}); status != int(meshmirror.Success) {
		t.Errorf("want exit status 0 for help, got %d", status)
	}
}

func TestParseCell(t *testing.T) {
	box, res, err := parseCell("2, 1,0.5,0.25")
	if err != nil {
		t.Fatal(err)
	}
	if box != (r3.Box{Max: r3.Vec{X: 2, Y: 1, Z: 0.5}}) || res != 0.25 {
		t.Errorf("got %v %g", box, res)
	}
	for _, bad := range []string{"", "1,1,1", "1,1,one,0.1"} {
		if _, _, err := parseCell(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}
