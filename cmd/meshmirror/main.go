// Command meshmirror replicates a tetrahedral Medit mesh by reflection
// across the maximum faces of its bounding box.
//
// Usage:
//
//	meshmirror [flags] filein [fileout]
//	meshmirror -in part.mesh -nx 1 -ny 2 -out block.mesh
//	meshmirror -unitcell 1,1,1,0.25 -nx 3 -ny 3 -nz 3 -stl block.stl
//
// Each count defaults to 1. The exit status is 0 on success and 1 when
// mirroring was rejected or the audit failed; the unchanged or audited
// mesh is still written in that case. Status 2 means the arguments or
// input could not be used, mirroring failed midway or the output could
// not be written, and nothing is saved after a midway failure.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/soypat/meshmirror"
	"github.com/soypat/meshmirror/medit"
	meshmetrics "github.com/soypat/meshmirror/metrics"
	"github.com/soypat/meshmirror/render"
	"github.com/soypat/meshmirror/unitcell"
	"gonum.org/v1/gonum/spatial/r3"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("meshmirror: ")
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("meshmirror", flag.ContinueOnError)
	var (
		nx      = fs.Int("nx", 1, "number of reflected copies along x")
		ny      = fs.Int("ny", 1, "number of reflected copies along y")
		nz      = fs.Int("nz", 1, "number of reflected copies along z")
		in      = fs.String("in", "", "input Medit mesh file")
		cell    = fs.String("unitcell", "", "generate the input as a BCC lattice of box `sx,sy,sz,res` instead of reading -in")
		out     = fs.String("out", "", "output Medit mesh file (default derived from input name)")
		verbose = fs.Int("v", 1, "verbosity: 0 quiet, 1 summary, 2 phase timings")
		memMB   = fs.Int64("m", 0, "memory limit in MB for mesh storage (0 is unlimited)")
		eps     = fs.Float64("eps", meshmirror.DefaultTolerance, "coincidence tolerance of reflected points")
		squared = fs.Bool("squared", false, "compare reflected points by squared euclidean distance")
		stlPath = fs.String("stl", "", "also write the mirrored boundary surface as binary STL")
		pngPath = fs.String("png", "", "also write a PNG preview of the mirrored boundary surface")
		check   = fs.Bool("check", false, "audit the mirrored mesh for invalid references and coincident points")
		metrics = fs.String("metrics", "", "write phase metrics in Prometheus text format to `file`")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: meshmirror [flags] filein [fileout]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return int(meshmirror.Success)
		}
		return int(meshmirror.StrongFailure)
	}
	pos := fs.Args()
	if *in == "" && *cell == "" && len(pos) > 0 {
		*in, pos = pos[0], pos[1:]
	}
	if *out == "" && len(pos) > 0 {
		*out, pos = pos[0], pos[1:]
	}
	if len(pos) > 0 {
		log.Printf("unexpected argument %q", pos[0])
		fs.Usage()
		return int(meshmirror.StrongFailure)
	}
	m, name, err := load(*in, *cell)
	if err != nil {
		log.Print(err)
		return int(meshmirror.StrongFailure)
	}
	if *out == "" {
		*out = strings.TrimSuffix(name, ".mesh") + ".o.mesh"
	}
	if *memMB > 0 {
		m.SetMemoryLimit(*memMB << 20)
	}
	cfg := &meshmirror.Config{Tolerance: *eps}
	if *squared {
		cfg.Coincidence = meshmirror.CoincidenceSquared
	}
	var observers multiObserver
	if *verbose > 1 {
		observers = append(observers, &logObserver{})
	}
	reg := prometheus.NewRegistry()
	if *metrics != "" {
		obs, err := meshmetrics.NewObserver(reg)
		if err != nil {
			log.Print(err)
			return int(meshmirror.StrongFailure)
		}
		observers = append(observers, obs)
	}
	if len(observers) > 0 {
		cfg.Observer = observers
	}
	if *verbose > 0 {
		log.Printf("%s: %d points, %d tetrahedra, %d triangles, %d edges",
			name, m.LivePoints(), m.Tetras.Len(), m.Trias.Len(), m.Edges.Len())
	}
	start := time.Now()
	err = meshmirror.Mirror(m, [3]int{*nx, *ny, *nz}, cfg)
	if *metrics != "" {
		if err := prometheus.WriteToTextfile(*metrics, reg); err != nil {
			log.Print(err)
		}
	}
	status := meshmirror.StatusOf(err)
	switch {
	case status == meshmirror.StrongFailure:
		log.Printf("%s: %v", status, err)
		return int(status)
	case err != nil:
		// The mesh is untouched and is saved as is.
		log.Printf("%s: %v", status, err)
	case *verbose > 0:
		log.Printf("mirrored in %s: %d points, %d tetrahedra, %d triangles, %d edges",
			time.Since(start), m.LivePoints(), m.Tetras.Len(), m.Trias.Len(), m.Edges.Len())
	}
	if *check && !audit(m, cfg) {
		status = meshmirror.LowFailure
	}
	if err := write(m, *out, *stlPath, *pngPath); err != nil {
		log.Print(err)
		return int(meshmirror.StrongFailure)
	}
	return int(status)
}

// load reads the input mesh from file or generates it from a unit cell
// description. The returned name identifies the input in logs.
func load(in, cell string) (*meshmirror.Mesh, string, error) {
	switch {
	case in != "" && cell != "":
		return nil, "", errors.New("flags -in and -unitcell are mutually exclusive")
	case cell != "":
		box, res, err := parseCell(cell)
		if err != nil {
			return nil, "", err
		}
		m, err := unitcell.BCC(box, res)
		return m, "unitcell.mesh", err
	case in != "":
		m, err := medit.ReadFile(in)
		return m, in, err
	}
	return nil, "", errors.New("no input: set filein, -in or -unitcell")
}

// parseCell parses "sx,sy,sz,res" into a box with a corner at the origin.
func parseCell(s string) (r3.Box, float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return r3.Box{}, 0, fmt.Errorf("unit cell %q: want sx,sy,sz,res", s)
	}
	var f [4]float64
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return r3.Box{}, 0, fmt.Errorf("unit cell %q: %w", s, err)
		}
		f[i] = v
	}
	return r3.Box{Max: r3.Vec{X: f[0], Y: f[1], Z: f[2]}}, f[3], nil
}

// audit logs invalid references and coincident live points. It reports
// whether the mesh passed.
func audit(m *meshmirror.Mesh, cfg *meshmirror.Config) bool {
	if err := m.Check(); err != nil {
		log.Print(err)
		return false
	}
	pos, neg, deg := m.Orientation(0)
	log.Printf("orientation: %d positive, %d negative, %d degenerate", pos, neg, deg)
	pairs := m.CoincidentPoints(cfg.Tolerance)
	for _, p := range pairs {
		log.Printf("points %d and %d coincide at %v", p[0], p[1], m.Points.At(p[0]).X)
	}
	return len(pairs) == 0
}

func write(m *meshmirror.Mesh, out, stlPath, pngPath string) error {
	if err := medit.WriteFile(out, m); err != nil {
		return err
	}
	if stlPath == "" && pngPath == "" {
		return nil
	}
	model := render.Boundary(m)
	if stlPath != "" {
		if err := render.CreateSTL(stlPath, model); err != nil {
			return fmt.Errorf("writing %s: %w", stlPath, err)
		}
	}
	if pngPath != "" {
		if err := render.SavePreview(pngPath, model, 800, 600, render.DefaultView); err != nil {
			return fmt.Errorf("writing %s: %w", pngPath, err)
		}
	}
	return nil
}

type multiObserver []meshmirror.Observer

func (mo multiObserver) BeforePhase(p meshmirror.Phase, axis meshmirror.Axis, m *meshmirror.Mesh) {
	for _, o := range mo {
		o.BeforePhase(p, axis, m)
	}
}

func (mo multiObserver) AfterPhase(p meshmirror.Phase, axis meshmirror.Axis, m *meshmirror.Mesh) {
	for _, o := range mo {
		o.AfterPhase(p, axis, m)
	}
}

// logObserver logs mesh sizes and the duration of every mirroring phase.
type logObserver struct {
	start time.Time
}

func (o *logObserver) BeforePhase(meshmirror.Phase, meshmirror.Axis, *meshmirror.Mesh) {
	o.start = time.Now()
}

func (o *logObserver) AfterPhase(p meshmirror.Phase, axis meshmirror.Axis, m *meshmirror.Mesh) {
	phase := p.String()
	if p != meshmirror.PhaseCompact {
		phase += " " + axis.String()
	}
	log.Printf("  %-12s %10s  %d points, %d tetrahedra", phase, time.Since(o.start).Round(time.Microsecond), m.Points.Len(), m.Tetras.Len())
}
