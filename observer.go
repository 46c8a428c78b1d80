package meshmirror

import "fmt"

// Axis is a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Phase identifies a stage of the mirror operation.
type Phase int

const (
	// PhaseReflect reflects the points along one axis.
	PhaseReflect Phase = iota
	// PhaseReplicate copies tetrahedra, triangles and edges along one axis.
	PhaseReplicate
	// PhaseCompact removes discarded elements. Its axis is meaningless.
	PhaseCompact
)

func (p Phase) String() string {
	switch p {
	case PhaseReflect:
		return "reflect"
	case PhaseReplicate:
		return "replicate"
	case PhaseCompact:
		return "compact"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Observer is notified around every phase of a mirror operation.
// It must not modify the mesh.
type Observer interface {
	BeforePhase(p Phase, axis Axis, m *Mesh)
	AfterPhase(p Phase, axis Axis, m *Mesh)
}

type nopObserver struct{}

func (nopObserver) BeforePhase(Phase, Axis, *Mesh) {}
func (nopObserver) AfterPhase(Phase, Axis, *Mesh)  {}
