package decal

import "github.com/taigrr/decal/pkg/math3d"

// TriggerMode selects which transform changes cause a rebuild.
type TriggerMode int

const (
	// TriggerOnTransform rebuilds on any change of position, rotation or scale.
	TriggerOnTransform TriggerMode = iota
	// TriggerOnScale rebuilds only when the scale changes.
	TriggerOnScale
)

// String returns the mode name used in configuration.
func (m TriggerMode) String() string {
	switch m {
	case TriggerOnScale:
		return "scale"
	default:
		return "transform"
	}
}

// ParseTriggerMode converts a configuration name to a mode. Unknown names
// return TriggerOnTransform and false.
func ParseTriggerMode(s string) (TriggerMode, bool) {
	switch s {
	case "scale":
		return TriggerOnScale, true
	case "transform", "":
		return TriggerOnTransform, true
	}
	return TriggerOnTransform, false
}

// Trigger decides when a projector needs rebuilding by comparing its
// transform with the one seen on the previous check. The zero value uses
// TriggerOnTransform. A Trigger is not safe for concurrent use.
type Trigger struct {
	Mode TriggerMode

	last   math3d.Transform
	primed bool
}

// NeedsRebuild reports whether t differs from the transform passed on the
// previous call, under the trigger mode, and remembers t. The first call
// always reports true.
func (tr *Trigger) NeedsRebuild(t math3d.Transform) bool {
	if !tr.primed {
		tr.primed = true
		tr.last = t
		return true
	}

	var changed bool
	switch tr.Mode {
	case TriggerOnScale:
		changed = t.Scale != tr.last.Scale
	default:
		changed = !t.Equal(tr.last)
	}
	tr.last = t
	return changed
}

// Reset forgets the cached transform so the next check reports true.
func (tr *Trigger) Reset() {
	tr.primed = false
	tr.last = math3d.Transform{}
}
