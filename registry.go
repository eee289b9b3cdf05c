package docaccel

import "fmt"

// RouteStatus is the readiness tier of a routing outcome.
type RouteStatus int

const (
	// StatusImmediate means a built-in renderer can draw the element now.
	StatusImmediate RouteStatus = iota

	// StatusDeferred means a renderer exists but its accelerator module
	// must be loaded first.
	StatusDeferred

	// StatusUnsupported means no registered renderer matches the element.
	StatusUnsupported
)

// String returns the wire name of the status.
func (s RouteStatus) String() string {
	switch s {
	case StatusImmediate:
		return "immediate"
	case StatusDeferred:
		return "deferred"
	case StatusUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Verdict is the routing outcome for a single element.
type Verdict struct {
	// Renderer is the winning descriptor. Nil when Status is
	// StatusUnsupported.
	Renderer *Descriptor

	// Status is the readiness tier of the winning renderer.
	Status RouteStatus

	// Reason explains an unsupported verdict, naming the element kind.
	// Empty otherwise.
	Reason string
}

// Registry matches document elements against registered renderer
// descriptors and produces render plans and coverage reports.
//
// A Registry is an explicit value owned by the caller: independent rendering
// sessions construct independent registries and never share capability
// tables. Registration is expected to happen up front; Route, PlanRender and
// CoverageReport take no locks and assume single-writer/many-reader
// discipline enforced by the caller.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a descriptor to the table. Beyond requiring a callable
// predicate it performs no validation; duplicate IDs are permitted.
// A descriptor with a nil predicate is registered but never matches.
func (r *Registry) Register(d Descriptor) {
	if d.CanRender == nil {
		d.CanRender = neverRender
	}
	r.descriptors = append(r.descriptors, d)
}

func neverRender(Element) bool { return false }

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Route finds the best renderer for one element.
//
// Every descriptor's predicate is evaluated; among the matches the one with
// the strictly greatest priority wins. The comparison is > rather than >=,
// so the first-registered descriptor wins exact-priority ties. With no
// match the verdict is unsupported, with a reason naming the element kind.
//
// Route is a pure function of the immutable descriptor table: two calls
// with no intervening Register return identical verdicts.
func (r *Registry) Route(e Element) Verdict {
	var best *Descriptor
	for i := range r.descriptors {
		d := &r.descriptors[i]
		if !d.CanRender(e) {
			continue
		}
		if best == nil || d.Priority > best.Priority {
			best = d
		}
	}
	if best == nil {
		return Verdict{
			Status: StatusUnsupported,
			Reason: fmt.Sprintf("no renderer registered for element kind %q", e.Kind()),
		}
	}
	status := StatusImmediate
	if best.Kind == KindDeferred {
		status = StatusDeferred
	}
	return Verdict{Renderer: best, Status: status}
}
