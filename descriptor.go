package docaccel

// RendererKind classifies a renderer's readiness tier.
type RendererKind int

const (
	// KindImmediate renderers draw with built-in code paths and need no
	// preparation.
	KindImmediate RendererKind = iota

	// KindDeferred renderers need an accelerator module fetched and
	// compiled before they can draw.
	KindDeferred
)

// String returns the wire name of the kind.
func (k RendererKind) String() string {
	switch k {
	case KindImmediate:
		return "immediate"
	case KindDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Descriptor declares one renderer's capability: a predicate over elements,
// a priority for conflict resolution, and metadata for deferred renderers.
//
// Descriptors are immutable once registered. Registering a second descriptor
// with the same ID is permitted and is the capability-upgrade mechanism: the
// new descriptor competes on priority, it never replaces the old one.
type Descriptor struct {
	// ID identifies the renderer (e.g. "sw-rect", "wasm-chart").
	ID string

	// Kind reports whether the renderer draws immediately or needs an
	// accelerator module loaded first.
	Kind RendererKind

	// CanRender reports whether this renderer can draw the given element.
	CanRender func(Element) bool

	// Priority breaks ties between matching descriptors. Higher wins; on an
	// exact tie the first-registered descriptor wins.
	Priority int

	// ModuleID names the accelerator module a deferred renderer needs.
	// Required for KindDeferred, ignored otherwise.
	ModuleID string

	// EstimatedBytes is the expected download size of the accelerator
	// module, surfaced to progress UIs. Optional.
	EstimatedBytes int64
}
