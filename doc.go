// Package docaccel is the capability-negotiation and on-demand-acceleration
// layer of a GoGPU-based document rendering engine.
//
// # Overview
//
// For every structural element extracted from a parsed document, docaccel
// decides whether the element can be drawn immediately by a built-in
// renderer, needs a supplementary accelerator module fetched and compiled
// first, or has no renderer at all. The loader subpackage owns the machinery
// that resolves, caches and instantiates accelerator modules, so the rest of
// the rendering pipeline never blocks on network I/O.
//
// # Quick Start
//
//	reg := docaccel.NewRegistry()
//	reg.Register(docaccel.Descriptor{
//	    ID:        "sw-rect",
//	    Kind:      docaccel.KindImmediate,
//	    Priority:  1,
//	    CanRender: func(e docaccel.Element) bool { return e.Kind() == "rect" },
//	})
//
//	plan := reg.PlanRender(elements)
//	// Render plan.Immediate now; hand plan.DeferredModuleIDs() to the
//	// loader, register upgraded descriptors as modules become ready, and
//	// plan again.
//
// # Architecture
//
// The module is organized into:
//   - Public API: Registry, Descriptor, Verdict, RenderPlan, CoverageReport
//   - loader: three-tier accelerator module loading (memory, persistent
//     storage, network) with progress reporting and request de-duplication
//   - manifest: the static description of loadable accelerator modules
//
// # Capability Upgrades
//
// When an accelerator module finishes loading, the hosting pipeline models
// the new capability by registering an additional, higher-priority immediate
// descriptor and re-planning the affected elements. Previously produced
// plans are simply discarded; nothing is patched in place.
package docaccel

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
