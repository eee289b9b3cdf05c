package docaccel

// DefaultModuleID is recorded for deferred plan entries whose winning
// descriptor does not name an accelerator module.
const DefaultModuleID = "unknown"

// PlannedRender pairs an element with the immediate renderer chosen for it.
type PlannedRender struct {
	Element  Element
	Renderer *Descriptor
}

// DeferredRender pairs an element with a deferred renderer and the
// accelerator module that renderer needs.
type DeferredRender struct {
	Element        Element
	Renderer       *Descriptor
	ModuleID       string
	EstimatedBytes int64
}

// UnsupportedElement records an element no registered renderer can draw.
type UnsupportedElement struct {
	Element Element
	Reason  string
}

// PlanStats aggregates bucket sizes of a plan or coverage report.
type PlanStats struct {
	Total       int
	Immediate   int
	Deferred    int
	Unsupported int
}

// RenderPlan is the categorized routing outcome for a batch of elements.
//
// Invariant: Stats.Total equals the input length and the sum of the three
// bucket lengths, and each bucket holds exactly the elements whose verdict
// matches it.
type RenderPlan struct {
	Immediate   []PlannedRender
	Deferred    []DeferredRender
	Unsupported []UnsupportedElement
	Stats       PlanStats
}

// DeferredModuleIDs returns the distinct accelerator module ids the plan
// defers on, in first-appearance order. The hosting pipeline typically
// feeds these to the loader, then registers upgraded descriptors and plans
// again as each module becomes ready.
func (p *RenderPlan) DeferredModuleIDs() []string {
	var ids []string
	seen := make(map[string]struct{}, len(p.Deferred))
	for _, d := range p.Deferred {
		if _, ok := seen[d.ModuleID]; ok {
			continue
		}
		seen[d.ModuleID] = struct{}{}
		ids = append(ids, d.ModuleID)
	}
	return ids
}

// PlanRender routes every element and buckets the verdicts.
//
// Deferred entries default ModuleID to DefaultModuleID and EstimatedBytes
// to zero when the winning descriptor omits them.
//
// Routing is a pure function of the immutable descriptor table, so after
// the table grows (a capability upgrade) the caller simply plans again and
// discards the old plan; no diffing against the previous plan is needed.
func (r *Registry) PlanRender(elements []Element) RenderPlan {
	plan := RenderPlan{Stats: PlanStats{Total: len(elements)}}
	for _, e := range elements {
		v := r.Route(e)
		switch v.Status {
		case StatusImmediate:
			plan.Immediate = append(plan.Immediate, PlannedRender{
				Element:  e,
				Renderer: v.Renderer,
			})
			plan.Stats.Immediate++
		case StatusDeferred:
			moduleID := v.Renderer.ModuleID
			if moduleID == "" {
				moduleID = DefaultModuleID
			}
			plan.Deferred = append(plan.Deferred, DeferredRender{
				Element:        e,
				Renderer:       v.Renderer,
				ModuleID:       moduleID,
				EstimatedBytes: v.Renderer.EstimatedBytes,
			})
			plan.Stats.Deferred++
		case StatusUnsupported:
			plan.Unsupported = append(plan.Unsupported, UnsupportedElement{
				Element: e,
				Reason:  v.Reason,
			})
			plan.Stats.Unsupported++
		}
	}
	return plan
}
