package docaccel

// CoverageEntry records the routing outcome of one element in a shape
// meant for diagnostics.
type CoverageEntry struct {
	Element    Element
	Status     RouteStatus
	RendererID string // empty when unsupported
	Reason     string // set only when unsupported
}

// CoverageReport is the diagnostic view of a routing pass: one entry per
// element in input order, plus aggregate counts.
type CoverageReport struct {
	Entries []CoverageEntry
	Summary PlanStats
}

// CoverageReport routes every element and records the outcome for
// diagnostics. It performs the same traversal as PlanRender, so its
// summary always agrees with the corresponding plan's stats.
func (r *Registry) CoverageReport(elements []Element) CoverageReport {
	report := CoverageReport{
		Entries: make([]CoverageEntry, 0, len(elements)),
		Summary: PlanStats{Total: len(elements)},
	}
	for _, e := range elements {
		v := r.Route(e)
		entry := CoverageEntry{Element: e, Status: v.Status}
		switch v.Status {
		case StatusImmediate:
			entry.RendererID = v.Renderer.ID
			report.Summary.Immediate++
		case StatusDeferred:
			entry.RendererID = v.Renderer.ID
			report.Summary.Deferred++
		case StatusUnsupported:
			entry.Reason = v.Reason
			report.Summary.Unsupported++
		}
		report.Entries = append(report.Entries, entry)
	}
	return report
}
