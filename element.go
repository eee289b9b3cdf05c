package docaccel

// Element is a structural element extracted from a parsed document.
//
// The registry itself inspects nothing beyond the discriminant kind;
// descriptor predicates are free to type-assert to richer element types and
// read whatever they need.
type Element interface {
	// Kind returns the element's discriminant (e.g. "rect", "chart", "table").
	Kind() string
}
