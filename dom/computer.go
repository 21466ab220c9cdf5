package dom

import "context"

// NodeAttr marks elements whose computed styles are requested from a
// StyleComputer. Markers are removed before the resolved HTML is returned.
const NodeAttr = "data-wemd-node"

// Query asks for the computed value of Property on the element carrying
// NodeAttr equal to Node.
type Query struct {
	Node     int
	Property string
}

// StyleComputer renders an HTML fragment and reports computed styles for
// marked elements. Missing or empty values make the resolver fall back to
// textual substitution for that declaration.
type StyleComputer interface {
	ComputeStyles(ctx context.Context, fragment string, queries []Query) (map[Query]string, error)
}
