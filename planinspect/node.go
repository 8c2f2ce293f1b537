// Package planinspect provides pure, side-effect-free queries over an
// already-analyzed plan tree: which dynamic filters it produces, which
// scan-filter expressions consume them, which producing joins are
// replicated (broadcast) builds, and which filters are lazy (produced in a
// different fragment than they are consumed).
//
// Query planning itself is out of scope; these helpers only read a plan
// tree that planning has already built.
package planinspect

import "github.com/sqlcoord/dynfilter/domain"

// Node is the polymorphic plan-tree element that Produced/Consumed/
// Replicated/Lazy traverse. Visitors must not mutate the tree.
type Node interface {
	node()
	Children() []Node
}

// Join is a join node that may declare one dynamic filter built from its
// build side and applied, elsewhere in the plan, to its probe side.
type Join struct {
	FilterID   domain.FilterId
	HasFilter  bool // a join with no dynamic filter just sets HasFilter=false
	Replicated bool // true when the build side is broadcast to all probe tasks
	Build      Node
	Probe      Node
}

func (*Join) node()               {}
func (j *Join) Children() []Node   { return []Node{j.Build, j.Probe} }

// Scan is a leaf node reading from a source, optionally filtered by
// previously-produced dynamic filters.
type Scan struct {
	Consumes []domain.FilterId // filter IDs referenced in this scan's filter expression
}

func (*Scan) node()             {}
func (s *Scan) Children() []Node { return nil }

// Filter is a non-scan filter node (e.g. a post-join residual predicate)
// that may also reference dynamic filters.
type Filter struct {
	Consumes []domain.FilterId
	Input    Node
}

func (*Filter) node()             {}
func (f *Filter) Children() []Node { return []Node{f.Input} }

// Exchange marks a stage boundary: data crosses it between distinct tasks
// of possibly-distinct stages. It does not itself produce or consume
// filters. Lazy does not split a tree at an Exchange: it is given the
// fragments explicitly, and traversal passes through an Exchange into its
// input.
type Exchange struct {
	Input Node
}

func (*Exchange) node()             {}
func (e *Exchange) Children() []Node { return []Node{e.Input} }

// Fragment groups the nodes that execute together within one stage. A
// filter produced and consumed within the same Fragment is not lazy: a
// scan in the fragment blocking on its own fragment's build side would
// deadlock the fragment.
type Fragment struct {
	Root Node
}

func (*Fragment) node()             {}
func (f *Fragment) Children() []Node { return []Node{f.Root} }
