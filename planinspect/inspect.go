package planinspect

import "github.com/sqlcoord/dynfilter/domain"

// Produced returns the set of filter IDs declared on any join node in plan.
func Produced(plan Node) map[domain.FilterId]struct{} {
	out := make(map[domain.FilterId]struct{})
	walk(plan, func(n Node) {
		if j, ok := n.(*Join); ok && j.HasFilter {
			out[j.FilterID] = struct{}{}
		}
	})
	return out
}

// Consumed returns the set of filter IDs referenced in any scan-filter
// expression in plan.
func Consumed(plan Node) map[domain.FilterId]struct{} {
	out := make(map[domain.FilterId]struct{})
	walk(plan, func(n Node) {
		switch t := n.(type) {
		case *Scan:
			addAll(out, t.Consumes)
		case *Filter:
			addAll(out, t.Consumes)
		}
	})
	return out
}

// Replicated returns the filter IDs declared on join nodes whose build side
// is broadcast (replicated) to every probe task.
func Replicated(plan Node) map[domain.FilterId]struct{} {
	out := make(map[domain.FilterId]struct{})
	walk(plan, func(n Node) {
		if j, ok := n.(*Join); ok && j.HasFilter && j.Replicated {
			out[j.FilterID] = struct{}{}
		}
	})
	return out
}

// Lazy returns produced(fragment) \ consumed(fragment): filter IDs whose
// producer and consumer do not live in the same fragment. For a plan with
// multiple fragments, Lazy is the union of each fragment's own lazy set,
// computed independently per fragment so a filter produced in one fragment
// and consumed in another is lazy, while a filter produced and consumed in
// the same fragment is excluded.
func Lazy(fragments []*Fragment) map[domain.FilterId]struct{} {
	out := make(map[domain.FilterId]struct{})
	for _, f := range fragments {
		produced := Produced(f)
		consumed := Consumed(f)
		for id := range produced {
			if _, ok := consumed[id]; !ok {
				out[id] = struct{}{}
			}
		}
	}
	return out
}

func addAll(out map[domain.FilterId]struct{}, ids []domain.FilterId) {
	for _, id := range ids {
		out[id] = struct{}{}
	}
}

func walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children() {
		walk(c, visit)
	}
}
