package path

import (
	"github.com/hyphacoop/go-dagcbor/value"
)

// Get parses the path and evaluates it against v. The second return is
// false when the path resolves to nothing.
func Get(v value.Value, path string) (value.Value, bool) {
	return Eval(v, Parse(path))
}

// Eval walks v by the given steps. A key step on a map descends into the
// first entry with that key; an index step on an array descends into that
// element; a wildcard on a map or array evaluates the remaining steps
// against every child and collects the present results into a fresh array,
// so a wildcard that matched a map or array is always present even when the
// collected array is empty. Any other step/value pairing is absent.
//
// A wildcard result is an array, so a later step applies to the collected
// elements one level deep; chained wildcards flatten one level each, not
// recursively.
func Eval(v value.Value, steps []Step) (value.Value, bool) {
	if len(steps) == 0 {
		return v, true
	}
	step, rest := steps[0], steps[1:]
	switch step.Kind {
	case StepKey:
		child, ok := v.Lookup(step.Key)
		if !ok {
			return value.Value{}, false
		}
		return Eval(child, rest)
	case StepIndex:
		child, ok := v.Index(step.Index)
		if !ok {
			return value.Value{}, false
		}
		return Eval(child, rest)
	case StepWildcard:
		var children []value.Value
		switch v.Kind() {
		case value.KindMap:
			entries, _ := v.Map()
			children = make([]value.Value, len(entries))
			for i, e := range entries {
				children[i] = e.Value
			}
		case value.KindArray:
			children, _ = v.Array()
		default:
			return value.Value{}, false
		}
		results := make([]value.Value, 0, len(children))
		for _, c := range children {
			if r, ok := Eval(c, rest); ok {
				results = append(results, r)
			}
		}
		return value.NewArray(results...), true
	default:
		return value.Value{}, false
	}
}
