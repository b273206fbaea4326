// Package linkdiff computes the minimal set of connection additions and removals that turn
// the drawn owner→resource links into the desired ones.
package linkdiff

import "sort"

// Links maps an owner id to the resource ids it links to, for one resource type.
type Links map[string][]string

// Plan is the outcome of a diff.
type Plan struct {
	ToAdd    Links
	ToRemove Links
}

// Diff compares desired with existing owner by owner. Owners present only in existing lose
// all their links. A resource listed twice in desired is linked once; a resource drawn more
// than once in existing keeps its first edge and every other one is removed. Resource order
// follows the inputs.
func Diff(desired, existing Links) Plan {
	plan := Plan{ToAdd: make(Links), ToRemove: make(Links)}

	for owner, resources := range existing {
		if _, ok := desired[owner]; !ok {
			plan.ToRemove[owner] = append([]string(nil), resources...)
		}
	}
	for owner, want := range desired {
		want = unique(want)
		have := existing[owner]
		plan.ToAdd[owner] = missing(want, have)
		plan.ToRemove[owner] = surplus(have, want)
	}
	return plan
}

// missing returns the elements of a not in b.
func missing(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, x := range b {
		in[x] = true
	}
	out := []string{}
	for _, x := range a {
		if !in[x] {
			out = append(out, x)
		}
	}
	return out
}

// surplus returns the elements of have not in want, plus every repeat of one that is.
func surplus(have, want []string) []string {
	keep := make(map[string]bool, len(want))
	for _, x := range want {
		keep[x] = true
	}
	out := []string{}
	for _, x := range have {
		if keep[x] {
			keep[x] = false
			continue
		}
		out = append(out, x)
	}
	return out
}

func unique(a []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a))
	for _, x := range a {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return p.ToAdd.Count() == 0 && p.ToRemove.Count() == 0
}

// Owners returns the owner keys of l in sorted order.
func (l Links) Owners() []string {
	out := make([]string, 0, len(l))
	for owner := range l {
		out = append(out, owner)
	}
	sort.Strings(out)
	return out
}

// Count returns the total number of resource entries.
func (l Links) Count() int {
	n := 0
	for _, resources := range l {
		n += len(resources)
	}
	return n
}

// Add appends resource to the links of owner.
func (l Links) Add(owner, resource string) {
	l[owner] = append(l[owner], resource)
}

// Clone returns a deep copy.
func (l Links) Clone() Links {
	out := make(Links, len(l))
	for owner, resources := range l {
		out[owner] = append([]string(nil), resources...)
	}
	return out
}

// Equal compares two link sets owner by owner, ignoring order but not repeats. An owner
// with no resources equals a missing owner.
func (l Links) Equal(other Links) bool {
	for _, owner := range union(l, other) {
		if !sameSet(l[owner], other[owner]) {
			return false
		}
	}
	return true
}

func union(a, b Links) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range []Links{a, b} {
		for owner := range m {
			if !seen[owner] {
				seen[owner] = true
				out = append(out, owner)
			}
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	n := make(map[string]int, len(a))
	for _, x := range a {
		n[x]++
	}
	for _, x := range b {
		if n[x] == 0 {
			return false
		}
		n[x]--
	}
	return true
}
