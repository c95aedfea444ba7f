// SPDX-License-Identifier: MPL-2.0

package scripttree

import (
	"slices"
	"strings"
)

// pendingScript is a script whose name has been partly consumed by the
// groups above it.
type pendingScript struct {
	script    Script
	remainder string
}

// Build groups scripts into a tree using sep.
//
// The separator and the uniqueness of script names are validated first; an
// empty separator yields an *InvalidSeparatorError and a repeated name a
// *DuplicateScriptError. Once validated, grouping always succeeds. An empty
// input yields an empty tree.
func Build(scripts []Script, sep Separator) (Tree, error) {
	if valid, errs := sep.IsValid(); !valid {
		return nil, errs[0]
	}
	if err := CheckUnique(scripts); err != nil {
		return nil, err
	}

	pending := make([]pendingScript, len(scripts))
	for i, s := range scripts {
		pending[i] = pendingScript{script: s, remainder: s.Name}
	}
	return partition(pending, string(sep)), nil
}

// partition buckets scripts by the segment before the first separator of
// their remainder and emits the bucket results in first-occurrence order.
func partition(scripts []pendingScript, sep string) Tree {
	var keys []string
	buckets := make(map[string][]pendingScript)
	for _, p := range scripts {
		key, rest, _ := strings.Cut(p.remainder, sep)
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], pendingScript{script: p.script, remainder: rest})
	}

	out := make(Tree, 0, len(keys))
	for _, key := range keys {
		out = append(out, emitBucket(key, buckets[key], sep)...)
	}
	return out
}

// emitBucket turns the members sharing key into at most one exact-match leaf
// followed by either a group, a collapsed leaf, or nothing.
//
// The exact match is the first member with nothing left after key. Names are
// unique, so at most "x" and "x"+sep qualify; the second one stays in rest
// and collapses back to its full name.
func emitBucket(key string, members []pendingScript, sep string) []Node {
	var out []Node

	rest := members
	if i := slices.IndexFunc(members, func(p pendingScript) bool { return p.remainder == "" }); i >= 0 {
		exact := members[i].script
		out = append(out, &Leaf{Label: key, FullName: exact.Name, Command: exact.Command})
		rest = slices.Delete(slices.Clone(members), i, i+1)
	}

	switch len(rest) {
	case 0:
	case 1:
		// A lone script partitions into exactly one leaf; re-attach the key
		// instead of wrapping it in a one-child group.
		child := partition(rest, sep)[0].(*Leaf)
		out = append(out, child.withLabel(key+sep+child.Label))
	default:
		out = append(out, &Group{Label: key, Children: partition(rest, sep)})
	}
	return out
}
