// SPDX-License-Identifier: MPL-2.0

package scripttree

import "errors"

// SkipChildren can be returned from a WalkFunc to skip the children of the
// group being visited.
var SkipChildren = errors.New("skip children") //nolint:revive,errname // mirrors fs.SkipDir

type (
	// Tree is the ordered root level of a grouped script set.
	Tree []Node

	// WalkFunc is called for every node in pre-order. path holds the labels of
	// the groups enclosing n, outermost first.
	WalkFunc func(path []string, n Node) error
)

// Walk visits every node of t in pre-order. Returning SkipChildren from fn on
// a group skips its children; any other error stops the walk and is returned.
func (t Tree) Walk(fn WalkFunc) error {
	return walk(t, nil, fn)
}

func walk(nodes []Node, path []string, fn WalkFunc) error {
	for _, n := range nodes {
		err := fn(path, n)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if g, ok := n.(*Group); ok {
			childPath := append(path[:len(path):len(path)], g.Label)
			if err := walk(g.Children, childPath, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Leaves returns every leaf of t, depth-first in tree order.
func (t Tree) Leaves() []*Leaf {
	var leaves []*Leaf
	_ = t.Walk(func(_ []string, n Node) error {
		if l, ok := n.(*Leaf); ok {
			leaves = append(leaves, l)
		}
		return nil
	})
	return leaves
}

// Len returns the number of leaves in t.
func (t Tree) Len() int {
	return len(t.Leaves())
}

// Find returns the leaf whose FullName is name.
func (t Tree) Find(name string) (*Leaf, bool) {
	for _, l := range t.Leaves() {
		if l.FullName == name {
			return l, true
		}
	}
	return nil, false
}
