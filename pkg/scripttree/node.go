// SPDX-License-Identifier: MPL-2.0

package scripttree

type (
	// Node is either a *Leaf or a *Group. No other implementations exist.
	Node interface {
		node()
	}

	// Leaf is a single runnable script at its position in the tree.
	Leaf struct {
		// Label is the display name at this position. It differs from FullName
		// for nested scripts and for collapsed single-script groups.
		Label string
		// FullName is the declared script key, unique across the tree.
		FullName string
		// Command is the raw command string.
		Command string
	}

	// Group holds the scripts sharing a common name segment.
	Group struct {
		// Label is the shared segment.
		Label string
		// Children are ordered by the first occurrence of their own segment.
		Children []Node
	}
)

func (*Leaf) node()  {}
func (*Group) node() {}

// Label returns the display label of n, or "" for nil.
func Label(n Node) string {
	switch v := n.(type) {
	case *Leaf:
		return v.Label
	case *Group:
		return v.Label
	default:
		return ""
	}
}

// withLabel returns a copy of l carrying a new label. Leaves are never
// modified once built.
func (l *Leaf) withLabel(label string) *Leaf {
	return &Leaf{Label: label, FullName: l.FullName, Command: l.Command}
}
