// SPDX-License-Identifier: MPL-2.0

package scripttree

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

// checkInvariants verifies the structural guarantees of a built tree against
// the scripts it was built from.
func checkInvariants(t *testing.T, in []Script, tree Tree, sep Separator) {
	t.Helper()

	var names []string
	_ = tree.Walk(func(path []string, n Node) error {
		switch v := n.(type) {
		case *Leaf:
			names = append(names, v.FullName)
			// The exact match of a group is the first member ending at its key,
			// so "a" and "a:" may trade places; they differ by one trailing
			// separator at most.
			full := strings.Join(append(slices.Clone(path), v.Label), string(sep))
			if full != v.FullName && full+string(sep) != v.FullName && full != v.FullName+string(sep) {
				t.Errorf("leaf %q at %v: path and label give %q", v.FullName, path, full)
			}
		case *Group:
			if n := (Tree(v.Children)).Len(); n < 2 {
				t.Errorf("group %q at %v holds %d scripts, want at least 2", v.Label, path, n)
			}
		}
		return nil
	})

	want := make([]string, 0, len(in))
	for _, s := range in {
		want = append(want, s.Name)
	}
	slices.Sort(want)
	slices.Sort(names)
	if !slices.Equal(names, want) {
		t.Errorf("leaves %v, want %v", names, want)
	}
}

func TestBuild_Invariants(t *testing.T) {
	t.Parallel()

	segments := []string{"a", "b", "build", "watch", ""}
	seps := []Separator{":", "/", "::"}
	rng := rand.New(rand.NewPCG(1, 2))

	for round := range 200 {
		sep := seps[round%len(seps)]
		seen := map[string]bool{}
		var in []Script
		for range rng.IntN(12) {
			parts := make([]string, 1+rng.IntN(4))
			for i := range parts {
				parts[i] = segments[rng.IntN(len(segments))]
			}
			name := strings.Join(parts, string(sep))
			if seen[name] {
				continue
			}
			seen[name] = true
			in = append(in, Script{Name: name, Command: "echo " + name})
		}

		tree, err := Build(in, sep)
		if err != nil {
			t.Fatalf("round %d: Build() error: %v", round, err)
		}
		checkInvariants(t, in, tree, sep)
	}
}

func FuzzBuild(f *testing.F) {
	f.Add("build\nbuild:watch\nbuild:prod", ":")
	f.Add("a::b\na:\na\n:a", ":")
	f.Add("lint/fix\nlint/all\ntest", "/")
	f.Add("x--y--z\nx--y", "--")

	f.Fuzz(func(t *testing.T, joined, sep string) {
		if sep == "" {
			t.Skip()
		}
		seen := map[string]bool{}
		var in []Script
		for _, name := range strings.Split(joined, "\n") {
			if seen[name] {
				continue
			}
			seen[name] = true
			in = append(in, Script{Name: name})
		}

		tree, err := Build(in, Separator(sep))
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		checkInvariants(t, in, tree, Separator(sep))
	})
}
