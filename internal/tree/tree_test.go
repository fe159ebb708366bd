package tree_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"oocbe/internal/tree"
)

func TestAttrSetGet(t *testing.T) {
	n := tree.New("obj1")
	n.Set("name", "x")
	n.SetLine(3)
	if v, ok := n.Get("name"); !ok || v != "x" {
		t.Fatalf("Get(name) = %q, %v", v, ok)
	}
	if n.Line() != 3 {
		t.Fatalf("Line() = %d, want 3", n.Line())
	}
	n.Set("name", "y")
	if len(n.Attrs) != 2 {
		t.Fatalf("overwrite grew attrs: %v", n.Attrs)
	}
}

func TestCloneIsDeep(t *testing.T) {
	n := tree.New("add")
	n.SetLine(1)
	n.Append(tree.IntNode(1, 1))
	n.Append(tree.IntNode(2, 1))

	c := tree.Clone(n)
	c.Children[0].Set("val", "99")

	if tree.IntVal(n.Children[0]) != 1 {
		t.Fatalf("clone mutation leaked into original: %v", n.Children[0])
	}
	if !tree.Equal(n, n) {
		t.Fatalf("Equal not reflexive")
	}
}

func TestEqualIgnoresLine(t *testing.T) {
	a := tree.IntNode(5, 1)
	b := tree.IntNode(5, 99)
	if !tree.Equal(a, b) {
		t.Fatalf("Equal should ignore line attr")
	}
	c := tree.IntNode(6, 1)
	if tree.Equal(a, c) {
		t.Fatalf("Equal should not match differing val")
	}
}

func TestNumHelpers(t *testing.T) {
	a := tree.IntNode(2, 0)
	if !tree.IsNum(a) {
		t.Fatalf("IsNum(int) = false")
	}
	if !tree.NumEq(a, tree.Num{I: 2}) {
		t.Fatalf("NumEq failed for matching int")
	}
	if tree.NumEq(a, tree.Num{Float: true, F: 2}) {
		t.Fatalf("NumEq must not equate int 2 with float 2.0")
	}
	f := tree.FloatNode(1.5, 0)
	if tree.NumFromNode(f).F != 1.5 {
		t.Fatalf("NumFromNode float mismatch")
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	n := tree.New("add")
	n.SetLine(7)
	n.Append(tree.IntNode(1, 7))
	n.Append(tree.New("obj1"))
	n.Children[1].Set("name", "x \"quoted\"")

	text := tree.Write(n)
	got, err := tree.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(n, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"(add",
		"add)",
		"(add name)",
		"(add name=)",
		"(add (x)",
	}
	for _, c := range cases {
		if _, err := tree.Parse(c); err == nil {
			t.Errorf("Parse(%q) should have failed", c)
		}
	}
}
