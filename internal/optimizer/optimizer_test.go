package optimizer_test

import (
	"testing"

	"oocbe/internal/optimizer"
	"oocbe/internal/tree"
)

func obj1(name string) *tree.Node {
	n := tree.New("obj1")
	n.Set("name", name)
	return n
}

func TestFoldNestedAdd(t *testing.T) {
	// add(add(1, 2), x, 3) -> add(x, 6)
	inner := tree.New("add")
	inner.Append(tree.IntNode(1, 1))
	inner.Append(tree.IntNode(2, 1))

	outer := tree.New("add")
	outer.Append(inner)
	outer.Append(obj1("x"))
	outer.Append(tree.IntNode(3, 1))

	got := optimizer.Optimize(outer)

	want := tree.New("add")
	want.Append(obj1("x"))
	want.Append(tree.IntNode(6, 0))

	if !tree.Equal(got, want) {
		t.Fatalf("fold mismatch:\n got  = %s\n want = %s", tree.Write(got), tree.Write(want))
	}
}

func TestDoubleMinusCancels(t *testing.T) {
	inner := tree.New("minus")
	inner.Append(obj1("x"))
	outer := tree.New("minus")
	outer.Append(inner)

	got := optimizer.Optimize(outer)
	want := obj1("x")

	if !tree.Equal(got, want) {
		t.Fatalf("double-minus mismatch:\n got  = %s\n want = %s", tree.Write(got), tree.Write(want))
	}
}

func TestMinusOnLiteralFolds(t *testing.T) {
	n := tree.New("minus")
	n.Append(tree.IntNode(5, 1))
	got := optimizer.Optimize(n)
	if got.Tag != "int" || tree.IntVal(got) != -5 {
		t.Fatalf("minus(5) should fold to int -5, got %s", tree.Write(got))
	}
}

func TestAssignmentClassification(t *testing.T) {
	cases := []struct {
		name string
		rhs  *tree.Node
		want string
	}{
		{"literal", tree.IntNode(1, 1), "assign1c"},
		{"bare-name", obj1("y"), "assign11"},
		{"general", (func() *tree.Node {
			n := tree.New("add")
			n.Append(obj1("y"))
			n.Append(tree.IntNode(1, 1))
			return n
		})(), "assign1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assign := tree.New("assign")
			assign.Append(obj1("x"))
			assign.Append(c.rhs)
			got := optimizer.Optimize(assign)
			if got.Tag != c.want {
				t.Fatalf("classification = %s, want %s (%s)", got.Tag, c.want, tree.Write(got))
			}
		})
	}
}

func TestAssignToNonLocalStaysGeneric(t *testing.T) {
	assign := tree.New("assign")
	lhs := tree.New("obj2") // e.g. an indexed/attribute target
	lhs.Append(obj1("a"))
	lhs.Append(tree.New("sym"))
	assign.Append(lhs)
	assign.Append(tree.IntNode(1, 1))

	got := optimizer.Optimize(assign)
	if got.Tag != "assign" {
		t.Fatalf("non-local assign should stay generic, got %s", got.Tag)
	}
}

func TestSubZeroIdentities(t *testing.T) {
	// x - 0 -> x
	sub := tree.New("sub")
	sub.Append(obj1("x"))
	sub.Append(tree.IntNode(0, 1))
	got := optimizer.Optimize(sub)
	if !tree.Equal(got, obj1("x")) {
		t.Fatalf("x - 0 should fold to x, got %s", tree.Write(got))
	}

	// 0 - x -> minus(x)
	sub2 := tree.New("sub")
	sub2.Append(tree.IntNode(0, 1))
	sub2.Append(obj1("x"))
	got2 := optimizer.Optimize(sub2)
	want2 := tree.New("minus")
	want2.Append(obj1("x"))
	if !tree.Equal(got2, want2) {
		t.Fatalf("0 - x should fold to minus(x), got %s", tree.Write(got2))
	}
}
