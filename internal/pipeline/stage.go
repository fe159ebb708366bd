package pipeline

import (
	"fmt"
	"os"

	"oocbe/internal/cbackend"
	"oocbe/internal/diagnostics"
	"oocbe/internal/encoder"
	"oocbe/internal/generator"
	"oocbe/internal/optimizer"
	"oocbe/internal/peephole"
	"oocbe/internal/tree"
)

// readTree loads and parses the tagged-tree textual form every pass reads,
// the on-disk/on-pipe shape spec.md §6 names as the inter-pass contract.
func readTree(path string) (*tree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reading %s: %w", path, err)
	}
	nd, err := tree.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("pipeline: parsing %s: %w", path, err)
	}
	return nd, nil
}

// RunOptimize is pass O: `pass <input>` reads a source tree and writes its
// arithmetic/logic-folded, assignment-classified form.
func RunOptimize(input string) (string, *diagnostics.Sink, error) {
	diag := &diagnostics.Sink{}
	src, err := readTree(input)
	if err != nil {
		return "", diag, err
	}
	out := optimizer.Run(src)
	return tree.Write(out), diag, nil
}

// RunGenerate is pass G: reads an optimized source tree and writes the
// lowered module (every function/method body's flat IR).
func RunGenerate(input, modName string) (string, *diagnostics.Sink, error) {
	diag := &diagnostics.Sink{}
	src, err := readTree(input)
	if err != nil {
		return "", diag, err
	}
	g := generator.New(modName, diag)
	g.LowerModule(src)
	return tree.Write(g.Module()), diag, nil
}

// RunPeephole is pass P: reads a lowered module and writes its
// stack_alloc/stack_free-coalesced, dead-code-trimmed form.
func RunPeephole(input string) (string, *diagnostics.Sink, error) {
	diag := &diagnostics.Sink{}
	mod, err := readTree(input)
	if err != nil {
		return "", diag, err
	}
	out := peephole.Run(mod)
	return tree.Write(out), diag, nil
}

// RunEncode is pass E: reads a peephole-optimized module and writes the
// encoded binary, rendered as a hex listing + symbol table (Encoder.Output).
func RunEncode(input, modName string) (string, *diagnostics.Sink, error) {
	diag := &diagnostics.Sink{}
	mod, err := readTree(input)
	if err != nil {
		return "", diag, err
	}
	enc := encoder.New(modName)
	if err := enc.Encode(mod); err != nil {
		diag.Report(diagnostics.KindEncoding, diagnostics.Location{}, "%s", err)
		return "", diag, nil
	}
	return enc.Output(), diag, nil
}

// RunCBackend is pass C: reads a peephole-optimized module and writes C
// source calling into the ovm_* runtime API.
func RunCBackend(input string) (string, *diagnostics.Sink, error) {
	diag := &diagnostics.Sink{}
	mod, err := readTree(input)
	if err != nil {
		return "", diag, err
	}
	out, err := cbackend.New().Emit(mod)
	if err != nil {
		diag.Report(diagnostics.KindEncoding, diagnostics.Location{}, "%s", err)
		return "", diag, nil
	}
	return out, diag, nil
}
