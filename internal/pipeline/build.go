package pipeline

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"oocbe/internal/cbackend"
	"oocbe/internal/diagnostics"
	"oocbe/internal/encoder"
	"oocbe/internal/generator"
	"oocbe/internal/optimizer"
	"oocbe/internal/peephole"
)

// BuildResult summarizes one Build run for the CLI's human-readable report.
type BuildResult struct {
	FuncCount  int
	OutputSize int
	OutputPath string
}

func (r BuildResult) String() string {
	return fmt.Sprintf("%s functions, %s written to %s",
		humanize.Comma(int64(r.FuncCount)), humanize.Bytes(uint64(r.OutputSize)), r.OutputPath)
}

// Build chains O -> G -> P -> (E | C) in one invocation, the teacher's
// internal/build.Builder.Build orchestration (resolve -> compile -> link ->
// write) generalized from a multi-file project build to a single-tree
// compiler backend pipeline, per cfg's oocbe.yaml.
func Build(cfg *Config) (*BuildResult, *diagnostics.Sink, error) {
	diag := &diagnostics.Sink{}

	src, err := readTree(cfg.Input)
	if err != nil {
		return nil, diag, err
	}

	optimized := optimizer.Run(src)

	g := generator.New(cfg.Module, diag)
	g.LowerModule(optimized)
	if diag.Count() > 0 {
		return nil, diag, nil
	}
	lowered := g.Module()

	peepholed := peephole.Run(lowered)

	var output string
	switch cfg.BackEnd {
	case BackEndC:
		out, err := cbackend.New().Emit(peepholed)
		if err != nil {
			diag.Report(diagnostics.KindEncoding, diagnostics.Location{}, "%s", err)
			return nil, diag, nil
		}
		output = out
	default:
		enc := encoder.New(cfg.Module)
		if err := enc.Encode(peepholed); err != nil {
			diag.Report(diagnostics.KindEncoding, diagnostics.Location{}, "%s", err)
			return nil, diag, nil
		}
		output = enc.Output()
	}

	if err := os.WriteFile(cfg.Output, []byte(output), 0o644); err != nil {
		return nil, diag, fmt.Errorf("pipeline: writing %s: %w", cfg.Output, err)
	}

	return &BuildResult{
		FuncCount:  len(lowered.Children),
		OutputSize: len(output),
		OutputPath: cfg.Output,
	}, diag, nil
}
