// cmd/oocbe/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"

	"oocbe/internal/diagnostics"
	"oocbe/internal/pipeline"
	"oocbe/internal/tree"
)

const VERSION = "1.0.0"

// Command aliases mapping, one letter per pass plus the build convenience
// command.
var commandAliases = map[string]string{
	"o": "optimize",
	"g": "generate",
	"p": "peephole",
	"e": "encode",
	"c": "cbackend",
	"b": "build",
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if af, ok := r.(*diagnostics.AssertionFailure); ok {
				fmt.Fprintln(os.Stderr, "internal compiler error:", af.Error())
				os.Exit(2)
			}
			panic(r)
		}
	}()

	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println("oocbe " + VERSION)
		return
	}

	switch cmd {
	case "optimize", "generate", "peephole", "encode", "cbackend":
		runPass(cmd, args[1:])
	case "build":
		runBuild(args[1:])
	default:
		showUsage()
		os.Exit(1)
	}
}

// runPass implements the `pass <input>` CLI contract spec.md §6 describes:
// each single-stage command reads one tagged-tree file, writes the next
// stage's tagged-tree (or, for encode/cbackend, the final rendered output)
// to stdout, and exits with the accumulated diagnostic count.
func runPass(cmd string, args []string) {
	dumpTree := false
	var rest []string
	for _, a := range args {
		if a == "--dump-tree" || a == "--dump-ir" {
			dumpTree = true
			continue
		}
		rest = append(rest, a)
	}

	if len(rest) < 1 {
		fmt.Fprintf(os.Stderr, "usage: oocbe %s [--dump-tree] <input> [module-name]\n", cmd)
		os.Exit(2)
	}
	input := rest[0]
	modName := "main"
	if len(rest) > 1 {
		modName = rest[1]
	}

	var (
		out  string
		diag *diagnostics.Sink
		err  error
	)
	switch cmd {
	case "optimize":
		out, diag, err = pipeline.RunOptimize(input)
	case "generate":
		out, diag, err = pipeline.RunGenerate(input, modName)
	case "peephole":
		out, diag, err = pipeline.RunPeephole(input)
	case "encode":
		out, diag, err = pipeline.RunEncode(input, modName)
	case "cbackend":
		out, diag, err = pipeline.RunCBackend(input)
	}
	if err != nil {
		log.Fatalf("oocbe: %v", err)
	}

	if dumpTree && cmd != "encode" && cmd != "cbackend" {
		if nd, perr := tree.Parse(out); perr == nil {
			fmt.Fprintln(os.Stderr, pretty.Sprint(nd))
		}
	}

	fmt.Print(out)
	os.Exit(diag.Count())
}

// runBuild implements the `build` convenience command: load oocbe.yaml (or
// the path given as the first argument) and chain every pass in one call.
func runBuild(args []string) {
	cfgPath := "oocbe.yaml"
	if len(args) > 0 {
		cfgPath = args[0]
	}
	cfg, err := pipeline.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("oocbe: %v", err)
	}

	result, diag, err := pipeline.Build(cfg)
	if err != nil {
		log.Fatalf("oocbe: %v", err)
	}
	if diag.Count() > 0 {
		for _, e := range diag.Errors() {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(diag.Count())
	}

	printResult(result)
}

func printResult(r *pipeline.BuildResult) {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("\033[32m✓\033[0m %s\n", r)
	} else {
		fmt.Printf("ok: %s\n", r)
	}
}

func showUsage() {
	fmt.Println("oocbe - tagged-tree optimizer/generator/encoder pipeline")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  oocbe optimize <input>               Fold arithmetic/logic, classify assignments     (alias: o)")
	fmt.Println("  oocbe generate <input> [module]      Lower a source tree to flat IR                  (alias: g)")
	fmt.Println("  oocbe peephole <input>               Coalesce stack_alloc/stack_free, trim dead code (alias: p)")
	fmt.Println("  oocbe encode <input> [module]        Encode IR to the binary listing form            (alias: e)")
	fmt.Println("  oocbe cbackend <input>                Translate IR to ovm_* C source                  (alias: c)")
	fmt.Println()
	fmt.Println("Project:")
	fmt.Println("  oocbe build [oocbe.yaml]              Chain optimize -> generate -> peephole -> (encode|cbackend) (alias: b)")
	fmt.Println()
	fmt.Println("Help:")
	fmt.Println("  oocbe --version                       Show version")
	fmt.Println()
	fmt.Println("Each single-stage command's exit code is its diagnostic count (0 on success).")
	fmt.Println("Pass --dump-tree (or --dump-ir) to additionally dump the resulting tree to stderr.")
}
