package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets `go test` re-exec this binary as `oocbe` inside each
// testscript, the standard rogpeppe/go-internal/testscript wiring for
// driving a CLI's actual main() rather than reimplementing its argument
// parsing in-process.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"oocbe": mainExitCode,
	}))
}

func mainExitCode() (code int) {
	defer func() {
		if r := recover(); r != nil {
			code = 1
		}
	}()
	main()
	return 0
}

// TestScripts drives every .txtar script under testdata/script, each
// exercising the `pass <input>` exit-code-equals-diagnostic-count contract
// end to end, in the style of the teacher's table-driven parser tests
// generalized to whole-process behavior.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
