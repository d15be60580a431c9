// cmd/symcalc/main.go - command-line front end for the expression service
//
// Usage:
//
//	symcalc solve "2*x + 3 = 7"         # [2]
//	symcalc eval "3 + 4*2"              # 11.0000000000000
//	symcalc diff "x**2"                 # 2*x
//	symcalc -var t integrate "2*t"      # t**2
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/njchilds90/symcalc/internal/logging"
	"github.com/njchilds90/symcalc/internal/service"
)

var commands = map[string]service.Operation{
	"solve":     service.OpSolve,
	"eval":      service.OpEvaluate,
	"diff":      service.OpDifferentiate,
	"integrate": service.OpIntegrate,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("symcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	variable := fs.String("var", service.DefaultVariable, "Variable to solve, differentiate or integrate in")
	verbose := fs.Bool("v", false, "Log operations to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: symcalc [-var x] [-v] solve|eval|diff|integrate <expression>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 2
	}
	op, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	var opts []service.Option
	if *verbose {
		logger, err := logging.New("debug", "text", stderr)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		opts = append(opts, service.WithLogger(logger))
	}
	svc := service.New(service.CAS{}, opts...)

	text := strings.Join(fs.Args()[1:], " ")
	r := svc.Do(context.Background(), service.Request{Op: op, Text: text, Variable: *variable})
	if !r.IsOk() {
		fmt.Fprintln(stderr, "error:", r.Err.Message)
		return 1
	}
	fmt.Fprintln(stdout, r.Value)
	return 0
}
