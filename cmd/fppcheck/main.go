// Command fppcheck is a thin driver over internal/core/analysis: it parses
// one or more FPP source files, resolves includes, runs the semantic
// passes, and prints the resulting diagnostic stream. It is deliberately
// minimal — no codegen, no language server — matching spec.md §1's
// non-goals for the analysis core this repo builds.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/fpp-community/fppsema/internal/version"
)

type allArgs struct {
	Check   *cmdCheckArgs `arg:"subcommand:check" help:"Parse and semantically analyze FPP schema files"`
	Version *struct{}     `arg:"subcommand:version" help:"Show fppcheck version information"`
}

func printVersion() {
	fmt.Printf("%s\n\n", version.AsciiArt)
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			printVersion()
			return
		}
	}

	var args allArgs
	p, err := arg.NewParser(arg.Config{}, &args)
	if err != nil {
		log.Fatalf("failed to create arg parser: %s", err)
	}

	err = p.Parse(os.Args[1:])
	switch {
	case err == arg.ErrHelp:
		printVersion()
		p.WriteHelp(os.Stdout)
		os.Exit(0)
	case err != nil:
		fmt.Printf("error: %v\n", err)
		p.WriteUsage(os.Stdout)
		os.Exit(1)
	}

	if args.Check != nil {
		os.Exit(cmdCheck(args.Check))
	}

	printVersion()
}
