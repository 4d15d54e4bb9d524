package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fpp-community/fppsema/internal/core/analysis"
	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/parser"
	"github.com/fpp-community/fppsema/internal/core/vfs"
	"github.com/fpp-community/fppsema/internal/util/cliutil"
	"github.com/fpp-community/fppsema/internal/util/debugutil"
)

type cmdCheckArgs struct {
	Files   []string `arg:"positional" help:"FPP source files or glob patterns to check"`
	Config  string   `arg:"--config" help:"Path to a fpp.yaml config file listing files to check"`
	NoAnsi  bool     `arg:"--no-ansi" help:"Disable ANSI colors in the diagnostic output"`
	DumpAST bool     `arg:"--dump-ast" help:"Print the parsed AST of each file as JSON before checking"`
}

// fppConfig is the shape of an optional --config fpp.yaml file: a static
// list of files/globs, so a project can check its whole tree without the
// shell re-expanding the pattern every invocation.
type fppConfig struct {
	Version int      `yaml:"version"`
	Files   []string `yaml:"files"`
}

func cmdCheck(args *cmdCheckArgs) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	patterns := args.Files
	if args.Config != "" {
		cfg, err := loadConfig(args.Config)
		if err != nil {
			logger.Error("failed to load config", "path", args.Config, "error", err)
			return 1
		}
		patterns = append(patterns, cfg.Files...)
	}
	if len(patterns) == 0 {
		fmt.Fprintln(os.Stderr, "error: no files given; pass file arguments or --config fpp.yaml")
		return 1
	}

	paths, err := expandPatterns(patterns)
	if err != nil {
		logger.Error("failed to expand file patterns", "error", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "error: no files matched")
		return 1
	}

	fs := vfs.New()
	a := analysis.New(fs)

	var units []*ast.Schema
	for _, path := range paths {
		content, err := fs.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read file", "path", path, "error", err)
			continue
		}
		schema, perr := parser.ParseString(path, string(content), a.Alloc)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "%s: parse error: %s\n", path, perr)
			continue
		}
		analysis.ResolveIncludesEntry(a, path, schema)
		units = append(units, schema)

		if args.DumpAST {
			fmt.Fprintf(os.Stderr, "%s:\n%s\n", path, debugutil.ToBeautyJSON(schema))
		}
	}

	analysis.CheckSemantics(a, units)

	diags := a.Diagnostics
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Pos.Filename != diags[j].Pos.Filename {
			return diags[i].Pos.Filename < diags[j].Pos.Filename
		}
		return diags[i].Pos.Line < diags[j].Pos.Line
	})

	for _, d := range diags {
		printDiagnostic(d, !args.NoAnsi)
	}

	fmt.Printf("\n%d file(s) checked, %d diagnostic(s)\n", len(paths), len(diags))

	if a.HasErrors() {
		return 1
	}
	return 0
}

func printDiagnostic(d analysis.Diagnostic, color bool) {
	header := d.String()
	if color {
		switch d.Severity {
		case analysis.Error:
			header = cliutil.ColorizeRedBold(fmt.Sprintf("%s:%d:%d:", d.Pos.Filename, d.Pos.Line, d.Pos.Column)) +
				fmt.Sprintf(" %s[%s]: %s", d.Severity, d.Code, d.Message)
		case analysis.Warning:
			header = cliutil.ColorizeYellowBold(fmt.Sprintf("%s:%d:%d:", d.Pos.Filename, d.Pos.Line, d.Pos.Column)) +
				fmt.Sprintf(" %s[%s]: %s", d.Severity, d.Code, d.Message)
		}
	}
	fmt.Println(header)
	for _, child := range d.Children {
		fmt.Printf("    note: %s\n", child.Message)
	}
}

func loadConfig(path string) (*fppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}

func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		dir := filepath.Dir(pattern)
		base := filepath.Base(pattern)
		matches, err := vfs.ResolveGlob(dir, base)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			abs, err := filepath.Abs(pattern)
			if err != nil {
				abs = pattern
			}
			matches = []string{abs}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
