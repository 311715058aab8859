// Command parlc is the PArL compiler driver: it wires the four
// compilation phases (lexer, parser, analyzer, generator) in sequence,
// stopping at the first phase that reports diagnostics, grounded on the
// teacher's cli/main.go cobra.Command{RunE: ...} entry point and its
// "compute exitCode, flush output, os.Exit once at the very end" idiom.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/internal/astdump"
	"github.com/parl-lang/parlc/internal/config"
	"github.com/parl-lang/parlc/internal/watch"
	"github.com/parl-lang/parlc/runtime/codegen"
	"github.com/parl-lang/parlc/runtime/lexer"
	"github.com/parl-lang/parlc/runtime/parser"
	"github.com/parl-lang/parlc/runtime/sema"
)

func main() {
	var (
		showAST     bool
		debug       bool
		outPath     string
		configPath  string
		strictFloat bool
		watchMode   bool
	)

	rootCmd := &cobra.Command{
		Use:           "parlc <file.parl>",
		Short:         "Compile a PArL program to PArIR",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			logger := newLogger(debug)

			if watchMode {
				stop := make(chan struct{})
				return watch.Run(src, logger, stop, func(path string) {
					code := compileAndReport(path, showAST, debug, outPath, configPath, strictFloat, logger)
					if code != 0 {
						fmt.Fprintf(os.Stderr, "(waiting for changes; last run exited %d)\n", code)
					}
				})
			}

			exitCode := compileAndReport(src, showAST, debug, outPath, configPath, strictFloat, logger)
			if exitCode != 0 {
				return fmt.Errorf("compilation failed with exit code %d", exitCode)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&showAST, "show-ast", false, "Print the parsed AST instead of compiling")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging and a checksum trailer on the emitted program")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "Write the compiled PArIR to this file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".parlrc.yaml", "Path to the project configuration file")
	rootCmd.PersistentFlags().BoolVar(&strictFloat, "strict-float-mod", false, "Reject `%` on float operands even if .parlrc.yaml allows it")
	rootCmd.PersistentFlags().BoolVar(&watchMode, "watch", false, "Recompile automatically whenever the source file changes")

	exitCode := 0
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitCode = 1
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// compileAndReport runs the full pipeline once and returns a process
// exit code (spec.md §7: 0 on success, non-zero otherwise). It never
// calls os.Exit itself, so main can flush output and exit exactly once.
func compileAndReport(path string, showAST, debug bool, outPath, configPath string, strictFloat bool, logger *slog.Logger) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parlc: cannot read %s: %v\n", path, err)
		return 1
	}
	source := string(data)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parlc: cannot load %s: %v\n", configPath, err)
		return 1
	}
	allowFloatMod := cfg.AllowFloatMod && !strictFloat

	lx := lexer.New(source, logger)
	tokens := lx.Tokenize()

	prog, parseDiags := parser.Parse(lexer.Filter(tokens))
	if parseDiags.HasErrors() {
		fmt.Fprint(os.Stderr, parseDiags.Render(source))
		return 1
	}

	config.ApplyAliases(prog, cfg.BuiltinAliases)

	if showAST {
		printAST(prog, outPath, debug, cfg.HexCase == config.HexUpper)
		return 0
	}

	res := sema.Analyze(prog, sema.Options{AllowFloatMod: allowFloatMod}, logger)
	if !res.OK() {
		fmt.Fprint(os.Stderr, res.Diags.Render(source))
		return 1
	}

	instrs, genDiags := codegen.Generate(prog, res, codegen.Options{Checksum: debug}, logger)
	if genDiags.HasErrors() {
		fmt.Fprint(os.Stderr, genDiags.Render(source))
		return 1
	}

	if err := writeOutput(instrs, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "parlc: %v\n", err)
		return 1
	}
	return 0
}

func writeOutput(instrs []string, outPath string) error {
	body := strings.Join(instrs, "\n") + "\n"
	if outPath == "" {
		_, err := io.WriteString(os.Stdout, body)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return os.WriteFile(outPath, []byte(body), 0o644)
}

func printAST(prog *ast.Program, outPath string, debug, hexUpper bool) {
	text := astdump.TextWithHexCase(prog, hexUpper)
	if outPath == "" {
		fmt.Fprint(os.Stdout, text)
	} else if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "parlc: %v\n", err)
	}
	if !debug {
		return
	}
	enc, err := astdump.Encode(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parlc: cbor encode: %v\n", err)
		return
	}
	cborPath := outPath
	if cborPath == "" {
		cborPath = "ast.cbor"
	} else {
		cborPath = strings.TrimSuffix(cborPath, filepath.Ext(cborPath)) + ".cbor"
	}
	if err := os.WriteFile(cborPath, enc, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "parlc: writing %s: %v\n", cborPath, err)
	}
}
