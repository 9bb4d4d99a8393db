// Command jankgo is the compiler's CLI entry point. spec.md §1 scopes a CLI
// out as a *feature*, but a thin entry point is the ambient wiring every
// other package needs to be exercised end-to-end: jankgo compile runs the
// full §6.1 compile(js_source) -> bytes pipeline, dump-highir/dump-lowir
// stop partway through for inspection.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/cache"
	"github.com/funvibe/jankgo/internal/config"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lowir"
	"github.com/funvibe/jankgo/internal/pipeline"
)

var (
	verbose    bool
	configPath string
	noCache    bool
)

// rootCmd is the base command, following the teacher's own rootCmd/
// AddCommand convention (reference runtime: Consensys-go-corset's
// pkg/cmd/root.go), adapted to this compiler's three subcommands.
var rootCmd = &cobra.Command{
	Use:   "jankgo",
	Short: "A gradually-typed JavaScript-to-WebAssembly compiler.",
	Long:  "jankgo compiles a minimal JS subset to WebAssembly, inferring a precise static type wherever the program allows it and falling back to a boxed Any representation elsewhere.",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging for every pipeline stage")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "jankgo.yaml", "path to the compiler configuration file")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the compile artifact cache")

	rootCmd.AddCommand(compileCmd, dumpHighIRCmd, dumpLowIRCmd)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			if strings.HasPrefix(msg, diag.InvariantViolationPrefix) {
				fmt.Fprintln(os.Stderr, colorize(msg, 31))
				fmt.Fprintln(os.Stderr, "This is a compiler bug, not a problem with your program. Please report it.")
			} else {
				fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			}
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// colorize wraps s in an ANSI SGR code, but only when stderr is a real
// terminal — go-isatty gates this exactly as SPEC_FULL §3's CLI section
// calls for, so piping jankgo's output to a file or another process never
// embeds escape codes.
func colorize(s string, code int) string {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", code, s)
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func loadConfig() config.CompilerConfig {
	cfg, err := config.LoadCompilerConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, colorize(err.Error(), 33))
	}
	if verbose {
		cfg.Verbose = true
	}
	diag.SetVerbose(cfg.Verbose)
	return cfg
}

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a source file to a wasm module.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourcePath := args[0]
		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".wasm"
		}

		source, err := readSource(sourcePath)
		if err != nil {
			return err
		}
		cfg := loadConfig()
		sessionID := uuid.NewString()
		log := diag.NewStageLogger("cli", sessionID)

		var artifactCache *cache.Cache
		var cacheKey string
		if !noCache {
			artifactCache, err = cache.Open(filepath.Join(filepath.Dir(sourcePath), ".jankgo-cache.db"))
			if err != nil {
				log.WithError(err).Warn("cache unavailable, compiling without it")
				artifactCache = nil
			} else {
				defer artifactCache.Close()
				cacheKey = cache.Key(source, cfg)
				if entry, ok, lookupErr := artifactCache.Lookup(cacheKey); lookupErr == nil && ok {
					if err := os.WriteFile(outputPath, entry.Wasm, 0o644); err != nil {
						return fmt.Errorf("writing %s: %w", outputPath, err)
					}
					fmt.Printf("%s %s -> %s (%s, cache hit #%d)\n",
						colorize("compiled", 32), sourcePath, outputPath, humanize.Bytes(uint64(len(entry.Wasm))), entry.HitCount)
					return nil
				}
			}
		}

		start := time.Now()
		wasm, err := pipeline.Compile(sessionID, sourcePath, source)
		if err != nil {
			return fmt.Errorf("%s", colorize(err.Error(), 31))
		}
		duration := time.Since(start)

		if err := os.WriteFile(outputPath, wasm, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}

		if artifactCache != nil {
			stats := cache.Stats{DurationMs: duration.Milliseconds()}
			if err := artifactCache.Store(cacheKey, wasm, stats, time.Now()); err != nil {
				log.WithError(err).Warn("failed to persist compile result to cache")
			}
		}

		fmt.Printf("%s %s -> %s (%s, %s)\n",
			colorize("compiled", 32), sourcePath, outputPath, humanize.Bytes(uint64(len(wasm))), duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "output wasm file path (default: <file without ext>.wasm)")
}

var dumpHighIRCmd = &cobra.Command{
	Use:   "dump-highir <file>",
	Short: "Parse and type-infer a source file, printing its HighIR tree.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		loadConfig()
		ctx := pipeline.NewPipelineContext(uuid.NewString(), args[0], source)
		ctx = pipeline.New(pipeline.Stages()[:2]...).Run(ctx)
		if ctx.Err != nil {
			return ctx.Err
		}
		fmt.Print(ast.Sprint(ctx.Program))
		return nil
	},
}

var dumpLowIRCmd = &cobra.Command{
	Use:   "dump-lowir <file>",
	Short: "Compile a source file through A-normalization, printing its LowIR.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		loadConfig()
		ctx := pipeline.NewPipelineContext(uuid.NewString(), args[0], source)
		ctx = pipeline.New(pipeline.Stages()[:3]...).Run(ctx)
		if ctx.Err != nil {
			return ctx.Err
		}
		fmt.Print(lowir.Sprint(ctx.LowIR))
		return nil
	},
}
