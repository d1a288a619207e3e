package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chazu/contour/pkg/engine"
	"github.com/chazu/contour/pkg/kernel"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "contour",
	Short: "Parametric sketch solver and boundary loop assembler",
	Long: `Evaluate sketch scripts, reconcile their geometric relations, and
emit tessellated segments, ribbon meshes or validated boundary loops as JSON.

Examples:
  contour solve bracket.contour                      # Solve and print the sketch
  contour tessellate --ribbon bracket.contour        # Ribbon mesh for display
  contour loop --index 0 bracket.contour             # Validate the first loop
  contour --config kernel.yaml solve bracket.contour # Override kernel settings`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "kernel config file (YAML)")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	kernel.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig returns the kernel defaults overlaid with the --config file.
// Unknown keys are rejected.
func loadConfig() (kernel.Config, error) {
	cfg := kernel.DefaultConfig()
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadProgram evaluates a sketch script. Evaluation errors are joined into
// one error that lists every reported line.
func loadProgram(path string) (*engine.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	p, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}
	for _, w := range p.Warnings {
		kernel.Logger().Warn("sketch validation", "message", w.Message, "element", int(w.Element), "relation", int(w.Relation))
	}
	return p, nil
}

// setup loads the config, builds the kernel and evaluates the script.
func setup(path string) (*kernel.Core, *engine.Program, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	k, err := kernel.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	p, err := loadProgram(path)
	if err != nil {
		return nil, nil, err
	}
	return k, p, nil
}
