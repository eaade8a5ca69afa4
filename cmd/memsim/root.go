package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/garethgeorge/memsim/internal/config"
	"github.com/garethgeorge/memsim/internal/render"
	"github.com/spf13/cobra"
)

// app holds global flags and the state derived from them.
type app struct {
	configPath string
	logLevel   string
	logJSON    bool
	noColor    bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "memsim",
		Short: "Simulate First-Fit and Quick-Fit memory allocation",
		Long: `memsim simulates two classic memory allocation policies against a fixed
pool of memory: First-Fit over an ordered list of fixed blocks, and Quick-Fit
over free lists segregated by size class.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newRunCmd(a),
		newCompareCmd(a),
		newReplayCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) init(logOut io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(a.logLevel))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if a.logJSON {
		a.logger = slog.New(slog.NewJSONHandler(logOut, opts))
	} else {
		a.logger = slog.New(slog.NewTextHandler(logOut, opts))
	}

	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.logger.Debug("loaded config", "path", a.configPath)
	}
	return nil
}

func (a *app) renderer(w io.Writer) *render.Renderer {
	return render.New(w, render.Options{NoColor: a.noColor})
}
