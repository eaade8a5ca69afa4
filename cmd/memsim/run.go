package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/garethgeorge/memsim/internal/ioutil"
	"github.com/garethgeorge/memsim/internal/render"
	"github.com/garethgeorge/memsim/internal/sim"
	"github.com/garethgeorge/memsim/internal/trace"
	"github.com/spf13/cobra"
)

type runOptions struct {
	mode       string
	script     string
	tracePaths []string
	showEach   bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation from a script or interactively",
		Long: `The run command applies allocation actions to one engine. Actions are read
from a script file, or from standard input when no script is given.

Commands:
  alloc <size>     allocate a process of <size> KB
  free <id>        free block number <id> (first-fit) or a block of size <id> (quick-fit)
  reset            free everything
  show             print the current state
  quit             leave interactive mode

Example:
  memsim run --mode first-fit --script workload.txt
  memsim run --mode quick-fit --trace session.trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, a, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(sim.FirstFit), "Simulation mode: first-fit or quick-fit")
	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "Script file with one action per line ('-' for stdin)")
	cmd.Flags().StringArrayVar(&opts.tracePaths, "trace", nil, "Record the session to this file (repeatable)")
	cmd.Flags().BoolVar(&opts.showEach, "show-each", false, "Print the state after every action")
	return cmd
}

func runRun(cmd *cobra.Command, a *app, opts *runOptions) (err error) {
	mode, err := sim.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	engine, err := sim.NewEngine(a.cfg, mode)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	sessionOpts := []sim.SessionOption{sim.WithLogger(a.logger)}
	if len(opts.tracePaths) > 0 {
		tw, closeTrace, err := openTrace(a, mode, opts.tracePaths)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeTrace(); cerr != nil && err == nil {
				err = fmt.Errorf("close trace: %w", cerr)
			}
		}()
		sessionOpts = append(sessionOpts, sim.WithRecorder(tw))
	}
	session := sim.NewSession(engine, sessionOpts...)

	out := cmd.OutOrStdout()
	r := a.renderer(out)

	if opts.script == "" {
		if err := interactive(cmd.InOrStdin(), out, session, r); err != nil {
			return err
		}
	} else {
		actions, err := readScript(cmd.InOrStdin(), opts.script)
		if err != nil {
			return err
		}
		for _, action := range actions {
			if err := applyAndPrint(session, action, r, opts.showEach); err != nil {
				return err
			}
		}
	}

	fmt.Fprintln(out)
	if err := r.Table(engine.Columns(), engine.Rows()); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return r.Metrics(engine.Stats())
}

func applyAndPrint(session *sim.Session, action sim.Action, r *render.Renderer, showEach bool) error {
	outcome, err := session.Apply(action)
	if err != nil {
		return err
	}
	// Outcome skips empty messages, so show prints only the table.
	if err := r.Outcome(outcome); err != nil {
		return err
	}
	if action.Op == sim.OpShow || showEach {
		e := session.Engine()
		return r.Table(e.Columns(), e.Rows())
	}
	return nil
}

func interactive(in io.Reader, out io.Writer, session *sim.Session, r *render.Renderer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintf(out, "%s simulation, type 'show', 'alloc <size>', 'free <id>', 'reset' or 'quit'\n", session.Engine().Mode())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		action, err := sim.ParseAction(line)
		if err != nil {
			// Input errors never reach the engine.
			fmt.Fprintf(out, "[Invalid Input] %v\n", err)
			continue
		}
		if err := applyAndPrint(session, action, r, false); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func readScript(stdin io.Reader, path string) ([]sim.Action, error) {
	if path == "-" {
		return sim.ParseScript(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	actions, err := sim.ParseScript(f)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return actions, nil
}

// openTrace creates every trace file and fans one trace stream out to all of
// them. The returned func flushes the stream and closes the files.
func openTrace(a *app, mode sim.Mode, paths []string) (*trace.Writer, func() error, error) {
	var files []io.Writer
	var closers []io.Closer
	for _, path := range paths {
		f, err := os.Create(path)
		if err != nil {
			ioutil.NewMultiCloser(closers...).Close()
			return nil, nil, fmt.Errorf("create trace file: %w", err)
		}
		files = append(files, f)
		closers = append(closers, f)
	}

	fanout := ioutil.ParallelMultiWriter(files...)
	tw, err := trace.NewWriter(fanout, trace.HeaderFor(a.cfg, mode))
	if err != nil {
		fanout.Close()
		ioutil.NewMultiCloser(closers...).Close()
		return nil, nil, err
	}
	a.logger.Info("recording trace", "files", strings.Join(paths, ","), "digest", string(a.cfg.DigestAlgorithm()))

	closeAll := append([]io.Closer{tw, fanout}, closers...)
	return tw, ioutil.NewMultiCloser(closeAll...).Close, nil
}
