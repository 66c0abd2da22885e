package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"actbatch/internal/app"
	"actbatch/internal/config"
	"actbatch/internal/domain"
	appErrors "actbatch/internal/errors"
	"actbatch/internal/infra/fs"
	"actbatch/internal/infra/generator"
	"actbatch/internal/infra/metrics"
	"actbatch/internal/logging"
	"actbatch/internal/presentation"
	"actbatch/internal/tui"
)

type runOptions struct {
	plain bool
	yes   bool
}

var runFlagKeys = map[string]string{
	"image_search_pattern":      "pattern",
	"exact_match":               "exact",
	"output_location":           "output-location",
	"output_folder":             "output-folder",
	"delay_between_generations": "delay",
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <root>",
		Short: "Generate a video for every matching image under root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, root, runFlagKeys)
			if err != nil {
				return err
			}
			dir, err := resolveRoot(args[0])
			if err != nil {
				return err
			}
			return runBatch(cmd, dir, cfg, *opts)
		},
	}

	addMatchFlags(cmd)
	cmd.Flags().String("output-location", "", "centralized or co-located")
	cmd.Flags().String("output-folder", "", "destination for centralized output")
	cmd.Flags().Float64("delay", 0, "seconds to wait after each generation")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print progress lines instead of the interactive view")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "start without asking for confirmation")
	return cmd
}

func addMatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("pattern", "", "filename pattern to match")
	cmd.Flags().Bool("exact", false, "match the pattern as a separate word")
}

// batch bundles what a run needs once configuration is settled.
type batch struct {
	root     string
	cfg      config.Config
	logger   logging.Logger
	planner  *app.Planner
	dispatch *app.Dispatcher
	recorder *metrics.Recorder
}

func runBatch(cmd *cobra.Command, root string, cfg config.Config, opts runOptions) error {
	if err := cfg.ValidateForRun(); err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
	}

	out := cmd.OutOrStdout()
	interactive := !opts.plain && isTerminal(out)

	logger, err := openLogger(out, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()
	if interactive {
		// The TUI owns the screen; log lines only go to the file sink.
		logger = logger.WithWriter(nil)
	}

	gen, err := generator.NewCommand(cfg.GeneratorCommand, cfg.APIKey, cfg.DriverAsset, logger)
	if err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "generator", "", err)
	}

	runID := uuid.NewString()
	recorder := metrics.NewRecorder(runID)
	filesystem := fs.OSFS{}
	b := &batch{
		root:     root,
		cfg:      cfg,
		logger:   logger,
		planner:  &app.Planner{FS: filesystem, Logger: logger, Recorder: recorder, RunID: runID},
		dispatch: &app.Dispatcher{FS: filesystem, Generator: gen, Logger: logger, Recorder: recorder},
		recorder: recorder,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Verbosef("Run %s started for %s", runID, root)
	var report app.Report
	if interactive {
		report, err = b.runInteractive(ctx, opts)
	} else {
		report, err = b.runPlain(ctx, cmd.InOrStdin(), out, opts)
	}
	b.writeMetrics()
	if err != nil {
		return err
	}
	logger.Verbosef("Run %s finished: %d succeeded, %d failed", runID, report.State.Succeeded, report.State.Failed)
	return nil
}

func (b *batch) runPlain(ctx context.Context, in io.Reader, out io.Writer, opts runOptions) (app.Report, error) {
	printer := presentation.Printer{Writer: out, Verbose: b.cfg.Verbose}

	plan, err := b.planner.Plan(ctx, b.root, b.cfg)
	if err != nil {
		return app.Report{}, planError(b.root, err)
	}
	printer.PrintPlan(plan, b.cfg)
	if plan.Total == 0 {
		return app.Report{}, nil
	}

	if !opts.yes {
		ok, err := confirm(in, out, "Generate "+pluralVideos(plan.Total)+"?")
		if err != nil {
			return app.Report{}, appErrors.Wrap(appErrors.Internal, "prompt", "", err)
		}
		if !ok {
			b.logger.Infof("Cancelled.")
			return app.Report{}, nil
		}
	}

	// The printer reports each item; per-item log lines go to the file sink only.
	b.dispatch.Logger = b.logger.WithWriter(nil)
	b.dispatch.OnProgress = printer.PrintEvent
	report, err := b.dispatch.Run(ctx, plan.Groups, b.cfg)
	printer.PrintRunSummary(report, b.cfg)
	return report, dispatchError(err)
}

func (b *batch) runInteractive(ctx context.Context, opts runOptions) (app.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program
	b.planner.OnProgress = func(current, total int) {
		program.Send(tui.ScanProgressMsg{Current: current, Total: total})
	}
	b.dispatch.OnProgress = func(event domain.ProgressEvent) {
		program.Send(tui.DispatchProgressMsg{Event: event})
	}

	model := tui.NewModel(tui.Config{
		Root:        b.root,
		Output:      presentation.OutputDescription(b.cfg),
		Pattern:     b.cfg.SearchPattern,
		MatchMode:   b.cfg.MatchMode(),
		AutoConfirm: opts.yes,
		Cancel:      cancel,
		Dispatch: func(plan domain.BatchPlan) tea.Cmd {
			return func() tea.Msg {
				report, err := b.dispatch.Run(ctx, plan.Groups, b.cfg)
				return tui.DispatchDoneMsg{Report: report, Err: err}
			}
		},
	})
	program = tea.NewProgram(model)

	go func() {
		plan, err := b.planner.Plan(ctx, b.root, b.cfg)
		if err != nil {
			program.Send(tui.ErrorMsg{Err: planError(b.root, err)})
			return
		}
		program.Send(tui.PlanReadyMsg{Plan: plan})
	}()

	final, err := program.Run()
	if err != nil {
		return app.Report{}, appErrors.Wrap(appErrors.Internal, "tui", "", err)
	}
	m, ok := final.(tui.Model)
	if !ok {
		return app.Report{}, nil
	}
	switch {
	case m.Err != nil:
		return m.Report, m.Err
	case m.Interrupted:
		b.logger.Infof("Batch interrupted: %s", m.Summary())
		return m.Report, appErrors.Wrap(appErrors.Interrupted, "run", "", context.Canceled)
	}
	b.logger.Infof("Batch finished: %s", m.Summary())
	return m.Report, nil
}

func (b *batch) writeMetrics() {
	if b.cfg.MetricsFile == "" {
		return
	}
	if err := b.recorder.WriteTextfile(b.cfg.MetricsFile); err != nil {
		b.logger.Errorf("%v", err)
	}
}

func planError(root string, err error) error {
	if errors.Is(err, context.Canceled) {
		return appErrors.Wrap(appErrors.Interrupted, "scan", root, err)
	}
	return appErrors.Wrap(appErrors.ScanFailure, "scan", root, err)
}

func dispatchError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return appErrors.Wrap(appErrors.Interrupted, "dispatch", "", err)
	}
	return appErrors.Wrap(appErrors.DispatchFailure, "dispatch", "", err)
}

func pluralVideos(n int) string {
	if n == 1 {
		return "1 video"
	}
	return fmt.Sprintf("%d videos", n)
}

// isTerminal reports whether stream is a file attached to a terminal.
func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
