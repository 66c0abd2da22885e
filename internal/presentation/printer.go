package presentation

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"actbatch/internal/app"
	"actbatch/internal/config"
	"actbatch/internal/domain"
	"actbatch/internal/infra/probe"
)

const (
	successMark = "✓"
	failureMark = "✗"
)

// Printer renders plain-text output for non-interactive use.
type Printer struct {
	Writer  io.Writer
	Verbose bool
}

// PrintPreview lists every matching image and a summary.
func (p Printer) PrintPreview(root string, entries []domain.PreviewEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(p.Writer, "No matching images found in %s.\n", root)
		return
	}

	fmt.Fprintf(p.Writer, "Preview of %s:\n", root)
	fmt.Fprintln(p.Writer)

	tw := tabwriter.NewWriter(p.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFolder\tFile\tSize\tTaken")
	for i, entry := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			entry.RelFolder,
			entry.Image.Name,
			humanize.IBytes(uint64(entry.Image.SizeBytes)),
			formatTaken(entry.TakenAt),
		)
	}
	tw.Flush()

	summary := SummarizePreview(entries)
	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "Total images: %d\n", summary.Images)
	fmt.Fprintf(p.Writer, "Total size: %s\n", humanize.IBytes(uint64(summary.Bytes)))
	fmt.Fprintf(p.Writer, "Folders: %d\n", summary.Folders)
}

type PreviewSummary struct {
	Images  int
	Bytes   int64
	Folders int
}

func SummarizePreview(entries []domain.PreviewEntry) PreviewSummary {
	folders := make(map[string]struct{})
	summary := PreviewSummary{Images: len(entries)}
	for _, entry := range entries {
		summary.Bytes += entry.Image.SizeBytes
		folders[entry.RelFolder] = struct{}{}
	}
	summary.Folders = len(folders)
	return summary
}

// PrintPlan shows what a run is about to do.
func (p Printer) PrintPlan(plan domain.BatchPlan, cfg config.Config) {
	fmt.Fprintf(p.Writer, "Found %d images in %d folders (%s match on %q).\n",
		plan.Total, len(plan.Groups), strings.ToLower(cfg.MatchMode()), cfg.SearchPattern)
	if plan.SkippedDuplicates > 0 {
		fmt.Fprintf(p.Writer, "Skipped %d images whose video already exists.\n", plan.SkippedDuplicates)
	}
	if p.Verbose {
		for _, group := range plan.Groups {
			fmt.Fprintf(p.Writer, "  %s: %d\n", group.Folder, len(group.Members))
		}
		for _, dup := range plan.Duplicates {
			fmt.Fprintf(p.Writer, "  already generated: %s\n", dup.Path)
		}
	}
}

// PrintEvent writes one line per finished item, e.g. "[3/10] 30% ✓ a.jpg".
func (p Printer) PrintEvent(event domain.ProgressEvent) {
	if event.Phase != domain.PhaseFinished {
		if p.Verbose {
			fmt.Fprintf(p.Writer, "[%d/%d] Generating %s...\n", event.Processed+1, event.Total, event.Current)
		}
		return
	}
	mark := successMark
	if event.Outcome != domain.OutcomeSuccess {
		mark = failureMark
	}
	percent := app.Percent(domain.ProgressState{Processed: event.Processed, Total: event.Total})
	fmt.Fprintf(p.Writer, "[%d/%d] %d%% %s %s\n", event.Processed, event.Total, percent, mark, event.Current)
}

// PrintRunSummary reports the final counts and where videos were written.
func (p Printer) PrintRunSummary(report app.Report, cfg config.Config) {
	state := report.State
	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "Processed %d of %d images in %s.\n", state.Processed, state.Total, FormatElapsed(state.Elapsed))
	fmt.Fprintf(p.Writer, "Succeeded: %d\n", state.Succeeded)
	fmt.Fprintf(p.Writer, "Failed: %d\n", state.Failed)
	if state.Processed < state.Total {
		fmt.Fprintf(p.Writer, "Not processed: %d\n", state.Total-state.Processed)
	}
	fmt.Fprintln(p.Writer, OutputDescription(cfg))

	if state.Failed > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, "Failures:")
		for _, result := range report.Results {
			if !result.Succeeded() {
				fmt.Fprintf(p.Writer, "- %s: %v\n", result.Source.Path, result.Err)
			}
		}
	}
}

// PrintSettings shows the effective configuration with the API key masked.
func (p Printer) PrintSettings(cfg config.Config, path string) {
	tw := tabwriter.NewWriter(p.Writer, 0, 0, 2, ' ', 0)
	apiKey := cfg.MaskedAPIKey()
	if apiKey == "" {
		apiKey = "(not set)"
	}
	rows := [][2]string{
		{"Config file", path},
		{"Search pattern", cfg.SearchPattern},
		{"Match mode", cfg.MatchMode()},
		{"Output location", string(cfg.OutputLocation)},
		{"Output folder", cfg.OutputFolder},
		{"Delay", fmt.Sprintf("%gs", cfg.DelaySeconds)},
		{"Driver video", orNone(cfg.DriverAsset)},
		{"API key", apiKey},
		{"Generator command", orNone(cfg.GeneratorCommand)},
		{"Duplicate detection", onOff(cfg.DuplicateDetection)},
		{"Verbose logging", onOff(cfg.Verbose)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	tw.Flush()
}

// PrintAssets lists driver videos, marking the configured one.
func (p Printer) PrintAssets(dir string, assets []probe.Asset, selected string) {
	if len(assets) == 0 {
		fmt.Fprintf(p.Writer, "No driver videos found in %s.\n", dir)
		return
	}
	fmt.Fprintf(p.Writer, "Driver videos in %s:\n", dir)
	for i, asset := range assets {
		marker := " "
		if asset.Path == selected {
			marker = "*"
		}
		fmt.Fprintf(p.Writer, "%s %d. %s (%s)\n", marker, i+1, asset.Name, asset.Label())
	}
}

// OutputDescription says where generated videos end up.
func OutputDescription(cfg config.Config) string {
	if cfg.CoLocated() {
		return "Videos were saved next to their source images."
	}
	return fmt.Sprintf("Videos were saved to %s.", cfg.OutputFolder)
}

// FormatElapsed renders durations the way a person would say them.
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return "less than a second"
	}
	return strings.TrimSpace(humanize.RelTime(time.Time{}, time.Time{}.Add(d), "", ""))
}

func formatTaken(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.Format("2006-01-02 15:04")
}

func orNone(value string) string {
	if value == "" {
		return "(none)"
	}
	return value
}

func onOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
