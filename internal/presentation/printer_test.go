package presentation

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"actbatch/internal/app"
	"actbatch/internal/config"
	"actbatch/internal/domain"
	"actbatch/internal/infra/probe"
)

func TestPrintPreviewListsEntriesAndSummary(t *testing.T) {
	var buf bytes.Buffer
	taken := time.Date(2024, 10, 2, 15, 1, 0, 0, time.Local)
	entries := []domain.PreviewEntry{
		{Image: domain.NewImageFile("/src/a-genx.jpg", 1024), RelFolder: "root", TakenAt: &taken},
		{Image: domain.NewImageFile("/src/char1/b-genx.png", 2048), RelFolder: "char1"},
		{Image: domain.NewImageFile("/src/char1/c-genx.png", 1024), RelFolder: "char1"},
	}

	Printer{Writer: &buf}.PrintPreview("/src", entries)
	output := buf.String()
	for _, want := range []string{"a-genx.jpg", "2024-10-02 15:01", "2.0 KiB", "Total images: 3", "Total size: 4.0 KiB", "Folders: 2"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestPrintPreviewEmpty(t *testing.T) {
	var buf bytes.Buffer
	Printer{Writer: &buf}.PrintPreview("/src", nil)
	if !strings.Contains(buf.String(), "No matching images") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestPrintEventFinishedLine(t *testing.T) {
	var buf bytes.Buffer
	printer := Printer{Writer: &buf}

	printer.PrintEvent(domain.ProgressEvent{Phase: domain.PhaseStarted, Processed: 2, Total: 10, Current: "x.jpg"})
	printer.PrintEvent(domain.ProgressEvent{Phase: domain.PhaseFinished, Processed: 3, Total: 10, Current: "x.jpg", Outcome: domain.OutcomeSuccess})
	printer.PrintEvent(domain.ProgressEvent{Phase: domain.PhaseFinished, Processed: 4, Total: 10, Current: "y.jpg", Outcome: domain.OutcomeFailure})

	want := "[3/10] 30% ✓ x.jpg\n[4/10] 40% ✗ y.jpg\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestPrintRunSummaryListsFailures(t *testing.T) {
	var buf bytes.Buffer
	report := app.Report{
		Results: []domain.ProcessingResult{
			{Source: domain.NewImageFile("/src/a.jpg", 1), Outcome: domain.OutcomeSuccess},
			{Source: domain.NewImageFile("/src/b.jpg", 1), Outcome: domain.OutcomeFailure, Err: errors.New("quota exceeded")},
		},
		State: domain.ProgressState{Total: 3, Processed: 2, Succeeded: 1, Failed: 1, Elapsed: 45 * time.Second},
	}
	cfg := config.Config{OutputLocation: config.Centralized, OutputFolder: "/videos"}

	Printer{Writer: &buf}.PrintRunSummary(report, cfg)
	output := buf.String()
	for _, want := range []string{"Processed 2 of 3 images in 45 seconds", "Succeeded: 1", "Failed: 1", "Not processed: 1", "/videos", "/src/b.jpg: quota exceeded"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestPrintSettingsMasksKey(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.APIKey = "key_abcdefghijklmnopqrstuvwxyz"

	Printer{Writer: &buf}.PrintSettings(cfg, "/cfg/config.json")
	output := buf.String()
	if strings.Contains(output, cfg.APIKey) {
		t.Fatalf("api key leaked:\n%s", output)
	}
	if !strings.Contains(output, "key_abcdef...wxyz") || !strings.Contains(output, "Contains") {
		t.Fatalf("unexpected settings output:\n%s", output)
	}
}

func TestPrintAssetsMarksSelection(t *testing.T) {
	var buf bytes.Buffer
	assets := []probe.Asset{
		{Path: "/a/one.mp4", Name: "one.mp4", Duration: 12300 * time.Millisecond},
		{Path: "/a/two.mov", Name: "two.mov", SizeBytes: 2048},
	}

	Printer{Writer: &buf}.PrintAssets("/a", assets, "/a/two.mov")
	output := buf.String()
	if !strings.Contains(output, "  1. one.mp4 (12.3s)") || !strings.Contains(output, "* 2. two.mov (2.0 KiB)") {
		t.Fatalf("unexpected assets output:\n%s", output)
	}
}

func TestOutputDescription(t *testing.T) {
	if got := OutputDescription(config.Config{OutputLocation: config.CoLocated}); !strings.Contains(got, "next to") {
		t.Fatalf("unexpected co-located description %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := FormatElapsed(200 * time.Millisecond); got != "less than a second" {
		t.Fatalf("got %q", got)
	}
	if got := FormatElapsed(5 * time.Minute); got != "5 minutes" {
		t.Fatalf("got %q", got)
	}
}
