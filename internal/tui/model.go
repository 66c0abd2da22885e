package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"actbatch/internal/app"
	"actbatch/internal/domain"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseConfirm
	PhaseDispatching
	PhaseDone
	PhaseError
)

// recentLimit is how many finished items stay visible while dispatching.
const recentLimit = 5

// Messages for the TUI
type (
	PlanReadyMsg struct {
		Plan domain.BatchPlan
	}
	ScanProgressMsg struct {
		Current int
		Total   int
	}
	DispatchProgressMsg struct {
		Event domain.ProgressEvent
	}
	DispatchDoneMsg struct {
		Report app.Report
		Err    error
	}
	ErrorMsg struct {
		Err error
	}
	ConfirmMsg struct{ Confirmed bool }
	tickMsg    time.Time
)

// DispatchFunc starts the dispatch loop in the background. Progress arrives
// as DispatchProgressMsg and completion as DispatchDoneMsg.
type DispatchFunc func(plan domain.BatchPlan) tea.Cmd

// Config for the TUI
type Config struct {
	Root        string
	Output      string
	Pattern     string
	MatchMode   string
	AutoConfirm bool
	Dispatch    DispatchFunc
	// Cancel stops a running dispatch; the model waits for DispatchDoneMsg.
	Cancel context.CancelFunc
}

type finishedItem struct {
	name    string
	outcome domain.Outcome
}

// Model is the main TUI model
type Model struct {
	config           Config
	Phase            Phase
	Plan             domain.BatchPlan
	Report           app.Report
	spinner          spinner.Model
	progress         progress.Model
	scanCurrent      int
	scanTotal        int
	processed        int
	total            int
	succeeded        int
	failed           int
	currentFile      string
	currentIndex     int
	recent           []finishedItem
	confirmSelection bool // true = yes, false = no
	Declined         bool
	Cancelling       bool
	Interrupted      bool
	Err              error
	Quitting         bool
	started          time.Time
	width            int
	height           int
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		config:           cfg,
		Phase:            PhaseScanning,
		spinner:          s,
		progress:         p,
		confirmSelection: true,
		width:            80,
		height:           24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ScanProgressMsg:
		m.scanCurrent = msg.Current
		m.scanTotal = msg.Total
		return m, nil

	case PlanReadyMsg:
		m.Plan = msg.Plan
		m.total = msg.Plan.Total
		if m.Plan.Total == 0 {
			m.Phase = PhaseDone
			return m, nil
		}
		if m.config.AutoConfirm {
			return m.startDispatch()
		}
		m.Phase = PhaseConfirm
		return m, nil

	case ConfirmMsg:
		if !msg.Confirmed {
			m.Declined = true
			m.Phase = PhaseDone
			return m, tea.Quit
		}
		return m.startDispatch()

	case DispatchProgressMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case DispatchDoneMsg:
		m.Phase = PhaseDone
		m.Report = msg.Report
		m.Cancelling = false
		m.processed = msg.Report.State.Processed
		m.succeeded = msg.Report.State.Succeeded
		m.failed = msg.Report.State.Failed
		if msg.Err != nil {
			if errors.Is(msg.Err, context.Canceled) {
				m.Interrupted = true
			} else {
				m.Phase = PhaseError
				m.Err = msg.Err
			}
		}
		return m, nil

	case ErrorMsg:
		m.Phase = PhaseError
		m.Err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.Phase == PhaseScanning || m.Phase == PhaseDispatching {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case tickMsg:
		if m.Phase == PhaseDispatching {
			var cmds []tea.Cmd
			if m.total > 0 {
				cmds = append(cmds, m.progress.SetPercent(float64(m.processed)/float64(m.total)))
			}
			cmds = append(cmds, tickCmd(), m.spinner.Tick)
			return m, tea.Batch(cmds...)
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.Phase == PhaseDispatching {
			if !m.Cancelling && m.config.Cancel != nil {
				m.config.Cancel()
			}
			m.Cancelling = true
			return m, nil
		}
		if m.Phase == PhaseScanning || m.Phase == PhaseConfirm {
			if m.config.Cancel != nil {
				m.config.Cancel()
			}
			m.Interrupted = true
		}
		m.Quitting = true
		return m, tea.Quit
	case "q":
		if m.Phase == PhaseDispatching {
			return m, nil
		}
		m.Quitting = true
		return m, tea.Quit
	case "left", "h", "y", "Y":
		if m.Phase == PhaseConfirm {
			m.confirmSelection = true
		}
	case "right", "l", "n", "N":
		if m.Phase == PhaseConfirm {
			m.confirmSelection = false
		}
	case "enter":
		if m.Phase == PhaseConfirm {
			confirmed := m.confirmSelection
			return m, func() tea.Msg {
				return ConfirmMsg{Confirmed: confirmed}
			}
		}
		if m.Phase == PhaseDone || m.Phase == PhaseError {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) startDispatch() (tea.Model, tea.Cmd) {
	m.Phase = PhaseDispatching
	m.started = time.Now()
	if m.config.Dispatch == nil {
		return m, nil
	}
	return m, tea.Batch(tickCmd(), m.config.Dispatch(m.Plan))
}

func (m *Model) applyEvent(event domain.ProgressEvent) {
	m.total = event.Total
	m.currentFile = event.Current
	if event.Phase == domain.PhaseStarted {
		m.currentIndex = event.Processed
		return
	}
	m.processed = event.Processed
	switch event.Outcome {
	case domain.OutcomeSuccess:
		m.succeeded++
	case domain.OutcomeFailure:
		m.failed++
	}
	m.recent = append(m.recent, finishedItem{name: event.Current, outcome: event.Outcome})
	if len(m.recent) > recentLimit {
		m.recent = m.recent[len(m.recent)-recentLimit:]
	}
}

// upcomingFolders lists the folders after the one holding the current item.
func (m Model) upcomingFolders(limit int) []string {
	var names []string
	offset := 0
	for _, group := range m.Plan.Groups {
		end := offset + len(group.Members)
		if offset > m.currentIndex {
			names = append(names, shortenPath(group.Folder))
			if len(names) == limit {
				break
			}
		}
		offset = end
	}
	return names
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder

	// Header
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.Phase {
	case PhaseScanning:
		b.WriteString(m.renderScanning())
	case PhaseConfirm:
		b.WriteString(m.renderPlan())
		b.WriteString("\n")
		b.WriteString(m.renderConfirmPrompt())
	case PhaseDispatching:
		b.WriteString(m.renderDispatch())
	case PhaseDone:
		b.WriteString(m.renderCompletion())
	case PhaseError:
		b.WriteString(m.renderError())
	}

	// Help
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(iconVideo + " actbatch")
	subtitle := subtitleStyle.Render("Batch image to video generation")

	dimStyle := lipgloss.NewStyle().Foreground(dimTextColor)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		dimStyle.Render(fmt.Sprintf("%s Source: %s", iconFolder, shortenPath(m.config.Root))),
		dimStyle.Render(fmt.Sprintf("%s Output: %s", iconFolder, m.config.Output)),
		dimStyle.Render(fmt.Sprintf("%s Pattern: %q (%s)", iconSearch, m.config.Pattern, m.config.MatchMode)),
	)
}

func (m Model) renderScanning() string {
	if m.scanTotal > 0 {
		percent := float64(m.scanCurrent) / float64(m.scanTotal)
		progressBar := m.progress.ViewAs(percent)

		countStyle := lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
		percentStyle := lipgloss.NewStyle().Foreground(dimTextColor)

		return fmt.Sprintf("%s Scanning folders...\n\n  %s\n  %s %s",
			m.spinner.View(),
			progressBar,
			countStyle.Render(fmt.Sprintf("%d/%d", m.scanCurrent, m.scanTotal)),
			percentStyle.Render(fmt.Sprintf("(%.0f%%)", percent*100)),
		)
	}
	return fmt.Sprintf("%s Scanning folders...", m.spinner.View())
}

func (m Model) renderPlan() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Folders"))
	b.WriteString("\n\n")

	for i, group := range m.Plan.Groups {
		if i >= maxListed {
			b.WriteString(fmt.Sprintf("  ... and %d more folders\n", len(m.Plan.Groups)-maxListed))
			break
		}
		b.WriteString(fmt.Sprintf("  %s %s  %s\n",
			iconFolder,
			fileNameStyle.Render(shortenPath(group.Folder)),
			countStyle.Render(fmt.Sprintf("%d images", len(group.Members))),
		))
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Summary"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("To generate:"), statValueStyle.Render(fmt.Sprintf("%d", m.Plan.Total))))
	dimStyle := lipgloss.NewStyle().Foreground(dimTextColor)
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Already generated:"), dimStyle.Render(fmt.Sprintf("%s %d", iconSkipped, m.Plan.SkippedDuplicates))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Folders:"), dimStyle.Render(fmt.Sprintf("%d", len(m.Plan.Groups)))))

	return b.String()
}

func (m Model) renderConfirmPrompt() string {
	prompt := confirmPromptStyle.Render(fmt.Sprintf("Generate %d videos?", m.Plan.Total))

	var yesBtn, noBtn string
	if m.confirmSelection {
		yesBtn = highlightBoxStyle.
			Background(lipgloss.Color("#2D5A27")).
			Render(" Yes ")
		noBtn = boxStyle.Render(" No ")
	} else {
		yesBtn = boxStyle.Render(" Yes ")
		noBtn = highlightBoxStyle.
			Background(lipgloss.Color("#5A2727")).
			Render(" No ")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yesBtn, "  ", noBtn)

	return lipgloss.JoinVertical(lipgloss.Left, prompt, "", buttons)
}

func (m Model) renderDispatch() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Generating Videos"))
	b.WriteString("\n\n")

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.processed) / float64(m.total)
	}

	label := "Generating..."
	if m.Cancelling {
		label = warningStyle.Render("Stopping after the current item...")
	}
	b.WriteString(fmt.Sprintf("  %s %s\n\n", m.spinner.View(), label))
	b.WriteString(fmt.Sprintf("  %s\n", m.progress.ViewAs(percent)))

	percentStyle := lipgloss.NewStyle().Foreground(dimTextColor)
	b.WriteString(fmt.Sprintf("  %s %s  %s %s\n",
		countStyle.Render(fmt.Sprintf("%d/%d images", m.processed, m.total)),
		percentStyle.Render(fmt.Sprintf("(%d%%)", app.Percent(domain.ProgressState{Processed: m.processed, Total: m.total}))),
		successStyle.Render(fmt.Sprintf("%s %d", iconSuccess, m.succeeded)),
		errorStyle.Render(fmt.Sprintf("%s %d", iconError, m.failed)),
	))

	if m.currentFile != "" && m.processed < m.total {
		b.WriteString(fmt.Sprintf("\n  %s %s\n", iconArrow, fileNameStyle.Render(m.currentFile)))
	}

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, item := range m.recent {
			icon := successStyle.Render(iconSuccess)
			if item.outcome != domain.OutcomeSuccess {
				icon = errorStyle.Render(iconError)
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", icon, dateStyle.Render(item.name)))
		}
	}

	if next := m.upcomingFolders(3); len(next) > 0 {
		b.WriteString("\n")
		b.WriteString(pathStyle.Render("  Next: " + strings.Join(next, ", ")))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderCompletion() string {
	var b strings.Builder

	switch {
	case m.Declined:
		b.WriteString(warningStyle.Render("Cancelled. No videos were generated."))
		return b.String()
	case m.Plan.Total == 0:
		dimStyle := lipgloss.NewStyle().Foreground(dimTextColor)
		b.WriteString(dimStyle.Render("  No images to process"))
		if m.Plan.SkippedDuplicates > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d already generated)", m.Plan.SkippedDuplicates)))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(sectionStyle.Render("Batch Complete"))
	b.WriteString("\n\n")

	if m.Interrupted {
		b.WriteString(fmt.Sprintf("  %s\n\n", warningStyle.Render(fmt.Sprintf("%s Interrupted. Results so far were kept.", iconWarning))))
	} else if m.failed == 0 {
		b.WriteString(fmt.Sprintf("  %s %s\n\n", successStyle.Render(iconSuccess), successStyle.Render("All videos generated!")))
	}

	elapsed := m.Report.State.Elapsed
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Succeeded:"), successStyle.Render(fmt.Sprintf("%s %d", iconSuccess, m.succeeded))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprintf("%s %d", iconError, m.failed))))
	if m.processed < m.total {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Not processed:"), statValueStyle.Render(fmt.Sprintf("%d", m.total-m.processed))))
	}
	if elapsed > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Elapsed:"), statValueStyle.Render(elapsed.Round(time.Second).String())))
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Saved to:"), pathStyle.Render(m.config.Output)))

	if m.failed > 0 {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("Failures:"))
		b.WriteString("\n")
		shown := 0
		for _, result := range m.Report.Results {
			if result.Succeeded() {
				continue
			}
			if shown == maxListed {
				b.WriteString(fmt.Sprintf("  ... and %d more\n", m.failed-shown))
				break
			}
			b.WriteString(fmt.Sprintf("  %s %s: %v\n", errorStyle.Render(iconError), result.Source.Name, result.Err))
			shown++
		}
	}

	return b.String()
}

func (m Model) renderError() string {
	icon := errorStyle.Render(iconError)
	msg := errorStyle.Render(fmt.Sprintf("Error: %s", m.Err.Error()))

	return highlightBoxStyle.
		BorderForeground(errorColor).
		Render(fmt.Sprintf("%s %s", icon, msg))
}

func (m Model) renderHelp() string {
	var help string
	switch m.Phase {
	case PhaseScanning:
		help = "Press q to quit"
	case PhaseConfirm:
		help = "← → or y/n to select • Enter to confirm • q to quit"
	case PhaseDispatching:
		help = "Generating videos... ctrl+c to stop after the current item"
	case PhaseDone:
		help = "Press Enter to exit"
	case PhaseError:
		help = "Press Enter or q to exit"
	}
	return helpStyle.Render(help)
}

// Summary describes the finished batch for the log file.
func (m Model) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d of %d processed, %s total input",
		m.succeeded, m.failed, m.processed, m.total, humanize.IBytes(uint64(planBytes(m.Plan))))
}

func planBytes(plan domain.BatchPlan) int64 {
	var total int64
	for _, item := range plan.Items() {
		total += item.SizeBytes
	}
	return total
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
