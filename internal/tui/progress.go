// Package tui provides interactive terminal UI components.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	pinerrors "github.com/fabiodalez-dev/Pinakes-sub009/internal/errors"
	pinprogress "github.com/fabiodalez-dev/Pinakes-sub009/internal/progress"
)

const (
	defaultBarWidth = 60
	minBarWidth     = 20
)

// program is the part of *tea.Program the progress UI needs.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

var newProgram = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// Work is a job that reports its progress while it runs.
type Work func(ctx context.Context, reporter pinprogress.Reporter) error

type snapshotMsg pinprogress.Snapshot

type doneMsg struct{ err error }

type progressModel struct {
	title   string
	bar     progress.Model
	snap    pinprogress.Snapshot
	done    bool
	stopped bool
	err     error
}

func newProgressModel(title string) *progressModel {
	return &progressModel{
		title: title,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth)),
	}
}

func (m *progressModel) Init() tea.Cmd { return nil }

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = pinprogress.Snapshot(msg)
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.stopped = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = clamp(defaultBarWidth, msg.Width-4, minBarWidth)
	}
	return m, nil
}

func (m *progressModel) percent() float64 {
	if m.snap.Total <= 0 {
		return 0
	}
	return min(float64(m.snap.Current)/float64(m.snap.Total), 1)
}

func (m *progressModel) View() string {
	header := headerStyle.Render(m.title)
	counts := countStyle.Render(fmt.Sprintf("%d/%d", m.snap.Current, m.snap.Total))
	book := bookStyle.Render(m.snap.CurrentBook)

	status := lipgloss.JoinHorizontal(lipgloss.Left, counts, "  ", book)
	help := helpStyle.Render("q stop")
	if m.done {
		help = helpStyle.Render("done")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.bar.ViewAs(m.percent()), status, help) + "\n"
}

// RunWithProgress runs work while showing a progress bar. Quitting the UI
// cancels work with a StopProcessingError cause and waits for it to return.
func RunWithProgress(ctx context.Context, title string, work Work) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	m := newProgressModel(title)
	p := newProgram(m)

	errCh := make(chan error, 1)
	go func() {
		err := work(ctx, pinprogress.ReporterFunc(func(s pinprogress.Snapshot) {
			p.Send(snapshotMsg(s))
		}))
		errCh <- err
		p.Send(doneMsg{err: err})
	}()

	finalModel, runErr := p.Run()
	if typed, ok := finalModel.(*progressModel); ok && typed.stopped {
		cancel(pinerrors.NewStopProcessingError("import stopped by user"))
	}
	if runErr != nil {
		cancel(runErr)
	}

	workErr := <-errCh
	if workErr != nil {
		return workErr
	}
	return runErr
}

func clamp(preferred, available, minimum int) int {
	if available < minimum {
		return minimum
	}
	if available < preferred {
		return available
	}
	return preferred
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	countStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110"))

	bookStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("248"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)
