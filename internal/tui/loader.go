package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user interrupts a loader with ctrl+c.
var ErrCancelled = errors.New("cancelled")

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type runDoneMsg struct {
	err error
}

type loaderModel struct {
	label   string
	run     func(ctx context.Context) error
	ctx     context.Context
	cancel  context.CancelFunc
	spinner spinner.Model
	err     error
	done    bool
}

func newLoaderModel(ctx context.Context, label string, run func(ctx context.Context) error) loaderModel {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return loaderModel{
		label:   label,
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		spinner: s,
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doRun(), m.spinner.Tick)
}

func (m loaderModel) doRun() tea.Cmd {
	run, ctx := m.run, m.ctx
	return func() tea.Msg {
		return runDoneMsg{err: run(ctx)}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner labelled label while run executes. It renders
// inline (no alt screen). ctrl+c cancels the context passed to run.
func RunLoader(ctx context.Context, label string, run func(ctx context.Context) error) error {
	m := newLoaderModel(ctx, label, run)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	result, err := p.Run()
	if err != nil {
		return err
	}
	return result.(loaderModel).err
}
