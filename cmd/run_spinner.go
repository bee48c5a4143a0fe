package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type runDoneMsg struct {
	err error
}

type runSpinnerModel struct {
	spinner spinner.Model
	label   string
	work    tea.Cmd
	err     error
	done    bool
}

func newRunSpinnerModel(label string, work tea.Cmd) runSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return runSpinnerModel{
		spinner: s,
		label:   label,
		work:    work,
	}
}

func (m runSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m runSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case runDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m runSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

func runWithSpinner(ctx context.Context, output io.Writer, label string, work func() error) error {
	workCmd := func() tea.Msg {
		return runDoneMsg{err: work()}
	}

	p := tea.NewProgram(
		newRunSpinnerModel(label, workCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(runSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
