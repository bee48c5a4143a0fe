package report

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starxnet/mining-credits-cli/internal/application"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	render func(styles) string
	styles styles
	output string
}

func newModel(render func(styles) string) model {
	return model{
		render: render,
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = m.render(m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render renders a run report for the terminal.
func Render(rep application.Report) (string, error) {
	return runProgram(func(s styles) string {
		return renderRunView(rep, s)
	})
}

// RenderStatuses renders the account status listing.
func RenderStatuses(statuses []application.Status, opts RenderOptions) (string, error) {
	return runProgram(func(s styles) string {
		return renderStatusView(statuses, opts, s)
	})
}

func runProgram(render func(styles) string) (string, error) {
	p := tea.NewProgram(
		newModel(render),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
