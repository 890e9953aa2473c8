package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	p := tea.NewProgram(tui.NewModel(ctx.Store, ctx.Manager), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
