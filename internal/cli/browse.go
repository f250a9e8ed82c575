package cli

import (
	"context"
	"fmt"

	"github.com/artpar/crumb/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the page's cookies interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				browser := tui.NewBrowser(s.jar, s.doc.URL().String(),
					tui.WithDeleteScope(s.cfg.Defaults.Path, s.cfg.Defaults.Domain),
				)
				p := tea.NewProgram(browser, tea.WithAltScreen(), tea.WithContext(ctx))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("browser failed: %w", err)
				}
				return nil
			})
		},
	}
}
