package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/crumb/internal/cookie"
	"github.com/artpar/crumb/internal/document"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// NewListCommand creates the list command.
func NewListCommand(g *globalOptions) *cobra.Command {
	var (
		asJSON bool
		stored bool
		domain string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the page's cookies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if domain != "" && !stored {
				return errors.New("--domain needs --stored")
			}
			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				if stored {
					return listStored(ctx, cmd, s, domain, asJSON)
				}

				records := s.jar.All()

				if asJSON {
					out := make([]cookieJSON, 0, len(records))
					for _, r := range records {
						out = append(out, cookieJSON{Name: r.Name, Value: r.Value})
					}
					return writeJSON(cmd, out)
				}

				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no cookies")
					return nil
				}

				t := newTable("NAME", "VALUE")
				for _, r := range records {
					t.Row(r.Name, r.Value)
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.String())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&stored, "stored", false, "List every stored cookie with its attributes, not just the page's")
	cmd.Flags().StringVar(&domain, "domain", "", "With --stored, only cookies stored under this domain")

	return cmd
}

// listStored prints the store's live cookies with their attributes.
// Values are decoded the way the jar decodes them.
func listStored(ctx context.Context, cmd *cobra.Command, s *session, domain string, asJSON bool) error {
	cookies, err := s.doc.Stored(ctx, domain)
	if err != nil {
		return err
	}

	out := make([]document.StoredCookie, 0, len(cookies))
	for _, c := range cookies {
		sc := *c
		sc.Value = cookie.Decode(sc.Value)
		out = append(out, sc)
	}

	if asJSON {
		return writeJSON(cmd, out)
	}

	if len(out) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no cookies")
		return nil
	}

	t := newTable("NAME", "VALUE", "DOMAIN", "PATH", "EXPIRES")
	for _, c := range out {
		expires := "session"
		if !c.IsSession() {
			expires = c.Expires.Local().Format(time.DateTime)
		}
		t.Row(c.Name, c.Value, c.Domain, c.Path, expires)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// NewRawCommand creates the raw command.
func NewRawCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "raw",
		Short: "Print the page's document.cookie string",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				fmt.Fprintln(cmd.OutOrStdout(), s.doc.Read())
				return nil
			})
		},
	}
}
