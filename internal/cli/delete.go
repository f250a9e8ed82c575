package cli

import (
	"context"
	"fmt"

	"github.com/artpar/crumb/internal/cookie"
	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(g *globalOptions) *cobra.Command {
	opts := cookie.Options{}

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a cookie",
		Long: "Expire a cookie. A cookie stored with a path or domain must be " +
			"deleted with the same path and domain.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				// Same scope set stored it under
				s.jar.DeleteScoped(s.cfg.Defaults.Apply(opts))
				if s.jar.Exists(opts.Name) {
					s.log.Warn().Str("name", opts.Name).
						Msg("cookie still set; it was stored under another path or domain")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "Path the cookie was stored under (default from config, else /)")
	cmd.Flags().StringVar(&opts.Domain, "domain", "", "Domain the cookie was stored under (default from config)")

	return cmd
}

// NewEndSessionCommand creates the end-session command.
func NewEndSessionCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "end-session",
		Short: "Drop session cookies",
		Long: "Remove every cookie stored without a lifetime, as a browser does " +
			"when it closes, and purge expired cookies.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				dropped, err := s.doc.EndSession(ctx)
				if err != nil {
					return err
				}
				expired, err := s.doc.Cleanup(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d session and %d expired cookies\n", dropped, expired)
				return nil
			})
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(g *globalOptions) *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored cookies",
		Long: "Remove every stored cookie, whatever page it belongs to, or with " +
			"--domain only the cookies stored under that domain.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				if domain != "" {
					n, err := s.doc.ClearDomain(ctx, domain)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "removed %d cookies\n", n)
					return nil
				}

				n, err := s.doc.Count(ctx)
				if err != nil {
					return err
				}
				if err := s.doc.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d cookies\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Only cookies stored under this domain")

	return cmd
}
