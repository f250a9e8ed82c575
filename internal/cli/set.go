package cli

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/crumb/internal/cookie"
	"github.com/artpar/crumb/internal/duration"
	"github.com/spf13/cobra"
)

// SetOptions holds options for the set command.
type SetOptions struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite string
	Lifetime duration.Spec
	TTL      time.Duration
}

// NewSetCommand creates the set command.
func NewSetCommand(g *globalOptions) *cobra.Command {
	opts := &SetOptions{}

	cmd := &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Store a cookie",
		Long: "Store a cookie on the page. Without a lifetime flag the cookie lives " +
			"for the session, until end-session is run.",
		Example: `  crumb set theme dark
  crumb set token abc123 --days 7 --secure --samesite strict
  crumb set pref 1 --path /app --hours 1 --minutes 30
  crumb set flash 1 --ttl 90s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sameSite, err := cookie.ParseSameSite(opts.SameSite)
			if err != nil {
				return err
			}
			options := cookie.Options{
				Name:     args[0],
				Value:    args[1],
				Path:     opts.Path,
				Domain:   opts.Domain,
				Secure:   opts.Secure,
				SameSite: sameSite,
			}
			switch {
			case cmd.Flags().Changed("ttl") && lifetimeChanged(cmd):
				return errors.New("--ttl cannot be combined with --days, --hours, --minutes, --seconds or --ms")
			case cmd.Flags().Changed("ttl"):
				options.Duration = cookie.Lifetime(duration.FromDuration(opts.TTL))
			case lifetimeChanged(cmd):
				options.Duration = cookie.Lifetime(opts.Lifetime)
			}

			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				s.jar.Store(s.cfg.Defaults.Apply(options))
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Path, "path", "", "Cookie path (default /)")
	f.StringVar(&opts.Domain, "domain", "", "Cookie domain")
	f.BoolVar(&opts.Secure, "secure", false, "Only send the cookie over https")
	f.StringVar(&opts.SameSite, "samesite", "", "SameSite policy (none, lax, strict)")
	f.Float64Var(&opts.Lifetime.Days, "days", 0, "Lifetime in days")
	f.Float64Var(&opts.Lifetime.Hours, "hours", 0, "Lifetime in hours")
	f.Float64Var(&opts.Lifetime.Minutes, "minutes", 0, "Lifetime in minutes")
	f.Float64Var(&opts.Lifetime.Seconds, "seconds", 0, "Lifetime in seconds")
	f.Float64Var(&opts.Lifetime.Milliseconds, "ms", 0, "Lifetime in milliseconds")
	f.DurationVar(&opts.TTL, "ttl", 0, "Lifetime as a Go duration (e.g. 90m, 1h30m)")

	return cmd
}

func lifetimeChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"days", "hours", "minutes", "seconds", "ms"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
