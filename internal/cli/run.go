package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/artpar/crumb/internal/script"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Timeout time.Duration
	Eval    bool
	NoEval  bool
}

// NewRunCommand creates the run command.
func NewRunCommand(g *globalOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run SCRIPT.js",
		Short: "Run a JavaScript file against the page's cookies",
		Long: "Run a script with document.cookie bound to the page and a cookies " +
			"helper (store, load, exists, delete, all). location describes the page. console output is logged " +
			"and the script's completion value, if any, is printed.",
		Example: `  crumb run login.js
  crumb run -e 'document.cookie = "seen=1"; document.cookie'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if !opts.Eval {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read script: %w", err)
				}
				source = string(data)
			}

			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				engine := script.NewEngine(s.jar)
				if opts.NoEval {
					engine.DisableEval()
				}
				log := s.log.With().Str("component", "script").Logger()
				engine.SetConsoleHandler(func(level, message string) {
					switch level {
					case "debug":
						log.Debug().Msg(message)
					case "warn":
						log.Warn().Msg(message)
					case "error":
						log.Error().Msg(message)
					default:
						fmt.Fprintln(cmd.OutOrStdout(), message)
					}
				})

				u := s.doc.URL()
				engine.SetGlobal("location", map[string]interface{}{
					"href":     u.String(),
					"protocol": u.Scheme + ":",
					"host":     u.Host,
					"hostname": u.Hostname(),
					"pathname": u.EscapedPath(),
				})

				result, err := engine.ExecuteWithTimeout(ctx, source, opts.Timeout)
				if err != nil {
					return err
				}
				return printResult(cmd, result)
			})
		},
	}

	cmd.Flags().DurationVarP(&opts.Timeout, "timeout", "t", 30*time.Second, "Abort the script after this long (0 disables)")
	cmd.Flags().BoolVarP(&opts.Eval, "eval", "e", false, "Treat the argument as script source instead of a file")
	cmd.Flags().BoolVar(&opts.NoEval, "no-eval", false, "Disable eval and the Function constructor")

	return cmd
}

func printResult(cmd *cobra.Command, result interface{}) error {
	switch v := result.(type) {
	case nil:
		return nil
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	case map[string]interface{}, []interface{}:
		return writeJSON(cmd, v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
}
