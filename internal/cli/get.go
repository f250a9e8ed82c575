package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// GetOptions holds options for the get command.
type GetOptions struct {
	JSON bool
	Copy bool
}

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// NewGetCommand creates the get command.
func NewGetCommand(g *globalOptions) *cobra.Command {
	opts := &GetOptions{}

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a cookie's value",
		Long:  "Print the decoded value of a cookie. Exits non-zero when it is not set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				value, ok := s.jar.Load(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", errAbsent, args[0])
				}
				if opts.Copy {
					if err := copyToClipboard(value); err != nil {
						return fmt.Errorf("failed to copy to clipboard: %w", err)
					}
				}
				if opts.JSON {
					return writeJSON(cmd, cookieJSON{Name: args[0], Value: value})
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&opts.Copy, "copy", "c", false, "Also copy the value to the clipboard")

	return cmd
}

// NewExistsCommand creates the exists command.
func NewExistsCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exists NAME",
		Short: "Check whether a cookie is set",
		Long:  "Print true or false. Exits non-zero when the cookie is not set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(ctx context.Context, s *session) error {
				ok := s.jar.Exists(args[0])
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				if !ok {
					return fmt.Errorf("%w: %s", errAbsent, args[0])
				}
				return nil
			})
		},
	}
}

type cookieJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
