// Package cli implements the crumb command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/artpar/crumb/internal/config"
	"github.com/artpar/crumb/internal/cookie"
	"github.com/artpar/crumb/internal/document"
	"github.com/artpar/crumb/internal/document/sqlite"
	"github.com/artpar/crumb/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// errAbsent is returned by get and exists when the cookie is not set.
var errAbsent = errors.New("cookie not set")

// globalOptions holds the persistent flags.
type globalOptions struct {
	ConfigPath string
	PageURL    string
	Database   string
	LogLevel   string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "crumb",
		Short: "crumb - a page's cookie string from the command line",
		Long: "crumb reads and writes the document.cookie string of a page, " +
			"keeping it in a local cookie jar that lives across runs.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.ConfigPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.StringVarP(&g.PageURL, "url", "u", "", "Page URL whose cookies are used")
	flags.StringVar(&g.Database, "db", "", "Cookie database file, or :memory:")
	flags.StringVar(&g.LogLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")

	cmd.AddCommand(
		NewSetCommand(g),
		NewGetCommand(g),
		NewExistsCommand(g),
		NewDeleteCommand(g),
		NewListCommand(g),
		NewRawCommand(g),
		NewEndSessionCommand(g),
		NewClearCommand(g),
		NewRunCommand(g),
		NewBrowseCommand(g),
	)

	return cmd
}

// session is an open page: its configuration, document and jar.
type session struct {
	cfg config.Config
	log zerolog.Logger
	doc *document.Document
	jar *cookie.Jar
}

// openSession loads the configuration with flag overrides and opens the
// page's document over the configured store.
func openSession(cmd *cobra.Command, g *globalOptions) (*session, error) {
	var opts []config.ConfigOption
	if g.PageURL != "" {
		opts = append(opts, config.WithPageURL(g.PageURL))
	}
	if g.Database != "" {
		opts = append(opts, config.WithDatabase(g.Database))
	}
	if g.LogLevel != "" {
		opts = append(opts, config.WithLogLevel(g.LogLevel))
	}

	cfg, err := config.Load(g.ConfigPath, opts...)
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.LogLevel, cmd.ErrOrStderr())

	store, err := openStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	doc, err := document.Open(cfg.PageURL,
		document.WithStore(store),
		document.WithLogger(log.With().Str("component", "document").Logger()),
	)
	if err != nil {
		store.Close()
		return nil, err
	}

	log.Debug().Str("url", doc.URL().String()).Str("db", cfg.Database).Msg("page opened")

	return &session{
		cfg: cfg,
		log: log,
		doc: doc,
		jar: cookie.NewJar(doc, cookie.WithLogger(log.With().Str("component", "jar").Logger())),
	}, nil
}

func openStore(path string) (document.Store, error) {
	if path == config.InMemory {
		return document.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}
	return sqlite.New(path)
}

func (s *session) Close() {
	if err := s.doc.Close(); err != nil {
		s.log.Error().Err(err).Msg("failed to close cookie store")
	}
}

// withSession runs fn against an open session and closes it afterwards.
func withSession(cmd *cobra.Command, g *globalOptions, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession(cmd, g)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, s)
}
