// Package cmd wires the CLI surface: flag handling, configuration loading
// and the mapping from error kinds to exit codes.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bookstack-tools/booksync/internal/bookstack"
	"github.com/bookstack-tools/booksync/internal/config"
)

// Exit codes: configuration problems and missing target books get distinct
// statuses so wrapper scripts can tell them apart from ordinary failures.
const (
	exitFailure  = 1
	exitConfig   = 2
	exitNotFound = 3
)

var (
	flagBook       string
	flagContentDir string
	flagBaseURL    string
	flagInsecure   bool
	flagCACert     string
	flagDryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "booksync",
	Short: "Sync a BookStack book with a local folder of markdown files",
	Long: `booksync mirrors a BookStack book to a directory tree of markdown
files and back.

Pages at the book root are files in the content directory; chapters are
first-level subdirectories holding their pages. File and directory names
carry a two-digit order prefix ("03 Getting Started.md") that becomes the
remote sibling priority.

Connection settings come from the environment (or a .env file):
BOOKSTACK_BASE_URL, BOOKSTACK_TOKEN_ID, BOOKSTACK_TOKEN_SECRET and
BOOKSTACK_BOOK_NAME are required.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Interrupts cancel the command context so watch mode
// shuts down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var missing *config.MissingVarError
	if errors.As(err, &missing) {
		return exitConfig
	}
	var notFound *bookstack.NotFoundError
	if errors.As(err, &notFound) {
		return exitNotFound
	}
	return exitFailure
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBook, "book", "", "book name (overrides BOOKSTACK_BOOK_NAME)")
	rootCmd.PersistentFlags().StringVar(&flagContentDir, "content-dir", "", "content directory (overrides CONTENT_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "BookStack base URL (overrides BOOKSTACK_BASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&flagInsecure, "insecure", false, "disable TLS certificate verification")
	rootCmd.PersistentFlags().StringVar(&flagCACert, "ca-cert", "", "path to a custom CA certificate")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "log planned changes without writing")
}

// runtime bundles what every subcommand needs once the configuration is
// resolved.
type runtime struct {
	cfg    *config.Config
	client *bookstack.Client
	logger *log.Logger
}

func buildRuntime() (*runtime, error) {
	// Flags override the environment, including the required settings, so
	// they are applied before Load validates.
	if flagBaseURL != "" {
		os.Setenv("BOOKSTACK_BASE_URL", flagBaseURL)
	}
	if flagBook != "" {
		os.Setenv("BOOKSTACK_BOOK_NAME", flagBook)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newRuntime(cfg)
}

// buildConnectionRuntime is buildRuntime without the book requirement, for
// commands that operate on the whole instance.
func buildConnectionRuntime() (*runtime, error) {
	if flagBaseURL != "" {
		os.Setenv("BOOKSTACK_BASE_URL", flagBaseURL)
	}
	cfg, err := config.LoadConnection()
	if err != nil {
		return nil, err
	}
	return newRuntime(cfg)
}

func newRuntime(cfg *config.Config) (*runtime, error) {
	applyFlags(cfg)

	httpClient, err := cfg.HTTPClient()
	if err != nil {
		return nil, err
	}
	return &runtime{
		cfg: cfg,
		client: bookstack.NewClient(bookstack.ClientOptions{
			BaseURL:     cfg.BaseURL,
			TokenID:     cfg.TokenID,
			TokenSecret: cfg.TokenSecret,
			HTTPClient:  httpClient,
		}),
		logger: log.New(os.Stdout, "", log.LstdFlags),
	}, nil
}

func applyFlags(cfg *config.Config) {
	if flagContentDir != "" {
		cfg.ContentDir = flagContentDir
	}
	if flagInsecure {
		cfg.Insecure = true
	}
	if flagCACert != "" {
		cfg.CACertPath = flagCACert
	}
	if flagDryRun {
		cfg.DryRun = true
	}
}

// findBook resolves the configured book and fails with a NotFoundError when
// it does not exist; books are never created implicitly.
func (r *runtime) findBook(ctx context.Context) (*bookstack.Book, error) {
	book, err := r.client.FindBook(ctx, r.cfg.BookName)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, &bookstack.NotFoundError{Kind: "book", Name: r.cfg.BookName}
	}
	return book, nil
}
