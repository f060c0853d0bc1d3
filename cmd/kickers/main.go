package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fridaykickers/kickers/internal/config"
	"github.com/fridaykickers/kickers/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

// env is the state every subcommand shares once the config is loaded.
type env struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func rootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "kickers",
		Short: "Friday Kickers club client",
		Long: `kickers talks to the Friday Kickers club service.

It books beers and payments for club members and runs an offline
caching proxy in front of the web client build:

  • users: list the roster, book drinks and payments
  • serve: offline cache, live roster feed and metrics
  • cache: inspect and purge cache generations`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
	}

	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", config.ConfigFileName, "Path to the configuration file")

	root.AddCommand(
		serveCmd(e),
		usersCmd(e),
		loginCmd(e),
		logoutCmd(e),
		cacheCmd(e),
		versionCmd(),
	)
	return root
}

func (e *env) load() error {
	cfg, err := config.LoadFile(e.configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(e.logger)
	if cfg.Path() == "" {
		e.logger.Debug("no config file, using defaults", "path", e.configPath)
	}
	return nil
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
