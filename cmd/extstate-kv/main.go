// Command extstate-kv reads and writes key-value records kept in REAPER
// ExtState by the setlist application.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/reaper-setlist/reaper_sdk_go/internal/cli"
)

func main() {
	if err := newCommand(&app{out: os.Stdout}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(a *app) *cobra.Command {
	cmd := cli.NewCommand(viper.New(), &cli.Program{
		Name:  "extstate-kv",
		Short: "Inspect and edit key-value records stored in REAPER ExtState",
		Opts: []cli.Opt{
			cli.NewOpt(&a.opts.url, "url", "", "REAPER web interface URL; falls back to REAPER_RUNTIME_MODE/REAPER_URL"),
			cli.NewOpt(&a.opts.section, "section", "Songs", "ExtState section of the store"),
			cli.NewOpt(&a.opts.username, "username", "", "web interface user"),
			cli.NewOpt(&a.opts.password, "password", "", "web interface password"),
			cli.NewOpt(&a.opts.timeout, "timeout", 10*time.Second, "per-request timeout"),
			cli.NewOpt(&a.opts.volatile, "volatile", false, "write with SET/EXTSTATE instead of SET/EXTSTATEPERSIST"),
			cli.NewOpt(&a.opts.logLevel, "log-level", zapcore.WarnLevel, "log level"),
		},
	})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error { return a.close() }

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one record",
			Args:  cobra.ExactArgs(1),
			RunE:  func(c *cobra.Command, args []string) error { return a.get(c.Context(), args[0]) },
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every record of the section",
			Args:  cobra.NoArgs,
			RunE:  func(c *cobra.Command, _ []string) error { return a.list(c.Context()) },
		},
		&cobra.Command{
			Use:   "keys",
			Short: "Print the key index of the section",
			Args:  cobra.NoArgs,
			RunE:  func(c *cobra.Command, _ []string) error { return a.keys(c.Context()) },
		},
		&cobra.Command{
			Use:   "add <json>",
			Short: "Store a new record and print it with its generated id",
			Args:  cobra.ExactArgs(1),
			RunE:  func(c *cobra.Command, args []string) error { return a.add(c.Context(), args[0]) },
		},
		&cobra.Command{
			Use:   "update <key> <json>",
			Short: "Overwrite the record under key",
			Args:  cobra.ExactArgs(2),
			RunE:  func(c *cobra.Command, args []string) error { return a.update(c.Context(), args[0], args[1]) },
		},
		&cobra.Command{
			Use:   "delete <key>",
			Short: "Remove the record under key",
			Args:  cobra.ExactArgs(1),
			RunE:  func(c *cobra.Command, args []string) error { return a.delete(c.Context(), args[0]) },
		},
		&cobra.Command{
			Use:   "raw <key>",
			Short: "Print the stored chunks of key",
			Args:  cobra.ExactArgs(1),
			RunE:  func(c *cobra.Command, args []string) error { return a.raw(c.Context(), args[0]) },
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Start an interactive shell",
			Args:  cobra.NoArgs,
			RunE:  func(c *cobra.Command, _ []string) error { return a.shell(c.Context()) },
		},
	)
	return cmd
}
