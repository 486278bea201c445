// Package cli implements the todo command.
package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/ganot/todos/internal/client"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Token   string
	Verbose bool
	Format  string // "json" | "text"

	logger *log.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the todo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage your todos",
		Long:  "A client for the todo server. Every list is private to the account behind the token.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := log.WarnLevel
			if opts.Verbose {
				level = log.DebugLevel
			}
			opts.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
				Level:  level,
				Prefix: "todo",
			})
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("TODOS_SERVER")
	if server == "" {
		server = defaultServer
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", server, "server base URL (env TODOS_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("TODOS_TOKEN"), "API key or bearer token (env TODOS_TOKEN)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))
	cmd.AddCommand(NewAPIKeyCommand(opts))

	return cmd
}

func (o *RootOptions) client() *client.Client {
	if o.Token == "" {
		o.log().Warn("no token set; requests are anonymous and changes are ignored")
	}
	o.log().Debug("using server", "url", o.Server)
	return client.New(o.Server, o.Token)
}

func (o *RootOptions) log() *log.Logger {
	if o.logger == nil {
		o.logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel, Prefix: "todo"})
	}
	return o.logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format: o.Format,
		Writer: cmd.OutOrStdout(),
	}
}
