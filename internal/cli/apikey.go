package cli

import (
	"errors"

	"github.com/ganot/todos/internal/repository"
	"github.com/ganot/todos/internal/sqlite"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewAPIKeyCommand groups API key administration. It works on the database
// file directly and does not need a running server.
func NewAPIKeyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}
	cmd.AddCommand(newAPIKeyAddCommand(rootOpts))
	return cmd
}

func newAPIKeyAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath      string
		userID      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Issue a new API key for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return NewExitError(ExitCommandError, "--user is required")
			}

			handle := sqlite.NewHandle(dbPath)
			defer handle.Close()
			db, err := handle.DB()
			if err != nil {
				return WrapExitError(ExitCommandError, "open database", err)
			}

			token := uuid.NewString()
			err = sqlite.NewAPIKeyRepository(db).Add(cmd.Context(), token, userID, description)
			if errors.Is(err, repository.ErrDuplicate) {
				return WrapExitError(ExitFailure, "key collision, try again", err)
			}
			if err != nil {
				return WrapExitError(ExitFailure, "store api key", err)
			}

			rootOpts.log().Debug("issued api key", "user_id", userID, "db", dbPath)
			return rootOpts.formatter(cmd).Message(token)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "todos.db", "path to the server database")
	cmd.Flags().StringVar(&userID, "user", "", "user ID the key authenticates as")
	cmd.Flags().StringVar(&description, "description", "", "free-form note stored with the key")

	return cmd
}
