package cli

import (
	"strconv"
	"strings"

	"github.com/ganot/todos/internal/listview"
	"github.com/ganot/todos/internal/tui"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your todos, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := listview.NewController(listview.New(), rootOpts.client())
			return rootOpts.finish(cmd, ctrl, ctrl.Refresh(cmd.Context()))
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>...",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := listview.NewController(listview.New(), rootOpts.client())
			sent, err := ctrl.Add(cmd.Context(), strings.Join(args, " "))
			if err == nil && !sent {
				return NewExitError(ExitCommandError, "title cannot be empty")
			}
			return rootOpts.finish(cmd, ctrl, err)
		},
	}
}

// NewEditCommand creates the edit command. The new title is compared with
// the stored one first; unchanged or blank titles are not sent.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <title>...",
		Short: "Change the title of a todo",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctrl := listview.NewController(listview.New(), rootOpts.client())
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return rootOpts.fail(cmd, err)
			}
			if _, ok := ctrl.View().Row(id); !ok {
				rootOpts.log().Debug("todo not in list", "id", id)
			}

			ctrl.View().Edit(id, strings.Join(args[1:], " "))
			sent, err := ctrl.Submit(cmd.Context(), id)
			if err == nil && !sent {
				return rootOpts.formatter(cmd).Message("nothing to change")
			}
			return rootOpts.finish(cmd, ctrl, err)
		},
	}
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl := listview.NewController(listview.New(), rootOpts.client())
			return rootOpts.finish(cmd, ctrl, ctrl.Remove(cmd.Context(), id))
		},
	}
}

// NewTUICommand creates the interactive command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit todos interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tui.Run(cmd.Context(), rootOpts.client()); err != nil {
				return WrapExitError(ExitFailure, "tui", err)
			}
			return nil
		},
	}
}

// finish prints the list after a round trip, or the error that ended it.
// Mutations the server declined are not errors; the list shows what stuck.
func (o *RootOptions) finish(cmd *cobra.Command, ctrl *listview.Controller, err error) error {
	if err != nil {
		return o.fail(cmd, err)
	}
	v := ctrl.View()
	snap := listview.Snapshot{Version: v.Version()}
	for _, row := range v.Rows() {
		snap.Items = append(snap.Items, listview.Item{ID: row.ID, Title: row.Stored})
	}
	return o.formatter(cmd).List(snap)
}

func (o *RootOptions) fail(cmd *cobra.Command, err error) error {
	o.log().Debug("request failed", "error", err)
	_ = o.formatter(cmd).Error(err)
	return WrapExitError(ExitFailure, "request failed", err)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, "invalid id "+strconv.Quote(raw))
	}
	return id, nil
}
