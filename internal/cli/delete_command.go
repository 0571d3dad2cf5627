package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute removes the task referred to by args[0]
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	id, err := c.app.api.ResolveID(ctx, args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	task, err := c.app.api.GetTodo(ctx, id)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	err = c.app.api.DeleteTodo(ctx, id)
	if err != nil && !c.errorHandler.IsStorageError(err) {
		return c.errorHandler.Handle("delete task", err)
	}
	c.app.printf("Deleted task: %s\n", task.Title)
	if err != nil {
		return c.errorHandler.Handle("save deletion", err)
	}
	return nil
}

func (r *RootCommand) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task>",
		Short: "Delete a task",
		Long: `Delete a task by list number, id or unique id prefix.

This operation cannot be undone.`,
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewDeleteCommand(app).Execute(ctx, args)
		}),
	}
}
