package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// ToggleCommand flips a task between done and not done
type ToggleCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewToggleCommand creates a new toggle command handler
func NewToggleCommand(app *App) *ToggleCommand {
	return &ToggleCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute toggles the task referred to by args[0]
func (c *ToggleCommand) Execute(ctx context.Context, args []string) error {
	id, err := c.app.api.ResolveID(ctx, args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	task, err := c.app.api.ToggleTodo(ctx, id)
	if task == nil {
		return c.errorHandler.Handle("toggle task", err)
	}
	if task.Done {
		c.app.printf("%s %s\n", c.app.styles.success("Done:"), task.Title)
	} else {
		c.app.printf("%s %s\n", c.app.styles.muted("Not done:"), task.Title)
	}
	if err != nil {
		return c.errorHandler.Handle("save task", err)
	}
	return nil
}

func (r *RootCommand) newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <task>",
		Short:   "Mark a task done or not done",
		Aliases: []string{"done"},
		Args:    cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewToggleCommand(app).Execute(ctx, args)
		}),
	}
}
