package cli

import (
	"context"

	"github.com/spf13/cobra"

	"todo/internal/domain"
)

// EditOptions holds the fields to change; nil leaves a field as it is.
type EditOptions struct {
	Title    *string
	Details  *string
	Category *string
}

// EditCommand changes a task's title, details or category
type EditCommand struct {
	app          *App
	opts         EditOptions
	errorHandler *ErrorHandler
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App, opts EditOptions) *EditCommand {
	return &EditCommand{
		app:          app,
		opts:         opts,
		errorHandler: NewErrorHandler(),
	}
}

// Execute edits the task referred to by args[0]
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	id, err := c.app.api.ResolveID(ctx, args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	current, err := c.app.api.GetTodo(ctx, id)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	patch := domain.TaskPatch{
		Title:    current.Title,
		Details:  current.Details,
		Category: current.Category,
	}
	if c.opts.Title != nil {
		patch.Title = *c.opts.Title
	}
	if c.opts.Details != nil {
		patch.Details = *c.opts.Details
	}
	if c.opts.Category != nil {
		patch.Category = normalizeCategory(*c.opts.Category)
	}

	task, err := c.app.api.UpdateTodo(ctx, id, patch)
	if task == nil {
		return c.errorHandler.Handle("edit task", err)
	}
	c.app.printf("Updated %s task: %s\n", task.Category.DisplayName(), c.app.styles.title(task.Title))
	if err != nil {
		return c.errorHandler.Handle("save task", err)
	}
	return nil
}

func (r *RootCommand) newEditCmd() *cobra.Command {
	var title, details, category string
	var cmd *cobra.Command

	cmd = &cobra.Command{
		Use:   "edit <task>",
		Short: "Edit a task",
		Long: `Change the title, details or category of a task. Fields without a flag keep their value.

Moving a task to a full category is refused.

Examples:
  todo edit 2 --title "Call Ana"
  todo edit 3f2a --category deep --details ""`,
		Args: cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			var opts EditOptions
			flags := cmd.Flags()
			if flags.Changed("title") {
				opts.Title = &title
			}
			if flags.Changed("details") {
				opts.Details = &details
			}
			if flags.Changed("category") {
				opts.Category = &category
			}
			return NewEditCommand(app, opts).Execute(ctx, args)
		}),
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&details, "details", "d", "", "New details")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category: deep or easy")

	return cmd
}
