package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"todo/internal/domain"
)

// AddOptions holds the add command flags
type AddOptions struct {
	Category string
	Details  string
}

// AddCommand adds a task
type AddCommand struct {
	app          *App
	opts         AddOptions
	errorHandler *ErrorHandler
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App, opts AddOptions) *AddCommand {
	return &AddCommand{
		app:          app,
		opts:         opts,
		errorHandler: NewErrorHandler(),
	}
}

// Execute adds a task titled by the joined args
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	draft := domain.TaskDraft{
		Title:    strings.Join(args, " "),
		Details:  c.opts.Details,
		Category: normalizeCategory(c.opts.Category),
	}

	task, err := c.app.api.AddTodo(ctx, draft)
	if task == nil {
		return c.errorHandler.Handle("add task", err)
	}
	c.app.printf("Added %s task: %s\n", task.Category.DisplayName(), c.app.styles.title(task.Title))
	if err != nil {
		return c.errorHandler.Handle("save task", err)
	}

	if usage, err := c.app.api.CategoryUsage(ctx, task.Category); err == nil && usage.Full {
		c.app.println(c.app.styles.warning(fmt.Sprintf("%s are now full %s", usage.Label, formatUsage(*usage))))
	}
	return nil
}

// normalizeCategory lower-cases user input; unknown names are left for validation to reject.
func normalizeCategory(raw string) domain.Category {
	return domain.Category(strings.ToLower(strings.TrimSpace(raw)))
}

func (r *RootCommand) newAddCmd() *cobra.Command {
	var (
		opts AddOptions
		deep bool
		easy bool
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a Deep or Easy task",
		Long: `Add a task to today's list. Choose its category with --deep, --easy or --category.

Titles are 2 to 40 characters and details at most 120 unless the limits
section of the config file says otherwise.

Examples:
  todo add --deep "Write design doc"
  todo add --easy "Water plants" --details "balcony too"`,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			switch {
			case deep:
				opts.Category = string(domain.CategoryDeep)
			case easy:
				opts.Category = string(domain.CategoryEasy)
			}
			return NewAddCommand(app, opts).Execute(ctx, args)
		}),
	}

	cmd.Flags().BoolVar(&deep, "deep", false, "Add a Deep task")
	cmd.Flags().BoolVar(&easy, "easy", false, "Add an Easy task")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Task category: deep or easy")
	cmd.Flags().StringVarP(&opts.Details, "details", "d", "", "Optional details")
	cmd.MarkFlagsMutuallyExclusive("deep", "easy", "category")

	return cmd
}
