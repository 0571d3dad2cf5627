package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"todo/internal/domain"
	"todo/internal/errors"
	"todo/internal/services"
)

// ListOptions holds the list command flags
type ListOptions struct {
	Category   string
	AllColumns bool
}

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	opts         ListOptions
	errorHandler *ErrorHandler
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App, opts ListOptions) *ListCommand {
	return &ListCommand{
		app:          app,
		opts:         opts,
		errorHandler: NewErrorHandler(),
	}
}

// Execute prints the greeting, the task count, category usage and the task table
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	var category *domain.Category
	if c.opts.Category != "" {
		parsed, err := domain.ParseCategory(c.opts.Category)
		if err != nil {
			return c.errorHandler.HandleSimple(errors.NewInvalidInputError("category", c.opts.Category, "must be deep or easy"))
		}
		category = &parsed
	}

	overview, err := c.app.api.Overview(ctx)
	if err != nil {
		return c.errorHandler.Handle("load tasks", err)
	}
	items, err := c.app.api.ListTodos(ctx, category)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}

	c.printHeader(overview)

	if len(items) == 0 {
		if category != nil {
			c.app.printf("No %s tasks\n", category.DisplayName())
		} else {
			c.app.println("No tasks yet. Add one with: todo add --deep|--easy <title>")
		}
		return nil
	}

	c.printTable(items)
	return nil
}

// printHeader prints e.g. "Hello, Sam", "3 tasks today" and "Deep Tasks (1/3)  Easy Tasks (2/7)"
func (c *ListCommand) printHeader(o *services.Overview) {
	s := c.app.styles
	c.app.println(s.title(o.Greeting))
	c.app.println(o.Summary)

	parts := make([]string, 0, len(o.Categories))
	for _, u := range o.Categories {
		usage := fmt.Sprintf("%s %s", u.Label, formatUsage(u))
		if u.Full {
			usage = s.warning(usage + " full")
		}
		parts = append(parts, usage)
	}
	c.app.println(strings.Join(parts, "  "))
}

// formatUsage renders "(n/limit)", or "(n)" for an unlimited category
func formatUsage(u services.CategoryUsage) string {
	if u.Limit <= 0 {
		return fmt.Sprintf("(%d)", u.Count)
	}
	return fmt.Sprintf("(%d/%d)", u.Count, u.Limit)
}

func (c *ListCommand) printTable(items []services.TodoItem) {
	s := c.app.styles
	showDetails := c.opts.AllColumns || c.app.config.Display.ShowDetails

	t := table.NewWriter()
	t.SetOutputMirror(c.app.out)
	t.SetStyle(table.StyleDouble)
	t.Style().Options.SeparateRows = false

	header := table.Row{
		s.cell(text.FgGreen, "#"),
		s.cell(text.FgGreen, "Done"),
		s.cell(text.FgGreen, "Title"),
		s.cell(text.FgGreen, "Category"),
	}
	if showDetails {
		header = append(header, s.cell(text.FgGreen, "Details"))
	}
	if c.opts.AllColumns {
		header = append(header, s.cell(text.FgGreen, "ID"))
	}
	t.AppendHeader(header)

	for _, item := range items {
		status := s.cell(text.FgHiBlack, "[ ]")
		title := item.Title
		if item.Done {
			status = s.cell(text.FgHiGreen, "[x]")
			title = s.cell(text.FgHiBlack, item.Title)
		}

		categoryColor := text.FgHiYellow
		if item.Category == domain.CategoryDeep {
			categoryColor = text.FgHiMagenta
		}

		row := table.Row{
			item.Position,
			status,
			title,
			s.cell(categoryColor, item.Category.DisplayName()),
		}
		if showDetails {
			row = append(row, item.Details)
		}
		if c.opts.AllColumns {
			row = append(row, item.ID)
		}
		t.AppendRow(row)
	}

	t.Render()
}

func (r *RootCommand) newListCmd() *cobra.Command {
	var opts ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List today's tasks",
		Long: `List today's tasks with a greeting, the task count and how full each category is.

Examples:
  todo list
  todo list --category deep
  todo list --all-columns`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewListCommand(app, opts).Execute(ctx, args)
		}),
	}

	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Only show deep or easy tasks")
	cmd.Flags().BoolVarP(&opts.AllColumns, "all-columns", "a", false, "Show details and task ids")

	return cmd
}
