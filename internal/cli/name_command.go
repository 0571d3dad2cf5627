package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// NameCommand shows or sets the user name
type NameCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewNameCommand creates a new name command handler
func NewNameCommand(app *App) *NameCommand {
	return &NameCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute prints the current name, or sets it when args are given
func (c *NameCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.showName(ctx)
	}
	return c.setName(ctx, strings.Join(args, " "))
}

func (c *NameCommand) showName(ctx context.Context) error {
	profile, err := c.app.api.Profile(ctx)
	if err != nil {
		return c.errorHandler.Handle("read name", err)
	}
	if profile.UserName == nil {
		c.app.println("No name set. Use: todo name <your name>")
		return nil
	}
	c.app.println(*profile.UserName)
	return nil
}

func (c *NameCommand) setName(ctx context.Context, name string) error {
	profile, err := c.app.api.SetUserName(ctx, name)
	if profile == nil {
		return c.errorHandler.Handle("set name", err)
	}
	c.app.printf("Name set to %s\n", c.app.styles.title(*profile.UserName))
	if err != nil {
		return c.errorHandler.Handle("save name", err)
	}
	return nil
}

func (r *RootCommand) newNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name [new name]",
		Short: "Show or set your name",
		Long: `Show the name used in the greeting, or set it.

Names are 2 to 10 characters long.`,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewNameCommand(app).Execute(ctx, args)
		}),
	}
}
