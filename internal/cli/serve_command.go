package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"todo/internal/server"
)

// ServeCommand runs the local JSON API until interrupted
type ServeCommand struct {
	app  *App
	addr string
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App, addr string) *ServeCommand {
	return &ServeCommand{app: app, addr: addr}
}

// Execute serves until ctx is cancelled
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	verbose := c.app.config.Application.Verbose
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(c.app.api, server.WithRequestLog(verbose))

	c.app.printf("Serving on %s (Ctrl+C to stop)\n", c.app.styles.title("http://"+c.addr))
	if err := srv.Run(ctx, c.addr); err != nil {
		return NewErrorHandler().Handle("serve", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), c.app.config.GetWriteTimeout())
	defer cancel()
	if err := c.app.api.Flush(flushCtx); err != nil {
		return NewErrorHandler().Handle("save tasks", err)
	}
	c.app.println("Stopped")
	return nil
}

func (r *RootCommand) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task list as a JSON API on localhost",
		Long: `Serve the task list over HTTP on a loopback address.

Routes:
  GET    /api/state                 greeting, usage and all tasks
  PUT    /api/profile               {"name": "..."}
  GET    /api/todos?category=deep
  POST   /api/todos                 {"title", "details", "category"}
  PUT    /api/todos/:id
  POST   /api/todos/:id/toggle
  DELETE /api/todos/:id
  GET    /api/events                server-sent "state" events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := r.getApp(ctx)
			if err != nil {
				return err
			}
			return NewServeCommand(app, app.config.Server.Addr).Execute(ctx, args)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides TODO_SERVER_ADDR)")

	return cmd
}
