package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"todo/internal/config"
	"todo/internal/logging"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	loader *config.Loader
	open   OpenFunc

	config  *config.Config
	session *Session
	app     *App

	out    io.Writer
	errOut io.Writer
}

// NewRootCommand creates the root cobra command with global flags.
// The store is opened through open the first time a command needs it.
func NewRootCommand(loader *config.Loader, open OpenFunc) *RootCommand {
	root := &RootCommand{
		loader: loader,
		open:   open,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	root.cmd = &cobra.Command{
		Use:   "todo",
		Short: "A Deep/Easy to-do list for today",
		Long: `todo keeps a short list of today's tasks split into Deep work and Easy tasks.

Deep tasks are limited to 3 and Easy tasks to 7 by default, so the list stays
small enough to finish.

EXAMPLES:
  todo name Sam                            # Set the name used in the greeting
  todo add --deep "Write design doc"       # Add a Deep task
  todo add --easy "Reply to Ana" --details "about Friday"
  todo list                                # Show today's tasks
  todo toggle 2                            # Mark task #2 done (or not done)
  todo edit 2 --title "Reply to Ana and Bo"
  todo delete 2                            # Remove task #2
  todo serve                               # Serve the JSON API on 127.0.0.1:8080

Tasks can be referred to by list number, full id or a unique id prefix.

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  Config file: $TODO_CONFIG or ~/.todo/config.yaml

  Environment variables:
    TODO_STORAGE_BACKEND                   sqlite, file or memory (default: sqlite)
    TODO_DATA_DIR                          Data directory (default: ~/.todo)
    TODO_DB_FILENAME                       SQLite filename (default: todo.db)
    TODO_STORAGE_KEY                       Storage key (default: todo-storage)
    TODO_WRITE_TIMEOUT                     Write timeout (default: 5s)
    TODO_DEEP_CAPACITY                     Deep task limit (default: 3)
    TODO_EASY_CAPACITY                     Easy task limit (default: 7)
    TODO_NO_COLOR                          Disable colour output
    TODO_APP_TIMEOUT                       Command timeout (default: 30s)
    TODO_APP_VERBOSE                       Verbose output
    TODO_SERVER_ADDR                       serve address (default: 127.0.0.1:8080)
    TODO_ENV                               development, testing or production`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// SetOutput redirects command output, mainly for tests
func (r *RootCommand) SetOutput(out, errOut io.Writer) {
	r.out = out
	r.errOut = errOut
	r.cmd.SetOut(out)
	r.cmd.SetErr(errOut)
}

// SetArgs sets the arguments instead of os.Args
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command and closes the session it opened,
// waiting for pending writes to reach storage.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if closeErr := r.closeSession(); closeErr != nil && err == nil {
		err = NewErrorHandler().Handle("save changes", closeErr)
	}
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file (overrides TODO_CONFIG)")

	// Storage configuration
	flags.String("storage", "", "Storage backend: sqlite, file or memory (overrides TODO_STORAGE_BACKEND)")
	flags.String("data-dir", "", "Data directory (overrides TODO_DATA_DIR)")
	flags.String("db-filename", "", "SQLite filename (overrides TODO_DB_FILENAME)")
	flags.String("storage-key", "", "Storage key (overrides TODO_STORAGE_KEY)")
	flags.Duration("write-timeout", 0, "Write timeout (overrides TODO_WRITE_TIMEOUT)")

	// Display configuration
	flags.Bool("no-color", false, "Disable colour output (overrides TODO_NO_COLOR)")

	// Application configuration
	flags.Bool("verbose", false, "Enable verbose output (overrides TODO_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newNameCmd(),
		r.newAddCmd(),
		r.newListCmd(),
		r.newEditCmd(),
		r.newToggleCmd(),
		r.newDeleteCmd(),
		r.newServeCmd(),
		r.newConfigCmd(),
	)
}

// loadConfig resolves the configuration from the file, the environment and the flags
func (r *RootCommand) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		r.loader.WithConfigFile(path)
	}

	overrides := &config.ConfigOverrides{}
	if flags.Changed("storage") {
		v, _ := flags.GetString("storage")
		overrides.Backend = &v
	}
	if flags.Changed("data-dir") {
		v, _ := flags.GetString("data-dir")
		overrides.DataDir = &v
	}
	if flags.Changed("db-filename") {
		v, _ := flags.GetString("db-filename")
		overrides.DBFilename = &v
	}
	if flags.Changed("storage-key") {
		v, _ := flags.GetString("storage-key")
		overrides.StorageKey = &v
	}
	if flags.Changed("write-timeout") {
		v, _ := flags.GetDuration("write-timeout")
		overrides.WriteTimeout = &v
	}
	if flags.Changed("no-color") {
		v, _ := flags.GetBool("no-color")
		overrides.NoColor = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}
	if flags.Changed("addr") {
		v, _ := flags.GetString("addr")
		overrides.ServerAddr = &v
	}

	cfg, err := r.loader.LoadWithOverrides(overrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	r.config = cfg

	if cfg.Application.Verbose {
		logging.SetVerbose(true)
	}
	return nil
}

// getApp opens the session on first use
func (r *RootCommand) getApp(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	if r.config == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	session, err := r.open(ctx, r.config)
	if err != nil {
		return nil, err
	}
	r.session = session
	r.app = NewApp(session.API, r.config, r.out, r.errOut)
	return r.app, nil
}

func (r *RootCommand) closeSession() error {
	if r.session == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.getWriteTimeout()+time.Second)
	defer cancel()

	err := r.session.Close(ctx)
	r.session = nil
	r.app = nil
	return err
}

// getAppTimeout returns the configured command timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 30 * time.Second
}

func (r *RootCommand) getWriteTimeout() time.Duration {
	if r.config != nil {
		return r.config.GetWriteTimeout()
	}
	return 5 * time.Second
}

// run wraps a command handler with the app timeout and an opened session
func (r *RootCommand) run(handler func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()

		app, err := r.getApp(ctx)
		if err != nil {
			return err
		}
		return handler(ctx, app, args)
	}
}
