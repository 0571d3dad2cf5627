package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/text"

	"todo/internal/api"
	"todo/internal/config"
)

// App is what every command handler runs against: the API, the resolved
// configuration and the output streams.
type App struct {
	api    api.TodoAPI
	config *config.Config
	out    io.Writer
	errOut io.Writer
	styles styles
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(todoAPI api.TodoAPI, cfg *config.Config, out, errOut io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &App{
		api:    todoAPI,
		config: cfg,
		out:    out,
		errOut: errOut,
		styles: newStyles(cfg.Display.NoColor),
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}

// styles renders the coloured parts of the output. With colour disabled
// every function returns its input unchanged.
type styles struct {
	noColor bool

	title   func(a ...interface{}) string
	success func(a ...interface{}) string
	warning func(a ...interface{}) string
	muted   func(a ...interface{}) string
}

func newStyles(noColor bool) styles {
	build := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return styles{
		noColor: noColor,
		title:   build(color.FgCyan, color.Bold),
		success: build(color.FgHiGreen),
		warning: build(color.FgHiYellow),
		muted:   build(color.FgHiBlack),
	}
}

// cell colours a table cell with go-pretty's palette
func (s styles) cell(c text.Color, v string) string {
	if s.noColor {
		return v
	}
	return c.Sprint(v)
}
