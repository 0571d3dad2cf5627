package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"todo/internal/config"
)

// ConfigCommand prints configuration details
type ConfigCommand struct {
	config *config.Config
	loader *config.Loader
	out    io.Writer
}

// NewConfigCommand creates a new config command handler
func NewConfigCommand(cfg *config.Config, loader *config.Loader, out io.Writer) *ConfigCommand {
	return &ConfigCommand{config: cfg, loader: loader, out: out}
}

// ShowConfig prints the effective configuration as YAML
func (c *ConfigCommand) ShowConfig() error {
	data, err := yaml.Marshal(c.config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = c.out.Write(data)
	return err
}

// ShowPath prints the config file location
func (c *ConfigCommand) ShowPath() error {
	_, err := fmt.Fprintln(c.out, c.loader.ConfigFile())
	return err
}

func (r *RootCommand) newConfigCmd() *cobra.Command {
	command := func() *ConfigCommand {
		return NewConfigCommand(r.config, r.loader, r.out)
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return command().ShowConfig()
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return command().ShowPath()
			},
		},
	)

	return cmd
}
