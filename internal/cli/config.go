package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/docmerge/internal/config"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize config.yaml",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, settings, err := loadSettings(g)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if g.json {
				return outputJSON(w, settings)
			}
			_, _ = dimColor.Fprintf(w, "# %s\n", paths.Config)
			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to encode settings: %w", err)
			}
			_, err = w.Write(data)
			return err
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, _, err := loadSettings(g)
			if err != nil {
				return err
			}

			_, statErr := os.Stat(paths.Config)
			if statErr == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", paths.Config)
			}
			if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
				return fmt.Errorf("failed to check config: %w", statErr)
			}

			if err := paths.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to ensure directories: %w", err)
			}
			if err := config.SaveSettings(paths.Config, config.DefaultSettings()); err != nil {
				return err
			}
			PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", paths.Config))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.yaml")
	configCmd.AddCommand(initCmd)

	return configCmd
}
