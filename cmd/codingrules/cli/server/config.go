package server

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	config "github.com/mwantia/codingrules/internal/config/server"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management utilities",
		Long:  "Generate, inspect and validate the coding rules agent configuration.",
	}

	cmd.AddCommand(newConfigGenerateCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func writeConfig(w io.Writer, cfg config.BaseServerConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

func newConfigGenerateCommand() *cobra.Command {
	var outputDir string
	var overwrite, stdout bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a configuration file with all defaults",
		Long:  "Generate config.yaml holding every agent setting with its default value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := config.GetServerDefault()
			if stdout {
				return writeConfig(cmd.OutOrStdout(), defaults)
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			filename := filepath.Join(outputDir, "config.yaml")
			if _, err := os.Stat(filename); err == nil && !overwrite {
				cmd.Printf("Skipping %s (file exists, use --overwrite to replace)\n", filename)
				return nil
			}

			f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
			if err != nil {
				return fmt.Errorf("failed to open config file %s: %w", filename, err)
			}
			defer f.Close()

			if err := writeConfig(f, defaults); err != nil {
				return err
			}

			cmd.Printf("Generated %s\n", filename)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", ".", "output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print to stdout instead of writing a file")

	return cmd
}

// newConfigShowCommand prints the configuration the agent would run with,
// after files, environment and defaults are merged and validated.
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), *cfg)
		},
	}
}
