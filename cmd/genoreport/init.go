package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/genoreport/internal/config"
)

//go:embed templates/genoreport.yaml templates/genoreport.toml
var configTemplates embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new genoreport configuration file",
		Long: `Initialize creates a new .genoreport configuration file in the current directory.

The generated file includes:
- Default chart colors, theme and bin count
- The default save format and working directory
- Commented examples for per-dataset settings

Examples:
  # Create .genoreport in current directory
  genoreport init

  # Create config.toml in the XDG config directory
  genoreport init --format toml

  # Force overwrite existing file
  genoreport init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().StringP("format", "F", "yaml",
		"Configuration format: yaml or toml")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	format = strings.ToLower(format)
	if format != "yaml" && format != "toml" {
		return fmt.Errorf("unknown configuration format %q (use yaml or toml)", format)
	}
	// .genoreport is always read as YAML, so TOML goes to the XDG config file.
	if format == "toml" && !cmd.Flags().Changed("output") {
		outputPath = filepath.Join(config.XDGConfigDir(), "config.toml")
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplates.ReadFile("templates/genoreport." + format)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Chart colors, theme and bin count")
	fmt.Fprintln(out, "  - Locus metadata files per dataset")
	fmt.Fprintln(out, "  - The default working directory for saved charts")

	return nil
}
