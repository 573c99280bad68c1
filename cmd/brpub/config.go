// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/brpub/brpub/internal/config"
	"github.com/brpub/brpub/internal/issue"
	"github.com/brpub/brpub/pkg/types"
)

// newConfigCommand creates the `brpub config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage brpub configuration",
		Long: `Manage brpub configuration.

Configuration is read from the first file found of:
  - the --config flag
  - the user config file (Linux: ~/.config/brpub/config.cue,
    macOS: ~/Library/Application Support/brpub/config.cue,
    Windows: %APPDATA%\brpub\config.cue)
  - <module>/.br/config.cue

Environment variables such as BRPUB_REGISTRY_PATH override file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var moduleDir string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, cmd.OutOrStdout(), config.LoadOptions{
				ConfigFilePath: types.FilesystemPath(flags.configPath),
				ModuleDir:      types.FilesystemPath(moduleDir),
			}, flags.verbose)
		},
	}
	showCmd.Flags().StringVarP(&moduleDir, "module", "m", "", "module directory whose .br/config.cue is considered")
	cfgCmd.AddCommand(showCmd)

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd.OutOrStdout(), flags.configPath, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the user configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(flags.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, w io.Writer, opts config.LoadOptions, verbose bool) error {
	cfg, source, err := app.Config.LoadWithSource(ctx, opts)
	if err != nil {
		fmt.Fprintln(w, formatErrorForDisplay(err, verbose))
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source != "" {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, config.GenerateCUE(cfg))
	return nil
}

func initConfig(w io.Writer, explicitPath string, force bool) error {
	path, err := configPath(explicitPath)
	if err != nil {
		return err
	}

	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return issue.NewErrorContext().
				WithOperation("create configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Pass --force to overwrite it").
				Wrap(err).
				BuildError()
		}
		return err
	}

	fmt.Fprintln(w, SuccessStyle.Render("Created ")+path)
	return nil
}

// configPath returns explicitPath or the default user config file.
func configPath(explicitPath string) (string, error) {
	if explicitPath != "" {
		return explicitPath, nil
	}
	return config.DefaultConfigPath()
}
