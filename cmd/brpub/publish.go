// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/brpub/brpub/internal/config"
	"github.com/brpub/brpub/internal/issue"
	"github.com/brpub/brpub/internal/publish"
	"github.com/brpub/brpub/pkg/types"
)

// publishParams bundles the flags of the publish command so runPublish can
// be tested without Cobra.
type publishParams struct {
	stdout      io.Writer
	stderr      io.Writer
	moduleDir   string
	registryDir string
	tmpDir      string
	tag         string
	configPath  string
	verbose     bool
}

func newPublishCommand(app *App, flags *rootFlags) *cobra.Command {
	p := publishParams{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Record a module release in a registry working tree",
		Long: `Record a module release in a registry working tree.

The module name comes from MODULE.bazel in the module directory. Without
--tag the most recent tag of the module repository is used. The registry
gets a new branch <name>-<version> holding the updated metadata.json, the
new source.json and MODULE.bazel, committed as <name>@<version>.

Release templates are read from <module>/.br/metadata.template.json and
<module>/.br/source.template.json.`,
		Example: `  # Publish the latest tag of the current directory
  brpub publish --registry ../bazel-registry

  # Publish a specific tag of another checkout
  brpub publish --module ../rules_foo --registry ../bazel-registry --tag v1.2.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true

			p.stdout = cmd.OutOrStdout()
			p.stderr = cmd.ErrOrStderr()
			p.configPath = flags.configPath
			p.verbose = flags.verbose
			return runPublish(cmd.Context(), app, p)
		},
	}

	cmd.Flags().StringVarP(&p.tag, "tag", "t", "", "release tag (default is the latest tag of the module repository)")
	cmd.Flags().StringVarP(&p.moduleDir, "module", "m", ".", "module repository directory")
	cmd.Flags().StringVarP(&p.registryDir, "registry", "r", "", "registry working tree (default is registry.path from the config)")
	cmd.Flags().StringVar(&p.tmpDir, "tmp-dir", "", "download directory (default is <registry>/tmp)")

	return cmd
}

// runPublish loads the configuration, resolves the directories and runs the
// publish pipeline. Failures are printed to p.stderr and returned as
// *ExitError.
func runPublish(ctx context.Context, app *App, p publishParams) error {
	moduleDir, err := types.FilesystemPath(p.moduleDir).Abs()
	if err != nil {
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	cfg, source, err := app.Config.LoadWithSource(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(p.configPath),
		ModuleDir:      moduleDir,
	})
	if err != nil {
		fmt.Fprintln(p.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, p.verbose))
		cfg = config.DefaultConfig()
	}

	verbose := p.verbose || cfg.UI.Verbose
	logger := newLogger(p.stderr, verbose)
	if source != "" {
		logger.Debug("Loaded configuration", "path", source)
	}

	registryDir := p.registryDir
	if registryDir == "" {
		registryDir = cfg.Registry.Path.String()
	}
	if registryDir == "" {
		ae := issue.NewErrorContext().
			WithOperation("publish release").
			WithIssue(issue.RegistryNotConfiguredId).
			WithSuggestions("Pass --registry <dir>", "Set registry.path in the configuration file").
			Build()
		renderFailure(p.stderr, ae, verbose, cfg.UI.ColorScheme)
		return &ExitError{Code: classifyExitCode(ae), Err: ae}
	}
	tmpDir := p.tmpDir
	if tmpDir == "" {
		tmpDir = cfg.Registry.TmpDir.String()
	}

	svc := app.NewPublisher(cfg, logger)
	res, err := svc.Publish(ctx, publish.Request{
		ModuleDir:   moduleDir,
		RegistryDir: types.FilesystemPath(registryDir),
		TmpDir:      types.FilesystemPath(tmpDir),
		Tag:         p.tag,
	})
	if err != nil {
		ae := describePublishError(err)
		renderFailure(p.stderr, ae, verbose, cfg.UI.ColorScheme)
		return &ExitError{Code: classifyExitCode(err), Err: ae}
	}

	printResult(p.stdout, res)
	return nil
}

func printResult(w io.Writer, res *publish.Result) {
	fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("Published %s@%s", res.Module, res.Version)))
	fmt.Fprintln(w)
	rows := []struct{ key, value string }{
		{"tag", res.Tag},
		{"branch", res.Branch},
		{"commit", res.Commit},
		{"url", res.URL},
		{"integrity", res.Integrity},
		{"metadata", res.MetadataPath},
		{"source", res.SourcePath},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render(fmt.Sprintf("%-10s", row.key+":")), row.value)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, SubtitleStyle.Render("Review the commit and push the branch to open a registry pull request."))
}
