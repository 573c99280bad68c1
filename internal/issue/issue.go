// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ModuleFileNotFoundId Id = iota + 1
	ModuleNameMissingId
	TemplateNotFoundId
	TemplateInvalidId
	RepositoryFormatId
	NoReleaseTagId
	BranchExistsId
	GitCommandFailedId
	DownloadFailedId
	ArchiveInvalidId
	ModuleFileMissingInArchiveId
	ConfigLoadFailedId
	RegistryNotConfiguredId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // registry documentation relevant to the issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown, appending its links under
// a "See also" section.
func (i *Issue) Render(stylePath string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- " + string(link) + "\n")
		}
		for _, link := range i.extLinks {
			sb.WriteString("- " + string(link) + "\n")
		}
	}
	return render(sb.String(), stylePath)
}

const (
	registryDocs HttpLink = "https://bazel.build/external/registry"
	bcrRepo      HttpLink = "https://github.com/bazelbuild/bazel-central-registry"
	moduleDocs   HttpLink = "https://bazel.build/external/module"
)

var (
	render = glamour.Render

	moduleFileNotFoundIssue = &Issue{
		id: ModuleFileNotFoundId,
		mdMsg: `
# No MODULE.bazel found!

The module directory does not contain a MODULE.bazel file, so the module
name cannot be determined.

## Things you can try:
- Run the command from the root of your module repository
- Point at the module explicitly:
~~~
$ brpub publish --module path/to/module --registry path/to/registry
~~~`,
		docLinks: []HttpLink{moduleDocs},
	}

	moduleNameMissingIssue = &Issue{
		id: ModuleNameMissingId,
		mdMsg: `
# Module name not declared!

MODULE.bazel was found but no ` + "`module(name = \"...\")`" + ` declaration
could be read from it.

## Things you can try:
- Declare the module name on the first argument of ` + "`module(`" + `:
~~~starlark
module(
    name = "my_module",
    version = "1.0.0",
)
~~~`,
		docLinks: []HttpLink{moduleDocs},
	}

	templateNotFoundIssue = &Issue{
		id: TemplateNotFoundId,
		mdMsg: `
# Release template not found!

Publishing needs two templates in the module repository:
` + "`.br/metadata.template.json` and `.br/source.template.json`" + `.

## Example templates:
~~~json
{
    "homepage": "https://github.com/acme/foo",
    "maintainers": [],
    "repository": ["github:acme/foo"],
    "versions": [],
    "yanked_versions": {}
}
~~~

~~~json
{
    "url": "https://github.com/{OWNER}/{REPO}/archive/refs/tags/{TAG}.tar.gz",
    "integrity": "",
    "strip_prefix": ""
}
~~~`,
		docLinks: []HttpLink{registryDocs},
	}

	templateInvalidIssue = &Issue{
		id: TemplateInvalidId,
		mdMsg: `
# Release template is invalid!

A template or an existing registry file is not valid JSON or does not
match the registry document layout.

## Things you can try:
- Check the JSON syntax of the files under ` + "`.br/`" + `
- Make sure ` + "`versions`" + ` is a list of strings
- Make sure ` + "`repository`" + ` holds at least one entry`,
		docLinks: []HttpLink{registryDocs},
		extLinks: []HttpLink{bcrRepo},
	}

	repositoryFormatIssue = &Issue{
		id: RepositoryFormatId,
		mdMsg: `
# Unsupported repository entry!

The first ` + "`repository`" + ` entry of the metadata template must have
the form ` + "`github:<owner>/<repo>`" + `. The owner and repository fill the
` + "`{OWNER}`" + ` and ` + "`{REPO}`" + ` placeholders of the source URL.`,
		docLinks: []HttpLink{registryDocs},
	}

	noReleaseTagIssue = &Issue{
		id: NoReleaseTagId,
		mdMsg: `
# No release tag found!

No tag was given and the module repository has no tags to describe.

## Things you can try:
- Pass the tag explicitly:
~~~
$ brpub publish --tag v1.0.0
~~~
- Create and push the release tag first:
~~~
$ git tag v1.0.0 && git push --tags
~~~`,
	}

	branchExistsIssue = &Issue{
		id: BranchExistsId,
		mdMsg: `
# Release branch already exists!

The registry repository already has a branch for this release. Delete it
or check it out and finish the previous attempt.

~~~
$ git -C path/to/registry branch -D <module>-<version>
~~~`,
	}

	gitCommandFailedIssue = &Issue{
		id: GitCommandFailedId,
		mdMsg: `
# Git command failed!

A git command exited with an error. The output above shows what git
reported.

## Things you can try:
- Make sure both directories are git working trees
- Configure a commit identity (` + "`user.name`, `user.email`" + `)
- Point brpub at another git binary with ` + "`git.binary`" + ` in the config`,
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# Release archive download failed!

The archive URL built from the source template could not be fetched.

## Things you can try:
- Open the URL printed above in a browser
- Check that the tag has been pushed and the release exists
- Check the ` + "`{OWNER}`, `{REPO}` and `{TAG}`" + ` placeholders in the template`,
		docLinks: []HttpLink{registryDocs},
	}

	archiveInvalidIssue = &Issue{
		id: ArchiveInvalidId,
		mdMsg: `
# Release archive could not be extracted!

Only ` + "`.zip`, `.tar.gz` and `.tgz`" + ` archives are supported. Entries that
would be written outside the extraction directory are rejected.`,
	}

	moduleFileMissingInArchiveIssue = &Issue{
		id: ModuleFileMissingInArchiveId,
		mdMsg: `
# MODULE.bazel missing from the archive!

The release archive was extracted but contains no MODULE.bazel file.
The registry requires a copy next to ` + "`source.json`" + `.`,
		docLinks: []HttpLink{registryDocs},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The brpub configuration file could not be read or did not validate.

## Things you can try:
- Print the effective configuration:
~~~
$ brpub config show
~~~
- Write a fresh default file:
~~~
$ brpub config init --force
~~~`,
	}

	registryNotConfiguredIssue = &Issue{
		id: RegistryNotConfiguredId,
		mdMsg: `
# Registry directory not set!

brpub needs to know which registry checkout to update.

## Things you can try:
- Pass it on the command line:
~~~
$ brpub publish --registry path/to/registry
~~~
- Or set it once in the configuration:
~~~cue
registry: path: "/home/me/src/bazel-registry"
~~~`,
		extLinks: []HttpLink{bcrRepo},
	}

	issues = map[Id]*Issue{
		moduleFileNotFoundIssue.Id():         moduleFileNotFoundIssue,
		moduleNameMissingIssue.Id():          moduleNameMissingIssue,
		templateNotFoundIssue.Id():           templateNotFoundIssue,
		templateInvalidIssue.Id():            templateInvalidIssue,
		repositoryFormatIssue.Id():           repositoryFormatIssue,
		noReleaseTagIssue.Id():               noReleaseTagIssue,
		branchExistsIssue.Id():               branchExistsIssue,
		gitCommandFailedIssue.Id():           gitCommandFailedIssue,
		downloadFailedIssue.Id():             downloadFailedIssue,
		archiveInvalidIssue.Id():             archiveInvalidIssue,
		moduleFileMissingInArchiveIssue.Id(): moduleFileMissingInArchiveIssue,
		configLoadFailedIssue.Id():           configLoadFailedIssue,
		registryNotConfiguredIssue.Id():      registryNotConfiguredIssue,
	}
)

// Values returns every known issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
