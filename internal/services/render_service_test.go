package services

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psbrowse/internal/catalog"
	"psbrowse/pkg/pstypes"
)

func newRenderService(t *testing.T) *RenderService {
	t.Helper()
	theme := NewThemeService()
	require.NoError(t, theme.Initialize())
	markdown := NewMarkdownService("notty", 80)
	require.NoError(t, markdown.Initialize())
	render := NewRenderService(theme, markdown)
	require.NoError(t, render.Initialize())
	return render
}

// withColorProfile forces a lipgloss color profile for one test.
func withColorProfile(t *testing.T, profile termenv.Profile) {
	t.Helper()
	original := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(profile)
	t.Cleanup(func() { lipgloss.SetColorProfile(original) })
}

var sampleHelp = pstypes.NormalizedHelp{
	Synopsis: "Gets the item.",
	Syntax:   "PARAMETER SET 1 (default): Path\n----------------------------------------\nGet-Item -Path <String[]>",
	Examples: "# Current directory\nGet-Item .",
	Parameters: []pstypes.ParameterRow{
		{Name: "Path", TypeName: "String[]", Required: true, Position: "0", Pipeline: "true (ByValue)"},
		{Name: "Filter", TypeName: "String", Position: "Named", Pipeline: "false", Aliases: "f|g"},
	},
}

func TestRenderService_Initialize(t *testing.T) {
	render := NewRenderService(nil, nil)
	assert.Equal(t, "render", render.Name())
	assert.Error(t, render.Initialize())
	assert.True(t, render.IsPlain())
}

func TestRenderService_HelpMarkdown(t *testing.T) {
	render := newRenderService(t)

	md := render.HelpMarkdown("Get-Item", sampleHelp)
	assert.True(t, strings.HasPrefix(md, "# Get-Item\n\nGets the item.\n\n## Syntax\n\n```text\nPARAMETER SET 1 (default): Path\n"))
	assert.Contains(t, md, "| Name | Type | Required | Position | Pipeline | Aliases |\n|---|---|---|---|---|---|\n")
	assert.Contains(t, md, "| Path | String[] | true | 0 | true (ByValue) |  |\n")
	assert.Contains(t, md, `| Filter | String | false | Named | false | f\|g |`)
	assert.True(t, strings.HasSuffix(md, "## Examples\n\n```powershell\n# Current directory\nGet-Item .\n```\n"))
}

func TestRenderService_HelpMarkdownNoParameters(t *testing.T) {
	render := newRenderService(t)
	help := pstypes.NormalizedHelp{Synopsis: "S", Syntax: "X", Examples: "E"}

	assert.Equal(t,
		"# Foo\n\nS\n\n## Syntax\n\n```text\nX\n```\n\n## Parameters\n\n_No parameters._\n\n## Examples\n\n```powershell\nE\n```\n",
		render.HelpMarkdown("Foo", help))
}

func TestRenderService_PlainHelp(t *testing.T) {
	render := newRenderService(t)
	render.SetPlain(true)
	help := pstypes.NormalizedHelp{Synopsis: "S", Syntax: "line one\n\nline two", Examples: "E"}

	assert.Equal(t,
		"NAME\n    Foo\n\nSYNOPSIS\n    S\n\nSYNTAX\n    line one\n\n    line two\n\nPARAMETERS\n    No parameters.\n\nEXAMPLES\n    E\n",
		render.RenderHelp("Foo", help))
}

func TestRenderService_ParameterTable(t *testing.T) {
	render := newRenderService(t)
	render.SetPlain(true)

	table := render.ParameterTable(sampleHelp.Parameters)
	for _, want := range []string{"Name", "Pipeline", "Path", "String[]", "true (ByValue)", "Named", "f|g"} {
		assert.Contains(t, table, want)
	}
	assert.Contains(t, table, "+")
	assert.Equal(t, "    "+NoParametersText, render.ParameterTable(nil))
}

func TestRenderService_CommandTable(t *testing.T) {
	render := newRenderService(t)
	render.SetPlain(true)
	longModule := strings.Repeat("Very.Long.Module.", 5)

	table := render.CommandTable([]pstypes.CommandSummary{
		{Name: "Get-Item", ModuleName: "Microsoft.PowerShell.Management", CommandType: pstypes.CommandTypeCmdlet},
		{Name: "Invoke-Thing", ModuleName: longModule, CommandType: pstypes.CommandTypeFunction},
	})

	assert.Contains(t, table, "Get-Item")
	assert.Contains(t, table, "Cmdlet")
	assert.Contains(t, table, "Function")
	assert.Contains(t, table, "…")
	assert.NotContains(t, table, longModule)
}

func TestRenderService_ModuleTreePlain(t *testing.T) {
	render := newRenderService(t)
	render.SetPlain(true)
	groups := catalog.BuildGroups([]pstypes.CommandSummary{
		{Name: "Invoke-Pester", ModuleName: "Pester"},
		{Name: "Get-Item", ModuleName: "Microsoft.PowerShell.Management"},
		{Name: "Get-ChildItem", ModuleName: "Microsoft.PowerShell.Management"},
		{Name: "prompt"},
	})

	assert.Equal(t, "All Modules (4)\n  Microsoft.PowerShell.Management (2)\n  Pester (1)\n", render.ModuleTree(groups))
}

func TestRenderService_StyledOutput(t *testing.T) {
	withColorProfile(t, termenv.TrueColor)
	render := newRenderService(t)
	require.False(t, render.IsPlain())

	rendered := ansi.Strip(render.RenderHelp("Get-Item", sampleHelp))
	assert.Contains(t, rendered, "Get-Item")
	assert.Contains(t, rendered, "Gets the item.")
	assert.Contains(t, rendered, "Current directory")

	table := ansi.Strip(render.ParameterTable(sampleHelp.Parameters))
	assert.Contains(t, table, "╭")
	assert.Contains(t, table, "true (ByValue)")

	tree := ansi.Strip(render.ModuleTree(catalog.BuildGroups([]pstypes.CommandSummary{{Name: "a", ModuleName: "Pester"}})))
	assert.Contains(t, tree, "All Modules (1)")
	assert.Contains(t, tree, "Pester (1)")
}

func TestRenderService_PlainThemeDisablesStyling(t *testing.T) {
	withColorProfile(t, termenv.TrueColor)
	render := newRenderService(t)
	require.NoError(t, render.theme.SetActive("plain"))

	assert.True(t, render.IsPlain())
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n\n  b", Indent("a\n\nb", "  "))
	assert.Equal(t, "", Indent("", "  "))
}
