package services

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psbrowse/internal/catalog"
	"psbrowse/internal/output"
	"psbrowse/pkg/pstypes"
)

func newThemeService(t *testing.T) *ThemeService {
	t.Helper()
	service := NewThemeService()
	require.NoError(t, service.Initialize())
	return service
}

func TestThemeService_LoadsEmbeddedThemes(t *testing.T) {
	service := newThemeService(t)

	assert.Equal(t, "theme", service.Name())
	assert.Equal(t, []string{"dark", "default", "light", "plain"}, service.GetAvailableThemes())
	assert.Equal(t, "default", service.ActiveTheme().Name)
	assert.Equal(t, "auto", service.GetThemeType())
}

func TestThemeService_BeforeInitialize(t *testing.T) {
	service := NewThemeService()

	assert.False(t, service.IsAvailable())
	assert.Equal(t, "plain", service.ActiveTheme().Name)
	assert.Empty(t, service.GetAvailableThemes())
}

func TestThemeService_SetActive(t *testing.T) {
	service := newThemeService(t)

	tests := []struct {
		input     string
		theme     string
		glamour   string
		available bool
	}{
		{"dark", "dark", "dark", true},
		{"LIGHT", "light", "light", true},
		{"notty", "plain", "notty", false},
		{"auto", "default", "auto", true},
		{"", "default", "auto", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.NoError(t, service.SetActive(tt.input))
			assert.Equal(t, tt.theme, service.ActiveTheme().Name)
			assert.Equal(t, tt.glamour, service.GetThemeType())
			assert.Equal(t, tt.available, service.IsAvailable())
		})
	}

	err := service.SetActive("solarized")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown theme "solarized"`)
}

func TestResolveThemeName(t *testing.T) {
	assert.Equal(t, "default", ResolveThemeName(" Auto "))
	assert.Equal(t, "dark", ResolveThemeName("dracula"))
	assert.Equal(t, "plain", ResolveThemeName("ascii"))
	assert.Equal(t, "", ResolveThemeName("neon"))
}

func TestLoadThemeFile(t *testing.T) {
	theme, err := loadThemeFile([]byte(`
name: custom
styles:
  command:
    foreground: "#FF0000"
    bold: true
  module:
    foreground:
      light: "#000000"
      dark: "#FFFFFF"
`))
	require.NoError(t, err)
	assert.Equal(t, "custom", theme.Name)
	assert.Equal(t, "auto", theme.GlamourStyle)
	assert.True(t, theme.Command.GetBold())
	assert.Equal(t, lipgloss.Color("#FF0000"), theme.Command.GetForeground())
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}, theme.Module.GetForeground())

	_, err = loadThemeFile([]byte("name: [unclosed"))
	assert.Error(t, err)

	_, err = loadThemeFile([]byte("styles: {}"))
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	assert.Nil(t, parseColor(nil))
	assert.Nil(t, parseColor(""))
	assert.Nil(t, parseColor(42))
	assert.Nil(t, parseColor(map[string]interface{}{"light": "#000"}))
	assert.Equal(t, lipgloss.Color("33"), parseColor("33"))
}

func TestThemeService_GetStyle(t *testing.T) {
	service := newThemeService(t)

	assert.IsType(t, lipgloss.Style{}, service.GetStyle("command"))
	assert.IsType(t, &output.CodeBlockTextStyle{}, service.GetStyle("code_block"))
	assert.Contains(t, service.GetStyle("parameter").Render("Path"), "-Path")
}

func TestThemeService_PrinterIntegration(t *testing.T) {
	service := newThemeService(t)
	require.NoError(t, service.SetActive("plain"))

	out := output.CaptureOutputWithStyles(service, func(p *output.Printer) {
		p.Success("copied")
	})
	assert.Equal(t, "✓ copied\n", out)
}

func TestTheme_CreateModuleTree(t *testing.T) {
	theme := fallbackTheme("plain")
	groups := catalog.BuildGroups([]pstypes.CommandSummary{
		{Name: "Get-Item", ModuleName: "Microsoft.PowerShell.Management"},
		{Name: "Invoke-Pester", ModuleName: "Pester"},
		{Name: "prompt"},
	})

	tree := theme.CreateModuleTree(groups).String()
	assert.Contains(t, tree, "All Modules (3)")
	assert.Contains(t, tree, "Microsoft.PowerShell.Management (1)")
	assert.Contains(t, tree, "Pester (1)")
}
