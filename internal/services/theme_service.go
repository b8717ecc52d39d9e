package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"
	"gopkg.in/yaml.v3"

	"psbrowse/internal/catalog"
	"psbrowse/internal/data/embedded"
	"psbrowse/internal/logger"
	"psbrowse/internal/output"
	"psbrowse/pkg/pstypes"
)

// ThemeService loads the built-in themes and supplies styles to the output layer.
// It implements output.StyleProvider for the active theme.
type ThemeService struct {
	mu          sync.RWMutex
	initialized bool
	themes      map[string]*Theme
	active      string
}

// Theme is a resolved theme: one lipgloss style per semantic element.
type Theme struct {
	Name         string
	GlamourStyle string
	Heading      lipgloss.Style
	Command      lipgloss.Style
	Module       lipgloss.Style
	Parameter    lipgloss.Style
	Muted        lipgloss.Style
	Success      lipgloss.Style
	Error        lipgloss.Style
	Warning      lipgloss.Style
	Info         lipgloss.Style
	Highlight    lipgloss.Style
	Bold         lipgloss.Style
	Code         lipgloss.Style
	Border       lipgloss.Style
}

// NewThemeService creates a ThemeService with the default theme active.
func NewThemeService() *ThemeService {
	return &ThemeService{
		themes: make(map[string]*Theme),
		active: "default",
	}
}

// Name returns the service name "theme" for registration.
func (t *ThemeService) Name() string {
	return "theme"
}

// Initialize parses the embedded theme files. A theme that fails to parse is
// replaced by an unstyled fallback so the service always has every theme.
func (t *ThemeService) Initialize() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, data := range embedded.Themes() {
		theme, err := loadThemeFile(data)
		if err != nil {
			logger.Error("Failed to load theme", "theme", name, "error", err)
			t.themes[name] = fallbackTheme(name)
			continue
		}
		t.themes[name] = theme
	}
	if _, exists := t.themes["plain"]; !exists {
		t.themes["plain"] = fallbackTheme("plain")
	}

	t.initialized = true
	return nil
}

func loadThemeFile(data []byte) (*Theme, error) {
	var config pstypes.ThemeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if config.Name == "" {
		return nil, fmt.Errorf("theme file has no name")
	}
	return convertThemeConfig(&config), nil
}

func convertThemeConfig(config *pstypes.ThemeConfig) *Theme {
	glamourStyle := config.GlamourStyle
	if glamourStyle == "" {
		glamourStyle = "auto"
	}
	return &Theme{
		Name:         config.Name,
		GlamourStyle: glamourStyle,
		Heading:      createStyle(config.Styles.Heading),
		Command:      createStyle(config.Styles.Command),
		Module:       createStyle(config.Styles.Module),
		Parameter:    createStyle(config.Styles.Parameter),
		Muted:        createStyle(config.Styles.Muted),
		Success:      createStyle(config.Styles.Success),
		Error:        createStyle(config.Styles.Error),
		Warning:      createStyle(config.Styles.Warning),
		Info:         createStyle(config.Styles.Info),
		Highlight:    createStyle(config.Styles.Highlight),
		Bold:         createStyle(config.Styles.Bold),
		Code:         createStyle(config.Styles.Code),
		Border:       createStyle(config.Styles.Border),
	}
}

// createStyle converts a StyleConfig to a lipgloss.Style.
func createStyle(config pstypes.StyleConfig) lipgloss.Style {
	style := lipgloss.NewStyle()

	if color := parseColor(config.Foreground); color != nil {
		style = style.Foreground(color)
	}
	if color := parseColor(config.Background); color != nil {
		style = style.Background(color)
	}

	if config.Bold != nil && *config.Bold {
		style = style.Bold(true)
	}
	if config.Italic != nil && *config.Italic {
		style = style.Italic(true)
	}
	if config.Underline != nil && *config.Underline {
		style = style.Underline(true)
	}
	if config.Strikethrough != nil && *config.Strikethrough {
		style = style.Strikethrough(true)
	}

	return style
}

// parseColor accepts a color string or a {light, dark} mapping.
func parseColor(colorValue interface{}) lipgloss.TerminalColor {
	switch v := colorValue.(type) {
	case string:
		if v == "" {
			return nil
		}
		return lipgloss.Color(v)
	case map[string]interface{}:
		light, hasLight := v["light"].(string)
		dark, hasDark := v["dark"].(string)
		if hasLight && hasDark {
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
		return nil
	default:
		return nil
	}
}

func fallbackTheme(name string) *Theme {
	plain := lipgloss.NewStyle()
	return &Theme{
		Name:         name,
		GlamourStyle: "notty",
		Heading:      plain,
		Command:      plain,
		Module:       plain,
		Parameter:    plain,
		Muted:        plain,
		Success:      plain,
		Error:        plain,
		Warning:      plain,
		Info:         plain,
		Highlight:    plain,
		Bold:         plain,
		Code:         plain,
		Border:       plain,
	}
}

// ResolveThemeName maps a configured style or theme name to a built-in theme.
// Glamour style names are accepted so one setting drives both.
func ResolveThemeName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto", "default":
		return "default"
	case "dark", "dracula":
		return "dark"
	case "light":
		return "light"
	case "plain", "notty", "ascii", "none":
		return "plain"
	default:
		return ""
	}
}

// SetActive selects the active theme by name, accepting the aliases of ResolveThemeName.
func (t *ThemeService) SetActive(name string) error {
	resolved := ResolveThemeName(name)
	if resolved == "" {
		return fmt.Errorf("unknown theme %q (available: default, dark, light, plain)", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = resolved
	return nil
}

// GetAvailableThemes returns the sorted theme names.
func (t *ThemeService) GetAvailableThemes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	themes := make([]string, 0, len(t.themes))
	for name := range t.themes {
		themes = append(themes, name)
	}
	sort.Strings(themes)
	return themes
}

// ActiveTheme returns the active theme, or an unstyled theme before Initialize.
func (t *ThemeService) ActiveTheme() *Theme {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.initialized {
		return fallbackTheme("plain")
	}
	if theme, ok := t.themes[t.active]; ok {
		return theme
	}
	return t.themes["plain"]
}

// GetStyle implements output.StyleProvider.
func (t *ThemeService) GetStyle(semantic string) output.TextStyle {
	theme := t.ActiveTheme()
	switch output.SemanticType(semantic) {
	case output.SemanticHeading:
		return theme.Heading
	case output.SemanticCommand:
		return theme.Command
	case output.SemanticModule:
		return theme.Module
	case output.SemanticParameter:
		return prefixed{prefix: "-", style: theme.Parameter}
	case output.SemanticMuted:
		return theme.Muted
	case output.SemanticSuccess:
		return theme.Success
	case output.SemanticError:
		return theme.Error
	case output.SemanticWarning:
		return theme.Warning
	case output.SemanticInfo:
		return theme.Info
	case output.SemanticHighlight:
		return theme.Highlight
	case output.SemanticBold:
		return theme.Bold
	case output.SemanticCode:
		return theme.Code
	case output.SemanticCodeBlock:
		return output.NewCodeBlockTextStyle(t)
	default:
		return lipgloss.NewStyle()
	}
}

// IsAvailable implements output.StyleProvider. The plain theme reports unavailable
// so printers fall back to their text prefixes.
func (t *ThemeService) IsAvailable() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.initialized && t.active != "plain"
}

// GetThemeType implements output.StyleProvider.
func (t *ThemeService) GetThemeType() string {
	return t.ActiveTheme().GlamourStyle
}

type prefixed struct {
	prefix string
	style  lipgloss.Style
}

func (p prefixed) Render(text ...string) string {
	return p.style.Render(p.prefix + strings.Join(text, " "))
}

// CreateList creates a bullet list styled with the theme border color.
func (t *Theme) CreateList() *list.List {
	return list.New().Enumerator(list.Bullet).EnumeratorStyle(t.Border)
}

// CreateModuleTree renders the module groups as a two-level list headed
// "All Modules (<total>)".
func (t *Theme) CreateModuleTree(groups catalog.Groups) *list.List {
	modules := t.CreateList()
	for _, group := range groups.Modules {
		modules.Item(fmt.Sprintf("%s %s", t.Module.Render(group.Name), t.Muted.Render(fmt.Sprintf("(%d)", group.Count))))
	}
	root := fmt.Sprintf("%s %s", t.Heading.Render("All Modules"), t.Muted.Render(fmt.Sprintf("(%d)", groups.Total)))
	return t.CreateList().Item(root).Item(modules)
}

// GetGlobalThemeService returns the registered theme service.
func GetGlobalThemeService() (*ThemeService, error) {
	return lookup[*ThemeService]("theme")
}
