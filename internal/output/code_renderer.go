package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// codeWrapWidth is the word wrap applied to rendered snippets.
const codeWrapWidth = 100

// CodeRenderer renders PowerShell snippets with glamour, framed by a lipgloss border
// when glamour is unavailable.
type CodeRenderer struct {
	glamourRenderer *glamour.TermRenderer
	frame           lipgloss.Style
	available       bool
}

// NewCodeRenderer creates a renderer using the glamour style reported by styleProvider.
func NewCodeRenderer(styleProvider StyleProvider) *CodeRenderer {
	themeStyle := "auto"
	if styleProvider != nil && styleProvider.IsAvailable() {
		themeStyle = styleProvider.GetThemeType()
	}

	var renderer *glamour.TermRenderer
	var err error
	if themeStyle != "" && themeStyle != "auto" {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(themeStyle),
			glamour.WithWordWrap(codeWrapWidth),
		)
	}
	if renderer == nil || err != nil {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(codeWrapWidth),
			glamour.WithEnvironmentConfig(),
		)
	}
	if err != nil {
		renderer = nil
	}

	frame := lipgloss.NewStyle().
		Padding(0, 1).
		MarginLeft(2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("33"))

	return &CodeRenderer{
		glamourRenderer: renderer,
		frame:           frame,
		available:       true,
	}
}

// RenderCodeBlock renders code as a fenced block in the given language.
func (c *CodeRenderer) RenderCodeBlock(code, language string) string {
	if !c.available {
		return indentCode(code)
	}

	if c.glamourRenderer != nil {
		markdown := "```" + language + "\n" + code + "\n```"
		rendered, err := c.glamourRenderer.Render(markdown)
		if err == nil && strings.TrimSpace(rendered) != "" {
			return strings.Trim(rendered, "\n")
		}
	}

	return c.frame.Render(code)
}

// IsAvailable returns whether the code renderer is available.
func (c *CodeRenderer) IsAvailable() bool {
	return c.available
}
