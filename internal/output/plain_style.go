package output

import (
	"fmt"
	"strings"
)

// PlainTextStyle renders text with an optional semantic prefix and no escape sequences.
type PlainTextStyle struct {
	prefix string
}

// NewPlainTextStyle creates a new plain text style with an optional prefix.
func NewPlainTextStyle(prefix string) *PlainTextStyle {
	return &PlainTextStyle{prefix: prefix}
}

// Render implements TextStyle.
func (p *PlainTextStyle) Render(text ...string) string {
	return p.prefix + strings.Join(text, " ")
}

// HeadingTextStyle upper-cases section titles in plain output.
type HeadingTextStyle struct{}

// Render implements TextStyle.
func (HeadingTextStyle) Render(text ...string) string {
	return strings.ToUpper(strings.Join(text, " "))
}

// CodeBlockTextStyle renders PowerShell snippets, through glamour when possible.
type CodeBlockTextStyle struct {
	renderer *CodeRenderer
}

// NewCodeBlockTextStyle creates a code block style themed after styleProvider.
func NewCodeBlockTextStyle(styleProvider StyleProvider) *CodeBlockTextStyle {
	return &CodeBlockTextStyle{renderer: NewCodeRenderer(styleProvider)}
}

// Render implements TextStyle.
func (c *CodeBlockTextStyle) Render(text ...string) string {
	code := strings.Join(text, "\n")
	if c.renderer != nil && c.renderer.IsAvailable() {
		return c.renderer.RenderCodeBlock(code, "powershell")
	}
	return indentCode(code)
}

// PlainStyleProvider implements StyleProvider with prefixes instead of colors.
type PlainStyleProvider struct {
	available bool
}

// NewPlainStyleProvider creates a new plain style provider.
func NewPlainStyleProvider() *PlainStyleProvider {
	return &PlainStyleProvider{available: true}
}

// GetStyle implements StyleProvider.
func (p *PlainStyleProvider) GetStyle(semantic string) TextStyle {
	switch SemanticType(semantic) {
	case SemanticSuccess:
		return NewPlainTextStyle("✓ ")
	case SemanticWarning:
		return NewPlainTextStyle("⚠ ")
	case SemanticError:
		return NewPlainTextStyle("✗ ")
	case SemanticInfo:
		return NewPlainTextStyle("ℹ ")
	case SemanticParameter:
		return NewPlainTextStyle("-")
	case SemanticHeading:
		return HeadingTextStyle{}
	case SemanticCode:
		return &quotedStyle{}
	case SemanticCodeBlock:
		return &plainCodeBlockStyle{}
	default:
		return NewPlainTextStyle("")
	}
}

// IsAvailable implements StyleProvider.
func (p *PlainStyleProvider) IsAvailable() bool {
	return p.available
}

// GetThemeType implements StyleProvider.
func (p *PlainStyleProvider) GetThemeType() string {
	return "notty"
}

// String returns a string representation for debugging.
func (p *PlainStyleProvider) String() string {
	return fmt.Sprintf("PlainStyleProvider{available: %t}", p.available)
}

type quotedStyle struct{}

func (*quotedStyle) Render(text ...string) string {
	return "`" + strings.Join(text, " ") + "`"
}

type plainCodeBlockStyle struct{}

func (*plainCodeBlockStyle) Render(text ...string) string {
	return indentCode(strings.Join(text, "\n"))
}

// indentCode indents non-blank lines by two spaces.
func indentCode(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
