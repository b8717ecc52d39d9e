// Package output provides the console output layer for psbrowse.
// Styling is injected through StyleProvider so the package has no service dependencies.
package output

// StyleProvider is implemented by the theme service to supply styles for
// semantic output types.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type ("info", "command", "module", ...).
	GetStyle(semantic string) TextStyle

	// IsAvailable returns true if the provider is ready. Printers fall back to plain text otherwise.
	IsAvailable() bool

	// GetThemeType returns the glamour style matching the theme ("dark", "light", "auto", "notty").
	GetThemeType() string
}

// TextStyle renders text with styling. lipgloss.Style satisfies it.
type TextStyle interface {
	Render(text ...string) string
}

// Mode defines different output modes the printer can operate in.
type Mode int

const (
	// ModeAuto styles output when a provider is available.
	ModeAuto Mode = iota

	// ModeStyled forces styled output (with colors, formatting)
	ModeStyled

	// ModePlain forces plain text output (no colors, minimal formatting)
	ModePlain

	// ModeJSON outputs one JSON object per message for machine consumption
	ModeJSON
)

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain represents plain text without any semantic meaning.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text.
	SemanticInfo SemanticType = "info"
	// SemanticSuccess represents success or completion text.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents warning text.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents error text.
	SemanticError SemanticType = "error"

	// SemanticHeading represents a section title such as "SYNTAX".
	SemanticHeading SemanticType = "heading"
	// SemanticCommand represents a PowerShell command name.
	SemanticCommand SemanticType = "command"
	// SemanticModule represents a module name.
	SemanticModule SemanticType = "module"
	// SemanticParameter represents a parameter name.
	SemanticParameter SemanticType = "parameter"
	// SemanticMuted represents secondary text such as counts and sources.
	SemanticMuted SemanticType = "muted"

	// SemanticHighlight represents highlighted or emphasized text.
	SemanticHighlight SemanticType = "highlight"
	// SemanticBold represents bold text styling.
	SemanticBold SemanticType = "bold"

	// SemanticCode represents inline code text.
	SemanticCode SemanticType = "code"
	// SemanticCodeBlock represents a multi-line PowerShell snippet.
	SemanticCodeBlock SemanticType = "code_block"
)
