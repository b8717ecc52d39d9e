// Package pstypes defines theme-related data structures for psbrowse rendering.
package pstypes

// ThemeConfig is a theme loaded from YAML.
type ThemeConfig struct {
	// Name is the theme identifier ("default", "dark", "light", "plain").
	Name string `yaml:"name" json:"name"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// GlamourStyle is the glamour standard style used for help markdown.
	GlamourStyle string `yaml:"glamour_style,omitempty" json:"glamour_style,omitempty"`

	Styles ThemeStyles `yaml:"styles" json:"styles"`
}

// ThemeStyles maps the semantic elements of the browser to styles.
type ThemeStyles struct {
	Heading   StyleConfig `yaml:"heading" json:"heading"`
	Command   StyleConfig `yaml:"command" json:"command"`
	Module    StyleConfig `yaml:"module" json:"module"`
	Parameter StyleConfig `yaml:"parameter" json:"parameter"`
	Muted     StyleConfig `yaml:"muted" json:"muted"`
	Success   StyleConfig `yaml:"success" json:"success"`
	Error     StyleConfig `yaml:"error" json:"error"`
	Warning   StyleConfig `yaml:"warning" json:"warning"`
	Info      StyleConfig `yaml:"info" json:"info"`
	Highlight StyleConfig `yaml:"highlight" json:"highlight"`
	Bold      StyleConfig `yaml:"bold" json:"bold"`
	Code      StyleConfig `yaml:"code" json:"code"`

	// Border colors table borders and list enumerators.
	Border StyleConfig `yaml:"border" json:"border"`
}

// StyleConfig is the visual styling of one semantic element.
// Colors are either a plain string (hex or ANSI index) or an AdaptiveColor mapping.
type StyleConfig struct {
	Foreground    interface{} `yaml:"foreground,omitempty" json:"foreground,omitempty"`
	Background    interface{} `yaml:"background,omitempty" json:"background,omitempty"`
	Bold          *bool       `yaml:"bold,omitempty" json:"bold,omitempty"`
	Italic        *bool       `yaml:"italic,omitempty" json:"italic,omitempty"`
	Underline     *bool       `yaml:"underline,omitempty" json:"underline,omitempty"`
	Strikethrough *bool       `yaml:"strikethrough,omitempty" json:"strikethrough,omitempty"`
}

// AdaptiveColor picks a color by terminal background.
type AdaptiveColor struct {
	Light string `yaml:"light" json:"light"`
	Dark  string `yaml:"dark" json:"dark"`
}
