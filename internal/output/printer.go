package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Printer writes plain, styled or JSON output for the CLI and the shell.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	mode          Mode
	forcePlain    bool
	silent        bool
	prefix        string

	mu sync.Mutex
}

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithStyles configures the printer to use provider when it is available.
func WithStyles(provider StyleProvider) Option {
	return func(p *Printer) {
		if provider != nil && provider.IsAvailable() {
			p.styleProvider = provider
		}
	}
}

// WithWriter configures the destination. Default is os.Stdout.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithMode configures the printer to operate in a specific output mode.
func WithMode(mode Mode) Option {
	return func(p *Printer) {
		p.mode = mode
	}
}

// PlainText forces plain output, ignoring any StyleProvider.
func PlainText() Option {
	return func(p *Printer) {
		p.mode = ModePlain
		p.forcePlain = true
	}
}

// TestMode configures the printer for deterministic output in tests.
func TestMode() Option {
	return PlainText()
}

// Silent suppresses all output.
func Silent() Option {
	return func(p *Printer) {
		p.silent = true
	}
}

// WithPrefix adds a prefix to every message.
func WithPrefix(prefix string) Option {
	return func(p *Printer) {
		p.prefix = prefix
	}
}

// NewPrinter creates a Printer writing to os.Stdout in ModeAuto unless options say otherwise.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Print outputs text without any semantic styling.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Printf outputs formatted text without any semantic styling.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.output(SemanticPlain, fmt.Sprintf(format, args...), false)
}

// Println outputs text followed by a newline.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info outputs informational text.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Success outputs success text.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text, true)
}

// Warning outputs warning text.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error outputs error text.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Heading outputs a section title on its own line.
func (p *Printer) Heading(text string) {
	p.output(SemanticHeading, text, true)
}

// Command outputs a command name inline.
func (p *Printer) Command(text string) {
	p.output(SemanticCommand, text, false)
}

// Module outputs a module name inline.
func (p *Printer) Module(text string) {
	p.output(SemanticModule, text, false)
}

// Parameter outputs a parameter name inline.
func (p *Printer) Parameter(text string) {
	p.output(SemanticParameter, text, false)
}

// Muted outputs secondary text inline.
func (p *Printer) Muted(text string) {
	p.output(SemanticMuted, text, false)
}

// Highlight outputs emphasized text inline.
func (p *Printer) Highlight(text string) {
	p.output(SemanticHighlight, text, false)
}

// Bold outputs bold text inline.
func (p *Printer) Bold(text string) {
	p.output(SemanticBold, text, false)
}

// Code outputs inline code.
func (p *Printer) Code(text string) {
	p.output(SemanticCode, text, false)
}

// CodeBlock outputs a multi-line PowerShell snippet.
func (p *Printer) CodeBlock(text string) {
	p.output(SemanticCodeBlock, text, true)
}

// Raw writes text verbatim, bypassing styling and JSON framing. Used for
// content that was already rendered (tables, markdown).
func (p *Printer) Raw(text string) {
	if p.silent {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.writer, text)
}

func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	if p.silent {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var finalText string
	switch p.mode {
	case ModeJSON:
		finalText = p.renderJSON(semantic, text)
	case ModeStyled:
		finalText = p.renderStyled(semantic, text, addNewline)
	default:
		finalText = p.renderText(semantic, text, addNewline)
	}

	if p.prefix != "" {
		finalText = p.prefix + finalText
	}

	_, _ = fmt.Fprint(p.writer, finalText) // Ignore write errors for output operations
}

func (p *Printer) renderText(semantic SemanticType, text string, addNewline bool) string {
	var style TextStyle
	if !p.forcePlain && p.styleProvider != nil && p.styleProvider.IsAvailable() {
		style = p.styleProvider.GetStyle(string(semantic))
	} else {
		style = NewPlainStyleProvider().GetStyle(string(semantic))
	}
	return withNewline(style.Render(text), addNewline)
}

func (p *Printer) renderStyled(semantic SemanticType, text string, addNewline bool) string {
	if p.styleProvider != nil && p.styleProvider.IsAvailable() {
		return withNewline(p.styleProvider.GetStyle(string(semantic)).Render(text), addNewline)
	}
	return p.renderText(semantic, text, addNewline)
}

func (p *Printer) renderJSON(semantic SemanticType, text string) string {
	jsonBytes, err := json.Marshal(map[string]interface{}{
		"type":    semantic,
		"message": text,
	})
	if err != nil {
		return text + "\n"
	}
	return string(jsonBytes) + "\n"
}

func withNewline(s string, addNewline bool) string {
	if addNewline && !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

// Writer returns the destination writer.
func (p *Printer) Writer() io.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer
}

// SetWriter changes the output writer.
func (p *Printer) SetWriter(writer io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = writer
}

// SetMode changes the output mode.
func (p *Printer) SetMode(mode Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
}

// SetStyleProvider changes the style provider. Pass nil to disable styling.
func (p *Printer) SetStyleProvider(provider StyleProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.styleProvider = provider
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	return !p.forcePlain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}

// String returns a string representation for debugging.
func (p *Printer) String() string {
	hasStyles := "no"
	if p.IsStylable() {
		hasStyles = "yes"
	}
	return fmt.Sprintf("Printer{mode: %v, styles: %s, writer: %T}", p.mode, hasStyles, p.writer)
}
