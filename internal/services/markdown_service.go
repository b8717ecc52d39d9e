package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"psbrowse/internal/logger"
)

// DefaultWordWrap is the markdown word wrap width when none is configured.
const DefaultWordWrap = 100

// MarkdownService renders markdown to terminal output with glamour.
type MarkdownService struct {
	mu          sync.Mutex
	initialized bool
	style       string
	wordWrap    int
	renderer    *glamour.TermRenderer
}

// NewMarkdownService creates a MarkdownService using style ("auto", "dark", "light",
// "notty", "ascii") and the given word wrap. A non-positive width selects DefaultWordWrap.
func NewMarkdownService(style string, wordWrap int) *MarkdownService {
	if style == "" {
		style = "auto"
	}
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}
	return &MarkdownService{style: style, wordWrap: wordWrap}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize builds the glamour renderer for the configured style.
func (m *MarkdownService) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	renderer, err := newTermRenderer(m.style, m.wordWrap)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.initialized = true
	logger.Debug("MarkdownService initialized", "style", m.style, "width", m.wordWrap)
	return nil
}

func newTermRenderer(style string, wordWrap int) (*glamour.TermRenderer, error) {
	if style == "auto" {
		return glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrap),
		)
	}
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wordWrap),
	)
}

// Render renders markdown with the configured style.
func (m *MarkdownService) Render(markdown string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return "", fmt.Errorf("markdown service: %w", ErrNotInitialized)
	}
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}

// RenderWithStyle renders markdown with a one-off style, falling back to the
// configured renderer when glamour rejects the style.
func (m *MarkdownService) RenderWithStyle(markdown, style string) (string, error) {
	m.mu.Lock()
	initialized := m.initialized
	wordWrap := m.wordWrap
	m.mu.Unlock()

	if !initialized {
		return "", fmt.Errorf("markdown service: %w", ErrNotInitialized)
	}
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	renderer, err := newTermRenderer(style, wordWrap)
	if err != nil {
		logger.Debug("Failed to create renderer with style, falling back to default", "style", style, "error", err)
		return m.Render(markdown)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown with style '%s': %w", style, err)
	}
	return rendered, nil
}

// SetWordWrap rebuilds the renderer with a new wrap width.
func (m *MarkdownService) SetWordWrap(width int) error {
	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return fmt.Errorf("markdown service: %w", ErrNotInitialized)
	}

	renderer, err := newTermRenderer(m.style, width)
	if err != nil {
		return fmt.Errorf("failed to create renderer with word wrap %d: %w", width, err)
	}
	m.renderer = renderer
	m.wordWrap = width
	return nil
}

// Style returns the configured glamour style.
func (m *MarkdownService) Style() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.style
}

// GetAvailableStyles returns the glamour styles psbrowse accepts.
func (m *MarkdownService) GetAvailableStyles() []string {
	return []string{"auto", "dark", "light", "notty", "ascii"}
}

// GetGlobalMarkdownService returns the registered markdown service.
func GetGlobalMarkdownService() (*MarkdownService, error) {
	return lookup[*MarkdownService]("markdown")
}
