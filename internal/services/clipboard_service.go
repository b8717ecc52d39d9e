package services

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClipboardUnavailable is returned when the platform has no usable clipboard.
var ErrClipboardUnavailable = errors.New("clipboard not available")

// ClipboardService copies command names and syntax blocks to the system clipboard.
type ClipboardService struct {
	initialized bool
	once        sync.Once
	initErr     error
	write       func(text string) error
}

// NewClipboardService creates a ClipboardService backed by the platform clipboard.
func NewClipboardService() *ClipboardService {
	return &ClipboardService{write: writeToClipboard}
}

// Name returns the service name "clipboard" for registration.
func (c *ClipboardService) Name() string {
	return "clipboard"
}

// Initialize marks the service ready. The platform clipboard itself is opened
// on first use so a headless session never pays for it.
func (c *ClipboardService) Initialize() error {
	c.initialized = true
	return nil
}

// Available reports whether this build can reach a system clipboard.
func (c *ClipboardService) Available() bool {
	return clipboardAvailable
}

// Copy writes text to the clipboard.
func (c *ClipboardService) Copy(text string) error {
	if !c.initialized {
		return fmt.Errorf("clipboard service: %w", ErrNotInitialized)
	}
	if text == "" {
		return fmt.Errorf("nothing to copy")
	}

	c.once.Do(func() {
		c.initErr = initClipboard()
	})
	if c.initErr != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, c.initErr)
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// GetGlobalClipboardService returns the registered clipboard service.
func GetGlobalClipboardService() (*ClipboardService, error) {
	return lookup[*ClipboardService]("clipboard")
}
