package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"psbrowse/internal/host"
	"psbrowse/internal/logger"
	"psbrowse/internal/normalize"
	"psbrowse/pkg/pstypes"
)

// OnlineHelpBase is the documentation search URL; the escaped command name is appended.
const OnlineHelpBase = "https://learn.microsoft.com/powershell/module/?term="

// ListOptions selects which command kinds a listing includes. Cmdlets are always listed.
type ListOptions struct {
	IncludeFunctions bool
	IncludeAliases   bool
}

// HelpOutcome is the result of a background help load.
type HelpOutcome struct {
	Name string
	Help pstypes.NormalizedHelp
}

// BrowserService fetches command lists and normalized help from the host.
// Every query opens a fresh session and closes it before returning. Help
// queries are serialized so at most one is in flight per service.
type BrowserService struct {
	initialized bool
	connector   host.Connector
	normalizer  *normalize.Normalizer
	timeout     time.Duration
	helpMu      sync.Mutex
	logger      *log.Logger
}

// NewBrowserService creates a BrowserService. A nil normalizer uses the default
// options and a non-positive timeout uses host.DefaultTimeout.
func NewBrowserService(connector host.Connector, normalizer *normalize.Normalizer, timeout time.Duration) *BrowserService {
	if normalizer == nil {
		normalizer = normalize.New(normalize.DefaultOptions())
	}
	if timeout <= 0 {
		timeout = host.DefaultTimeout
	}
	return &BrowserService{
		connector:  connector,
		normalizer: normalizer,
		timeout:    timeout,
		logger:     logger.NewStyledLogger("Browser"),
	}
}

// Name returns the service name "browser" for registration.
func (b *BrowserService) Name() string {
	return "browser"
}

// Initialize checks that a host connector was supplied.
func (b *BrowserService) Initialize() error {
	if b.connector == nil {
		return fmt.Errorf("browser service requires a host connector")
	}
	b.initialized = true
	return nil
}

// withSession opens a session bounded by the service timeout, runs fn and closes the session.
func (b *BrowserService) withSession(ctx context.Context, fn func(ctx context.Context, session host.Session) error) error {
	if !b.initialized {
		return fmt.Errorf("browser service: %w", ErrNotInitialized)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	session, err := b.connector.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open host session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			b.logger.Debug("Session close failed", "error", cerr)
		}
	}()

	return fn(ctx, session)
}

// ListCommands returns the host's commands of the selected kinds, sorted by name.
func (b *BrowserService) ListCommands(ctx context.Context, opts ListOptions) ([]pstypes.CommandSummary, error) {
	start := time.Now()
	var commands []pstypes.CommandSummary
	err := b.withSession(ctx, func(ctx context.Context, session host.Session) error {
		var err error
		commands, err = session.ListCommands(ctx, host.Kinds(opts.IncludeFunctions, opts.IncludeAliases))
		return err
	})
	if err != nil {
		b.logger.Error("Listing commands failed", "error", err)
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}

	sort.SliceStable(commands, func(i, j int) bool {
		return pstypes.NameLess(commands[i].Name, commands[j].Name)
	})
	if commands == nil {
		commands = []pstypes.CommandSummary{}
	}

	b.logger.Debug("Loaded commands", "count", len(commands), "elapsed", time.Since(start))
	return commands, nil
}

// LoadHelp returns the finalized help for name. It never fails: host faults,
// timeouts and panics become an "Error loading help: ..." synopsis.
func (b *BrowserService) LoadHelp(ctx context.Context, name string) (help pstypes.NormalizedHelp) {
	name = strings.TrimSpace(name)
	if name == "" {
		return normalize.Finalize(pstypes.NormalizedHelp{})
	}

	b.helpMu.Lock()
	defer b.helpMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Help query panicked", "command", name, "error", r)
			help = normalize.ErrorHelp(fmt.Errorf("%v", r))
		}
	}()

	start := time.Now()
	err := b.withSession(ctx, func(ctx context.Context, session host.Session) error {
		desc, err := session.GetCommandInfo(ctx, name)
		if err != nil {
			return err
		}
		record, err := session.GetHelpFull(ctx, name)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, host.ErrSessionClosed) {
				return err
			}
			// Syntax and parameters come from the descriptor; only synopsis and examples are lost.
			b.logger.Warn("Help record unavailable", "command", name, "error", err)
			record = pstypes.HelpRecord{}
		}
		legacy := func() (string, error) {
			return session.GetSyntaxText(ctx, name)
		}
		help = b.normalizer.Normalize(name, desc, record, legacy)
		return nil
	})
	if err != nil {
		b.logger.Warn("Help query failed", "command", name, "error", err)
		return normalize.ErrorHelp(err)
	}

	logger.HostOperation("LoadHelp", name, "elapsed", time.Since(start))
	return help
}

// LoadHelpAsync loads help in the background and delivers exactly one outcome
// on the returned channel. Callers that moved on may ignore the channel.
func (b *BrowserService) LoadHelpAsync(ctx context.Context, name string) <-chan HelpOutcome {
	out := make(chan HelpOutcome, 1)
	go func() {
		defer close(out)
		out <- HelpOutcome{Name: name, Help: b.LoadHelp(ctx, name)}
	}()
	return out
}

// HostVersion returns the PowerShell version reported by the host.
func (b *BrowserService) HostVersion(ctx context.Context) (string, error) {
	var version string
	err := b.withSession(ctx, func(ctx context.Context, session host.Session) error {
		var err error
		version, err = session.Version(ctx)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to query host version: %w", err)
	}
	return version, nil
}

// OnlineHelpURL returns the documentation search URL for a command name.
// Spaces are percent-encoded rather than written as "+".
func OnlineHelpURL(name string) string {
	escaped := url.QueryEscape(strings.TrimSpace(name))
	return OnlineHelpBase + strings.ReplaceAll(escaped, "+", "%20")
}

// GetGlobalBrowserService returns the registered browser service.
func GetGlobalBrowserService() (*BrowserService, error) {
	return lookup[*BrowserService]("browser")
}
