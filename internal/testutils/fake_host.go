// Package testutils provides an in-memory PowerShell host and fixtures for psbrowse tests.
package testutils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"psbrowse/internal/host"
	"psbrowse/pkg/pstypes"
)

// FakeHost implements host.Connector with canned data. Each Open returns a fresh
// FakeSession over the same data. All fields may be set before first use.
type FakeHost struct {
	Commands    []pstypes.CommandSummary
	Descriptors map[string]*pstypes.CommandDescriptor
	Help        map[string]string
	Syntax      map[string]string
	HostVersion string

	// OpenErr fails every Open.
	OpenErr error
	// QueryErr fails every query after Open.
	QueryErr error
	// HelpErr fails GetHelpFull only.
	HelpErr error
	// Delay is applied to each query; queries honour context cancellation while waiting.
	Delay time.Duration
	// PanicOn makes GetCommandInfo panic for this command name.
	PanicOn string

	opened   atomic.Int32
	closed   atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32

	mu      sync.Mutex
	queries []string
}

// NewFakeHost returns a host seeded with the standard fixtures.
func NewFakeHost() *FakeHost {
	g := NewTestDataGenerator()
	return &FakeHost{
		Commands: g.SampleCommands(),
		Descriptors: map[string]*pstypes.CommandDescriptor{
			"Get-Item": g.GetItemDescriptor(),
			"gi":       g.AliasDescriptor("gi"),
		},
		Help: map[string]string{
			"Get-Item": g.GetItemHelpJSON(),
		},
		Syntax: map[string]string{
			"gi": "Get-Item [-Path] <string[]> [-Force]\n\nGet-Item -LiteralPath <string[]> [-Force]",
		},
		HostVersion: "7.4.1",
	}
}

// Open implements host.Connector.
func (f *FakeHost) Open(ctx context.Context) (host.Session, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.opened.Add(1)
	return &FakeSession{host: f}, nil
}

// Opened returns the number of sessions opened so far.
func (f *FakeHost) Opened() int { return int(f.opened.Load()) }

// Closed returns the number of sessions closed so far.
func (f *FakeHost) Closed() int { return int(f.closed.Load()) }

// MaxConcurrent returns the highest number of queries observed in flight at once.
func (f *FakeHost) MaxConcurrent() int { return int(f.maxSeen.Load()) }

// Queries returns the operations performed, as "Operation:target".
func (f *FakeHost) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *FakeHost) begin(ctx context.Context, op, target string) (func(), error) {
	f.mu.Lock()
	f.queries = append(f.queries, op+":"+target)
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	end := func() { f.inFlight.Add(-1) }

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			end()
			return nil, ctx.Err()
		}
	}
	if f.QueryErr != nil {
		end()
		return nil, f.QueryErr
	}
	return end, nil
}

// FakeSession is one session handed out by FakeHost.
type FakeSession struct {
	host   *FakeHost
	closed atomic.Bool
}

// ListCommands implements host.Session.
func (s *FakeSession) ListCommands(ctx context.Context, kinds []pstypes.CommandType) ([]pstypes.CommandSummary, error) {
	if s.closed.Load() {
		return nil, host.ErrSessionClosed
	}
	end, err := s.host.begin(ctx, "ListCommands", "")
	if err != nil {
		return nil, err
	}
	defer end()

	wanted := make(map[pstypes.CommandType]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}
	var out []pstypes.CommandSummary
	for _, c := range s.host.Commands {
		if wanted[c.CommandType] {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetCommandInfo implements host.Session.
func (s *FakeSession) GetCommandInfo(ctx context.Context, name string) (*pstypes.CommandDescriptor, error) {
	if s.closed.Load() {
		return nil, host.ErrSessionClosed
	}
	end, err := s.host.begin(ctx, "GetCommandInfo", name)
	if err != nil {
		return nil, err
	}
	defer end()

	if s.host.PanicOn != "" && name == s.host.PanicOn {
		panic("fake host failure for " + name)
	}
	return s.host.Descriptors[name], nil
}

// GetHelpFull implements host.Session.
func (s *FakeSession) GetHelpFull(ctx context.Context, name string) (pstypes.HelpRecord, error) {
	if s.closed.Load() {
		return pstypes.HelpRecord{}, host.ErrSessionClosed
	}
	end, err := s.host.begin(ctx, "GetHelpFull", name)
	if err != nil {
		return pstypes.HelpRecord{}, err
	}
	defer end()

	if s.host.HelpErr != nil {
		return pstypes.HelpRecord{}, s.host.HelpErr
	}
	return pstypes.NewHelpRecord(s.host.Help[name]), nil
}

// GetSyntaxText implements host.Session.
func (s *FakeSession) GetSyntaxText(ctx context.Context, name string) (string, error) {
	if s.closed.Load() {
		return "", host.ErrSessionClosed
	}
	end, err := s.host.begin(ctx, "GetSyntaxText", name)
	if err != nil {
		return "", err
	}
	defer end()

	return s.host.Syntax[name], nil
}

// Version implements host.Session.
func (s *FakeSession) Version(ctx context.Context) (string, error) {
	if s.closed.Load() {
		return "", host.ErrSessionClosed
	}
	end, err := s.host.begin(ctx, "Version", "")
	if err != nil {
		return "", err
	}
	defer end()

	return s.host.HostVersion, nil
}

// Close implements host.Session.
func (s *FakeSession) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.host.closed.Add(1)
	}
	return nil
}

var (
	_ host.Connector = (*FakeHost)(nil)
	_ host.Session   = (*FakeSession)(nil)
)
