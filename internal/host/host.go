// Package host queries a PowerShell host for command metadata and help.
//
// A Connector opens one Session per query. The production Connector drives a
// pwsh child process over stdin/stdout; tests substitute an in-memory fake.
package host

import (
	"context"
	"errors"
	"time"

	"psbrowse/pkg/pstypes"
)

var (
	// ErrHostNotFound is returned when no PowerShell executable can be located.
	ErrHostNotFound = errors.New("powershell host not found")
	// ErrSessionClosed is returned by calls on a session that was closed or killed.
	ErrSessionClosed = errors.New("host session closed")
	// ErrHostTooOld is returned when the host reports a version below the configured minimum.
	ErrHostTooOld = errors.New("powershell host version below minimum")
)

// DefaultTimeout bounds a single query when the configuration does not set one.
const DefaultTimeout = 30 * time.Second

// Session is one acquired connection to the host. A session serves a single
// query and must be closed by the caller.
type Session interface {
	// ListCommands enumerates commands of the given kinds.
	ListCommands(ctx context.Context, kinds []pstypes.CommandType) ([]pstypes.CommandSummary, error)
	// GetCommandInfo returns the descriptor for name, or nil when the host does not know it.
	GetCommandInfo(ctx context.Context, name string) (*pstypes.CommandDescriptor, error)
	// GetHelpFull returns the full help record for name. A command without help yields an empty record.
	GetHelpFull(ctx context.Context, name string) (pstypes.HelpRecord, error)
	// GetSyntaxText returns the host's textual syntax rendering with ANSI sequences removed.
	GetSyntaxText(ctx context.Context, name string) (string, error)
	// Version returns the host's PowerShell version string.
	Version(ctx context.Context) (string, error)
	// Close releases the session. Closing twice is a no-op.
	Close() error
}

// Connector acquires sessions.
type Connector interface {
	Open(ctx context.Context) (Session, error)
}

// Config describes how to launch the host.
type Config struct {
	// Path is the executable to run. Empty means search PATH for pwsh, then powershell.
	Path string
	// MinVersion rejects hosts older than this semantic version when set.
	MinVersion string
}

// Kinds builds the kind list for a listing request. Cmdlets are always included.
func Kinds(includeFunctions, includeAliases bool) []pstypes.CommandType {
	kinds := []pstypes.CommandType{pstypes.CommandTypeCmdlet}
	if includeFunctions {
		kinds = append(kinds, pstypes.CommandTypeFunction)
	}
	if includeAliases {
		kinds = append(kinds, pstypes.CommandTypeAlias)
	}
	return kinds
}
