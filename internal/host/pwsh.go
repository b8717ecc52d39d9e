package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"psbrowse/internal/logger"
	"psbrowse/internal/version"
	"psbrowse/pkg/pstypes"
)

// candidateExecutables are searched in order when no host path is configured.
var candidateExecutables = []string{"pwsh", "powershell"}

// maxResponseLine bounds a single JSON response line; full help records run to a few hundred KB.
const maxResponseLine = 16 * 1024 * 1024

// stopGracePeriod is how long Close waits for the host to exit before killing it.
const stopGracePeriod = 5 * time.Second

// PwshConnector launches one pwsh child process per session.
type PwshConnector struct {
	config   Config
	lookPath func(string) (string, error)
	logger   *log.Logger
}

// NewPwshConnector creates a connector for the given configuration.
func NewPwshConnector(config Config) *PwshConnector {
	return &PwshConnector{
		config:   config,
		lookPath: exec.LookPath,
		logger:   logger.NewStyledLogger("Host"),
	}
}

// Executable resolves the host executable path.
func (c *PwshConnector) Executable() (string, error) {
	candidates := candidateExecutables
	if c.config.Path != "" {
		candidates = []string{c.config.Path}
	}
	for _, candidate := range candidates {
		if path, err := c.lookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrHostNotFound, strings.Join(candidates, ", "))
}

// Open starts a host process, sends the session preamble and checks the minimum version.
func (c *PwshConnector) Open(ctx context.Context) (Session, error) {
	path, err := c.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path, "-NoLogo", "-NoProfile", "-NonInteractive", "-Command", "-")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}
	c.logger.Debug("Host process started", "path", path, "pid", cmd.Process.Pid)

	session := newSession(stdin, stdout, &processHandle{cmd: cmd, drained: c.startDrain(stderr)}, c.logger)
	if err := session.init(ctx, c.config.MinVersion); err != nil {
		_ = session.Close()
		return nil, err
	}
	return session, nil
}

// startDrain logs the host's stderr in the background. The returned channel is
// closed once stderr reaches EOF.
func (c *PwshConnector) startDrain(stderr io.Reader) <-chan struct{} {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		c.drainErrors(stderr)
	}()
	return drained
}

func (c *PwshConnector) drainErrors(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			c.logger.Debug("Host stderr", "line", line)
		}
	}
}

// process is the lifecycle of whatever sits behind a session's pipes.
type process interface {
	Wait() error
	Kill() error
}

type processHandle struct {
	cmd     *exec.Cmd
	drained <-chan struct{}
}

// Wait must not close the stderr pipe before the drain has read it to EOF.
func (p *processHandle) Wait() error {
	<-p.drained
	return p.cmd.Wait()
}

func (p *processHandle) Kill() error { return p.cmd.Process.Kill() }

// pwshSession exchanges one-line scripts and sentinel-framed JSON responses with a host.
type pwshSession struct {
	mu      sync.Mutex
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	proc    process
	logger  *log.Logger
	closed  bool
	stopped bool
	version string
}

func newSession(stdin io.WriteCloser, stdout io.Reader, proc process, l *log.Logger) *pwshSession {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseLine)
	return &pwshSession{
		stdin:   stdin,
		scanner: scanner,
		proc:    proc,
		logger:  l,
	}
}

func (s *pwshSession) init(ctx context.Context, minVersion string) error {
	if err := s.send(Sanitize(preambleScript)); err != nil {
		return err
	}
	v, err := s.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to query host version: %w", err)
	}
	ok, err := version.SatisfiesMinimum(v, minVersion)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: host %s, required %s", ErrHostTooOld, v, minVersion)
	}
	return nil
}

func (s *pwshSession) send(line string) error {
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	}
	return nil
}

type callResult struct {
	data gjson.Result
	err  error
}

// call runs body on the host and returns its data payload. If ctx ends first the
// host process is killed and the session becomes unusable.
func (s *pwshSession) call(ctx context.Context, operation, target, body string) (gjson.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return gjson.Result{}, ErrSessionClosed
	}

	start := time.Now()
	sentinel := "__psb_" + uuid.NewString()
	if err := s.send(envelope(body, sentinel)); err != nil {
		return gjson.Result{}, err
	}

	done := make(chan callResult, 1)
	go func() {
		lines, err := s.readUntil(sentinel)
		if err != nil {
			done <- callResult{err: err}
			return
		}
		data, err := parseEnvelope(lines)
		done <- callResult{data: data, err: err}
	}()

	select {
	case res := <-done:
		logger.HostOperation(operation, target, "elapsed", time.Since(start), "error", res.err)
		return res.data, res.err
	case <-ctx.Done():
		s.closed = true
		_ = s.proc.Kill()
		s.logger.Warn("Host query abandoned", "operation", operation, "command", target, "elapsed", time.Since(start))
		return gjson.Result{}, fmt.Errorf("%s %s: %w", operation, target, ctx.Err())
	}
}

func (s *pwshSession) readUntil(sentinel string) ([]string, error) {
	var lines []string
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		if strings.TrimSpace(line) == sentinel {
			return lines, nil
		}
		lines = append(lines, line)
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionClosed, err)
	}
	return nil, ErrSessionClosed
}

// ListCommands enumerates commands of the given kinds.
func (s *pwshSession) ListCommands(ctx context.Context, kinds []pstypes.CommandType) ([]pstypes.CommandSummary, error) {
	data, err := s.call(ctx, "ListCommands", "", listCommandsScript(kinds))
	if err != nil {
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}
	return decodeSummaries(data), nil
}

// GetCommandInfo returns the descriptor for name, or nil when the host does not know it.
func (s *pwshSession) GetCommandInfo(ctx context.Context, name string) (*pstypes.CommandDescriptor, error) {
	data, err := s.call(ctx, "GetCommandInfo", name, commandInfoScript(name))
	if err != nil {
		return nil, fmt.Errorf("failed to get command info for %s: %w", name, err)
	}
	return decodeDescriptor(data), nil
}

// GetHelpFull returns the full help record for name.
func (s *pwshSession) GetHelpFull(ctx context.Context, name string) (pstypes.HelpRecord, error) {
	data, err := s.call(ctx, "GetHelpFull", name, helpFullScript(name))
	if err != nil {
		return pstypes.HelpRecord{}, fmt.Errorf("failed to get help for %s: %w", name, err)
	}
	return decodeHelp(data), nil
}

// GetSyntaxText returns the host's textual syntax for name.
func (s *pwshSession) GetSyntaxText(ctx context.Context, name string) (string, error) {
	data, err := s.call(ctx, "GetSyntaxText", name, syntaxTextScript(name))
	if err != nil {
		return "", fmt.Errorf("failed to get syntax for %s: %w", name, err)
	}
	return decodeText(data), nil
}

// Version returns the host's PowerShell version, cached after the first call.
func (s *pwshSession) Version(ctx context.Context) (string, error) {
	if s.version != "" {
		return s.version, nil
	}
	data, err := s.call(ctx, "Version", "", versionScript)
	if err != nil {
		return "", err
	}
	s.version = strings.TrimSpace(data.String())
	return s.version, nil
}

// Close asks the host to exit and kills it if it does not within the grace period.
func (s *pwshSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	alreadyClosed := s.closed
	s.closed = true
	if !alreadyClosed {
		_ = s.send("exit")
	}
	_ = s.stdin.Close()

	done := make(chan error, 1)
	go func() {
		done <- s.proc.Wait()
	}()

	select {
	case err := <-done:
		if err != nil && !alreadyClosed {
			s.logger.Debug("Host process exited", "error", err)
		}
	case <-time.After(stopGracePeriod):
		if err := s.proc.Kill(); err != nil {
			s.logger.Error("Failed to kill host process", "error", err)
		}
		s.logger.Warn("Host process force killed after timeout")
	}
	return nil
}
