package host

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sentinelPattern = regexp.MustCompile(`Write-Output '(__psb_[0-9a-f-]+)'$`)

// scriptedHost plays the host side of a session over in-memory pipes.
// respond maps a received script to the raw lines printed before the sentinel;
// returning nil makes the host go silent.
type scriptedHost struct {
	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	respond func(script string) []string

	mu       sync.Mutex
	scripts  []string
	exited   chan struct{}
	exitOnce sync.Once
}

func newScriptedHost(respond func(string) []string) *scriptedHost {
	h := &scriptedHost{respond: respond, exited: make(chan struct{})}
	h.stdinR, h.stdinW = io.Pipe()
	h.stdoutR, h.stdoutW = io.Pipe()
	go h.serve()
	return h
}

func (h *scriptedHost) serve() {
	scanner := bufio.NewScanner(h.stdinR)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		script := scanner.Text()
		h.mu.Lock()
		h.scripts = append(h.scripts, script)
		h.mu.Unlock()

		if script == "exit" {
			h.exit()
			return
		}
		m := sentinelPattern.FindStringSubmatch(script)
		if m == nil {
			continue
		}
		lines := h.respond(script)
		if lines == nil {
			continue
		}
		for _, line := range append(lines, m[1]) {
			if _, err := fmt.Fprintln(h.stdoutW, line); err != nil {
				return
			}
		}
	}
	h.exit()
}

func (h *scriptedHost) exit() {
	h.exitOnce.Do(func() {
		_ = h.stdoutW.Close()
		close(h.exited)
	})
}

func (h *scriptedHost) Wait() error {
	<-h.exited
	return nil
}

func (h *scriptedHost) Kill() error {
	_ = h.stdinR.Close()
	h.exit()
	return nil
}

func (h *scriptedHost) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.scripts...)
}

func (h *scriptedHost) session() *pwshSession {
	return newSession(h.stdinW, h.stdoutR, h, log.New(io.Discard))
}

// okLine frames data as a successful single-line response.
func okLine(data string) []string {
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(data)); err != nil {
		panic(err)
	}
	return []string{fmt.Sprintf(`{"ok":true,"data":%s,"error":null}`, compact.String())}
}

func standardHost(script string) []string {
	switch {
	case strings.Contains(script, "$PSVersionTable"):
		return okLine(`"7.4.1"`)
	case strings.Contains(script, "Get-Command -CommandType"):
		return okLine(`[{"Name":"Get-Item","ModuleName":"Microsoft.PowerShell.Management","CommandType":"Cmdlet","Source":"Microsoft.PowerShell.Management"}]`)
	case strings.Contains(script, "-Syntax"):
		return okLine(`"\nGet-Item [-Path] <string[]>\n"`)
	case strings.Contains(script, "Get-Help -Name 'Get-Item'"):
		return okLine(`{"Synopsis":"Gets the item at the specified location."}`)
	case strings.Contains(script, "Get-Help"):
		return okLine(`null`)
	case strings.Contains(script, "Get-Command -Name 'Get-Item'"):
		return okLine(getItemInfo)
	case strings.Contains(script, "Get-Command -Name"):
		return okLine(`null`)
	default:
		return []string{`{"ok":false,"data":null,"error":"unexpected script"}`}
	}
}

func TestSession_Init(t *testing.T) {
	h := newScriptedHost(standardHost)
	s := h.session()
	defer s.Close()

	require.NoError(t, s.init(context.Background(), "7.2"))

	scripts := h.received()
	require.GreaterOrEqual(t, len(scripts), 2)
	assert.Contains(t, scripts[0], "function __psbType")
	assert.NotContains(t, scripts[0], "Write-Output '__psb_")

	v, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7.4.1", v)
	assert.Len(t, h.received(), 2, "version is cached")
}

func TestSession_InitRejectsOldHost(t *testing.T) {
	h := newScriptedHost(func(script string) []string {
		if strings.Contains(script, "$PSVersionTable") {
			return okLine(`"5.1.22621.2506"`)
		}
		return standardHost(script)
	})
	s := h.session()
	defer s.Close()

	err := s.init(context.Background(), "7.0")
	assert.ErrorIs(t, err, ErrHostTooOld)
}

func TestSession_Queries(t *testing.T) {
	h := newScriptedHost(standardHost)
	s := h.session()
	defer s.Close()
	ctx := context.Background()

	commands, err := s.ListCommands(ctx, Kinds(false, false))
	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, "Get-Item", commands[0].Name)

	desc, err := s.GetCommandInfo(ctx, "Get-Item")
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Len(t, desc.ParameterSets, 2)

	missing, err := s.GetCommandInfo(ctx, "No-Such")
	require.NoError(t, err)
	assert.Nil(t, missing)

	help, err := s.GetHelpFull(ctx, "Get-Item")
	require.NoError(t, err)
	synopsis, found := help.Lookup("Synopsis")
	require.True(t, found)
	assert.Equal(t, "Gets the item at the specified location.", synopsis.String())

	noHelp, err := s.GetHelpFull(ctx, "No-Such")
	require.NoError(t, err)
	assert.True(t, noHelp.IsEmpty())

	syntax, err := s.GetSyntaxText(ctx, "Get-Item")
	require.NoError(t, err)
	assert.Equal(t, "Get-Item [-Path] <string[]>", syntax)
}

func TestSession_HostErrorIsWrapped(t *testing.T) {
	h := newScriptedHost(func(script string) []string {
		return []string{`{"ok":false,"data":null,"error":"boom"}`}
	})
	s := h.session()
	defer s.Close()

	_, err := s.GetCommandInfo(context.Background(), "Get-Item")
	var hostErr *HostError
	require.True(t, errors.As(err, &hostErr))
	assert.Equal(t, "boom", hostErr.Message)
	assert.Contains(t, err.Error(), "failed to get command info for Get-Item")
}

func TestSession_ContextCancelKillsHost(t *testing.T) {
	h := newScriptedHost(func(script string) []string { return nil })
	s := h.session()
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.GetHelpFull(ctx, "Get-Item")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-h.exited:
	case <-time.After(time.Second):
		t.Fatal("host was not killed")
	}

	_, err = s.GetSyntaxText(context.Background(), "Get-Item")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_HostExitMidQuery(t *testing.T) {
	h := newScriptedHost(func(script string) []string {
		return nil
	})
	s := h.session()
	defer s.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		h.exit()
	}()

	_, err := s.ListCommands(context.Background(), Kinds(true, false))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_CloseSendsExitAndIsIdempotent(t *testing.T) {
	h := newScriptedHost(standardHost)
	s := h.session()

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	scripts := h.received()
	require.NotEmpty(t, scripts)
	assert.Equal(t, "exit", scripts[len(scripts)-1])

	_, err := s.ListCommands(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestPwshConnector_Executable(t *testing.T) {
	available := map[string]string{"powershell": "/opt/ps/powershell"}
	c := NewPwshConnector(Config{})
	c.lookPath = func(name string) (string, error) {
		if p, ok := available[name]; ok {
			return p, nil
		}
		return "", errors.New("not found")
	}

	path, err := c.Executable()
	require.NoError(t, err)
	assert.Equal(t, "/opt/ps/powershell", path)

	c.config.Path = "/custom/pwsh"
	_, err = c.Executable()
	assert.ErrorIs(t, err, ErrHostNotFound)
	assert.Contains(t, err.Error(), "/custom/pwsh")

	c.config.Path = ""
	delete(available, "powershell")
	_, err = c.Open(context.Background())
	assert.ErrorIs(t, err, ErrHostNotFound)
}

var (
	_ Session   = (*pwshSession)(nil)
	_ Connector = (*PwshConnector)(nil)
)

func TestProcessHandle_WaitAfterStderrDrained(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	var buf bytes.Buffer
	connector := NewPwshConnector(Config{})
	connector.logger = log.New(&buf)
	connector.logger.SetLevel(log.DebugLevel)

	cmd := exec.Command(sh, "-c", "echo first >&2; echo 'last words' >&2")
	stderr, err := cmd.StderrPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	proc := &processHandle{cmd: cmd, drained: connector.startDrain(stderr)}
	require.NoError(t, proc.Wait())

	assert.Contains(t, buf.String(), "first")
	assert.Contains(t, buf.String(), "last words")
}
