package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"psbrowse/internal/catalog"
	"psbrowse/internal/export"
	"psbrowse/internal/logger"
	"psbrowse/internal/normalize"
	"psbrowse/internal/output"
	"psbrowse/internal/services"
	"psbrowse/internal/version"
	"psbrowse/pkg/pstypes"
)

// ErrNoSelection is returned by help views when no command name was given and none is selected.
var ErrNoSelection = errors.New("no command selected")

// ErrSuperseded is returned when a help load finished after a newer selection replaced it.
var ErrSuperseded = errors.New("help load superseded by a newer selection")

// Copy targets.
const (
	CopyName   = "name"
	CopySyntax = "syntax"
)

// Browser is one browsing session over the host's command list: the loaded
// commands, the active filters and the selected command's help. The CLI uses a
// fresh Browser per invocation; the interactive shell keeps one for its lifetime.
type Browser struct {
	svc      *Services
	printer  *output.Printer
	listOpts services.ListOptions
	logger   *log.Logger

	mu         sync.Mutex
	commands   []pstypes.CommandSummary
	loaded     bool
	filter     catalog.FilterOptions
	selected   string
	help       *pstypes.NormalizedHelp
	generation uint64
}

// NewBrowser creates a browser printing through printer.
func NewBrowser(svc *Services, printer *output.Printer, listOpts services.ListOptions) *Browser {
	return &Browser{
		svc:      svc,
		printer:  printer,
		listOpts: listOpts,
		logger:   logger.NewStyledLogger("Shell"),
	}
}

// Printer returns the printer the browser writes to.
func (b *Browser) Printer() *output.Printer {
	return b.printer
}

// Refresh fetches the command list from the host, replacing any loaded list.
func (b *Browser) Refresh(ctx context.Context) error {
	commands, err := b.svc.Browser.ListCommands(ctx, b.listOpts)
	if err != nil {
		b.printer.Error(err.Error())
		return err
	}

	b.mu.Lock()
	b.commands = commands
	b.loaded = true
	b.mu.Unlock()

	b.printer.Info(fmt.Sprintf("Loaded %d command(s).", len(commands)))
	return nil
}

// Commands returns the full command list, fetching it on first use.
func (b *Browser) Commands(ctx context.Context) ([]pstypes.CommandSummary, error) {
	b.mu.Lock()
	loaded := b.loaded
	b.mu.Unlock()

	if !loaded {
		if err := b.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commands, nil
}

// Names returns the names of the loaded commands without querying the host.
func (b *Browser) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.commands))
	for i, c := range b.commands {
		names[i] = c.Name
	}
	return names
}

// ModuleNames returns the module names of the loaded commands, sorted.
func (b *Browser) ModuleNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	groups := catalog.BuildGroups(b.commands)
	names := make([]string, len(groups.Modules))
	for i, g := range groups.Modules {
		names[i] = g.Name
	}
	return names
}

// Filter returns the active filter options.
func (b *Browser) Filter() catalog.FilterOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// SetModule restricts the list to one module. "", "all" and "*" clear it.
func (b *Browser) SetModule(module string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Module = strings.TrimSpace(module)
}

// SetSearch sets the case-insensitive name search.
func (b *Browser) SetSearch(search string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Search = search
}

// SetWhere compiles and applies a CEL predicate. An empty expression clears it.
func (b *Browser) SetWhere(expr string) error {
	predicate, err := catalog.CompilePredicate(expr)
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Where = predicate
	return nil
}

// SetFilter replaces all filter options at once.
func (b *Browser) SetFilter(opts catalog.FilterOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = opts
}

// Visible returns the commands passing the active filters.
func (b *Browser) Visible(ctx context.Context) ([]pstypes.CommandSummary, error) {
	commands, err := b.Commands(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(commands, b.Filter()), nil
}

// List prints the filtered command table followed by the item count.
func (b *Browser) List(ctx context.Context) error {
	visible, err := b.Visible(ctx)
	if err != nil {
		return err
	}
	if len(visible) > 0 {
		b.printer.Raw(b.svc.Render.CommandTable(visible) + "\n")
	}
	b.printer.Info(fmt.Sprintf("Showing %d item(s).", len(visible)))
	return nil
}

// Modules prints the module tree of the full command list.
func (b *Browser) Modules(ctx context.Context) error {
	commands, err := b.Commands(ctx)
	if err != nil {
		return err
	}
	b.printer.Raw(b.svc.Render.ModuleTree(catalog.BuildGroups(commands)))
	return nil
}

// Select loads help for name in the background and makes it the current
// selection. A load overtaken by a later Select returns ErrSuperseded and
// leaves the newer selection in place.
func (b *Browser) Select(ctx context.Context, name string) (pstypes.NormalizedHelp, error) {
	name = strings.TrimSpace(name)

	b.mu.Lock()
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	var outcome services.HelpOutcome
	select {
	case outcome = <-b.svc.Browser.LoadHelpAsync(ctx, name):
	case <-ctx.Done():
	}
	if err := ctx.Err(); err != nil {
		return normalize.ErrorHelp(err), err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		b.logger.Debug("Discarding stale help", "command", name)
		return outcome.Help, ErrSuperseded
	}
	b.selected = outcome.Name
	b.help = &outcome.Help
	return outcome.Help, nil
}

// Selected returns the selected command name, or "" when nothing is selected.
func (b *Browser) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// helpFor returns help for name, reusing the current selection when it matches.
// An empty name means the current selection.
func (b *Browser) helpFor(ctx context.Context, name string) (string, pstypes.NormalizedHelp, error) {
	name = strings.TrimSpace(name)

	b.mu.Lock()
	if name == "" {
		name = b.selected
	}
	if name != "" && name == b.selected && b.help != nil {
		help := *b.help
		b.mu.Unlock()
		return name, help, nil
	}
	b.mu.Unlock()

	if name == "" {
		return "", pstypes.NormalizedHelp{}, ErrNoSelection
	}

	help, err := b.Select(ctx, name)
	if err != nil {
		return name, help, err
	}
	b.printer.Info(fmt.Sprintf("Help loaded for %s.", name))
	return name, help, nil
}

// Help prints the full help of name. Raw prints the markdown source instead of rendering it.
func (b *Browser) Help(ctx context.Context, name string, raw bool) error {
	name, help, err := b.helpFor(ctx, name)
	if err != nil {
		return err
	}
	if raw {
		b.printer.Raw(b.svc.Render.HelpMarkdown(name, help))
		return nil
	}
	b.printer.Raw(withNewline(b.svc.Render.RenderHelp(name, help)))
	return nil
}

// Syntax prints the per-parameter-set syntax of name.
func (b *Browser) Syntax(ctx context.Context, name string) error {
	_, help, err := b.helpFor(ctx, name)
	if err != nil {
		return err
	}
	b.printer.Println(help.Syntax)
	return nil
}

// Params prints the parameter table of name.
func (b *Browser) Params(ctx context.Context, name string) error {
	_, help, err := b.helpFor(ctx, name)
	if err != nil {
		return err
	}
	b.printer.Raw(withNewline(b.svc.Render.ParameterTable(help.Parameters)))
	return nil
}

// Examples prints the examples of name.
func (b *Browser) Examples(ctx context.Context, name string) error {
	_, help, err := b.helpFor(ctx, name)
	if err != nil {
		return err
	}
	if help.Examples == normalize.NoExamplesPlaceholder {
		b.printer.Warning(help.Examples)
		return nil
	}
	b.printer.CodeBlock(help.Examples)
	return nil
}

// Copy places the name or the syntax of a command on the clipboard. When the
// clipboard is unavailable the text is printed instead.
func (b *Browser) Copy(ctx context.Context, what, name string) error {
	var text, status string
	switch strings.ToLower(strings.TrimSpace(what)) {
	case CopyName:
		name = strings.TrimSpace(name)
		if name == "" {
			name = b.Selected()
		}
		if name == "" {
			return ErrNoSelection
		}
		text, status = name, "Copied name: "+name
	case CopySyntax:
		_, help, err := b.helpFor(ctx, name)
		if err != nil {
			return err
		}
		text, status = help.Syntax, "Copied syntax."
	default:
		return fmt.Errorf("unknown copy target %q (want %s or %s)", what, CopyName, CopySyntax)
	}

	if err := b.svc.Clipboard.Copy(text); err != nil {
		if errors.Is(err, services.ErrClipboardUnavailable) {
			b.printer.Warning("Clipboard unavailable, printing instead.")
			b.printer.Println(text)
			return nil
		}
		return err
	}
	b.printer.Success(status)
	return nil
}

// Online prints the documentation search URL for name.
func (b *Browser) Online(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = b.Selected()
	}
	if name == "" {
		return ErrNoSelection
	}
	b.printer.Println(services.OnlineHelpURL(name))
	return nil
}

// Diff prints a line diff of the syntax blocks of two commands.
func (b *Browser) Diff(ctx context.Context, left, right string) error {
	if strings.TrimSpace(left) == "" || strings.TrimSpace(right) == "" {
		return fmt.Errorf("diff needs two command names")
	}
	leftHelp := b.svc.Browser.LoadHelp(ctx, left)
	rightHelp := b.svc.Browser.LoadHelp(ctx, right)

	if !b.svc.Diff.Changed(leftHelp.Syntax, rightHelp.Syntax) {
		b.printer.Info("Syntax is identical.")
		return nil
	}
	b.printer.Raw(b.svc.Diff.Diff(leftHelp.Syntax, rightHelp.Syntax))
	return nil
}

// Export writes the filtered command list. An empty path writes to the printer's writer.
func (b *Browser) Export(ctx context.Context, format export.Format, path string) error {
	visible, err := b.Visible(ctx)
	if err != nil {
		return err
	}

	if path == "" {
		return export.Write(b.printer.Writer(), format, visible)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.Write(file, format, visible); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	b.printer.Success(fmt.Sprintf("Exported %d command(s) to %s", len(visible), path))
	return nil
}

// Theme switches the active theme, or lists themes when name is empty.
func (b *Browser) Theme(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		for _, theme := range b.svc.Theme.GetAvailableThemes() {
			b.printer.Println(theme)
		}
		return nil
	}
	resolved := services.ResolveThemeName(name)
	if resolved == "" {
		resolved = name
	}
	if err := b.svc.Theme.SetActive(resolved); err != nil {
		return err
	}
	b.printer.SetStyleProvider(b.svc.Theme)
	b.printer.Success("Theme set to " + resolved + ".")
	return nil
}

// Version prints build information and the host's PowerShell version.
func (b *Browser) Version(ctx context.Context) error {
	hostVersion, err := b.svc.Browser.HostVersion(ctx)
	if err != nil {
		b.logger.Debug("Host version unavailable", "error", err)
		hostVersion = ""
	}
	b.printer.Println(version.GetDetailedVersion(hostVersion))
	return nil
}

func withNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
