// Package shell provides the interactive command browser and the browsing
// operations shared with the one-shot CLI commands.
package shell

import (
	"context"
	"errors"
	"strings"

	"github.com/abiosoft/ishell/v2"
	"github.com/chzyer/readline"

	"psbrowse/internal/export"
	"psbrowse/internal/logger"
)

// Prompt is the interactive prompt.
const Prompt = "psbrowse> "

// Handler binds a Browser to ishell commands.
type Handler struct {
	browser *Browser
	ctx     context.Context
}

// NewHandler creates a handler whose commands run under ctx.
func NewHandler(ctx context.Context, browser *Browser) *Handler {
	return &Handler{browser: browser, ctx: ctx}
}

// Commands returns the shell commands. Each Func delegates to Execute.
func (h *Handler) Commands() []*ishell.Cmd {
	names := func([]string) []string { return h.browser.Names() }
	modules := func([]string) []string { return h.browser.ModuleNames() }

	defs := []struct {
		name      string
		aliases   []string
		help      string
		completer func([]string) []string
	}{
		{name: "refresh", help: "reload the command list from the host"},
		{name: "list", aliases: []string{"ls"}, help: "list commands matching the active filters"},
		{name: "modules", help: "show the module tree"},
		{name: "module", help: "module [NAME|all] - restrict the list to one module", completer: modules},
		{name: "search", help: "search [TEXT] - filter by name, case-insensitive"},
		{name: "where", help: "where [EXPR] - filter with a CEL expression over name, module, commandType, source"},
		{name: "select", help: "select NAME - load help for a command", completer: names},
		{name: "show", aliases: []string{"man"}, help: "show [NAME] - render full help", completer: names},
		{name: "raw", help: "raw [NAME] - print help as markdown", completer: names},
		{name: "syntax", help: "syntax [NAME] - print syntax per parameter set", completer: names},
		{name: "params", help: "params [NAME] - print the parameter table", completer: names},
		{name: "examples", help: "examples [NAME] - print examples", completer: names},
		{name: "copy", help: "copy name|syntax [NAME] - copy to the clipboard", completer: copyCompleter(h.browser)},
		{name: "online", help: "online [NAME] - print the online documentation URL", completer: names},
		{name: "diff", help: "diff A B - compare the syntax of two commands", completer: names},
		{name: "export", help: "export [csv|json|yaml] [FILE] - export the filtered list"},
		{name: "theme", help: "theme [NAME] - list or switch themes"},
		{name: "version", help: "show version information"},
	}

	cmds := make([]*ishell.Cmd, 0, len(defs))
	for _, def := range defs {
		name := def.name
		cmds = append(cmds, &ishell.Cmd{
			Name:      name,
			Aliases:   def.aliases,
			Help:      def.help,
			Completer: def.completer,
			Func: func(c *ishell.Context) {
				if err := h.Execute(name, c.Args); err != nil {
					c.Err(err)
				}
			},
		})
	}
	return cmds
}

func copyCompleter(browser *Browser) func([]string) []string {
	return func(args []string) []string {
		if len(args) == 0 {
			return []string{CopyName, CopySyntax}
		}
		return browser.Names()
	}
}

// Execute runs a shell command by name. Errors are logged and returned for ishell to print.
func (h *Handler) Execute(name string, args []string) error {
	logger.CommandExecution(name, args)
	err := h.dispatch(name, args)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		logger.Debug("Shell command failed", "command", name, "error", err)
	}
	return err
}

func (h *Handler) dispatch(name string, args []string) error {
	b := h.browser
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	rest := strings.Join(args, " ")

	switch name {
	case "refresh":
		return b.Refresh(h.ctx)
	case "list", "ls":
		return b.List(h.ctx)
	case "modules":
		return b.Modules(h.ctx)
	case "module":
		b.SetModule(rest)
		return b.List(h.ctx)
	case "search":
		b.SetSearch(rest)
		return b.List(h.ctx)
	case "where":
		if err := b.SetWhere(rest); err != nil {
			return err
		}
		return b.List(h.ctx)
	case "select":
		if strings.TrimSpace(rest) == "" {
			return ErrNoSelection
		}
		if _, err := b.Select(h.ctx, rest); err != nil {
			return err
		}
		b.Printer().Info("Help loaded for " + strings.TrimSpace(rest) + ".")
		return nil
	case "show", "man":
		return b.Help(h.ctx, rest, false)
	case "raw":
		return b.Help(h.ctx, rest, true)
	case "syntax":
		return b.Syntax(h.ctx, rest)
	case "params":
		return b.Params(h.ctx, rest)
	case "examples":
		return b.Examples(h.ctx, rest)
	case "copy":
		return b.Copy(h.ctx, arg(0), strings.Join(args[min(1, len(args)):], " "))
	case "online":
		return b.Online(rest)
	case "diff":
		if len(args) != 2 {
			return errors.New("usage: diff A B")
		}
		return b.Diff(h.ctx, args[0], args[1])
	case "export":
		format, err := export.ParseFormat(arg(0))
		if err != nil {
			return err
		}
		return b.Export(h.ctx, format, arg(1))
	case "theme":
		return b.Theme(rest)
	case "version":
		return b.Version(h.ctx)
	default:
		return errors.New("unknown command: " + name)
	}
}

// Completer builds the tab completer: command names, then command or module
// names for the commands that take them.
func (h *Handler) Completer() *readline.PrefixCompleter {
	names := readline.PcItemDynamic(func(string) []string { return h.browser.Names() })
	modules := readline.PcItemDynamic(func(string) []string { return h.browser.ModuleNames() })

	var items []readline.PrefixCompleterInterface
	for _, cmd := range h.Commands() {
		switch cmd.Name {
		case "module":
			items = append(items, readline.PcItem(cmd.Name, modules))
		case "copy":
			items = append(items, readline.PcItem(cmd.Name,
				readline.PcItem(CopyName, names),
				readline.PcItem(CopySyntax, names),
			))
		case "diff":
			items = append(items, readline.PcItem(cmd.Name,
				readline.PcItemDynamic(func(string) []string { return h.browser.Names() }, names),
			))
		case "export":
			var formats []readline.PrefixCompleterInterface
			for _, f := range export.Formats {
				formats = append(formats, readline.PcItem(string(f)))
			}
			items = append(items, readline.PcItem(cmd.Name, formats...))
		default:
			if cmd.Completer != nil {
				items = append(items, readline.PcItem(cmd.Name, names))
			} else {
				items = append(items, readline.PcItem(cmd.Name))
			}
		}
	}
	items = append(items, readline.PcItem("exit"), readline.PcItem("help"), readline.PcItem("clear"))
	return readline.NewPrefixCompleter(items...)
}

// Run starts the interactive shell and blocks until the user exits. The
// command list is loaded before the first prompt.
func (h *Handler) Run() {
	sh := ishell.New()
	sh.SetPrompt(Prompt)
	for _, cmd := range h.Commands() {
		sh.AddCmd(cmd)
	}
	sh.CustomCompleter(h.Completer())
	sh.NotFound(func(c *ishell.Context) {
		c.Println("Unknown command: " + strings.Join(c.RawArgs, " ") + " (type 'help' for commands)")
	})

	sh.Println("psbrowse - PowerShell command browser")
	sh.Println("Type 'help' for commands or 'exit' to quit.")
	if err := h.browser.Refresh(h.ctx); err != nil {
		logger.Warn("Initial command load failed", "error", err)
	}

	sh.Run()
}
