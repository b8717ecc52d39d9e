package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"psbrowse/internal/catalog"
	"psbrowse/internal/logger"
	"psbrowse/pkg/pstypes"
)

// NoParametersText is shown in place of an empty parameter table.
const NoParametersText = "No parameters."

// maxCellWidth bounds free-text table cells (module and source paths).
const maxCellWidth = 48

// helpIndent indents section bodies in plain help output.
const helpIndent = "    "

var parameterHeaders = []string{"Name", "Type", "Required", "Position", "Pipeline", "Aliases"}

// RenderService turns normalized help and command lists into terminal text.
// Styled output goes through glamour and lipgloss; plain output is used when the
// terminal has no color profile or the plain theme is active.
type RenderService struct {
	initialized bool
	theme       *ThemeService
	markdown    *MarkdownService
	forcePlain  bool
}

// NewRenderService creates a RenderService drawing on theme and markdown.
func NewRenderService(theme *ThemeService, markdown *MarkdownService) *RenderService {
	return &RenderService{theme: theme, markdown: markdown}
}

// Name returns the service name "render" for registration.
func (r *RenderService) Name() string {
	return "render"
}

// Initialize checks that the theme and markdown services were supplied.
func (r *RenderService) Initialize() error {
	if r.theme == nil || r.markdown == nil {
		return fmt.Errorf("render service requires theme and markdown services")
	}
	r.initialized = true
	return nil
}

// SetPlain forces plain output regardless of terminal capabilities.
func (r *RenderService) SetPlain(plain bool) {
	r.forcePlain = plain
}

// IsPlain reports whether output will be rendered without styling.
func (r *RenderService) IsPlain() bool {
	if r.forcePlain || !r.initialized {
		return true
	}
	if lipgloss.ColorProfile() == termenv.Ascii {
		return true
	}
	return !r.theme.IsAvailable()
}

// HelpMarkdown builds the markdown document for a command's help.
// Examples render as a PowerShell block since their titles are "#" comments.
func (r *RenderService) HelpMarkdown(name string, help pstypes.NormalizedHelp) string {
	var sb strings.Builder
	sb.WriteString("# " + name + "\n\n")
	sb.WriteString(help.Synopsis + "\n\n")

	sb.WriteString("## Syntax\n\n```text\n")
	sb.WriteString(help.Syntax)
	sb.WriteString("\n```\n\n")

	sb.WriteString("## Parameters\n\n")
	if len(help.Parameters) == 0 {
		sb.WriteString("_" + NoParametersText + "_\n\n")
	} else {
		sb.WriteString(markdownRow(parameterHeaders))
		sb.WriteString("|" + strings.Repeat("---|", len(parameterHeaders)) + "\n")
		for _, row := range help.Parameters {
			sb.WriteString(markdownRow(parameterCells(row)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Examples\n\n```powershell\n")
	sb.WriteString(help.Examples)
	sb.WriteString("\n```\n")
	return sb.String()
}

func markdownRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		escaped[i] = strings.ReplaceAll(cell, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |\n"
}

func parameterCells(row pstypes.ParameterRow) []string {
	return []string{row.Name, row.TypeName, strconv.FormatBool(row.Required), row.Position, row.Pipeline, row.Aliases}
}

// RenderHelp renders a command's help for the terminal. Markdown failures fall back to plain text.
func (r *RenderService) RenderHelp(name string, help pstypes.NormalizedHelp) string {
	if r.IsPlain() {
		return r.PlainHelp(name, help)
	}

	rendered, err := r.markdown.RenderWithStyle(r.HelpMarkdown(name, help), r.theme.GetThemeType())
	if err != nil {
		logger.Debug("Markdown rendering failed, using plain help", "command", name, "error", err)
		return r.PlainHelp(name, help)
	}
	return rendered
}

// PlainHelp renders help as indented sections without escape sequences.
func (r *RenderService) PlainHelp(name string, help pstypes.NormalizedHelp) string {
	var sb strings.Builder
	writeSection(&sb, "NAME", name)
	writeSection(&sb, "SYNOPSIS", help.Synopsis)
	writeSection(&sb, "SYNTAX", help.Syntax)
	sb.WriteString("PARAMETERS\n")
	sb.WriteString(r.ParameterTable(help.Parameters))
	sb.WriteString("\n\n")
	writeSection(&sb, "EXAMPLES", help.Examples)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeSection(sb *strings.Builder, title, body string) {
	sb.WriteString(title + "\n")
	sb.WriteString(Indent(body, helpIndent))
	sb.WriteString("\n\n")
}

// Indent prefixes every non-blank line of text.
func Indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// ParameterTable renders parameter rows as a bordered table.
func (r *RenderService) ParameterTable(rows []pstypes.ParameterRow) string {
	if len(rows) == 0 {
		return helpIndent + NoParametersText
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = parameterCells(row)
	}
	return r.newTable(parameterHeaders, cells).String()
}

// CommandTable renders the command list with Name, Module and Type columns.
func (r *RenderService) CommandTable(commands []pstypes.CommandSummary) string {
	cells := make([][]string, len(commands))
	for i, c := range commands {
		cells[i] = []string{c.Name, ansi.Truncate(c.ModuleName, maxCellWidth, "…"), c.CommandType.String()}
	}
	return r.newTable([]string{"Name", "Module", "Type"}, cells).String()
}

func (r *RenderService) newTable(headers []string, rows [][]string) *table.Table {
	t := table.New().Headers(headers...).Rows(rows...)
	if r.IsPlain() {
		return t.Border(lipgloss.ASCIIBorder())
	}

	theme := r.theme.ActiveTheme()
	return t.Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return cell.Inherit(theme.Heading)
			case col == 0:
				return cell.Inherit(theme.Command)
			default:
				return cell
			}
		})
}

// ModuleTree renders the module groups as "All Modules (N)" followed by one
// "Name (count)" line per module.
func (r *RenderService) ModuleTree(groups catalog.Groups) string {
	if r.IsPlain() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "All Modules (%d)\n", groups.Total)
		for _, group := range groups.Modules {
			fmt.Fprintf(&sb, "  %s (%d)\n", group.Name, group.Count)
		}
		return sb.String()
	}
	return r.theme.ActiveTheme().CreateModuleTree(groups).String() + "\n"
}

// GetGlobalRenderService returns the registered render service.
func GetGlobalRenderService() (*RenderService, error) {
	return lookup[*RenderService]("render")
}
