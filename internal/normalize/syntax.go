package normalize

import (
	"fmt"
	"sort"
	"strings"

	"psbrowse/pkg/pstypes"
)

// Syntax renders one block per parameter set. Commands without structured parameter-set
// metadata (scripts, aliases) use the host's own syntax text from legacy instead.
func (n *Normalizer) Syntax(name string, desc *pstypes.CommandDescriptor, legacy SyntaxSource) string {
	if desc.HasParameterSetMetadata() {
		return n.structuredSyntax(name, desc.ParameterSets)
	}
	if legacy == nil {
		return ""
	}
	text, err := legacy()
	if err != nil {
		return ""
	}
	return LegacySyntax(text)
}

func (n *Normalizer) structuredSyntax(name string, sets []pstypes.ParameterSet) string {
	var sb strings.Builder
	for i, set := range sets {
		writeSetHeader(&sb, i+1, set.Name, set.IsDefault, true)
		sb.WriteString(n.SyntaxLine(name, set))
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// SyntaxLine renders the command name followed by one token per non-common parameter,
// ordered by position with unpositioned parameters last.
func (n *Normalizer) SyntaxLine(name string, set pstypes.ParameterSet) string {
	params := make([]pstypes.ParameterSpec, len(set.Parameters))
	copy(params, set.Parameters)
	sort.SliceStable(params, func(i, j int) bool {
		return positionSortKey(params[i].Position) < positionSortKey(params[j].Position)
	})

	line := name
	for _, p := range params {
		if n.common.contains(p.Name) {
			continue
		}
		line += " " + syntaxToken(p)
	}
	return line
}

func positionSortKey(position int) int {
	if position < 0 {
		return unpositionedSortKey
	}
	return position
}

func syntaxToken(p pstypes.ParameterSpec) string {
	if p.IsSwitch() {
		if p.IsMandatory {
			return "-" + p.Name
		}
		return "[-" + p.Name + "]"
	}
	typeName := TypeName(p.Type)
	if p.IsMandatory {
		return fmt.Sprintf("-%s <%s>", p.Name, typeName)
	}
	return fmt.Sprintf("[-%s <%s>]", p.Name, typeName)
}

// LegacySyntax reformats the host's syntax text into numbered, unnamed parameter-set blocks.
// The host separates sets with blank lines.
func LegacySyntax(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if raw == "" {
		return ""
	}

	var sb strings.Builder
	index := 0
	for _, chunk := range strings.Split(raw, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		index++
		writeSetHeader(&sb, index, "", false, false)
		sb.WriteString(chunk)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func writeSetHeader(sb *strings.Builder, index int, name string, isDefault, named bool) {
	fmt.Fprintf(sb, "PARAMETER SET %d", index)
	if isDefault {
		sb.WriteString(" (default)")
	}
	if named {
		sb.WriteString(": " + name)
	}
	sb.WriteString("\n")
	sb.WriteString(SyntaxDivider)
	sb.WriteString("\n")
}
