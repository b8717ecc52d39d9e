package normalize

import (
	"strings"

	"psbrowse/pkg/pstypes"
)

// Examples renders every example of a help record as a "# title" line, the code,
// the remarks and a blank separator line.
func (n *Normalizer) Examples(help pstypes.HelpRecord) string {
	node, ok := help.Lookup("examples.example")
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, example := range node.Items() {
		if !example.IsObject() {
			continue
		}

		if title := CleanExampleTitle(stringField(example, "title")); title != "" {
			sb.WriteString("# " + title + "\n")
		}
		if code := stringField(example, "code"); code != "" {
			sb.WriteString(code + "\n")
		}
		if remarks, ok := example.Lookup("remarks"); ok {
			if text := remarksText(remarks); text != "" {
				sb.WriteString(text + "\n")
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// CleanExampleTitle strips surrounding dashes and whitespace, then a leading
// "EXAMPLE <n> -" prefix (case-insensitive).
func CleanExampleTitle(title string) string {
	title = strings.TrimSpace(edgeDashesPattern.ReplaceAllString(title, ""))
	return strings.TrimSpace(examplePrefixPattern.ReplaceAllString(title, ""))
}

func stringField(v pstypes.HelpValue, name string) string {
	field, ok := v.Lookup(name)
	if !ok {
		return ""
	}
	return field.String()
}

// remarksText joins the non-empty remark fragments; remarks arrive either as
// text objects or as plain strings.
func remarksText(remarks pstypes.HelpValue) string {
	var parts []string
	for _, item := range remarks.Items() {
		if text := item.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
