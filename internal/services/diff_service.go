package services

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffService compares two rendered text blocks line by line.
type DiffService struct {
	initialized bool
	dmp         *diffmatchpatch.DiffMatchPatch
}

// NewDiffService creates a new DiffService.
func NewDiffService() *DiffService {
	return &DiffService{dmp: diffmatchpatch.New()}
}

// Name returns the service name "diff" for registration.
func (d *DiffService) Name() string {
	return "diff"
}

// Initialize marks the service ready.
func (d *DiffService) Initialize() error {
	d.initialized = true
	return nil
}

// Diff returns a line diff of a and b. Each output line starts with "-" (only in a),
// "+" (only in b) or " " (both). Identical inputs produce only " " lines.
func (d *DiffService) Diff(a, b string) string {
	a, b = withTrailingNewline(a), withTrailingNewline(b)
	runesA, runesB, lines := d.dmp.DiffLinesToRunes(a, b)
	diffs := d.dmp.DiffMainRunes(runesA, runesB, false)
	diffs = d.dmp.DiffCharsToLines(diffs, lines)

	var sb strings.Builder
	for _, diff := range diffs {
		prefix := " "
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(diff.Text) {
			sb.WriteString(prefix + line + "\n")
		}
	}
	return sb.String()
}

// Changed reports whether a and b differ after trimming trailing whitespace.
func (d *DiffService) Changed(a, b string) bool {
	return strings.TrimRight(a, " \n") != strings.TrimRight(b, " \n")
}

func withTrailingNewline(text string) string {
	if text != "" && !strings.HasSuffix(text, "\n") {
		return text + "\n"
	}
	return text
}

// splitLines splits text into lines, dropping the empty tail after a final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// GetGlobalDiffService returns the registered diff service.
func GetGlobalDiffService() (*DiffService, error) {
	return lookup[*DiffService]("diff")
}
