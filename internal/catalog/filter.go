package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"psbrowse/pkg/pstypes"
)

// FilterOptions selects a subset of the command list. Zero values disable each filter.
type FilterOptions struct {
	// Module is an exact module name; "", "all" and "*" mean every module.
	Module string
	// Search is a case-insensitive substring of the command name.
	Search string
	// Where is an optional compiled predicate applied after Module and Search.
	Where *Predicate
}

// Filter returns the commands matching every active filter, preserving their order.
func Filter(commands []pstypes.CommandSummary, opts FilterOptions) []pstypes.CommandSummary {
	if len(commands) == 0 {
		return commands
	}

	module := opts.Module
	matchModule := !isAllModules(module)

	search := strings.TrimSpace(opts.Search)
	var folder cases.Caser
	if search != "" {
		folder = cases.Fold()
		search = folder.String(search)
	}

	filtered := make([]pstypes.CommandSummary, 0, len(commands))
	for _, c := range commands {
		if matchModule && c.ModuleName != module {
			continue
		}
		if search != "" && !strings.Contains(folder.String(c.Name), search) {
			continue
		}
		if opts.Where != nil && !opts.Where.Match(c) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func isAllModules(module string) bool {
	return module == "" || module == "*" || strings.EqualFold(module, AllModules)
}
