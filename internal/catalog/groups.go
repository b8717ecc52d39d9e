// Package catalog groups and filters the flat command list fetched from the host.
package catalog

import (
	"sort"

	"psbrowse/pkg/pstypes"
)

// AllModules is the module filter value that disables module filtering.
const AllModules = "all"

// ModuleGroup is one per-module bucket.
type ModuleGroup struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Groups is the module lookup structure: an implicit "All" bucket plus one bucket per module.
type Groups struct {
	Total   int           `json:"total" yaml:"total"`
	Modules []ModuleGroup `json:"modules" yaml:"modules"`
}

// BuildGroups counts commands per module name. Commands with an empty module name
// count toward Total only. Modules are ordered by name.
func BuildGroups(commands []pstypes.CommandSummary) Groups {
	counts := make(map[string]int)
	for _, c := range commands {
		if c.ModuleName == "" {
			continue
		}
		counts[c.ModuleName]++
	}

	modules := make([]ModuleGroup, 0, len(counts))
	for name, count := range counts {
		modules = append(modules, ModuleGroup{Name: name, Count: count})
	}
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Name < modules[j].Name
	})

	return Groups{Total: len(commands), Modules: modules}
}

// Count returns the bucket size for a module, or Total for the "All" bucket.
func (g Groups) Count(module string) int {
	if isAllModules(module) {
		return g.Total
	}
	for _, m := range g.Modules {
		if m.Name == module {
			return m.Count
		}
	}
	return 0
}
