package catalog

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psbrowse/pkg/pstypes"
)

var sampleCommands = []pstypes.CommandSummary{
	cmd("Get-Item", "Microsoft.PowerShell.Management"),
	cmd("Get-ChildItem", "Microsoft.PowerShell.Management"),
	cmd("Set-Item", "Microsoft.PowerShell.Management"),
	cmd("Write-Output", "Microsoft.PowerShell.Utility"),
	cmd("Invoke-Pester", "Pester"),
	{Name: "prompt", CommandType: pstypes.CommandTypeFunction},
}

func names(commands []pstypes.CommandSummary) []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		out = append(out, c.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		opts     FilterOptions
		expected []string
	}{
		{
			name:     "no filters",
			opts:     FilterOptions{},
			expected: names(sampleCommands),
		},
		{
			name:     "all modules sentinel",
			opts:     FilterOptions{Module: "All"},
			expected: names(sampleCommands),
		},
		{
			name:     "star sentinel",
			opts:     FilterOptions{Module: "*"},
			expected: names(sampleCommands),
		},
		{
			name:     "exact module",
			opts:     FilterOptions{Module: "Microsoft.PowerShell.Management"},
			expected: []string{"Get-Item", "Get-ChildItem", "Set-Item"},
		},
		{
			name:     "module match is case sensitive",
			opts:     FilterOptions{Module: "pester"},
			expected: []string{},
		},
		{
			name:     "search is case insensitive substring",
			opts:     FilterOptions{Search: "ITEM"},
			expected: []string{"Get-Item", "Get-ChildItem", "Set-Item"},
		},
		{
			name:     "search is trimmed",
			opts:     FilterOptions{Search: "  output "},
			expected: []string{"Write-Output"},
		},
		{
			name:     "module and search are conjunctive",
			opts:     FilterOptions{Module: "Microsoft.PowerShell.Management", Search: "get"},
			expected: []string{"Get-Item", "Get-ChildItem"},
		},
		{
			name:     "no match",
			opts:     FilterOptions{Search: "zzz"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(Filter(sampleCommands, tt.opts)))
		})
	}
}

func TestFilter_UnicodeFolding(t *testing.T) {
	commands := []pstypes.CommandSummary{cmd("Get-STRASSE", "M"), cmd("Get-Other", "M")}

	filtered := Filter(commands, FilterOptions{Search: "straße"})

	assert.Equal(t, []string{"Get-STRASSE"}, names(filtered))
}

func TestFilter_WithPredicate(t *testing.T) {
	where, err := CompilePredicate(`name.startsWith("Get-")`)
	require.NoError(t, err)

	filtered := Filter(sampleCommands, FilterOptions{Module: "Microsoft.PowerShell.Management", Where: where})

	assert.Equal(t, []string{"Get-Item", "Get-ChildItem"}, names(filtered))
}

func TestFilter_EmptyInput(t *testing.T) {
	assert.Empty(t, Filter(nil, FilterOptions{Search: "x"}))
	assert.Empty(t, Filter([]pstypes.CommandSummary{}, FilterOptions{Module: "M"}))
}

var propertyModules = []string{"", "Alpha", "Beta", "Gamma"}

func buildCommands(commandNames []string, moduleIdx []int) []pstypes.CommandSummary {
	commands := make([]pstypes.CommandSummary, 0, len(commandNames))
	for i, n := range commandNames {
		module := ""
		if i < len(moduleIdx) {
			module = propertyModules[moduleIdx[i]]
		}
		commands = append(commands, cmd(n, module))
	}
	return commands
}

// TestFilterProperties verifies the filter invariants over generated command lists.
func TestFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("no module and no search returns the input unchanged", prop.ForAll(
		func(commandNames []string, moduleIdx []int, allSentinel string) bool {
			commands := buildCommands(commandNames, moduleIdx)
			filtered := Filter(commands, FilterOptions{Module: allSentinel})
			if len(filtered) != len(commands) {
				return false
			}
			for i := range commands {
				if filtered[i] != commands[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(0, len(propertyModules)-1)),
		gen.OneConstOf("", "all", "ALL", "*"),
	))

	properties.Property("every module-filtered item belongs to that module", prop.ForAll(
		func(commandNames []string, moduleIdx []int, module string) bool {
			for _, c := range Filter(buildCommands(commandNames, moduleIdx), FilterOptions{Module: module}) {
				if c.ModuleName != module {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(0, len(propertyModules)-1)),
		gen.OneConstOf("Alpha", "Beta", "Gamma", "Delta"),
	))

	properties.Property("every searched item contains the search text case-insensitively", prop.ForAll(
		func(commandNames []string, search string) bool {
			needle := strings.ToLower(strings.TrimSpace(search))
			for _, c := range Filter(buildCommands(commandNames, nil), FilterOptions{Search: search}) {
				if !strings.Contains(strings.ToLower(c.Name), needle) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.Property("filtering preserves relative order", prop.ForAll(
		func(commandNames []string, search string) bool {
			commands := buildCommands(commandNames, nil)
			filtered := Filter(commands, FilterOptions{Search: search})
			j := 0
			for _, c := range commands {
				if j < len(filtered) && filtered[j] == c {
					j++
				}
			}
			return j == len(filtered)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
