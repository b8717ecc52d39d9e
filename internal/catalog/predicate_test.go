package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psbrowse/pkg/pstypes"
)

func TestCompilePredicate_Empty(t *testing.T) {
	p, err := CompilePredicate("   ")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCompilePredicate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"syntax error", `name ==`},
		{"unknown variable", `verb == "Get"`},
		{"non-bool result", `name + module`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePredicate(tt.expr)
			assert.Error(t, err)
			assert.Nil(t, p)
		})
	}
}

func TestPredicateMatch(t *testing.T) {
	getItem := pstypes.CommandSummary{
		Name:        "Get-Item",
		ModuleName:  "Microsoft.PowerShell.Management",
		CommandType: pstypes.CommandTypeCmdlet,
		Source:      "Microsoft.PowerShell.Management",
	}
	prompt := pstypes.CommandSummary{Name: "prompt", CommandType: pstypes.CommandTypeFunction}

	tests := []struct {
		name        string
		expr        string
		getItemWant bool
		promptWant  bool
	}{
		{"command type", `commandType == "Cmdlet"`, true, false},
		{"name prefix", `name.startsWith("Get-")`, true, false},
		{"regex on module", `module.matches("^Microsoft\\.PowerShell\\.")`, true, false},
		{"empty module", `module == ""`, false, true},
		{"disjunction", `commandType == "Function" || source.endsWith("Management")`, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePredicate(tt.expr)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, tt.expr, p.String())
			assert.Equal(t, tt.getItemWant, p.Match(getItem))
			assert.Equal(t, tt.promptWant, p.Match(prompt))
		})
	}
}

func TestPredicateMatch_RuntimeErrorIsNoMatch(t *testing.T) {
	p, err := CompilePredicate(`name.matches(module)`)
	require.NoError(t, err)

	assert.False(t, p.Match(pstypes.CommandSummary{Name: "Get-Item", ModuleName: "("}))
	assert.True(t, p.Match(pstypes.CommandSummary{Name: "Get-Item", ModuleName: "Item"}))
}
