package host

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"psbrowse/pkg/pstypes"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Get-Item", "'Get-Item'"},
		{"", "''"},
		{"O'Brien", "'O''Brien'"},
		{"''", "''''''"},
		{"a; Remove-Item *", "'a; Remove-Item *'"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, Quote(tt.in))
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b  c", Sanitize("  a\nb\r\n\rc \n"))
	assert.NotContains(t, Sanitize(preambleScript), "\n")
}

func TestEnvelope(t *testing.T) {
	script := envelope("$PSVersionTable.PSVersion.ToString()", "__psb_x")

	assert.NotContains(t, script, "\n")
	assert.True(t, strings.HasPrefix(script, "try { $__d = $PSVersionTable"))
	assert.True(t, strings.HasSuffix(script, "Write-Output '__psb_x'"))
	assert.Contains(t, script, "ConvertTo-Json -Compress -Depth 8")
}

func TestQueryScriptsQuoteNames(t *testing.T) {
	name := "Evil'; exit; '"
	quoted := "'Evil''; exit; '''"

	assert.Contains(t, commandInfoScript(name), "Get-Command -Name "+quoted)
	assert.Contains(t, helpFullScript(name), "Get-Help -Name "+quoted+" -Full")
	assert.Contains(t, syntaxTextScript(name), "Get-Command -Name "+quoted+" -Syntax")
}

func TestListCommandsScript(t *testing.T) {
	script := listCommandsScript(Kinds(true, true))
	assert.Contains(t, script, "-CommandType Cmdlet,Function,Alias ")

	assert.Contains(t, listCommandsScript(Kinds(false, false)), "-CommandType Cmdlet ")
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []pstypes.CommandType{pstypes.CommandTypeCmdlet}, Kinds(false, false))
	assert.Equal(t, []pstypes.CommandType{pstypes.CommandTypeCmdlet, pstypes.CommandTypeAlias}, Kinds(false, true))
}
