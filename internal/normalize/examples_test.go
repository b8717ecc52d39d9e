package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"psbrowse/pkg/pstypes"
)

func TestCleanExampleTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"   EXAMPLE 1   —   Basic use", "Basic use"},
		{"-------------------------- EXAMPLE 2 --------------------------", ""},
		{"---------- Example 3: Get items ----------", ": Get items"},
		{"example 12 - Pipe input", "Pipe input"},
		{"Example 4 – Use a filter", "Use a filter"},
		{"EXAMPLE5Compact", "Compact"},
		{"Get every item", "Get every item"},
		{"An EXAMPLE 1 in the middle", "An EXAMPLE 1 in the middle"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanExampleTitle(tt.input))
		})
	}
}

func TestExamples(t *testing.T) {
	n := New(DefaultOptions())

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "no help",
			raw:      "",
			expected: "",
		},
		{
			name:     "empty examples object",
			raw:      `{"examples": {}}`,
			expected: "",
		},
		{
			name: "single example object",
			raw: `{"examples": {"example": {
				"title": "-------------------------- EXAMPLE 1 - List files --------------------------",
				"code": "  Get-ChildItem -Path C:\\  ",
				"remarks": [{"Text": "Lists the root."}, {"Text": ""}, {"Text": "Hidden items are skipped."}]
			}}}`,
			expected: "# List files\nGet-ChildItem -Path C:\\\nLists the root.\nHidden items are skipped.",
		},
		{
			name: "list of examples with string remarks",
			raw: `{"examples": {"example": [
				{"title": "Example 1: First", "code": "Get-A", "remarks": ["one", "", "two"]},
				{"title": "", "code": "Get-B"},
				null,
				{"title": "EXAMPLE 3", "remarks": {"Text": "Only remarks."}}
			]}}`,
			expected: "# : First\nGet-A\none\ntwo\n\nGet-B\n\nOnly remarks.",
		},
		{
			name:     "malformed example entries",
			raw:      `{"examples": {"example": ["just text", 42]}}`,
			expected: "",
		},
		{
			name:     "malformed remarks",
			raw:      `{"examples": {"example": {"title": "EXAMPLE 1 - Odd", "remarks": {"unexpected": true}}}}`,
			expected: "# Odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Examples(pstypes.NewHelpRecord(tt.raw)))
		})
	}
}

func TestNormalize_FullHelpRecord(t *testing.T) {
	n := New(DefaultOptions())
	help := pstypes.NewHelpRecord(`{
		"Synopsis": "Does foo to bar.",
		"examples": {"example": {"title": "EXAMPLE 1", "code": "Foo-Bar -Force"}}
	}`)

	result := n.Normalize("Foo-Bar", fooBarDescriptor(), help, nil)

	assert.Equal(t, "Does foo to bar.", result.Synopsis)
	assert.Contains(t, result.Syntax, "PARAMETER SET 1 (default): Default")
	assert.Equal(t, "Foo-Bar -Force", result.Examples)
	assert.Len(t, result.Parameters, 3)
}
