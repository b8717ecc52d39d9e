package testutils

import (
	"psbrowse/pkg/pstypes"
)

// TestDataGenerator provides common test data
type TestDataGenerator struct{}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{}
}

// SampleCommands returns a small command list spanning several modules and kinds,
// deliberately out of name order.
func (g *TestDataGenerator) SampleCommands() []pstypes.CommandSummary {
	return []pstypes.CommandSummary{
		{Name: "Write-Output", ModuleName: "Microsoft.PowerShell.Utility", CommandType: pstypes.CommandTypeCmdlet, Source: "Microsoft.PowerShell.Utility"},
		{Name: "Get-Item", ModuleName: "Microsoft.PowerShell.Management", CommandType: pstypes.CommandTypeCmdlet, Source: "Microsoft.PowerShell.Management"},
		{Name: "prompt", ModuleName: "", CommandType: pstypes.CommandTypeFunction, Source: ""},
		{Name: "Get-ChildItem", ModuleName: "Microsoft.PowerShell.Management", CommandType: pstypes.CommandTypeCmdlet, Source: "Microsoft.PowerShell.Management"},
		{Name: "gi", ModuleName: "", CommandType: pstypes.CommandTypeAlias, Source: ""},
		{Name: "Invoke-Pester", ModuleName: "Pester", CommandType: pstypes.CommandTypeFunction, Source: "Pester"},
	}
}

// GetItemDescriptor returns a two-set cmdlet descriptor with a switch, an array and a
// common parameter.
func (g *TestDataGenerator) GetItemDescriptor() *pstypes.CommandDescriptor {
	str := pstypes.TypeDescriptor{Name: "String"}
	strArray := pstypes.TypeDescriptor{Name: "String[]", Kind: pstypes.TypeKindArray, Elem: &str}
	sw := pstypes.TypeDescriptor{Name: "SwitchParameter", Kind: pstypes.TypeKindSwitch}

	force := pstypes.ParameterSpec{Name: "Force", Type: sw, Position: -1}
	verbose := pstypes.ParameterSpec{Name: "Verbose", Type: sw, Position: -1}

	return &pstypes.CommandDescriptor{
		Name:        "Get-Item",
		ModuleName:  "Microsoft.PowerShell.Management",
		CommandType: pstypes.CommandTypeCmdlet,
		Source:      "Microsoft.PowerShell.Management",
		ParameterSets: []pstypes.ParameterSet{
			{
				Name:      "Path",
				IsDefault: true,
				Parameters: []pstypes.ParameterSpec{
					{Name: "Path", Type: strArray, IsMandatory: true, Position: 0, PipelineInput: pstypes.PipelineInputByValue},
					force,
					verbose,
				},
			},
			{
				Name: "LiteralPath",
				Parameters: []pstypes.ParameterSpec{
					{Name: "LiteralPath", Type: strArray, IsMandatory: true, Position: -1, PipelineInput: pstypes.PipelineInputByPropertyName, Aliases: []string{"PSPath", "LP"}},
					force,
					verbose,
				},
			},
		},
	}
}

// AliasDescriptor returns a descriptor without parameter-set metadata.
func (g *TestDataGenerator) AliasDescriptor(name string) *pstypes.CommandDescriptor {
	return &pstypes.CommandDescriptor{Name: name, CommandType: pstypes.CommandTypeAlias}
}

// GetItemHelpJSON returns a help record shaped like Get-Help -Full output.
func (g *TestDataGenerator) GetItemHelpJSON() string {
	return `{
		"Name": "Get-Item",
		"Synopsis": "Gets the item at the specified location.",
		"details": {"description": [{"Text": "Gets the item at the specified location."}]},
		"examples": {
			"example": [
				{
					"title": "--------- Example 1: Get the current directory ---------",
					"code": "Get-Item .",
					"remarks": [{"Text": "This example gets the current directory."}, {"Text": ""}]
				},
				{
					"title": "Example 2 - Get all items",
					"code": "Get-Item *",
					"remarks": [{"Text": "Gets every item in the current directory."}]
				}
			]
		}
	}`
}
