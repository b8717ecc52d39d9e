// Package pstypes defines the data model shared across psbrowse.
// This file contains the command descriptor types returned by the host's introspection API.
package pstypes

import (
	"sort"
	"strings"
)

// CommandType identifies the kind of invocable unit a host command is.
// It is a closed set; anything the host reports that is not listed maps to CommandTypeUnknown.
type CommandType int

const (
	// CommandTypeUnknown is used for kinds the host reports that psbrowse does not recognize.
	CommandTypeUnknown CommandType = iota
	// CommandTypeCmdlet is a compiled cmdlet.
	CommandTypeCmdlet
	// CommandTypeFunction is a script function.
	CommandTypeFunction
	// CommandTypeAlias is an alias to another command.
	CommandTypeAlias
	// CommandTypeFilter is a filter function.
	CommandTypeFilter
	// CommandTypeExternalScript is a .ps1 script on disk.
	CommandTypeExternalScript
	// CommandTypeApplication is a native executable found on PATH.
	CommandTypeApplication
	// CommandTypeScript is an inline script block.
	CommandTypeScript
	// CommandTypeConfiguration is a DSC configuration.
	CommandTypeConfiguration
)

var commandTypeNames = map[CommandType]string{
	CommandTypeUnknown:        "Unknown",
	CommandTypeCmdlet:         "Cmdlet",
	CommandTypeFunction:       "Function",
	CommandTypeAlias:          "Alias",
	CommandTypeFilter:         "Filter",
	CommandTypeExternalScript: "ExternalScript",
	CommandTypeApplication:    "Application",
	CommandTypeScript:         "Script",
	CommandTypeConfiguration:  "Configuration",
}

// String returns the host's spelling of the command type.
func (t CommandType) String() string {
	if name, ok := commandTypeNames[t]; ok {
		return name
	}
	return commandTypeNames[CommandTypeUnknown]
}

// ParseCommandType maps the host's command type text to a CommandType (case-insensitive).
func ParseCommandType(s string) CommandType {
	s = strings.TrimSpace(s)
	for t, name := range commandTypeNames {
		if strings.EqualFold(name, s) {
			return t
		}
	}
	return CommandTypeUnknown
}

// MarshalText implements encoding.TextMarshaler so exports carry the host spelling.
func (t CommandType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CommandType) UnmarshalText(text []byte) error {
	*t = ParseCommandType(string(text))
	return nil
}

// PipelineInput describes how a parameter binds pipeline input.
type PipelineInput int

const (
	// PipelineInputNone means the parameter does not take pipeline input.
	PipelineInputNone PipelineInput = iota
	// PipelineInputByValue binds whole pipeline objects.
	PipelineInputByValue
	// PipelineInputByPropertyName binds a same-named property of pipeline objects.
	PipelineInputByPropertyName
)

// TypeKind classifies a parameter type for naming and syntax purposes.
type TypeKind int

const (
	// TypeKindPlain is any ordinary named type.
	TypeKindPlain TypeKind = iota
	// TypeKindArray is an array of Elem.
	TypeKindArray
	// TypeKindNullable is a nullable wrapper around Elem.
	TypeKindNullable
	// TypeKindSwitch is the host's switch-parameter type.
	TypeKindSwitch
	// TypeKindBoolean is the boolean type.
	TypeKindBoolean
)

// TypeDescriptor is a host type, reduced to what rendering needs.
type TypeDescriptor struct {
	Name string          `json:"name" yaml:"name"`
	Kind TypeKind        `json:"kind" yaml:"kind"`
	Elem *TypeDescriptor `json:"elem,omitempty" yaml:"elem,omitempty"`
}

// IsSwitch reports whether the type renders as a flag (boolean or switch parameter).
func (t TypeDescriptor) IsSwitch() bool {
	return t.Kind == TypeKindSwitch || t.Kind == TypeKindBoolean
}

// ParameterSpec is one parameter as it appears inside a specific parameter set.
type ParameterSpec struct {
	Name          string
	Type          TypeDescriptor
	IsMandatory   bool
	Position      int // -1 when the parameter is not positional
	PipelineInput PipelineInput
	Aliases       []string
}

// IsSwitch reports whether the parameter is boolean-valued or a switch.
func (p ParameterSpec) IsSwitch() bool {
	return p.Type.IsSwitch()
}

// ParameterSet is a named, mutually exclusive grouping of parameters.
type ParameterSet struct {
	Name       string
	IsDefault  bool
	Parameters []ParameterSpec
}

// ParameterAttribute is one [Parameter()] attribute instance declared on a parameter.
// A parameter carries one attribute per parameter set it belongs to.
type ParameterAttribute struct {
	ParameterSetName                string
	Mandatory                       bool
	Position                        int
	ValueFromPipeline               bool
	ValueFromPipelineByPropertyName bool
}

// ParameterMetadata is a parameter merged across every parameter set of a command.
type ParameterMetadata struct {
	Name       string
	Type       TypeDescriptor
	Aliases    []string
	Attributes []ParameterAttribute
}

// CommandDescriptor is an immutable snapshot of one host command and its parameter metadata.
type CommandDescriptor struct {
	Name          string
	ModuleName    string
	CommandType   CommandType
	Source        string
	ParameterSets []ParameterSet
	// Parameters is the host's merged parameter map. When nil, MergedParameters derives it from ParameterSets.
	Parameters map[string]ParameterMetadata
}

// HasParameterSetMetadata reports whether syntax can be built from structured parameter-set data.
// Only cmdlets and functions (including filters and configurations) expose it; scripts and
// aliases fall back to the host's own syntax text.
func (d *CommandDescriptor) HasParameterSetMetadata() bool {
	if d == nil {
		return false
	}
	switch d.CommandType {
	case CommandTypeCmdlet, CommandTypeFunction, CommandTypeFilter, CommandTypeConfiguration:
		return len(d.ParameterSets) > 0
	default:
		return false
	}
}

// MergedParameters returns the merged parameter map, deriving it from the parameter sets when the host omitted it.
func (d *CommandDescriptor) MergedParameters() map[string]ParameterMetadata {
	if d == nil {
		return nil
	}
	if d.Parameters != nil {
		return d.Parameters
	}

	merged := make(map[string]ParameterMetadata)
	for _, set := range d.ParameterSets {
		for _, p := range set.Parameters {
			meta, ok := merged[p.Name]
			if !ok {
				meta = ParameterMetadata{
					Name:    p.Name,
					Type:    p.Type,
					Aliases: append([]string(nil), p.Aliases...),
				}
			}
			meta.Attributes = append(meta.Attributes, ParameterAttribute{
				ParameterSetName:                set.Name,
				Mandatory:                       p.IsMandatory,
				Position:                        p.Position,
				ValueFromPipeline:               p.PipelineInput == PipelineInputByValue,
				ValueFromPipelineByPropertyName: p.PipelineInput == PipelineInputByPropertyName,
			})
			merged[p.Name] = meta
		}
	}
	return merged
}

// SortedParameterNames returns the merged parameter names alphabetically.
// Names that differ only by case keep a deterministic ordinal order.
func (d *CommandDescriptor) SortedParameterNames() []string {
	params := d.MergedParameters()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return NameLess(names[i], names[j]) })
	return names
}

// NameLess orders command and parameter names alphabetically with case folded.
// Names equal under folding fall back to byte order so the result is deterministic.
func NameLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Summary returns the flat list row for this command.
func (d *CommandDescriptor) Summary() CommandSummary {
	return CommandSummary{
		Name:        d.Name,
		ModuleName:  d.ModuleName,
		CommandType: d.CommandType,
		Source:      d.Source,
	}
}

// CommandSummary is the flat row used for listing, grouping, filtering and export.
type CommandSummary struct {
	Name        string      `json:"name" yaml:"name"`
	ModuleName  string      `json:"moduleName" yaml:"moduleName"`
	CommandType CommandType `json:"commandType" yaml:"commandType"`
	Source      string      `json:"source" yaml:"source"`
}
