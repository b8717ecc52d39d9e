package normalize

import (
	"strconv"
	"strings"

	"psbrowse/pkg/pstypes"
)

// Pipeline column values.
const (
	PipelineByValue        = "true (ByValue)"
	PipelineByPropertyName = "true (ByPropertyName)"
	PipelineNone           = "false"
)

// NamedPosition is shown for parameters that have no positional slot in any set.
const NamedPosition = "Named"

// SwitchTypeName is the label shown for switch parameters.
const SwitchTypeName = "SwitchParameter"

// Parameters builds the parameter table from the merged parameter map, alphabetically,
// skipping common parameters.
func (n *Normalizer) Parameters(desc *pstypes.CommandDescriptor) []pstypes.ParameterRow {
	rows := make([]pstypes.ParameterRow, 0)
	if desc == nil {
		return rows
	}

	params := desc.MergedParameters()
	for _, key := range desc.SortedParameterNames() {
		p := params[key]
		if p.Name == "" {
			p.Name = key
		}
		if n.common.contains(p.Name) {
			continue
		}
		rows = append(rows, parameterRow(p))
	}
	return rows
}

func parameterRow(p pstypes.ParameterMetadata) pstypes.ParameterRow {
	mandatory := false
	position := -1
	byValue, byPropertyName := false, false
	for _, attr := range p.Attributes {
		mandatory = mandatory || attr.Mandatory
		if position < 0 && attr.Position >= 0 {
			position = attr.Position
		}
		byValue = byValue || attr.ValueFromPipeline
		byPropertyName = byPropertyName || attr.ValueFromPipelineByPropertyName
	}

	row := pstypes.ParameterRow{
		Name:     p.Name,
		TypeName: TypeName(p.Type),
		Required: mandatory,
		Position: NamedPosition,
		Pipeline: PipelineNone,
		Aliases:  strings.Join(p.Aliases, ", "),
	}
	if position >= 0 {
		row.Position = strconv.Itoa(position)
	}
	switch {
	case byValue:
		row.Pipeline = PipelineByValue
	case byPropertyName:
		row.Pipeline = PipelineByPropertyName
	}
	return row
}

// TypeName resolves a display name: arrays append [] to the element name, nullable
// wrappers append ? to the underlying name, and switches use a fixed label.
func TypeName(t pstypes.TypeDescriptor) string {
	switch t.Kind {
	case pstypes.TypeKindSwitch:
		return SwitchTypeName
	case pstypes.TypeKindArray:
		if t.Elem != nil {
			return TypeName(*t.Elem) + "[]"
		}
	case pstypes.TypeKindNullable:
		if t.Elem != nil {
			return TypeName(*t.Elem) + "?"
		}
	}
	return t.Name
}
