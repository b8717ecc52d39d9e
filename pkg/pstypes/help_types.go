// Package pstypes defines help record types for psbrowse.
// This file contains the loosely-structured help record accessor and the normalized help output.
package pstypes

import (
	"strings"

	"github.com/tidwall/gjson"
)

// HelpRecord is a raw help document from the host's help subsystem.
// The host's help schema is inconsistent between authored, generated and partial help,
// so every field access goes through Lookup and may report absence.
type HelpRecord struct {
	raw string
}

// NewHelpRecord wraps the JSON text of a help object. Empty or invalid JSON yields an empty record.
func NewHelpRecord(raw string) HelpRecord {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || !gjson.Valid(raw) {
		return HelpRecord{}
	}
	return HelpRecord{raw: raw}
}

// IsEmpty reports whether the record carries no help object at all.
func (h HelpRecord) IsEmpty() bool {
	return h.raw == ""
}

// Raw returns the underlying JSON text.
func (h HelpRecord) Raw() string {
	return h.raw
}

// Lookup returns the value at a dotted path (e.g. "details.description").
func (h HelpRecord) Lookup(path string) (HelpValue, bool) {
	if h.raw == "" {
		return HelpValue{}, false
	}
	return HelpValue{result: gjson.Parse(h.raw)}.Lookup(path)
}

// HelpValue is one node of a help record.
type HelpValue struct {
	result gjson.Result
}

func (v HelpValue) present() (HelpValue, bool) {
	if !v.result.Exists() || v.result.Type == gjson.Null {
		return HelpValue{}, false
	}
	return v, true
}

// Lookup returns the child value at a dotted path relative to this node.
// Property names match case-insensitively, like host property access does.
func (v HelpValue) Lookup(path string) (HelpValue, bool) {
	current := v.result
	for _, segment := range strings.Split(path, ".") {
		if !current.IsObject() {
			return HelpValue{}, false
		}
		current = childProperty(current, segment)
	}
	return HelpValue{result: current}.present()
}

// childProperty returns the named property, preferring an exact match over a case-insensitive one.
func childProperty(obj gjson.Result, name string) gjson.Result {
	var folded gjson.Result
	found := false
	obj.ForEach(func(key, value gjson.Result) bool {
		if key.String() == name {
			folded = value
			found = true
			return false
		}
		if !found && strings.EqualFold(key.String(), name) {
			folded = value
			found = true
		}
		return true
	})
	return folded
}

// IsObject reports whether the value is a JSON object.
func (v HelpValue) IsObject() bool {
	return v.result.IsObject()
}

// String returns the value as trimmed text.
// Objects and arrays have no meaningful text form and yield the empty string.
func (v HelpValue) String() string {
	if v.result.IsObject() || v.result.IsArray() {
		return ""
	}
	return strings.TrimSpace(v.result.String())
}

// Items returns the value as a list: arrays yield their non-null elements, anything else yields itself.
// The host serializes single-element collections as a bare object, so callers iterate uniformly.
func (v HelpValue) Items() []HelpValue {
	if !v.result.Exists() || v.result.Type == gjson.Null {
		return nil
	}
	if !v.result.IsArray() {
		return []HelpValue{v}
	}
	var items []HelpValue
	for _, item := range v.result.Array() {
		if item.Type == gjson.Null {
			continue
		}
		items = append(items, HelpValue{result: item})
	}
	return items
}

// Text returns the fragment text of a help text node: its Text property if it has one,
// otherwise the node itself as a string.
func (v HelpValue) Text() string {
	if text, ok := v.Lookup("Text"); ok {
		if s := text.String(); s != "" {
			return s
		}
	}
	return v.String()
}

// ParameterRow is one row of the rendered parameter table.
type ParameterRow struct {
	Name     string `json:"name" yaml:"name"`
	TypeName string `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
	Position string `json:"position" yaml:"position"`
	Pipeline string `json:"pipeline" yaml:"pipeline"`
	Aliases  string `json:"aliases" yaml:"aliases"`
}

// NormalizedHelp is the renderable documentation of one command.
// It is built fresh per query and handed to the presentation layer.
type NormalizedHelp struct {
	Synopsis   string         `json:"synopsis" yaml:"synopsis"`
	Syntax     string         `json:"syntax" yaml:"syntax"`
	Examples   string         `json:"examples" yaml:"examples"`
	Parameters []ParameterRow `json:"parameters" yaml:"parameters"`
}
