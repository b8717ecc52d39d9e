// Package normalize turns a host command descriptor and its raw help record into
// flat, renderable documentation. Every function here is pure: no I/O and no shared
// mutable state, so a Normalizer may be used from any goroutine.
package normalize

import (
	"regexp"
	"strings"
)

// Placeholder texts used when nothing could be extracted.
const (
	NoSynopsisPlaceholder = "No local synopsis available. Try: Update-Help -ErrorAction SilentlyContinue"
	NoSyntaxPlaceholder   = "No syntax available."
	NoExamplesPlaceholder = "No examples available."
)

// ErrorSynopsisPrefix prefixes the synopsis when help loading faults.
const ErrorSynopsisPrefix = "Error loading help: "

// SyntaxDivider separates a parameter-set header from its syntax line.
const SyntaxDivider = "----------------------------------------"

// unpositionedSortKey orders unpositioned parameters after every positioned one.
const unpositionedSortKey = 999

// DefaultCommonParameters are the cross-cutting flags the host adds to advanced commands.
var DefaultCommonParameters = []string{
	"Verbose", "Debug", "ErrorAction", "WarningAction", "InformationAction",
	"ErrorVariable", "WarningVariable", "InformationVariable", "OutVariable",
	"OutBuffer", "PipelineVariable", "WhatIf", "Confirm", "ProgressAction",
}

// DefaultPlaceholderPrefixes are the en-US prefixes of the host's generated "no help" synopsis.
var DefaultPlaceholderPrefixes = []string{"Get-Help "}

var (
	edgeDashesPattern    = regexp.MustCompile(`^[-\s]+|[-\s]+$`)
	examplePrefixPattern = regexp.MustCompile(`(?i)^EXAMPLE\s*\d+\s*[-–—]?\s*`)
)

// PlaceholderFunc reports whether a synopsis is a host-generated stub rather than authored text.
type PlaceholderFunc func(synopsis string) bool

// PrefixPlaceholder returns a PlaceholderFunc matching any of the given prefixes.
// Localized hosts word the stub differently, so the prefixes are configuration, not constants.
func PrefixPlaceholder(prefixes ...string) PlaceholderFunc {
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return func(synopsis string) bool {
		for _, p := range cleaned {
			if strings.HasPrefix(synopsis, p) {
				return true
			}
		}
		return false
	}
}

// Options is the static configuration injected into a Normalizer.
type Options struct {
	// CommonParameters are excluded from syntax lines and the parameter table (case-insensitive).
	CommonParameters []string
	// IsPlaceholderSynopsis detects host-generated synopsis stubs.
	IsPlaceholderSynopsis PlaceholderFunc
}

// DefaultOptions returns the options matching an en-US host.
func DefaultOptions() Options {
	return Options{
		CommonParameters:      DefaultCommonParameters,
		IsPlaceholderSynopsis: PrefixPlaceholder(DefaultPlaceholderPrefixes...),
	}
}

// commonSet is a case-insensitive parameter name set.
type commonSet map[string]struct{}

func newCommonSet(names []string) commonSet {
	set := make(commonSet, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}

func (s commonSet) contains(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}
