package normalize

import (
	"fmt"
	"strings"

	"psbrowse/pkg/pstypes"
)

// SyntaxSource lazily fetches the host's own syntax-formatting output for a command.
// It is only called when the descriptor carries no parameter-set metadata.
type SyntaxSource func() (string, error)

// Normalizer converts raw host metadata into NormalizedHelp.
// It holds only immutable configuration and is safe for concurrent use.
type Normalizer struct {
	common        commonSet
	isPlaceholder PlaceholderFunc
}

// New creates a Normalizer from the given options. Zero-valued fields fall back to the defaults.
func New(opts Options) *Normalizer {
	defaults := DefaultOptions()
	if opts.CommonParameters == nil {
		opts.CommonParameters = defaults.CommonParameters
	}
	if opts.IsPlaceholderSynopsis == nil {
		opts.IsPlaceholderSynopsis = defaults.IsPlaceholderSynopsis
	}
	return &Normalizer{
		common:        newCommonSet(opts.CommonParameters),
		isPlaceholder: opts.IsPlaceholderSynopsis,
	}
}

// IsCommonParameter reports whether name is one of the configured common parameters.
func (n *Normalizer) IsCommonParameter(name string) bool {
	return n.common.contains(name)
}

// Normalize builds the finalized help for one command. desc may be nil when the host
// no longer knows the command, help may be empty, and legacy may be nil.
// It never panics outward: an internal fault becomes an error synopsis.
func (n *Normalizer) Normalize(name string, desc *pstypes.CommandDescriptor, help pstypes.HelpRecord, legacy SyntaxSource) (result pstypes.NormalizedHelp) {
	defer func() {
		if r := recover(); r != nil {
			result = ErrorHelp(fmt.Errorf("%v", r))
		}
	}()

	if name == "" && desc != nil {
		name = desc.Name
	}

	result.Synopsis = n.Synopsis(help)
	result.Syntax = n.Syntax(name, desc, legacy)
	result.Examples = n.Examples(help)
	result.Parameters = n.Parameters(desc)
	return Finalize(result)
}

// ErrorHelp is the finalized result reported when loading help failed.
func ErrorHelp(err error) pstypes.NormalizedHelp {
	return Finalize(pstypes.NormalizedHelp{Synopsis: ErrorSynopsisPrefix + err.Error()})
}

// Finalize replaces blank text fields with their placeholders.
func Finalize(h pstypes.NormalizedHelp) pstypes.NormalizedHelp {
	if strings.TrimSpace(h.Synopsis) == "" {
		h.Synopsis = NoSynopsisPlaceholder
	}
	if strings.TrimSpace(h.Syntax) == "" {
		h.Syntax = NoSyntaxPlaceholder
	}
	if strings.TrimSpace(h.Examples) == "" {
		h.Examples = NoExamplesPlaceholder
	}
	if h.Parameters == nil {
		h.Parameters = []pstypes.ParameterRow{}
	}
	return h
}

// Synopsis extracts the authored synopsis, falling back to the first description fragment.
func (n *Normalizer) Synopsis(help pstypes.HelpRecord) string {
	if synopsis, ok := help.Lookup("Synopsis"); ok {
		if s := synopsis.String(); s != "" && !n.isPlaceholder(s) {
			return s
		}
	}

	description, ok := help.Lookup("details.description")
	if !ok {
		return ""
	}
	for _, fragment := range description.Items() {
		if text := fragment.Text(); text != "" {
			return text
		}
	}
	return ""
}
