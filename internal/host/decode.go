package host

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/tidwall/gjson"

	"psbrowse/pkg/pstypes"
)

const envelopeMarker = `{"ok"`

// errNoEnvelope is returned when the host printed no response line before the sentinel.
var errNoEnvelope = errors.New("host returned no response")

// HostError is a failure reported by the host itself (a caught exception).
type HostError struct {
	Message string
}

func (e *HostError) Error() string {
	return e.Message
}

// parseEnvelope extracts the data payload from the response lines printed before a sentinel.
// Lines other than the envelope (banners, stray output) are ignored; the last envelope wins.
func parseEnvelope(lines []string) (gjson.Result, error) {
	for i := len(lines) - 1; i >= 0; i-- {
		idx := strings.Index(lines[i], envelopeMarker)
		if idx < 0 {
			continue
		}
		raw := lines[i][idx:]
		if !gjson.Valid(raw) {
			return gjson.Result{}, fmt.Errorf("malformed host response: %.80q", raw)
		}
		doc := gjson.Parse(raw)
		if !doc.Get("ok").Bool() {
			msg := strings.TrimSpace(doc.Get("error").String())
			if msg == "" {
				msg = "unknown host error"
			}
			return gjson.Result{}, &HostError{Message: msg}
		}
		return doc.Get("data"), nil
	}
	return gjson.Result{}, errNoEnvelope
}

// items treats a JSON array as its elements, null as nothing, and anything else as one item.
func items(r gjson.Result) []gjson.Result {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return nil
	case r.IsArray():
		return r.Array()
	default:
		return []gjson.Result{r}
	}
}

func stringList(r gjson.Result) []string {
	var out []string
	for _, item := range items(r) {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// position maps the host's unset sentinels (any negative value) to -1.
func position(r gjson.Result) int {
	if !r.Exists() || r.Type != gjson.Number {
		return -1
	}
	p := int(r.Int())
	if p < 0 {
		return -1
	}
	return p
}

func pipelineInput(r gjson.Result) pstypes.PipelineInput {
	switch {
	case r.Get("ValueFromPipeline").Bool():
		return pstypes.PipelineInputByValue
	case r.Get("ValueFromPipelineByPropertyName").Bool():
		return pstypes.PipelineInputByPropertyName
	default:
		return pstypes.PipelineInputNone
	}
}

func decodeSummaries(data gjson.Result) []pstypes.CommandSummary {
	rows := items(data)
	summaries := make([]pstypes.CommandSummary, 0, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.Get("Name").String())
		if name == "" {
			continue
		}
		summaries = append(summaries, pstypes.CommandSummary{
			Name:        name,
			ModuleName:  r.Get("ModuleName").String(),
			CommandType: pstypes.ParseCommandType(r.Get("CommandType").String()),
			Source:      r.Get("Source").String(),
		})
	}
	return summaries
}

// decodeDescriptor returns nil when the host found no command.
func decodeDescriptor(data gjson.Result) *pstypes.CommandDescriptor {
	if !data.IsObject() {
		return nil
	}

	desc := &pstypes.CommandDescriptor{
		Name:        data.Get("Name").String(),
		ModuleName:  data.Get("ModuleName").String(),
		CommandType: pstypes.ParseCommandType(data.Get("CommandType").String()),
		Source:      data.Get("Source").String(),
	}

	for _, s := range items(data.Get("ParameterSets")) {
		set := pstypes.ParameterSet{
			Name:      s.Get("Name").String(),
			IsDefault: s.Get("IsDefault").Bool(),
		}
		for _, p := range items(s.Get("Parameters")) {
			set.Parameters = append(set.Parameters, pstypes.ParameterSpec{
				Name:          p.Get("Name").String(),
				Type:          decodeType(p.Get("Type")),
				IsMandatory:   p.Get("IsMandatory").Bool(),
				Position:      position(p.Get("Position")),
				PipelineInput: pipelineInput(p),
				Aliases:       stringList(p.Get("Aliases")),
			})
		}
		desc.ParameterSets = append(desc.ParameterSets, set)
	}

	if params := items(data.Get("Parameters")); len(params) > 0 {
		desc.Parameters = make(map[string]pstypes.ParameterMetadata, len(params))
		for _, p := range params {
			meta := pstypes.ParameterMetadata{
				Name:    p.Get("Name").String(),
				Type:    decodeType(p.Get("Type")),
				Aliases: stringList(p.Get("Aliases")),
			}
			for _, a := range items(p.Get("Attributes")) {
				meta.Attributes = append(meta.Attributes, pstypes.ParameterAttribute{
					ParameterSetName:                a.Get("ParameterSetName").String(),
					Mandatory:                       a.Get("Mandatory").Bool(),
					Position:                        position(a.Get("Position")),
					ValueFromPipeline:               a.Get("ValueFromPipeline").Bool(),
					ValueFromPipelineByPropertyName: a.Get("ValueFromPipelineByPropertyName").Bool(),
				})
			}
			if meta.Name != "" {
				desc.Parameters[meta.Name] = meta
			}
		}
	}

	return desc
}

// decodeType accepts either the structured projection emitted by the host
// helpers or a bare type name such as "String[]" or "Nullable`1".
func decodeType(r gjson.Result) pstypes.TypeDescriptor {
	if r.Type == gjson.String {
		return ParseTypeName(r.String())
	}
	if !r.IsObject() {
		return pstypes.TypeDescriptor{Name: "Object"}
	}

	name := r.Get("Name").String()
	elem := r.Get("Elem").String()
	switch {
	case r.Get("IsSwitch").Bool():
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindSwitch}
	case r.Get("IsBoolean").Bool():
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindBoolean}
	case r.Get("IsArray").Bool() && elem != "":
		inner := ParseTypeName(elem)
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindArray, Elem: &inner}
	case r.Get("IsNullable").Bool() && elem != "":
		inner := ParseTypeName(elem)
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindNullable, Elem: &inner}
	default:
		return ParseTypeName(name)
	}
}

// ParseTypeName classifies a host type name. "SwitchParameter" and "Boolean" are flags,
// a "[]" suffix is an array and a "?" suffix is a nullable wrapper.
func ParseTypeName(name string) pstypes.TypeDescriptor {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return pstypes.TypeDescriptor{Name: "Object"}
	case strings.EqualFold(name, "SwitchParameter"):
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindSwitch}
	case strings.EqualFold(name, "Boolean") || strings.EqualFold(name, "bool"):
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindBoolean}
	case strings.HasSuffix(name, "[]"):
		inner := ParseTypeName(strings.TrimSuffix(name, "[]"))
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindArray, Elem: &inner}
	case strings.HasSuffix(name, "?"):
		inner := ParseTypeName(strings.TrimSuffix(name, "?"))
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindNullable, Elem: &inner}
	default:
		return pstypes.TypeDescriptor{Name: name, Kind: pstypes.TypeKindPlain}
	}
}

func decodeHelp(data gjson.Result) pstypes.HelpRecord {
	if !data.Exists() {
		return pstypes.HelpRecord{}
	}
	return pstypes.NewHelpRecord(data.Raw)
}

// decodeText returns a string payload with ANSI sequences and trailing blank lines removed.
func decodeText(data gjson.Result) string {
	if data.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(ansi.Strip(data.String()))
}
