package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"quercle-tools/internal/domain"
	"quercle-tools/internal/quercle"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeStringArray ParamType = "string_array"
	TypeBoolean     ParamType = "boolean"
)

// ParamSpec declares one parameter of an endpoint: its wire name, JSON type,
// whether the caller must supply it, and an optional enum restriction.
type ParamSpec struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool
	Enum        []string
}

// EndpointSpec is the fixed description of one remote Quercle operation. The
// five tool adapters are five instances of the same Adapter type, each bound
// to one of these values. There is no per-tool subtype.
type EndpointSpec struct {
	Name        string
	Description string
	Path        string
	Params      []ParamSpec
}

// Shared parameter descriptions, mirrored from the API's tool documentation.
const (
	descFormat       = "Output format for the returned content: markdown, text, or html (default: markdown)"
	descUseSafeguard = "Enable detection of adversarial content injected into fetched pages"
)

// Specs returns the endpoint table: one row per adapter, fixed at build time.
func Specs() []EndpointSpec {
	return []EndpointSpec{
		{
			Name:        "search",
			Description: "Search the web and get an AI-synthesized answer with source citations",
			Path:        quercle.PathSearch,
			Params: []ParamSpec{
				{Name: "query", Type: TypeString, Required: true,
					Description: "The search query"},
				{Name: "allowed_domains", Type: TypeStringArray,
					Description: "Only include search results from these domains"},
				{Name: "blocked_domains", Type: TypeStringArray,
					Description: "Never include search results from these domains"},
			},
		},
		{
			Name:        "fetch",
			Description: "Fetch a URL and analyze its content with AI according to a prompt",
			Path:        quercle.PathFetch,
			Params: []ParamSpec{
				{Name: "url", Type: TypeString, Required: true,
					Description: "The URL to fetch"},
				{Name: "prompt", Type: TypeString, Required: true,
					Description: "Instructions describing what to extract or summarize from the page"},
			},
		},
		{
			Name:        "raw_search",
			Description: "Search the web and get raw, unprocessed results",
			Path:        quercle.PathRawSearch,
			Params: []ParamSpec{
				{Name: "query", Type: TypeString, Required: true,
					Description: "The search query"},
				{Name: "format", Type: TypeString, Enum: []string{"markdown", "text", "html"},
					Description: descFormat},
				{Name: "use_safeguard", Type: TypeBoolean,
					Description: descUseSafeguard},
			},
		},
		{
			Name:        "raw_fetch",
			Description: "Fetch a URL and return its raw content without AI processing",
			Path:        quercle.PathRawFetch,
			Params: []ParamSpec{
				{Name: "url", Type: TypeString, Required: true,
					Description: "The URL to fetch"},
				{Name: "format", Type: TypeString, Enum: []string{"markdown", "text", "html"},
					Description: descFormat},
				{Name: "use_safeguard", Type: TypeBoolean,
					Description: descUseSafeguard},
			},
		},
		{
			Name:        "extract",
			Description: "Fetch a URL and extract the content matching a query",
			Path:        quercle.PathExtract,
			Params: []ParamSpec{
				{Name: "url", Type: TypeString, Required: true,
					Description: "The URL to extract content from"},
				{Name: "query", Type: TypeString, Required: true,
					Description: "What to look for in the page"},
				{Name: "format", Type: TypeString, Enum: []string{"markdown", "text", "html"},
					Description: descFormat},
				{Name: "use_safeguard", Type: TypeBoolean,
					Description: descUseSafeguard},
			},
		},
	}
}

// schemaJSON renders the spec as a JSON Schema object for the function-calling
// protocol. additionalProperties is false: unknown keys are the caller's bug.
func (s EndpointSpec) schemaJSON() json.RawMessage {
	properties := make(map[string]any, len(s.Params))
	required := make([]string, 0, len(s.Params))

	for _, p := range s.Params {
		prop := map[string]any{"description": p.Description}
		switch p.Type {
		case TypeStringArray:
			prop["type"] = "array"
			prop["items"] = map[string]any{"type": "string"}
		case TypeBoolean:
			prop["type"] = "boolean"
		default:
			prop["type"] = "string"
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		// The schema is built from static literals; this cannot fail at runtime.
		panic(fmt.Sprintf("marshal schema for %s: %v", s.Name, err))
	}
	return raw
}

// decodeArgs parses raw invocation arguments against the spec. Unknown keys,
// missing required parameters, and wrong JSON types all yield a
// ValidationError; no network call may happen after a non-nil error here.
func (s EndpointSpec) decodeArgs(raw json.RawMessage) (map[string]json.RawMessage, *domain.ValidationError) {
	args := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, domain.NewValidationError(s.Name, "", "arguments must be a JSON object")
		}
	}

	byName := make(map[string]ParamSpec, len(s.Params))
	for _, p := range s.Params {
		byName[p.Name] = p
	}

	for key := range args {
		if _, ok := byName[key]; !ok {
			return nil, domain.NewValidationError(s.Name, key, "is not a known parameter")
		}
	}

	for _, p := range s.Params {
		val, present := args[p.Name]
		if !present {
			if p.Required {
				return nil, domain.NewValidationError(s.Name, p.Name, "is required")
			}
			continue
		}
		if verr := p.check(s.Name, val); verr != nil {
			return nil, verr
		}
	}

	return args, nil
}

// check validates one present argument value against its ParamSpec.
func (p ParamSpec) check(toolName string, val json.RawMessage) *domain.ValidationError {
	switch p.Type {
	case TypeString:
		var sv string
		if err := json.Unmarshal(val, &sv); err != nil {
			return domain.NewValidationError(toolName, p.Name, "must be a string")
		}
		if p.Required && strings.TrimSpace(sv) == "" {
			return domain.NewValidationError(toolName, p.Name, "must not be empty")
		}
		if len(p.Enum) > 0 {
			if err := ValidateEnum(p.Name, sv, p.Enum...); err != nil {
				return domain.NewValidationError(toolName, p.Name, err.Error())
			}
		}
	case TypeStringArray:
		var av []string
		if err := json.Unmarshal(val, &av); err != nil {
			return domain.NewValidationError(toolName, p.Name, "must be an array of strings")
		}
	case TypeBoolean:
		var bv bool
		if err := json.Unmarshal(val, &bv); err != nil {
			return domain.NewValidationError(toolName, p.Name, "must be a boolean")
		}
	}
	return nil
}

// buildBody assembles the outgoing request body from validated arguments.
// Present parameters are copied verbatim (raw JSON passthrough, no
// transformation); absent optionals are omitted entirely. Both the sync and
// async execution paths go through this one function, so the request they
// send cannot diverge.
func buildBody(spec EndpointSpec, args map[string]json.RawMessage) map[string]json.RawMessage {
	body := make(map[string]json.RawMessage, len(args))
	for _, p := range spec.Params {
		if val, ok := args[p.Name]; ok {
			body[p.Name] = val
		}
	}
	return body
}
