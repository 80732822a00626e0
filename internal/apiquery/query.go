// Package apiquery models requests to and responses from the live bpy
// API introspection payload, plus the text renderers for its output.
package apiquery

import (
	"fmt"
	"strings"
)

// Modes accepted by the api payload.
const (
	ModeSummary  = "summary"
	ModeSearch   = "search"
	ModeOperator = "operator"
	ModeModule   = "module"
	ModeModules  = "modules"
	ModeType     = "type"
	ModeTypes    = "types"
	ModeData     = "data"
	ModeContext  = "context"
)

// DefaultLimit caps search result counts when --limit is not given.
const DefaultLimit = 50

// Request selects one introspection mode.
type Request struct {
	Mode          string `json:"mode"`
	Query         string `json:"query,omitempty"`
	InDescription bool   `json:"in_description,omitempty"`
	Target        string `json:"target,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// Validate rejects requests the payload could not serve.
func (r Request) Validate() error {
	switch r.Mode {
	case ModeSummary, ModeModules, ModeData, ModeContext:
		return nil
	case ModeSearch, ModeTypes:
		if r.Query == "" {
			return fmt.Errorf("mode %s requires a search query", r.Mode)
		}
		return nil
	case ModeOperator, ModeModule, ModeType:
		if r.Target == "" {
			return fmt.Errorf("mode %s requires a target path", r.Mode)
		}
		return nil
	default:
		return fmt.Errorf("unknown api query mode %q", r.Mode)
	}
}

// EnumOption is one allowed value of an ENUM operator parameter.
type EnumOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Param describes one operator parameter from its RNA definition.
type Param struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Description string       `json:"description,omitempty"`
	Default     any          `json:"default,omitempty"`
	Options     []EnumOption `json:"options,omitempty"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
}

// OperatorMatch is one search hit.
type OperatorMatch struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ModuleCount is one bpy.ops module with its operator count.
type ModuleCount struct {
	Module string `json:"module"`
	Count  int    `json:"count"`
}

// TypeMatch is one bpy.types search hit.
type TypeMatch struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Doc  string `json:"doc,omitempty"`
}

// Prop is one property of a bpy type.
type Prop struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// DataCollection is one bpy.data collection with its item count.
type DataCollection struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ContextAttr is one bpy.context attribute and its runtime type.
type ContextAttr struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Response is the payload's answer; which fields are set depends on
// the request mode.
type Response struct {
	Error   string `json:"error,omitempty"`
	Version string `json:"version,omitempty"`
	Mode    string `json:"mode,omitempty"`

	// operator / module / type detail
	Path        string  `json:"path,omitempty"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Parameters  []Param `json:"parameters,omitempty"`
	Module      string  `json:"module,omitempty"`
	Count       int     `json:"count,omitempty"`
	Doc         string  `json:"doc,omitempty"`
	Properties  []Prop  `json:"properties,omitempty"`

	// search / listing modes
	Matches     []OperatorMatch  `json:"matches,omitempty"`
	Operators   []OperatorMatch  `json:"operators,omitempty"`
	Modules     []ModuleCount    `json:"modules,omitempty"`
	Collections []DataCollection `json:"collections,omitempty"`
	Attributes  []ContextAttr    `json:"attributes,omitempty"`

	// summary mode
	OperatorModules   int `json:"operator_modules,omitempty"`
	TotalOperators    int `json:"total_operators,omitempty"`
	Types             int `json:"types,omitempty"`
	DataCollections   int `json:"data_collections,omitempty"`
	ContextAttributes int `json:"context_attributes,omitempty"`
}

// TypeMatches decodes types-mode matches, which reuse the Matches
// field shape with doc strings instead of descriptions.
func (r *Response) TypeMatches() []TypeMatch {
	out := make([]TypeMatch, 0, len(r.Matches))
	for _, m := range r.Matches {
		out = append(out, TypeMatch{Path: m.Path, Name: m.Name, Doc: m.Description})
	}
	return out
}

// Render formats the response for the terminal according to the
// request that produced it.
func Render(req Request, resp *Response) string {
	var b strings.Builder

	if resp.Version != "" {
		fmt.Fprintf(&b, "Blender %s API\n\n", resp.Version)
	}

	switch req.Mode {
	case ModeOperator:
		renderOperator(&b, resp)
	case ModeSearch:
		fmt.Fprintf(&b, "Operators matching %q: %d\n\n", req.Query, len(resp.Matches))
		for _, m := range resp.Matches {
			fmt.Fprintf(&b, "  %s\n", m.Path)
			if m.Description != "" {
				fmt.Fprintf(&b, "    %s\n", m.Description)
			}
		}
	case ModeModule:
		fmt.Fprintf(&b, "%s (%d operators)\n\n", resp.Module, resp.Count)
		for _, op := range resp.Operators {
			fmt.Fprintf(&b, "  %s\n", op.Path)
			if op.Description != "" {
				fmt.Fprintf(&b, "    %s\n", op.Description)
			}
		}
	case ModeModules:
		fmt.Fprintf(&b, "Operator modules (%d)\n\n", len(resp.Modules))
		total := 0
		for _, m := range resp.Modules {
			fmt.Fprintf(&b, "  %s: %d operators\n", m.Module, m.Count)
			total += m.Count
		}
		fmt.Fprintf(&b, "\nTotal: %d operators\n", total)
	case ModeType:
		fmt.Fprintf(&b, "%s\n", resp.Path)
		if resp.Doc != "" {
			fmt.Fprintf(&b, "  Doc: %s\n", resp.Doc)
		}
		fmt.Fprintf(&b, "  Properties (%d):\n", len(resp.Properties))
		shown := resp.Properties
		if len(shown) > 30 {
			shown = shown[:30]
		}
		for _, p := range shown {
			fmt.Fprintf(&b, "    - %s: %s\n", p.Name, p.Type)
		}
		if rest := len(resp.Properties) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "    ... and %d more\n", rest)
		}
	case ModeTypes:
		fmt.Fprintf(&b, "Types matching %q: %d\n\n", req.Query, len(resp.Matches))
		for _, m := range resp.TypeMatches() {
			fmt.Fprintf(&b, "  %s\n", m.Path)
		}
	case ModeData:
		fmt.Fprintf(&b, "bpy.data collections (%d)\n\n", len(resp.Collections))
		for _, c := range resp.Collections {
			fmt.Fprintf(&b, "  %s (%d items)\n", c.Path, c.Count)
		}
	case ModeContext:
		fmt.Fprintf(&b, "bpy.context attributes (%d)\n\n", len(resp.Attributes))
		for _, a := range resp.Attributes {
			fmt.Fprintf(&b, "  %s: %s\n", a.Path, a.Type)
		}
	default:
		renderSummary(&b, resp)
	}

	return b.String()
}

func renderOperator(b *strings.Builder, resp *Response) {
	fmt.Fprintf(b, "%s\n", resp.Path)
	fmt.Fprintf(b, "  Name: %s\n", resp.Name)
	fmt.Fprintf(b, "  Description: %s\n", resp.Description)

	if len(resp.Parameters) == 0 {
		return
	}
	fmt.Fprintf(b, "  Parameters (%d):\n", len(resp.Parameters))
	for _, p := range resp.Parameters {
		def := ""
		if p.Default != nil {
			def = fmt.Sprintf(" = %v", p.Default)
		}
		fmt.Fprintf(b, "    - %s: %s%s\n", p.Name, p.Type, def)
		if p.Description != "" {
			fmt.Fprintf(b, "        %s\n", clip(p.Description, 70))
		}
		if len(p.Options) > 0 {
			ids := make([]string, 0, 5)
			for i, opt := range p.Options {
				if i == 5 {
					break
				}
				ids = append(ids, opt.ID)
			}
			line := strings.Join(ids, ", ")
			if rest := len(p.Options) - len(ids); rest > 0 {
				line += fmt.Sprintf(", ... (+%d more)", rest)
			}
			fmt.Fprintf(b, "        Options: %s\n", line)
		}
		if p.Min != nil && p.Max != nil {
			fmt.Fprintf(b, "        Range: %g to %g\n", *p.Min, *p.Max)
		}
	}
}

func renderSummary(b *strings.Builder, resp *Response) {
	fmt.Fprintf(b, "API summary:\n")
	fmt.Fprintf(b, "  Operator modules: %d\n", resp.OperatorModules)
	fmt.Fprintf(b, "  Total operators: %d\n", resp.TotalOperators)
	fmt.Fprintf(b, "  Types: %d\n", resp.Types)
	fmt.Fprintf(b, "  Data collections: %d\n", resp.DataCollections)
	fmt.Fprintf(b, "  Context attributes: %d\n", resp.ContextAttributes)
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
