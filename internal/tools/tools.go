// Package tools implements the tool registry and dispatcher: a name-indexed table
// of operations with declared parameters, and the uniform result envelope every
// invocation is converted into.
package tools

import (
	"context"
)

// Kind is the declared type of a tool parameter.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindObject  Kind = "object"
	KindList    Kind = "array"
)

// Parameter describes one argument a tool accepts.
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Kind        Kind   `json:"type" yaml:"type"`
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description" yaml:"description"`
}

// Handler executes a tool with the provided arguments and returns a value that
// can be encoded as JSON.
type Handler func(ctx context.Context, args Args) (any, error)

// Annotations are behavioural hints advertised alongside a tool.
type Annotations struct {
	ReadOnly    bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Destructive bool `json:"destructive,omitempty" yaml:"destructive,omitempty"`
}

// Definition describes a tool: its name, what it does, the parameters it takes
// and the handler that runs it.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
	Annotations Annotations
	Handler     Handler
}

// Request is a single tool invocation.
type Request struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ParameterSchema is the advertised form of a parameter, keyed by name.
type ParameterSchema struct {
	Type        Kind   `json:"type" yaml:"type"`
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description" yaml:"description"`
}

// Descriptor is the serialisable view of a Definition used to advertise the catalog.
type Descriptor struct {
	Name        string                     `json:"name" yaml:"name"`
	Description string                     `json:"description" yaml:"description"`
	Parameters  map[string]ParameterSchema `json:"parameters" yaml:"parameters"`
	Annotations Annotations                `json:"annotations,omitzero" yaml:"annotations,omitempty"`
}

// Describe returns the advertised form of the definition.
func (d Definition) Describe() Descriptor {
	params := make(map[string]ParameterSchema, len(d.Parameters))
	for _, p := range d.Parameters {
		params[p.Name] = ParameterSchema{
			Type:        p.Kind,
			Required:    p.Required,
			Description: p.Description,
		}
	}
	return Descriptor{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  params,
		Annotations: d.Annotations,
	}
}

// RequiredNames returns the names of the required parameters in declaration order.
func (d Definition) RequiredNames() []string {
	var names []string
	for _, p := range d.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// InputSchema returns the JSON schema of the tool arguments.
func (d Definition) InputSchema() map[string]any {
	props := make(map[string]any, len(d.Parameters))
	for _, p := range d.Parameters {
		props[p.Name] = map[string]any{
			"type":        string(p.Kind),
			"description": p.Description,
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if required := d.RequiredNames(); len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
