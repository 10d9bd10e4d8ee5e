package schema

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks payloads against a compiled definition
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator checks the definition against the strict rules and compiles it.
func NewValidator(d Definition) (*Validator, error) {
	if err := ValidateStrict(d); err != nil {
		return nil, err
	}

	b, err := d.JSON()
	if err != nil {
		return nil, eris.Wrap(err, "schema: marshal")
	}

	resource := d.Name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resource, bytes.NewReader(b)); err != nil {
		return nil, eris.Wrap(err, "schema: add resource")
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, eris.Wrap(err, "schema: compile")
	}
	return &Validator{schema: compiled}, nil
}

// Validate reports whether payload is JSON that conforms to the schema.
func (v *Validator) Validate(payload []byte) error {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return eris.Wrap(err, "schema: payload is not JSON")
	}
	if err := v.schema.Validate(doc); err != nil {
		return eris.Wrap(err, "schema: payload does not conform")
	}
	return nil
}
