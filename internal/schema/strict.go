package schema

import (
	"regexp"

	"github.com/rotisserie/eris"
)

// Limits enforced by strict structured output
const (
	MaxDepth      = 5
	MaxProperties = 100
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

var supportedTypes = map[string]bool{
	TypeObject:  true,
	TypeArray:   true,
	TypeString:  true,
	TypeNumber:  true,
	TypeInteger: true,
	TypeBoolean: true,
}

// ValidateStrict checks that a definition is accepted by a strict
// structured-output service: a named object root, closed objects with every
// property required, typed array items, and bounded depth and size.
func ValidateStrict(d Definition) error {
	if !namePattern.MatchString(d.Name) {
		return eris.Errorf("schema: invalid name %q", d.Name)
	}
	if d.Root == nil {
		return eris.New("schema: missing root")
	}
	if d.Root.Type != TypeObject {
		return eris.Errorf("schema: root must be an object, got %q", d.Root.Type)
	}

	count := 0
	return walk(d.Root, "$", 0, &count)
}

// walk checks n and its children. depth counts the objects enclosing n.
func walk(n *Node, path string, depth int, count *int) error {
	if !supportedTypes[n.Type] {
		return eris.Errorf("schema: %s has unsupported type %q", path, n.Type)
	}

	switch n.Type {
	case TypeObject:
		depth++
		if depth > MaxDepth {
			return eris.Errorf("schema: %s exceeds nesting depth %d", path, MaxDepth)
		}
		if n.AdditionalProperties == nil || *n.AdditionalProperties {
			return eris.Errorf("schema: %s must set additionalProperties to false", path)
		}
		if len(n.Properties) == 0 {
			return eris.Errorf("schema: %s has no properties", path)
		}
		*count += len(n.Properties)
		if *count > MaxProperties {
			return eris.Errorf("schema: more than %d properties", MaxProperties)
		}

		required := make(map[string]bool, len(n.Required))
		for _, name := range n.Required {
			if _, ok := n.Properties[name]; !ok {
				return eris.Errorf("schema: %s requires unknown property %q", path, name)
			}
			required[name] = true
		}
		for _, name := range propertyOrder(n) {
			child := n.Properties[name]
			if !required[name] {
				return eris.Errorf("schema: %s.%s must be required", path, name)
			}
			if child == nil {
				return eris.Errorf("schema: %s.%s has no schema", path, name)
			}
			if err := walk(child, path+"."+name, depth, count); err != nil {
				return err
			}
		}
	case TypeArray:
		if n.Items == nil {
			return eris.Errorf("schema: %s array has no items", path)
		}
		if n.AdditionalProperties != nil {
			return eris.Errorf("schema: %s sets additionalProperties on a %s", path, n.Type)
		}
		return walk(n.Items, path+"[]", depth, count)
	default:
		if n.AdditionalProperties != nil {
			return eris.Errorf("schema: %s sets additionalProperties on a %s", path, n.Type)
		}
	}
	return nil
}
