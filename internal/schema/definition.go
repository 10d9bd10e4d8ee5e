// Package schema declares the structured-output contract the inference
// services must conform to, and validates payloads against it.
package schema

import (
	"bytes"
	"encoding/json"
	"sort"
)

// JSON schema type names accepted by strict structured output
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Node is one node of a JSON schema. Only the subset of keywords strict
// structured output understands is modelled.
type Node struct {
	Type                 string           `json:"type"`
	Description          string           `json:"description,omitempty"`
	Properties           map[string]*Node `json:"properties,omitempty"`
	Required             []string         `json:"required,omitempty"`
	Items                *Node            `json:"items,omitempty"`
	AdditionalProperties *bool            `json:"additionalProperties,omitempty"`
}

// MarshalJSON writes properties in Required order, followed by any
// properties Required does not name in lexical order.
func (n Node) MarshalJSON() ([]byte, error) {
	out := struct {
		Type                 string          `json:"type"`
		Description          string          `json:"description,omitempty"`
		Properties           json.RawMessage `json:"properties,omitempty"`
		Required             []string        `json:"required,omitempty"`
		Items                *Node           `json:"items,omitempty"`
		AdditionalProperties *bool           `json:"additionalProperties,omitempty"`
	}{
		Type:                 n.Type,
		Description:          n.Description,
		Required:             n.Required,
		Items:                n.Items,
		AdditionalProperties: n.AdditionalProperties,
	}

	if len(n.Properties) > 0 {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, name := range propertyOrder(&n) {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(name)
			if err != nil {
				return nil, err
			}
			value, err := json.Marshal(n.Properties[name])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
		out.Properties = buf.Bytes()
	}

	return json.Marshal(out)
}

// propertyOrder lists the keys of n.Properties, required ones first
func propertyOrder(n *Node) []string {
	names := make([]string, 0, len(n.Properties))
	seen := make(map[string]bool, len(n.Properties))
	for _, name := range n.Required {
		if _, ok := n.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range n.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Definition is a named schema as sent in a json_schema response format
type Definition struct {
	Name   string `json:"name"`
	Strict bool   `json:"strict"`
	Root   *Node  `json:"schema"`
}

// JSON returns the root schema document
func (d Definition) JSON() ([]byte, error) {
	return json.Marshal(d.Root)
}

// object builds a closed object node whose properties are all required, in
// the given order.
func object(props ...property) *Node {
	closed := false
	n := &Node{
		Type:                 TypeObject,
		Properties:           make(map[string]*Node, len(props)),
		Required:             make([]string, 0, len(props)),
		AdditionalProperties: &closed,
	}
	for _, p := range props {
		n.Properties[p.name] = p.node
		n.Required = append(n.Required, p.name)
	}
	return n
}

type property struct {
	name string
	node *Node
}

func prop(name string, node *Node) property {
	return property{name: name, node: node}
}

func arrayOf(items *Node) *Node {
	return &Node{Type: TypeArray, Items: items}
}

func str() *Node { return &Node{Type: TypeString} }

func num() *Node { return &Node{Type: TypeNumber} }

func quantity() *Node {
	return object(
		prop("quantity", num()),
		prop("unit", str()),
	)
}

// LabelReader is the product record schema used for every extraction
var LabelReader = Definition{
	Name:   "label_reader",
	Strict: true,
	Root: object(
		prop("productName", str()),
		prop("brandName", str()),
		prop("ingredients", arrayOf(object(
			prop("name", str()),
			prop("percent", str()),
			prop("metadata", str()),
		))),
		prop("servingSize", quantity()),
		prop("packagingSize", quantity()),
		prop("servingsPerPack", num()),
		prop("nutritionalInformation", arrayOf(object(
			prop("name", str()),
			prop("unit", str()),
			prop("values", arrayOf(object(
				prop("base", str()),
				prop("value", num()),
			))),
		))),
		prop("fssaiLicenseNumbers", arrayOf(num())),
		prop("claims", arrayOf(str())),
		prop("shelfLife", str()),
	),
}
