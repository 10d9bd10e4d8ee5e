package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"productName": "Mango Fruit Drink",
	"brandName": "Sunfresh",
	"ingredients": [{"name": "Water", "percent": "", "metadata": ""}],
	"servingSize": {"quantity": 200, "unit": "ml"},
	"packagingSize": {"quantity": 1, "unit": "l"},
	"servingsPerPack": 5,
	"nutritionalInformation": [{"name": "Energy", "unit": "kcal", "values": [{"base": "per 100ml", "value": 58}]}],
	"fssaiLicenseNumbers": [10012345000123],
	"claims": ["contains fruit"],
	"shelfLife": "9 months"
}`

func TestLabelReader_IsStrict(t *testing.T) {
	require.NoError(t, ValidateStrict(LabelReader))
	assert.Equal(t, "label_reader", LabelReader.Name)
	assert.True(t, LabelReader.Strict)
	assert.Equal(t, []string{
		"productName", "brandName", "ingredients", "servingSize", "packagingSize",
		"servingsPerPack", "nutritionalInformation", "fssaiLicenseNumbers", "claims", "shelfLife",
	}, LabelReader.Root.Required)
}

func TestLabelReader_JSON(t *testing.T) {
	b, err := LabelReader.JSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, false, doc["additionalProperties"])

	props := doc["properties"].(map[string]any)
	nutrition := props["nutritionalInformation"].(map[string]any)
	assert.Equal(t, "array", nutrition["type"])
	// arrays never carry additionalProperties
	_, ok := nutrition["additionalProperties"]
	assert.False(t, ok)
}

func TestValidateStrict_Rejects(t *testing.T) {
	open := true
	tests := []struct {
		name string
		def  Definition
	}{
		{
			name: "bad name",
			def:  Definition{Name: "label reader", Root: object(prop("a", str()))},
		},
		{
			name: "missing root",
			def:  Definition{Name: "x"},
		},
		{
			name: "root is array",
			def:  Definition{Name: "x", Root: arrayOf(str())},
		},
		{
			name: "open object",
			def: Definition{Name: "x", Root: &Node{
				Type:                 TypeObject,
				Properties:           map[string]*Node{"a": str()},
				Required:             []string{"a"},
				AdditionalProperties: &open,
			}},
		},
		{
			name: "optional property",
			def: Definition{Name: "x", Root: func() *Node {
				n := object(prop("a", str()), prop("b", str()))
				n.Required = []string{"a"}
				return n
			}()},
		},
		{
			name: "required unknown property",
			def: Definition{Name: "x", Root: func() *Node {
				n := object(prop("a", str()))
				n.Required = append(n.Required, "b")
				return n
			}()},
		},
		{
			name: "array without items",
			def:  Definition{Name: "x", Root: object(prop("a", &Node{Type: TypeArray}))},
		},
		{
			name: "unsupported type",
			def:  Definition{Name: "x", Root: object(prop("a", &Node{Type: "null"}))},
		},
		{
			name: "additionalProperties on array",
			def:  Definition{Name: "x", Root: object(prop("a", &Node{Type: TypeArray, Items: str(), AdditionalProperties: &open}))},
		},
		{
			name: "too deep",
			def: Definition{Name: "x", Root: object(prop("a", object(prop("b", object(prop("c",
				object(prop("d", object(prop("e", object(prop("f", str()))))))))))))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateStrict(tt.def))
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	v, err := NewValidator(LabelReader)
	require.NoError(t, err)

	assert.NoError(t, v.Validate([]byte(validPayload)))

	tests := []struct {
		name   string
		mutate func(doc map[string]any)
	}{
		{name: "missing field", mutate: func(doc map[string]any) { delete(doc, "shelfLife") }},
		{name: "extra field", mutate: func(doc map[string]any) { doc["barcode"] = "8901234" }},
		{name: "wrong type", mutate: func(doc map[string]any) { doc["servingsPerPack"] = "five" }},
		{name: "nested missing field", mutate: func(doc map[string]any) {
			doc["ingredients"] = []any{map[string]any{"name": "Water", "percent": ""}}
		}},
		{name: "nested extra field", mutate: func(doc map[string]any) {
			doc["servingSize"] = map[string]any{"quantity": 1, "unit": "ml", "approx": true}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(validPayload), &doc))
			tt.mutate(doc)
			b, err := json.Marshal(doc)
			require.NoError(t, err)
			assert.Error(t, v.Validate(b))
		})
	}

	t.Run("not json", func(t *testing.T) {
		assert.Error(t, v.Validate([]byte("I cannot help with that")))
	})
}

func TestValidateStrict_RejectsAdditionalPropertiesOnArray(t *testing.T) {
	for _, value := range []bool{true, false} {
		v := value
		def := Definition{Name: "x", Root: object(
			prop("tags", &Node{Type: TypeArray, Items: str(), AdditionalProperties: &v}),
		)}

		err := ValidateStrict(def)
		require.Error(t, err, "additionalProperties=%v", v)
		assert.Contains(t, err.Error(), "$.tags sets additionalProperties")
	}

	// the same array without the keyword is accepted
	def := Definition{Name: "x", Root: object(prop("tags", arrayOf(str())))}
	assert.NoError(t, ValidateStrict(def))
}

func TestNode_MarshalJSON_KeepsDeclarationOrder(t *testing.T) {
	b, err := json.Marshal(object(prop("b", str()), prop("a", num())))
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"number"}},"required":["b","a"],"additionalProperties":false}`,
		string(b))
}

func TestNode_MarshalJSON_UnrequiredPropertiesLast(t *testing.T) {
	n := &Node{
		Type: TypeObject,
		Properties: map[string]*Node{
			"zeta":  str(),
			"alpha": str(),
			"mid":   str(),
		},
		Required: []string{"mid"},
	}

	b, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"object","properties":{"mid":{"type":"string"},"alpha":{"type":"string"},"zeta":{"type":"string"}},"required":["mid"]}`,
		string(b))
}

func TestLabelReader_JSON_PropertyOrder(t *testing.T) {
	b, err := LabelReader.JSON()
	require.NoError(t, err)

	doc := string(b)
	last := -1
	for _, name := range LabelReader.Root.Required {
		idx := strings.Index(doc, `"`+name+`":`)
		require.NotEqual(t, -1, idx, "missing %s", name)
		assert.Greater(t, idx, last, "%s out of order", name)
		last = idx
	}
}
