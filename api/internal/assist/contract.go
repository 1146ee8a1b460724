package assist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"medassist/api/internal/util"
)

// FieldType is the JSON type of a contract field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field describes one property of a response object.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
	Items       *Field  // element shape for arrays
	Fields      []Field // properties for objects
}

// Contract is the response shape a provider is instructed to honour.
type Contract struct {
	Name   string
	Fields []Field
}

// Required lists the names of the top-level required fields.
func (c *Contract) Required() []string {
	return requiredOf(c.Fields)
}

func requiredOf(fields []Field) []string {
	var out []string
	for _, f := range fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

var predictionShape = Field{Type: TypeObject, Fields: []Field{
	{Name: "disease", Type: TypeString, Required: true, Description: "Name of the condition."},
	{Name: "probability", Type: TypeNumber, Required: true, Description: "Likelihood in percent, 0-100."},
}}

var ReportContract = &Contract{
	Name: "report_analysis",
	Fields: []Field{
		{Name: "summary", Type: TypeString, Required: true, Description: "Plain-language summary of the report."},
		{Name: "predictions", Type: TypeArray, Required: true, Items: &predictionShape},
		{Name: "healthScore", Type: TypeInteger, Required: true, Description: "Overall health score, 0-100."},
		{Name: "recommendations", Type: TypeArray, Required: true, Items: &Field{Type: TypeString}},
	},
}

var SymptomsContract = &Contract{
	Name: "symptom_prediction",
	Fields: []Field{
		{Name: "predictions", Type: TypeArray, Required: true, Items: &Field{Type: TypeObject, Fields: []Field{
			{Name: "disease", Type: TypeString, Required: true},
			{Name: "probability", Type: TypeNumber, Required: true, Description: "Likelihood in percent, 0-100."},
			{Name: "description", Type: TypeString, Required: true},
			{Name: "specialist", Type: TypeString, Required: true, Description: "Kind of doctor to consult."},
		}}},
	},
}

var TipsContract = &Contract{
	Name: "health_tips",
	Fields: []Field{
		{Name: "tips", Type: TypeArray, Required: true, Items: &Field{Type: TypeString}},
	},
}

// Validate parses raw provider text against c and decodes it into out.
// Malformed text yields ErrParse; a missing or mistyped required field
// yields ErrValidation. out is written only when both checks pass.
func Validate(c *Contract, raw string, out any) error {
	txt := util.StripCodeFences(strings.TrimSpace(raw))
	if txt == "" {
		return &Error{Kind: ErrParse, Err: fmt.Errorf("%s: empty response", c.Name)}
	}
	doc, err := parseObject(txt)
	if err != nil {
		return &Error{Kind: ErrParse, Err: fmt.Errorf("%s: %w", c.Name, err)}
	}
	if err := checkObject(c.Fields, doc, ""); err != nil {
		return &Error{Kind: ErrValidation, Err: fmt.Errorf("%s: %w", c.Name, err)}
	}
	if err := json.Unmarshal([]byte(txt), out); err != nil {
		return &Error{Kind: ErrParse, Err: fmt.Errorf("%s: %w", c.Name, err)}
	}
	return nil
}

// parseObject decodes txt as a single JSON object, keeping numbers as
// json.Number so integer checks see the literal the model wrote.
func parseObject(txt string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(txt))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}
	if doc == nil {
		return nil, errors.New("response is not a JSON object")
	}
	return doc, nil
}

func checkObject(fields []Field, doc map[string]any, path string) error {
	for _, f := range fields {
		v, ok := doc[f.Name]
		if !ok || v == nil {
			if f.Required {
				return fmt.Errorf("missing field %q", path+f.Name)
			}
			continue
		}
		if err := checkValue(f, v, path+f.Name); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(f Field, v any, path string) error {
	switch f.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("field %q: want string", path)
		}
	case TypeNumber:
		n, ok := v.(json.Number)
		if !ok {
			return fmt.Errorf("field %q: want number", path)
		}
		if _, err := n.Float64(); err != nil {
			return fmt.Errorf("field %q: number out of range", path)
		}
	case TypeInteger:
		// 85.0 and 1e30 are rejected here so the typed decode below
		// cannot fail on a document that passed.
		n, ok := v.(json.Number)
		if !ok {
			return fmt.Errorf("field %q: want integer", path)
		}
		if _, err := n.Int64(); err != nil {
			return fmt.Errorf("field %q: want integer, got %s", path, n)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("field %q: want boolean", path)
		}
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("field %q: want array", path)
		}
		if f.Items == nil {
			return nil
		}
		for i, it := range items {
			if err := checkValue(*f.Items, it, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q: want object", path)
		}
		return checkObject(f.Fields, obj, path+".")
	}
	return nil
}
