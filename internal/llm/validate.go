package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// PurposeDistractors labels requests for translation distractors.
const PurposeDistractors = "distractors"

// DistractorSchema is the reply shape for distractor requests: a non-empty
// list of short English strings.
var DistractorSchema = &Schema{
	Name:        "translation-distractors",
	Description: "Plausible but wrong English translations for a Chinese word",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"distractors": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": 10,
				"items":    map[string]any{"type": "string", "minLength": 1, "maxLength": 60},
			},
		},
		"required":             []any{"distractors"},
		"additionalProperties": false,
	},
}

// DecodeDistractors validates content against DistractorSchema and returns
// the trimmed, non-blank options in reply order.
func DecodeDistractors(content json.RawMessage) ([]string, error) {
	if err := checkSchema(DistractorSchema, content); err != nil {
		return nil, err
	}
	var reply struct {
		Distractors []string `json:"distractors"`
	}
	if err := json.Unmarshal(content, &reply); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(reply.Distractors))
	for _, d := range reply.Distractors {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out, nil
}

// validateReply checks a provider reply against the request schema.
func validateReply(provider string, req Request, raw json.RawMessage) error {
	if req.Schema == nil {
		return nil
	}
	if err := checkSchema(req.Schema, raw); err != nil {
		e := failure(InvalidReply, provider, req, err)
		e.Content = raw
		return e
	}
	return nil
}

// compiled holds compiled schemas keyed by Schema.Name.
var compiled sync.Map

func checkSchema(schema *Schema, raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("reply is not JSON: %w", err)
	}
	sch, err := compile(schema)
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("reply does not match %s: %w", schema.Name, err)
	}
	return nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(schema.Name); ok {
		return s.(*jsonschema.Schema), nil
	}
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", schema.Name, err)
	}

	url := "hanzo://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", schema.Name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}
	compiled.Store(schema.Name, s)
	return s, nil
}
