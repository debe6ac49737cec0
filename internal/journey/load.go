package journey

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

//go:embed journey.json
var defaultJourney []byte

// SupportedMajor is the table format major version this build understands.
const SupportedMajor = "v1"

// ErrUnsupportedVersion is returned for tables with an unknown major version.
var ErrUnsupportedVersion = errors.New("unsupported journey version")

const schemaURL = "schema://journey.json"

var journeySchema = map[string]any{
	"type":     "object",
	"required": []any{"version", "stages"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"stages": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"stage", "masteryMin", "masteryMax", "questionTypes"},
				"properties": map[string]any{
					"stage":      map[string]any{"type": "integer", "minimum": 1},
					"masteryMin": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"masteryMax": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"questionTypes": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"type", "weight"},
							"properties": map[string]any{
								"type": map[string]any{
									"enum": []any{
										string(Flashcard), string(MultipleChoice), string(Construction), string(Pinyin),
										string(FillInBlank), string(TrueOrFalse), string(Speaking),
									},
								},
								"weight": map[string]any{"type": "number", "minimum": 0},
							},
						},
					},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, not Go literals.
		b, err := json.Marshal(journeySchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(b, &def); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Load parses and validates a journey table.
func Load(data []byte) (*Journey, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse journey: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile journey schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("validate journey: %w", err)
	}

	var j Journey
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("decode journey: %w", err)
	}

	if !semver.IsValid(j.Version) || semver.Major(j.Version) != SupportedMajor {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, j.Version)
	}
	if err := validateStages(j.Stages); err != nil {
		return nil, err
	}
	return &j, nil
}

// validateStages checks that the stages are ordered and cover [0, 1]
// without gaps.
func validateStages(stages []Stage) error {
	var errs []string

	for i, s := range stages {
		if s.MasteryMin > s.MasteryMax {
			errs = append(errs, fmt.Sprintf("stage %d: min %.2f above max %.2f", s.Number, s.MasteryMin, s.MasteryMax))
		}
		if i > 0 && s.MasteryMin > stages[i-1].MasteryMax {
			errs = append(errs, fmt.Sprintf("gap between stage %d and stage %d", stages[i-1].Number, s.Number))
		}
	}
	if len(stages) > 0 {
		if stages[0].MasteryMin > 0 {
			errs = append(errs, "stages do not start at 0")
		}
		if stages[len(stages)-1].MasteryMax < 1 {
			errs = append(errs, "stages do not reach 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid journey: %s", strings.Join(errs, "; "))
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultJ    *Journey
)

// Default returns the built-in journey table. It is parsed once and shared.
func Default() *Journey {
	defaultOnce.Do(func() {
		j, err := Load(defaultJourney)
		if err != nil {
			panic(fmt.Sprintf("built-in journey: %v", err))
		}
		defaultJ = j
	})
	return defaultJ
}
