package llm

import "slices"

// ModelCost is USD pricing per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of a request with the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// Model is a model the app knows by name. Distractor generation only needs
// small, cheap models, so the table lists those.
type Model struct {
	Provider string
	Alias    string // short name accepted in config, may be empty
	ID       string
	Cost     ModelCost
}

// knownModels is ordered by provider, then cost.
var knownModels = []Model{
	{ProviderAnthropic, "claude-haiku", "claude-haiku-4-5", ModelCost{1, 5}},
	{ProviderAnthropic, "", "claude-haiku-4-5-20251001", ModelCost{1, 5}},
	{ProviderAnthropic, "claude-sonnet", "claude-sonnet-4-5", ModelCost{3, 15}},
	{ProviderAnthropic, "", "claude-sonnet-4-5-20250929", ModelCost{3, 15}},

	{ProviderOpenAI, "", "gpt-4.1-nano", ModelCost{0.1, 0.4}},
	{ProviderOpenAI, "", "gpt-4o-mini", ModelCost{0.15, 0.6}},
	{ProviderOpenAI, "", "gpt-4.1-mini", ModelCost{0.4, 1.6}},
	{ProviderOpenAI, "", "gpt-5-mini", ModelCost{0.25, 2}},
	{ProviderOpenAI, "", "gpt-4o", ModelCost{2.5, 10}},

	{ProviderGemini, "gemini-flash-lite", "gemini-2.5-flash-lite", ModelCost{0.1, 0.4}},
	{ProviderGemini, "gemini-flash", "gemini-2.5-flash", ModelCost{0.3, 2.5}},
	{ProviderGemini, "gemini-pro", "gemini-2.5-pro", ModelCost{1.25, 10}},
}

// Models returns the known models for a provider, or all of them when
// provider is empty.
func Models(provider string) []Model {
	if provider == "" {
		return slices.Clone(knownModels)
	}
	var out []Model
	for _, m := range knownModels {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
// OpenRouter ids ("vendor/model") are matched on the model part.
func LookupCost(modelID string) *ModelCost {
	for _, id := range []string{modelID, trimVendor(modelID)} {
		for _, m := range knownModels {
			if m.ID == id {
				c := m.Cost
				return &c
			}
		}
	}
	return nil
}

// resolveModel maps a provider's alias to its model ID. Unknown names are
// passed through so any model ID can be configured directly.
func resolveModel(provider, name string) string {
	for _, m := range knownModels {
		if m.Provider == provider && m.Alias != "" && m.Alias == name {
			return m.ID
		}
	}
	return name
}

func trimVendor(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '/' {
			return id[i+1:]
		}
	}
	return id
}
