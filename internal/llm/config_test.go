package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"none", Config{Provider: ProviderNone}, false},
		{"unset", Config{}, false},
		{"mock", Config{Provider: ProviderMock}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"unknown", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateNamesEnvVar(t *testing.T) {
	err := Config{Provider: ProviderGemini}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HANZO_LLM_GEMINI_API_KEY")
}

func TestConfig_Discover(t *testing.T) {
	for _, env := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(env, "")
	}

	_, found := DefaultConfig().Discover()
	assert.False(t, found)

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg, found := DefaultConfig().Discover()
	require.True(t, found)
	assert.Equal(t, ProviderOpenAI, cfg.Provider, "openai is probed before anthropic")
	assert.Equal(t, "sk-oai", cfg.OpenAI.APIKey)

	explicit := DefaultConfig()
	explicit.Provider = ProviderMock
	cfg, found = explicit.Discover()
	assert.True(t, found)
	assert.Equal(t, ProviderMock, cfg.Provider, "configured provider wins")
}

func TestModels(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-5", resolveModel(ProviderAnthropic, "claude-sonnet"))
	assert.Equal(t, "gemini-2.5-flash", resolveModel(ProviderGemini, "gemini-flash"))
	assert.Equal(t, "claude-sonnet", resolveModel(ProviderGemini, "claude-sonnet"), "aliases are per provider")
	assert.Equal(t, "my-finetune", resolveModel(ProviderOpenAI, "my-finetune"))

	for _, m := range Models(ProviderGemini) {
		assert.Equal(t, ProviderGemini, m.Provider)
	}
	assert.Len(t, Models(""), len(knownModels))

	cost := LookupCost("gpt-4o-mini")
	require.NotNil(t, cost)
	assert.InDelta(t, 0.15+0.6, cost.Cost(1_000_000, 1_000_000), 1e-9)

	require.NotNil(t, LookupCost("google/gemini-2.5-flash"))
	assert.Nil(t, LookupCost("unknown-model"))
}
