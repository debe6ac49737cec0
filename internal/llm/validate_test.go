package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDistractors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"valid", distractorsJSON, []string{"thank you", "goodbye", "good morning"}, false},
		{"trims and drops blanks", `{"distractors":[" tea ","  ","rice"]}`, []string{"tea", "rice"}, false},
		{"extra fields rejected", `{"distractors":["a"],"note":"x"}`, nil, true},
		{"missing list", `{"options":["a"]}`, nil, true},
		{"empty list", `{"distractors":[]}`, nil, true},
		{"too many", `{"distractors":["1","2","3","4","5","6","7","8","9","10","11"]}`, nil, true},
		{"empty string item", `{"distractors":[""]}`, nil, true},
		{"wrong item type", `{"distractors":[1,2]}`, nil, true},
		{"not json", `distractors: a, b`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDistractors(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateReply(t *testing.T) {
	req := distractorRequest()
	assert.NoError(t, validateReply(ProviderOpenAI, req, json.RawMessage(distractorsJSON)))

	err := validateReply(ProviderOpenAI, req, json.RawMessage(`{"distractors":"tea"}`))
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, InvalidReply, e.Kind)
	assert.Equal(t, ProviderOpenAI, e.Provider)
	assert.Equal(t, PurposeDistractors, e.Purpose)
	assert.Contains(t, e.Error(), "llm distractors request to openai: invalid reply")
}

func TestValidateReply_NoSchema(t *testing.T) {
	assert.NoError(t, validateReply(ProviderMock, Request{}, json.RawMessage(`not json`)))
}

func TestCompile_CachesByName(t *testing.T) {
	s := &Schema{Name: "cached-list", Definition: map[string]any{"type": "array"}}
	first, err := compile(s)
	require.NoError(t, err)
	second, err := compile(s)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestErrorKindOf(t *testing.T) {
	_, ok := KindOf(assert.AnError)
	assert.False(t, ok)

	kind, ok := KindOf(&Error{Kind: Truncated})
	assert.True(t, ok)
	assert.Equal(t, Truncated, kind)
	assert.Equal(t, "truncated at max tokens", kind.String())
}
