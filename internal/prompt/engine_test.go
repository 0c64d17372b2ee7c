package prompt

import (
	"testing"

	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultCatalog())
}

func TestEngine_Substitute_ObjectAndListRoundTrip(t *testing.T) {
	e := newTestEngine()

	out, err := e.Substitute("Hello {user.username}, categories: {metadata.categories}", map[string]any{
		"user":     map[string]any{"username": "Alice", "role": "USER"},
		"metadata": map[string]any{"categories": []string{"A", "B"}},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice, categories: A, B", out)
}

func TestEngine_Substitute_IndexedArrayPlaceholders(t *testing.T) {
	e := newTestEngine()

	template := "Q1: {questions[0].text}\nQ2: {questions[1].text}"
	out, err := e.Substitute(template, map[string]any{
		"questions": []map[string]any{
			{"text": "What is your goal?", "type": "TEXT"},
			{"text": "Pick your stack", "type": "MULTIPLE_CHOICE"},
		},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Q1: What is your goal?\nQ2: Pick your stack", out)
}

func TestEngine_Substitute_UnresolvedPlaceholderLeftVerbatim(t *testing.T) {
	e := newTestEngine()

	out, err := e.Substitute("Notes: {context.notes}", map[string]any{
		"user":      map[string]any{"username": "a", "role": "USER"},
		"questions": []map[string]any{},
		"responses": []map[string]any{},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Notes: {context.notes}", out)
}

func TestEngine_ExtractVariables_RejectsUnknownVariable(t *testing.T) {
	e := newTestEngine()

	_, err := e.ExtractVariables("Hello {intruder.name}")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "intruder")
}

func TestEngine_ValidateTemplate_RequiredNestedFieldCoverage(t *testing.T) {
	e := newTestEngine()

	// Referencing user without its role field is rejected.
	_, err := e.ValidateTemplate("Hello {user.username}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role")

	// Full coverage passes.
	vars, err := e.ValidateTemplate("Hello {user.username} ({user.role})")
	require.NoError(t, err)
	assert.Contains(t, vars, "user")
}

func TestEngine_ValidateData_RequiredVariableMissing(t *testing.T) {
	e := newTestEngine()

	vars, err := e.ExtractVariables("Hi {user.username} {user.role}")
	require.NoError(t, err)

	err = e.ValidateData(vars, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

func TestEngine_ValidateData_TypeMismatch(t *testing.T) {
	e := newTestEngine()

	vars, err := e.ExtractVariables("{questions}")
	require.NoError(t, err)

	err = e.ValidateData(vars, map[string]any{"questions": "not an array"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array")
}

func TestEngine_ValidateData_NestedFieldOnEveryArrayElement(t *testing.T) {
	e := newTestEngine()

	vars := Variables{"responses": {"content": {}}}
	err := e.ValidateData(vars, map[string]any{
		"responses": []map[string]any{
			{"content": "ok", "is_valid": true},
			{"is_valid": false},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content")
}

func TestEngine_Substitute_SafeModeValidates(t *testing.T) {
	e := newTestEngine()

	_, err := e.Substitute("Hello {user.username} {user.role}", map[string]any{}, true)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestEngine_FormatValue_Numbers(t *testing.T) {
	e := newTestEngine()

	out, err := e.Substitute("rate: {metadata.completion_rate}", map[string]any{
		"metadata": map[string]any{"completion_rate": float64(80)},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "rate: 80", out)
}
