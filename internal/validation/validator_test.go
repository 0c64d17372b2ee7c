package validation

import (
	"testing"

	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fixedEstimator struct{ n int }

func (f fixedEstimator) EstimateTokens(string) int { return f.n }

func newTestValidator() *Validator {
	return NewValidator(fixedEstimator{n: 10})
}

func TestValidator_Text_LengthBoundaries(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"min_length":5,"max_length":20}`)

	// Exactly min_length passes.
	err := v.Validate(model.QuestionTypeText, datatypes.JSON(`{"text":"abcde"}`), config)
	assert.NoError(t, err)

	// One below min_length fails.
	err = v.Validate(model.QuestionTypeText, datatypes.JSON(`{"text":"abcd"}`), config)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// Above max_length fails.
	err = v.Validate(model.QuestionTypeText, datatypes.JSON(`{"text":"abcdefghijklmnopqrstu"}`), config)
	assert.Error(t, err)
}

func TestValidator_Text_LengthCountsCharactersNotBytes(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"min_length":5,"max_length":5}`)

	// Five characters, seven bytes in UTF-8.
	err := v.Validate(model.QuestionTypeText, datatypes.JSON(`{"text":"héllô"}`), config)
	assert.NoError(t, err)

	// Four characters fails min_length even though the byte count exceeds it.
	err = v.Validate(model.QuestionTypeText, datatypes.JSON(`{"text":"日本語は"}`), config)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "at least 5")
}

func TestValidator_Text_EmptyAndWhitespace(t *testing.T) {
	v := newTestValidator()

	for _, content := range []string{`{"text":""}`, `{"text":"   "}`} {
		err := v.Validate(model.QuestionTypeText, datatypes.JSON(content), nil)
		require.Error(t, err, "content %s should be rejected", content)
		assert.True(t, apperror.IsValidation(err))
	}
}

func TestValidator_Text_TokenLimit(t *testing.T) {
	v := NewValidator(fixedEstimator{n: 5000})
	config := datatypes.JSON(`{"max_tokens":4096}`)

	err := v.Validate(model.QuestionTypeText, datatypes.JSON(`{"text":"long answer"}`), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4096")
}

func TestValidator_MultipleChoice_InvalidOption(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"options":["Go","Rust","Python"],"allow_multiple":true}`)

	err := v.Validate(model.QuestionTypeMultipleChoice, datatypes.JSON(`{"selected":["Go","Haskell"]}`), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Haskell")
}

func TestValidator_MultipleChoice_SingleSelectionRule(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"options":["A","B","C"],"allow_multiple":false}`)

	err := v.Validate(model.QuestionTypeMultipleChoice, datatypes.JSON(`{"selected":["A","B"]}`), config)
	require.Error(t, err)

	err = v.Validate(model.QuestionTypeMultipleChoice, datatypes.JSON(`{"selected":["A"]}`), config)
	assert.NoError(t, err)
}

func TestValidator_MultipleChoice_SelectionBounds(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"options":["A","B","C"],"allow_multiple":true,"min_selections":2,"max_selections":2}`)

	err := v.Validate(model.QuestionTypeMultipleChoice, datatypes.JSON(`{"selected":["A"]}`), config)
	assert.Error(t, err)

	err = v.Validate(model.QuestionTypeMultipleChoice, datatypes.JSON(`{"selected":["A","B","C"]}`), config)
	assert.Error(t, err)

	err = v.Validate(model.QuestionTypeMultipleChoice, datatypes.JSON(`{"selected":["A","C"]}`), config)
	assert.NoError(t, err)
}

func TestValidator_Table_MissingColumnNamesIt(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"columns":[{"name":"skill","data_type":"string"},{"name":"years","data_type":"integer"}]}`)

	err := v.Validate(model.QuestionTypeTable, datatypes.JSON(`{"rows":[{"skill":"Go"}]}`), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "years")
}

func TestValidator_Table_UnexpectedColumnRejected(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"columns":[{"name":"skill","data_type":"string"}]}`)

	err := v.Validate(model.QuestionTypeTable, datatypes.JSON(`{"rows":[{"skill":"Go","extra":1}]}`), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra")
}

func TestValidator_Table_TypeCoercion(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"columns":[{"name":"years","data_type":"integer"}]}`)

	// Numeric strings coerce.
	err := v.Validate(model.QuestionTypeTable, datatypes.JSON(`{"rows":[{"years":"3"}]}`), config)
	assert.NoError(t, err)

	// Fractional values do not coerce to integer.
	err = v.Validate(model.QuestionTypeTable, datatypes.JSON(`{"rows":[{"years":2.5}]}`), config)
	assert.Error(t, err)

	err = v.Validate(model.QuestionTypeTable, datatypes.JSON(`{"rows":[{"years":"many"}]}`), config)
	assert.Error(t, err)
}

func TestValidator_Table_RowBounds(t *testing.T) {
	v := newTestValidator()
	config := datatypes.JSON(`{"columns":[{"name":"skill"}],"min_rows":1,"max_rows":2}`)

	err := v.Validate(model.QuestionTypeTable, datatypes.JSON(`{"rows":[]}`), config)
	assert.Error(t, err)

	err = v.Validate(model.QuestionTypeTable, datatypes.JSON(`{"rows":[{"skill":"a"},{"skill":"b"},{"skill":"c"}]}`), config)
	assert.Error(t, err)
}

func TestValidator_UnsupportedType(t *testing.T) {
	v := newTestValidator()
	err := v.Validate("RATING", datatypes.JSON(`{}`), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
