package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name  string  `json:"name" validate:"required"`
	Type  string  `json:"type" validate:"required,max=64"`
	Model *string `json:"model"`
}

func TestValidateStructPasses(t *testing.T) {
	model := "growth"
	err := ValidateStruct(&samplePayload{Name: "ibkr", Type: "duckdb", Model: &model})
	require.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&samplePayload{Type: "duckdb"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 1)
	require.Equal(t, "name", failures[0].Field)
	require.Equal(t, "required", failures[0].Tag)
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidateStruct(&samplePayload{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "name failed on required")
	require.Contains(t, err.Error(), "type failed on required")
}
