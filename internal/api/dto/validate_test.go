package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidate_CreateNoteRequest(t *testing.T) {
	tests := []struct {
		name     string
		req      CreateNoteRequest
		messages []string
	}{
		{
			name: "valid",
			req:  CreateNoteRequest{Title: strPtr("Nota"), Body: strPtr("texto")},
		},
		{
			name: "empty body is allowed",
			req:  CreateNoteRequest{Title: strPtr("Nota"), Body: strPtr("")},
		},
		{
			name:     "missing title",
			req:      CreateNoteRequest{Body: strPtr("texto")},
			messages: []string{"El título es obligatorio"},
		},
		{
			name:     "short title",
			req:      CreateNoteRequest{Title: strPtr("ab"), Body: strPtr("texto")},
			messages: []string{"El título debe tener al menos 3 caracteres"},
		},
		{
			name:     "missing both",
			req:      CreateNoteRequest{},
			messages: []string{"El título es obligatorio", "body should not be empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.messages == nil {
				require.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.messages, verr.Messages())
		})
	}
}

func TestValidate_UpdateNoteRequest(t *testing.T) {
	require.NoError(t, Validate(UpdateNoteRequest{}))
	require.NoError(t, Validate(UpdateNoteRequest{Body: strPtr("")}))

	err := Validate(UpdateNoteRequest{Title: strPtr("x")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Violations[0].Field)
}

func TestValidate_DeleteNotesRequest(t *testing.T) {
	require.NoError(t, Validate(DeleteNotesRequest{IDs: []string{"a"}}))
	assert.Error(t, Validate(DeleteNotesRequest{}))
	assert.Error(t, Validate(DeleteNotesRequest{IDs: []string{""}}))
}
