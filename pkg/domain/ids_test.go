package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "willforge/pkg/domain-errors"
)

func TestParseSubmissionID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSubmissionID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseSubmissionID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSubmissionID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseSubmissionID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, SubmissionID(validUUID), id)
	})

	t.Run("rejects hostile input", func(t *testing.T) {
		inputs := []string{
			"'; DROP TABLE submissions;--",
			"../../../etc/passwd",
			"550e8400\x00-e29b-41d4-a716-446655440000",
			strings.Repeat("a", 1000),
			"   ",
		}
		for _, input := range inputs {
			_, err := ParseSubmissionID(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestSubmissionID_JSONRoundTrip(t *testing.T) {
	id := NewSubmissionID()

	raw, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(raw))

	var decoded SubmissionID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, id, decoded)
}

func TestSubmissionID_IsNil(t *testing.T) {
	assert.True(t, SubmissionID{}.IsNil())
	assert.False(t, NewSubmissionID().IsNil())
}

func TestAuditEventID(t *testing.T) {
	id := NewAuditEventID()
	assert.False(t, id.IsNil())

	raw, err := id.MarshalText()
	require.NoError(t, err)

	var decoded AuditEventID
	require.NoError(t, decoded.UnmarshalText(raw))
	assert.Equal(t, id, decoded)
}
