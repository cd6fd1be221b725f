package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	id, err := uuid.Parse(GenerateUUID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())
}

func TestGenerateJobID(t *testing.T) {
	a, b := GenerateJobID(), GenerateJobID()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "job_"))
	assert.Len(t, a, len("job_")+32)
}

func TestGenerateShortID(t *testing.T) {
	assert.Len(t, GenerateShortID(), 8)
}
