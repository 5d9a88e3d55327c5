package ticket_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/ticket"
)

func TestRandomCodeGenerator(t *testing.T) {
	gen := ticket.RandomCodeGenerator{}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		require.NoError(t, ticket.ValidateCode(code))
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "AB12CD", ticket.Normalize("  ab12cd "))
}

func TestValidateCode(t *testing.T) {
	assert.True(t, errors.Is(ticket.ValidateCode("ABC12"), domain.ErrInvalidInput))
	assert.True(t, errors.Is(ticket.ValidateCode("ABC-12"), domain.ErrInvalidInput))
	assert.NoError(t, ticket.ValidateCode("ZZ9900"))
}

func TestExpiresAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, created.Add(24*time.Hour), ticket.ExpiresAt(created, 0))
	assert.Equal(t, created.Add(time.Hour), ticket.ExpiresAt(created, time.Hour))
}
