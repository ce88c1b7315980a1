package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRUT(t *testing.T) {
	tests := map[string]string{
		"12.345.678-k":   "12345678-K",
		" 12345678-5 ":   "12345678-5",
		"1-9":            "1-9",
		"":               "",
		"9.876.543-k\t ": "9876543-K",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeRUT(in), "input %q", in)
	}
}

func TestNormalizeMail(t *testing.T) {
	assert.Equal(t, "ana@example.cl", NormalizeMail("  Ana@Example.CL "))
}

func TestParseBirth(t *testing.T) {
	got, err := ParseBirth("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseBirth("1990-05-17")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1990-05-17", got.Format(BirthLayout))

	_, err = ParseBirth("17/05/1990")
	assert.ErrorIs(t, err, ErrInvalidBirth)
}

func TestMemoryStore_Uniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := &User{RUT: "1-9", Mail: "a@example.cl", DisplayName: "first", PasswordHash: "h"}
	require.NoError(t, store.Create(ctx, first))

	sameRUT := &User{RUT: "1-9", Mail: "b@example.cl", DisplayName: "second", PasswordHash: "h"}
	assert.ErrorIs(t, store.Create(ctx, sameRUT), ErrDuplicateKey)

	sameMail := &User{RUT: "2-7", Mail: "a@example.cl", PasswordHash: "h"}
	assert.ErrorIs(t, store.Create(ctx, sameMail), ErrDuplicateKey)

	assert.Equal(t, 1, store.Len())

	got, err := store.FindByRUT(ctx, "1-9")
	require.NoError(t, err)
	assert.Equal(t, "first", got.DisplayName)

	store.Delete(first.ID)
	_, err = store.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.FindByRUT(ctx, "1-9")
	assert.ErrorIs(t, err, ErrNotFound)
}
