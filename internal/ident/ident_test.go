package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsValid(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		id := New()
		require.True(t, Valid(id), "generated id must validate: %s", id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"v4", "513298be-57af-4684-b4e1-94cea393d2d2", true},
		{"upper", "513298BE-57AF-4684-B4E1-94CEA393D2D2", true},
		{"nil", "00000000-0000-0000-0000-000000000000", true},
		{"max", "FFFFFFFF-FFFF-FFFF-FFFF-FFFFFFFFFFFF", true},
		{"empty", "", false},
		{"no_hyphens", "513298be57af4684b4e194cea393d2d2", false},
		{"braces", "{513298be-57af-4684-b4e1-94cea393d2d2}", false},
		{"version_0", "513298be-57af-0684-b4e1-94cea393d2d2", false},
		{"bad_variant", "513298be-57af-4684-04e1-94cea393d2d2", false},
		{"garbage", "not-a-uuid-at-all-not-a-uuid-at-all!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Valid(tt.in))
		})
	}
}

func TestBase58_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, id := range []string{
		"2cbe88ab-7088-430c-a0d4-cf08b518044d",
		"00000000-0000-0000-0000-000000000000",
		"0000ffff-0000-4000-8000-000000000001",
		New(),
	} {
		short, err := ToBase58(id)
		require.NoError(t, err)
		assert.Less(t, len(short), Length)

		back, err := FromBase58(short)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(id), back)
	}
}

func TestBase58_Errors(t *testing.T) {
	t.Parallel()

	_, err := ToBase58("zz")
	assert.Error(t, err)

	_, err = FromBase58("0OIl")
	assert.Error(t, err)
}
