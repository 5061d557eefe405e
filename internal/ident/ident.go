// Package ident generates and validates the identifiers used for inodes and
// storage ids, and converts them to and from their short base58 form.
package ident

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// Length of the canonical textual form, e.g. 2cbe88ab-7088-430c-a0d4-cf08b518044d
const Length = 36

const (
	nilID = "00000000-0000-0000-0000-000000000000"
	maxID = "ffffffff-ffff-ffff-ffff-ffffffffffff"
)

// New returns a fresh random (version 4) identifier.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s is a canonical hyphenated RFC 4122 identifier of
// version 1-8, or the nil/max identifiers. Case is ignored.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	lower := strings.ToLower(s)
	if lower == nilID || lower == maxID {
		return true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	v := id.Version()
	return v >= 1 && v <= 8 && id.Variant() == uuid.RFC4122
}

// ToBase58 encodes a canonical identifier into its short base58 form.
func ToBase58(id string) (string, error) {
	raw, err := hex.DecodeString(strings.ReplaceAll(id, "-", ""))
	if err != nil {
		return "", fmt.Errorf("invalid identifier %q: %w", id, err)
	}
	return base58.Encode(raw), nil
}

// FromBase58 decodes a short base58 identifier back into canonical form.
func FromBase58(short string) (string, error) {
	raw, err := base58.Decode(short)
	if err != nil {
		return "", fmt.Errorf("invalid base58 identifier %q: %w", short, err)
	}
	if len(raw) > 16 {
		return "", fmt.Errorf("invalid base58 identifier %q: %d bytes", short, len(raw))
	}
	// left-pad inputs that decode to fewer than 16 bytes
	buf := make([]byte, 16)
	copy(buf[16-len(raw):], raw)
	h := hex.EncodeToString(buf)
	return h[0:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:], nil
}
