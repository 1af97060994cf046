package shortener

import (
	"encoding/binary"
	"math/big"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Base62 character set (0-9, A-Z, a-z) - 62 characters total.
// The ordering is part of the public contract: changing it changes every issued identifier.
const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// MaxLength is the longest short identifier the service issues or accepts
const MaxLength = 7

// tokenBytes is the width of the folded token fed to Encode.
// 2^40 - 1 encodes to at most 7 base62 digits (62^7 > 2^41).
const tokenBytes = 5

var base = big.NewInt(int64(len(base62Chars)))

// Encode converts an opaque token into a base62 identifier.
//
// The token bytes are read as one big-endian unsigned integer which is then
// written out in base62. Leading zero digits are not emitted and the result is
// never padded or truncated. An empty token encodes to an empty string; any
// other token whose value is zero encodes to "0".
func Encode(token string) string {
	if token == "" {
		return ""
	}

	num := new(big.Int).SetBytes([]byte(token))
	if num.Sign() == 0 {
		return string(base62Chars[0])
	}

	result := make([]byte, 0, MaxLength)
	mod := new(big.Int)
	for num.Sign() > 0 {
		num.DivMod(num, base, mod)
		result = append(result, base62Chars[mod.Int64()])
	}

	// Digits were produced least significant first
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}

// NewLongURLID mints the opaque, stable identifier for a newly seen long URL
func NewLongURLID() string {
	return uuid.NewString()
}

// TokenFor folds a long URL id (a 36-character UUID string) into a 5-byte token.
//
// Encoding the UUID text directly would yield ~48 base62 digits, so the id is
// hashed with xxhash64 and the top 40 bits are kept. The fold is deterministic,
// which makes re-shortening the same record idempotent.
func TokenFor(longURLID string) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxhash.Sum64String(longURLID))
	return string(buf[:tokenBytes])
}

// ShortURLID derives the public short identifier for a long URL id
func ShortURLID(longURLID string) string {
	return Encode(TokenFor(longURLID))
}
