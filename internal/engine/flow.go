package engine

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates row identifiers for certificates and user badges.
// Implemented by UUIDv7Generator (production) and testutil.SequenceIDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CodeGenerator produces certificate verification codes.
type CodeGenerator interface {
	Code(issuedAt time.Time) string
}

const (
	codeAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeRandomLen = 8
)

// RandomCodeGenerator produces codes of the form
// CERT-<base36 unix millis>-<8 uppercase base36 characters>.
//
// The random suffix comes from crypto/rand. Uniqueness is still enforced by
// the store; a collision surfaces as a conflict, not a duplicate.
type RandomCodeGenerator struct{}

// Code returns a new verification code stamped with issuedAt.
func (RandomCodeGenerator) Code(issuedAt time.Time) string {
	suffix := make([]byte, codeRandomLen)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return FormatCode(issuedAt, string(suffix))
}

// FormatCode assembles a verification code from its timestamp and suffix.
func FormatCode(issuedAt time.Time, suffix string) string {
	return "CERT-" + strconv.FormatInt(issuedAt.UnixMilli(), 36) + "-" + strings.ToUpper(suffix)
}
