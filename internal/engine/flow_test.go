package engine

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waypoint/internal/testutil"
)

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "CERT-m5d4ruo0-ABCD1234", FormatCode(testutil.DefaultStart, "abcd1234"))
}

func TestRandomCodeGenerator_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^CERT-m5d4ruo0-[0-9A-Z]{8}$`)
	gen := RandomCodeGenerator{}

	seen := make(map[string]bool)
	for range 100 {
		code := gen.Code(testutil.DefaultStart)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 95, "suffixes are random")
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	id := gen.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, gen.Generate())
}
