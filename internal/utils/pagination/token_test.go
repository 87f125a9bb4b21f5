package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: standard timestamp
	ts := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(ts, "entry-42")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedTS, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, ts, decodedTS, "Timestamp should match after decode")
	assert.Equal(t, "entry-42", decodedID, "ID should match after decode")

	// Test case 2: non-UTC input is normalised
	local := time.Date(2023, 5, 15, 16, 30, 45, 0, time.FixedZone("CAT", 2*3600))
	decodedTS, _, err = DecodeToken(EncodeToken(local, "x"))
	assert.NoError(t, err)
	assert.True(t, local.Equal(decodedTS), "Instant should survive a round trip")
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	missingSeparator := base64.URLEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, _, err = DecodeToken(missingSeparator)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badTime := base64.URLEncoding.EncodeToString([]byte("notadate|id"))
	_, _, err = DecodeToken(badTime)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp parse")
}

func TestAfter(t *testing.T) {
	cursor := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, After(cursor.Add(-time.Second), "z", cursor, "m"), "older entries come after the cursor")
	assert.False(t, After(cursor.Add(time.Second), "a", cursor, "m"), "newer entries come before the cursor")
	assert.True(t, After(cursor, "a", cursor, "m"), "ties break on id descending")
	assert.False(t, After(cursor, "m", cursor, "m"), "the cursor item itself is excluded")
}
