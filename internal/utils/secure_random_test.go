package utils

import (
	"bytes"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^(VER|RET)-\d{8}-[A-Z0-9]{6}$`)

func TestGenerateSecureCode(t *testing.T) {
	code, err := GenerateSecureCode(ReferenceCodeLength)
	require.NoError(t, err)
	assert.Len(t, code, ReferenceCodeLength)
	assert.Regexp(t, `^[A-Z0-9]+$`, code)

	_, err = GenerateSecureCode(0)
	assert.Error(t, err)
}

func TestGenerateCode_SkipsBiasedBytes(t *testing.T) {
	// 255 and 252 are above the unbiased range and must be discarded.
	src := bytes.NewReader([]byte{255, 252, 0, 1, 25, 26, 35, 36, 0, 0, 0, 0})
	code, err := generateCode(src, 6)
	require.NoError(t, err)
	assert.Equal(t, "ABZ09A", code)
}

func TestGenerateCode_ShortSource(t *testing.T) {
	_, err := generateCode(bytes.NewReader([]byte{1, 2}), 6)
	assert.Error(t, err)
}

func TestNewReferenceCandidate_Format(t *testing.T) {
	day := time.Date(2025, 3, 7, 15, 0, 0, 0, time.UTC)

	ref, err := NewReferenceCandidate("VER", day)
	require.NoError(t, err)
	assert.Regexp(t, referencePattern, ref)
	assert.Contains(t, ref, "-20250307-")

	assert.Equal(t, "RET-20250307-ABC123", FormatReference("RET", day, "ABC123"))
}

func TestNewReferenceCandidate_ConcurrentDraws(t *testing.T) {
	const workers, perWorker = 8, 50
	day := time.Now().UTC()

	var mu sync.Mutex
	refs := make([]string, 0, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ref, err := NewReferenceCandidate("RET", day)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				refs = append(refs, ref)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, refs, workers*perWorker)
	for _, ref := range refs {
		assert.Regexp(t, referencePattern, ref)
	}
}
