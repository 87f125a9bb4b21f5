package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

// ReferenceCodeLength is the length of the random segment of an operation reference.
const ReferenceCodeLength = 6

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxUnbiasedByte is the largest multiple of len(referenceAlphabet) that fits in a byte.
const maxUnbiasedByte = 256 - 256%len(referenceAlphabet)

// GenerateSecureCode returns an uppercase alphanumeric string of the given length drawn from crypto/rand.
func GenerateSecureCode(length int) (string, error) {
	return generateCode(rand.Reader, length)
}

func generateCode(src io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	out := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			out = append(out, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// FormatReference builds "<prefix>-<YYYYMMDD>-<code>".
func FormatReference(prefix string, day time.Time, code string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, day.Format("20060102"), code)
}

// NewReferenceCandidate draws a fresh reference for prefix on the given day.
func NewReferenceCandidate(prefix string, day time.Time) (string, error) {
	code, err := GenerateSecureCode(ReferenceCodeLength)
	if err != nil {
		return "", err
	}
	return FormatReference(prefix, day, code), nil
}
