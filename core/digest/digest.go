// Package digest computes the content digests recorded in book manifests.
// SHA-256 is the primary digest; BLAKE3 is recorded alongside it so
// manifests can be verified with either algorithm.
package digest

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Result contains both digests of one byte string.
type Result struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// SHA256 returns the hex-encoded SHA-256 digest of data.
func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// BLAKE3 returns the hex-encoded BLAKE3 digest of data.
func BLAKE3(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Sum computes both digests of data.
func Sum(data []byte) Result {
	return Result{
		SHA256: SHA256(data),
		BLAKE3: BLAKE3(data),
	}
}

// Verify reports whether data matches every non-empty digest in want.
func Verify(data []byte, want Result) bool {
	if want.SHA256 != "" && SHA256(data) != want.SHA256 {
		return false
	}
	if want.BLAKE3 != "" && BLAKE3(data) != want.BLAKE3 {
		return false
	}
	return true
}
