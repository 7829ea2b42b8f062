package serialization

import (
	"crypto/sha256"
	"crypto/subtle"
)

// checksum returns the SHA-256 digest of the payload.
func checksum(payload []byte) [ChecksumSize]byte {
	return sha256.Sum256(payload)
}

// verifyChecksum reports whether the payload matches the expected
// digest.
func verifyChecksum(payload []byte, want []byte) bool {
	got := checksum(payload)
	return subtle.ConstantTimeCompare(got[:], want) == 1
}
