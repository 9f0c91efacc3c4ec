package orders

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// The delivery PIN goes through two hash stages. The web client digests the
// raw PIN with SHA-256 before it ever reaches the generate-otp endpoint, so
// the salted hash in storage protects the digest, not the raw PIN. Verification
// has to replay the same pipeline: digest the presented PIN, then run the
// bcrypt comparison against the stored hash. Changing either stage invalidates
// every PIN already stored.

// otpBcryptCost keeps the comparison deliberately slow without pushing a
// verify round trip past tens of milliseconds.
const otpBcryptCost = 5

// PINLength is the number of digits in a delivery PIN.
const PINLength = 6

// digestHexLength is the length of a lowercase hex SHA-256 digest.
const digestHexLength = 64

// PrehashPIN applies the stage-1 digest: lowercase hex SHA-256 of the raw PIN.
func PrehashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// HashDigest applies the stage-2 salted hash to a stage-1 digest. The result
// is what gets stored in the order's seller-OTP record.
func HashDigest(digest string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(digest), otpBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing otp digest: %w", err)
	}
	return string(hash), nil
}

// CompareDigest reports whether the stage-1 digest matches a stored stage-2
// hash.
func CompareDigest(otpHash, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(otpHash), []byte(digest)) == nil
}

// ValidPIN reports whether s looks like a delivery PIN: exactly six digits.
func ValidPIN(s string) bool {
	if len(s) != PINLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidDigest reports whether s looks like a stage-1 digest: 64 lowercase
// hex characters.
func ValidDigest(s string) bool {
	if len(s) != digestHexLength {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
