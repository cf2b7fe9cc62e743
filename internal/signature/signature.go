package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Compute returns the lowercase hex HMAC-SHA256 of body under secret.
func Compute(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether providedHex is the HMAC-SHA256 of the raw request
// body under secret. A missing signature and an unconfigured secret are
// both plain mismatches; callers cannot distinguish the cases.
func Verify(secret string, body []byte, providedHex string) bool {
	if secret == "" || providedHex == "" {
		return false
	}
	expected := Compute(secret, body)
	// constant-time comparison to prevent timing attacks
	return hmac.Equal([]byte(expected), []byte(providedHex))
}
