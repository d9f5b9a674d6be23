package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// HMACAuth holds the credentials required for HMAC-authenticated requests
// against the OKX market-data API.
type HMACAuth struct {
	Key        string // API key
	Secret     string // API secret
	Passphrase string // API passphrase
}

// Headers returns the HTTP headers for a signed OKX request at the current
// time. The signature is HMAC-SHA256(secret, timestamp+method+path+body)
// encoded as lowercase hex; the timestamp is millisecond-precision UTC
// ISO-8601 ending in "Z".
//
// Returned header keys:
//   - OK-ACCESS-KEY
//   - OK-ACCESS-SIGN
//   - OK-ACCESS-TIMESTAMP
//   - OK-ACCESS-PASSPHRASE
func (h *HMACAuth) Headers(method, path, body string) map[string]string {
	return h.HeadersAt(method, path, body, time.Now())
}

// HeadersAt is like Headers but lets the caller supply the timestamp
// (useful for deterministic testing).
func (h *HMACAuth) HeadersAt(method, path, body string, at time.Time) map[string]string {
	ts := Timestamp(at)
	sig := Sign(h.Secret, ts, method, path, body)

	return map[string]string{
		"OK-ACCESS-KEY":        h.Key,
		"OK-ACCESS-SIGN":       sig,
		"OK-ACCESS-TIMESTAMP":  ts,
		"OK-ACCESS-PASSPHRASE": h.Passphrase,
	}
}

// Sign computes HMAC-SHA256(secret, timestamp+method+path+body) and returns
// the lowercase hex digest.
func Sign(secret, timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + path + body))
	return hex.EncodeToString(mac.Sum(nil))
}

// Timestamp formats t as millisecond-precision UTC ISO-8601 ending in "Z",
// the form the provider's clock-skew check expects.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}
