package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Version is the signing scheme version prefix
	Version = "v0"

	// TimestampHeader carries the sender's unix timestamp
	TimestampHeader = "X-Signature-Timestamp"

	// SignatureHeader carries the signature in the format: v0=<hex>
	SignatureHeader = "X-Signature"

	// Tolerance is the maximum accepted clock skew between the sender's
	// timestamp and the receiver. Deliveries outside the window are
	// rejected to limit replay.
	Tolerance = 5 * time.Minute
)

const (
	ReasonMissingSignature = "missing signature header"
	ReasonMissingTimestamp = "missing timestamp header"
	ReasonBadTimestamp     = "malformed timestamp"
	ReasonStaleTimestamp   = "timestamp outside tolerance"
	ReasonBadVersion       = "unsupported signature version"
	ReasonMismatch         = "signature mismatch"
)

// Error describes why a delivery failed signature verification
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("verifying signature: %s", e.Reason)
}

// Sign computes the signature for a request body at the given
// timestamp. The signed content is: v0:{timestamp}:{body}
func Sign(secret string, timestamp time.Time, body []byte) string {
	base := fmt.Sprintf("%s:%d:%s", Version, timestamp.Unix(), body)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(base))

	return Version + "=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a delivery's signature and timestamp headers against
// the shared secret using constant-time comparison. The timestamp must
// fall within Tolerance of now.
func Verify(secret, signatureHeader, timestampHeader string, body []byte, now time.Time) error {
	if signatureHeader == "" {
		return &Error{Reason: ReasonMissingSignature}
	}
	if timestampHeader == "" {
		return &Error{Reason: ReasonMissingTimestamp}
	}
	if !strings.HasPrefix(signatureHeader, Version+"=") {
		return &Error{Reason: ReasonBadVersion}
	}

	unix, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return &Error{Reason: ReasonBadTimestamp}
	}

	sent := time.Unix(unix, 0)
	skew := now.Sub(sent)
	if skew < 0 {
		skew = -skew
	}
	if skew > Tolerance {
		return &Error{Reason: ReasonStaleTimestamp}
	}

	expected := Sign(secret, sent, body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signatureHeader)) != 1 {
		return &Error{Reason: ReasonMismatch}
	}

	return nil
}
