// Package phone provides phone number validation, E.164 formatting, and
// call identifier derivation.
package phone

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Valid reports whether number contains a plausible quantity of digits.
// Any 10 to 15 digit number passes; separators and a leading + are ignored.
func Valid(number string) bool {
	n := len(digits(number))
	return n >= 10 && n <= 15
}

// Format normalizes number to E.164. Numbers without a leading country
// code digit get the North American "1" prefix: "1234567890" becomes
// "+11234567890".
func Format(number string) string {
	cleaned := digits(number)
	if !strings.HasPrefix(cleaned, "1") {
		cleaned = "1" + cleaned
	}
	return "+" + cleaned
}

// CallID derives a deterministic 32-character hex identifier from a phone
// number and a second-resolution timestamp. Two calls from the same number
// within the same second collide; prefer the provider-issued call SID or
// NewCallID when uniqueness matters.
func CallID(number string, t time.Time) string {
	sum := md5.Sum([]byte(number + t.Format("20060102150405")))
	return hex.EncodeToString(sum[:])
}

// NewCallID returns a random call identifier for calls that arrive without
// a provider-issued SID.
func NewCallID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
