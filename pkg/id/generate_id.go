package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewApplicationNo returns a public application number: APP-YYYYMMDD-XXXXXXXX.
// The date is the UTC creation day; the suffix is 8 upper-case hex chars.
func NewApplicationNo(now time.Time) string {
	return "APP-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(NewID32()[:8])
}
