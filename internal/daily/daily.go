package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic shuffle seed for a date using
// HMAC(salt, YYYY-MM-DD). Every player on the same date and salt gets the
// same deal. The result is never zero; zero means "not seeded" to the
// game engine.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes to int64 for the rand source
	s := int64(binary.BigEndian.Uint64(sum[:8]))
	if s == 0 {
		s = 1
	}
	return s
}
