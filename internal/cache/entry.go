package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// keyLength is the number of hex characters kept from the SHA256 digest.
const keyLength = 32

// Entry records one generated thumbnail.
type Entry struct {
	// Key identifies the source file version and thumbnail height.
	Key string `json:"key"`

	// Source is the absolute path of the original image.
	Source string `json:"source"`

	// Thumb is the thumbnail's file name inside the thumbnail directory.
	Thumb string `json:"thumb"`

	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is zero for entries that never expire.
	ExpiresAt time.Time `json:"expires_at"`

	TTLSeconds int `json:"ttl_seconds"`
}

// NewEntry creates an entry expiring ttlSeconds from now; 0 never expires.
func NewEntry(key, source, thumb string, ttlSeconds int) *Entry {
	now := time.Now()
	e := &Entry{
		Key:        key,
		Source:     source,
		Thumb:      thumb,
		CreatedAt:  now,
		TTLSeconds: ttlSeconds,
	}
	if ttlSeconds > 0 {
		e.ExpiresAt = now.Add(time.Duration(ttlSeconds) * time.Second)
	}
	return e
}

// IsExpired reports whether the entry's TTL has passed.
func (e *Entry) IsExpired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Age returns the time since the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// Key derives the cache key for a source file version at a thumbnail height.
func Key(source string, size int64, modTime time.Time, height int) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(size, 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(modTime.UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(height)))
	return hex.EncodeToString(h.Sum(nil))[:keyLength]
}

// MarshalJSON writes times as RFC3339 for readable entry files.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type Alias Entry
	expires := ""
	if !e.ExpiresAt.IsZero() {
		expires = e.ExpiresAt.Format(time.RFC3339)
	}
	return json.Marshal(&struct {
		*Alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at,omitempty"`
	}{
		Alias:     (*Alias)(e),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		ExpiresAt: expires,
	})
}

// UnmarshalJSON parses the RFC3339 timestamps written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type Alias Entry
	aux := &struct {
		*Alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if e.CreatedAt, err = time.Parse(time.RFC3339, aux.CreatedAt); err != nil {
		return err
	}
	e.ExpiresAt = time.Time{}
	if aux.ExpiresAt != "" {
		if e.ExpiresAt, err = time.Parse(time.RFC3339, aux.ExpiresAt); err != nil {
			return err
		}
	}
	return nil
}
