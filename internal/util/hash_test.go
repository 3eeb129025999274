package util

import (
	"testing"
	"time"
)

func TestSHA256Hex(t *testing.T) {
	data := []byte("test data")
	hash := SHA256Hex(data)

	if len(hash) != 64 {
		t.Errorf("Expected hash length 64, got %d", len(hash))
	}

	// Same data should produce same hash
	hash2 := SHA256Hex(data)
	if hash != hash2 {
		t.Errorf("Same data should produce same hash")
	}

	// Different data should produce different hash
	hash3 := SHA256Hex([]byte("different data"))
	if hash == hash3 {
		t.Errorf("Different data should produce different hash")
	}
}

func TestHashRow(t *testing.T) {
	ts := time.Date(2025, 8, 8, 10, 0, 0, 0, time.UTC)
	keys := []string{"trip:445566", "fleet:3101"}

	hash1 := HashRow("production", &ts, keys...)
	hash2 := HashRow("production", &ts, keys...)

	if hash1 != hash2 {
		t.Errorf("Same parameters should produce same hash")
	}

	// Different table should produce different hash
	hash3 := HashRow("potential", &ts, keys...)
	if hash1 == hash3 {
		t.Errorf("Different table should produce different hash")
	}

	// Different timestamp should produce different hash
	ts2 := ts.Add(time.Minute)
	hash4 := HashRow("production", &ts2, keys...)
	if hash1 == hash4 {
		t.Errorf("Different timestamp should produce different hash")
	}

	// Key order should not matter
	hash5 := HashRow("production", &ts, "fleet:3101", "trip:445566")
	if hash1 != hash5 {
		t.Errorf("Key order should not affect hash")
	}

	// Nil timestamp is a valid identity
	hash6 := HashRow("production", nil, keys...)
	if hash6 == hash1 {
		t.Errorf("Nil timestamp should hash differently")
	}
}
