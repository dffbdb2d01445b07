package util

import (
	"strings"
	"testing"

	"github.com/borrzu/verify-service/internal/domain/secretkey"
)

func TestGenerateSecretKeyLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		key, err := GenerateSecretKey()
		if err != nil {
			t.Fatalf("GenerateSecretKey failed: %v", err)
		}
		if len(key) != secretkey.KeyLength {
			t.Fatalf("expected %d characters, got %d (%q)", secretkey.KeyLength, len(key), key)
		}
		for _, r := range key {
			if !strings.ContainsRune(secretkey.KeyAlphabet, r) {
				t.Fatalf("key %q contains %q, which is outside the alphabet", key, r)
			}
		}
	}
}

func TestGenerateSecretKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateSecretKey()
		if err != nil {
			t.Fatalf("GenerateSecretKey failed: %v", err)
		}
		if seen[key] {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = true
	}
}
