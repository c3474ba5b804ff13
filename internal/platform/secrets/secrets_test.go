package secrets

import (
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	stored, err := c.EncryptString("sk-very-secret")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if !strings.HasPrefix(stored, "gcm1:") {
		t.Fatalf("missing envelope prefix: %q", stored)
	}
	if strings.Contains(stored, "sk-very-secret") {
		t.Fatalf("plaintext leaked into envelope")
	}

	if got := c.DecryptString(stored); got != "sk-very-secret" {
		t.Fatalf("decrypt=%q", got)
	}
}

func TestLegacyPlaintextPassthrough(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	if got := c.DecryptString("sk-legacy-unencrypted"); got != "sk-legacy-unencrypted" {
		t.Fatalf("passthrough=%q", got)
	}
}

func TestCorruptEnvelopePassthrough(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	// Not valid base64 after the prefix; must come back untouched.
	if got := c.DecryptString("gcm1:!!!"); got != "gcm1:!!!" {
		t.Fatalf("corrupt passthrough=%q", got)
	}
}

func TestWrongKeyPassthrough(t *testing.T) {
	c1, _ := NewCipher(testKey)
	c2, _ := NewCipher("fedcba9876543210fedcba9876543210")

	stored, err := c1.EncryptString("sk-other")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if got := c2.DecryptString(stored); got != stored {
		t.Fatalf("wrong key should pass envelope through, got %q", got)
	}
}

func TestKeyLength(t *testing.T) {
	if _, err := NewCipher("short"); err == nil {
		t.Fatalf("expected error for short key")
	}
}
