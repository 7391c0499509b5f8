package security

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptSecret(t *testing.T) {
	masterKey := []byte("test-master-key-32-bytes-long!!!")
	secret := []byte("super-secret-client-credential")

	blob, err := EncryptSecret(secret, masterKey)
	if err != nil {
		t.Fatalf("encrypt secret: %v", err)
	}
	if bytes.Contains(blob, secret) {
		t.Fatal("ciphertext contains plaintext secret")
	}

	got, err := DecryptSecret(blob, masterKey)
	if err != nil {
		t.Fatalf("decrypt secret: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("decrypted = %q, want %q", got, secret)
	}
}

func TestEncryptSecret_UniqueBlobs(t *testing.T) {
	masterKey := []byte("test-master-key")
	secret := []byte("same-secret")

	a, err := EncryptSecret(secret, masterKey)
	if err != nil {
		t.Fatalf("encrypt secret: %v", err)
	}
	b, err := EncryptSecret(secret, masterKey)
	if err != nil {
		t.Fatalf("encrypt secret: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same secret produced identical blobs")
	}
}

func TestDecryptSecret_WrongKey(t *testing.T) {
	blob, err := EncryptSecret([]byte("secret"), []byte("right-key"))
	if err != nil {
		t.Fatalf("encrypt secret: %v", err)
	}

	if _, err := DecryptSecret(blob, []byte("wrong-key")); err == nil {
		t.Fatal("expected error decrypting with wrong key")
	}
}

func TestDecryptSecret_TruncatedBlob(t *testing.T) {
	if _, err := DecryptSecret([]byte("short"), []byte("key")); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}

func TestEncryptSecret_RequiresKey(t *testing.T) {
	if _, err := EncryptSecret([]byte("secret"), nil); err == nil {
		t.Fatal("expected error for empty master key")
	}
}
