package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVerifyMinisignMissingKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := VerifyMinisign([]byte("content"), filepath.Join(dir, "a.minisig"), filepath.Join(dir, "missing.pub"))
	if err == nil {
		t.Fatal("expected an error for a missing public key file")
	}
	if !strings.Contains(err.Error(), "pubkey") {
		t.Fatalf("error should mention the pubkey: %v", err)
	}
}

func TestVerifyMinisignMissingSignature(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pubPath := filepath.Join(dir, "key.pub")
	// Structurally valid minisign public key (untrusted comment + base64 body).
	pub := "untrusted comment: minisign public key\nRWQf6LRCGA9i53mlYecO4IzT51TGPpvWucNSCh1CBM0QTaLn73Y7GFO3\n"
	if err := os.WriteFile(pubPath, []byte(pub), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := VerifyMinisign([]byte("content"), filepath.Join(dir, "missing.minisig"), pubPath)
	if err == nil {
		t.Fatal("expected an error for a missing signature file")
	}
	if !strings.Contains(err.Error(), "signature") {
		t.Fatalf("error should mention the signature: %v", err)
	}
}
