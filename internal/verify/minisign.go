package verify

import (
	"fmt"

	"github.com/jedisct1/go-minisign"
)

// VerifyMinisign checks a detached minisign signature over content.
// This is a distribution-channel check offered by the CLI; the applier's
// trust decision is the embedded signature alone.
func VerifyMinisign(content []byte, sigPath, pubKeyPath string) error {
	pubKey, err := minisign.NewPublicKeyFromFile(pubKeyPath)
	if err != nil {
		return fmt.Errorf("read minisign pubkey: %w", err)
	}

	sig, err := minisign.NewSignatureFromFile(sigPath)
	if err != nil {
		return fmt.Errorf("read minisign signature: %w", err)
	}

	valid, err := pubKey.Verify(content, sig)
	if err != nil {
		return fmt.Errorf("minisign: verification error: %w", err)
	}
	if !valid {
		return fmt.Errorf("minisign: signature verification failed")
	}

	return nil
}
