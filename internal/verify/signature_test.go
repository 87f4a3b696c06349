package verify

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aurafriday/mcplink-update/internal/basen"
)

// testKeys generates a throwaway RSA pair and encodes both halves in the
// exponent|modulus wire form. 512 bits keeps test runs fast; the scheme does
// not depend on key size.
func testKeys(t *testing.T) (pub, priv string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 512)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	codec, err := basen.NewCodec(digestBase, "")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	enc := func(n *big.Int) string {
		s, err := codec.Encode(n)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		return s
	}
	modulus := enc(key.N)
	return enc(big.NewInt(int64(key.E))) + keySeparator + modulus,
		enc(key.D) + keySeparator + modulus
}

// signedPayload builds body followed by a placeholder token and signs it.
func signedPayload(t *testing.T, pub, priv, body string) []byte {
	t.Helper()
	placeholder, err := Placeholder(pub)
	if err != nil {
		t.Fatalf("Placeholder: %v", err)
	}
	signed, err := Sign([]byte(body+placeholder), priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return signed
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	signed := signedPayload(t, pub, priv, "payload bytes that the digest must cover")

	if !Verify(signed, pub) {
		t.Fatal("freshly signed payload did not verify")
	}

	placeholder, err := Placeholder(pub)
	if err != nil {
		t.Fatalf("Placeholder: %v", err)
	}
	if Verify([]byte("payload"+placeholder), pub) {
		t.Fatal("unsigned placeholder payload verified")
	}
}

func TestSignIsDeterministic(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	a := signedPayload(t, pub, priv, "same input")
	b := signedPayload(t, pub, priv, "same input")
	if !bytes.Equal(a, b) {
		t.Fatal("signing the same bytes twice produced different output")
	}
}

func TestTamperOutsideSpan(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	signed := signedPayload(t, pub, priv, "original body")

	tampered := bytes.Replace(signed, []byte("original"), []byte("Original"), 1)
	if bytes.Equal(tampered, signed) {
		t.Fatal("tamper did not change the payload")
	}
	if Verify(tampered, pub) {
		t.Fatal("payload verified after a byte outside the signature changed")
	}
}

func TestTamperInsideSpan(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	signed := signedPayload(t, pub, priv, "body")

	span, _, ok := locateSignature(signed)
	if !ok {
		t.Fatal("signed payload lost its signature token")
	}
	tampered := make([]byte, len(signed))
	copy(tampered, signed)
	// Flip one padding symbol; the token still matches but decodes to a
	// different integer (or fails to decode at all).
	if tampered[span[0]] == '0' {
		tampered[span[0]] = '1'
	} else {
		tampered[span[0]] = '0'
	}
	if Verify(tampered, pub) {
		t.Fatal("payload verified after the signature itself changed")
	}
}

func TestByteOrderMatters(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	signed := signedPayload(t, pub, priv, "ab rest of the body")

	swapped := make([]byte, len(signed))
	copy(swapped, signed)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if Verify(swapped, pub) {
		t.Fatal("payload verified with two bytes transposed")
	}
}

func TestMissingSignature(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	data := []byte("no token anywhere in here")

	if Verify(data, pub) {
		t.Fatal("payload without a signature token verified")
	}
	if err := Check(data, pub); !errors.Is(err, ErrNoSignature) {
		t.Fatalf("Check error: got %v, want %v", err, ErrNoSignature)
	}
	if _, err := Sign(data, priv); !errors.Is(err, ErrNoSignature) {
		t.Fatalf("Sign error: got %v, want %v", err, ErrNoSignature)
	}
}

func TestMalformedKeys(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	signed := signedPayload(t, pub, priv, "body")

	tests := []struct {
		name string
		key  string
	}{
		{name: "no separator", key: "justonechunk"},
		{name: "three parts", key: "a|b|c"},
		{name: "zero modulus", key: "1|0"},
		{name: "undecodable half", key: "1|€€€"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if Verify(signed, tc.key) {
				t.Fatal("payload verified under a malformed key")
			}
			if err := Check(signed, tc.key); !errors.Is(err, ErrMalformedKey) {
				t.Fatalf("Check error: got %v, want %v", err, ErrMalformedKey)
			}
		})
	}
}

func TestWrongKeyRejects(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	otherPub, _ := testKeys(t)
	signed := signedPayload(t, pub, priv, "body")
	if Verify(signed, otherPub) {
		t.Fatal("payload verified under an unrelated key")
	}
}

func TestVerifyFile(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	signed := signedPayload(t, pub, priv, "file body")

	path := filepath.Join(t.TempDir(), "signed.bin")
	if err := os.WriteFile(path, signed, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !VerifyFile(path, pub) {
		t.Fatal("signed file did not verify")
	}
	if VerifyFile(filepath.Join(t.TempDir(), "missing.bin"), pub) {
		t.Fatal("missing file verified")
	}
}

func TestPlaceholderShape(t *testing.T) {
	t.Parallel()

	pub, _ := testKeys(t)
	width, err := SpanWidth(pub)
	if err != nil {
		t.Fatalf("SpanWidth: %v", err)
	}
	if width <= 0 || width%maxSymbolBytes != 0 {
		t.Fatalf("SpanWidth: got %d, want a positive multiple of %d", width, maxSymbolBytes)
	}

	placeholder, err := Placeholder(pub)
	if err != nil {
		t.Fatalf("Placeholder: %v", err)
	}
	span, text, ok := locateSignature([]byte(placeholder))
	if !ok {
		t.Fatalf("placeholder %q does not match the signature token", placeholder)
	}
	if span[1]-span[0] != width {
		t.Fatalf("placeholder span width: got %d, want %d", span[1]-span[0], width)
	}
	if text != strings.Repeat("0", width) {
		t.Fatal("placeholder span is not all zero symbols")
	}
}

func TestProductionKeyParses(t *testing.T) {
	t.Parallel()

	exponent, modulus, err := parseKey(PublicKey)
	if err != nil {
		t.Fatalf("parseKey(PublicKey): %v", err)
	}
	if exponent.Sign() <= 0 || modulus.Sign() <= 0 {
		t.Fatal("compiled-in key decoded to a non-positive half")
	}
}
