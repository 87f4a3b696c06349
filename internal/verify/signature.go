// Package verify implements the signature scheme that decides whether an
// update archive is trusted enough to overwrite the program's own files.
//
// The digest is not a generic hash: it is a keyed, order- and
// position-sensitive streaming transform, and its arithmetic is a frozen
// wire protocol shared with the external release signer. Do not reorder or
// simplify the per-byte operations.
package verify

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strings"

	"github.com/aurafriday/mcplink-update/internal/basen"
)

// PublicKey is the production verification key in exponent|modulus form,
// both halves base-256 encoded. It is compiled in and never read from an
// external or user-writable location.
const PublicKey = "j|𝟥ȣоSȜƐꓦᏴԝԛƊᴛꞇyᒿƽEkꙄÞⲞꓳFᎬȣƟτⲟƻƛꓠꓖⅠΝZϨIƋᎠᗷ𝟫ᒿƨⴹⲦꞇhƨϜeЈZƐƱ𝟦Ꮾһßх𝟧4ΗȜΒFɋĵµBոRꓳgPɌЗꓟ𝟧wƟƘⲘPȣznŧВeꞇƻƐ𝕌оDᑕВԛÞΗ𝖠ᒿɌоⲢıΡυꞇ"

// digestSalt seeds the rolling digest accumulator. Decoded through the
// base-256 codec, not interpreted as text.
const digestSalt = "The×second×most×intelligent×dolphins×encrypted×their×squeaks×just×to×confuse×the×mice×monitoring×human×dreams"

const (
	digestBase    = 256
	mixMultiplier = 281
	keySeparator  = "|"

	// maxSymbolBytes bounds the UTF-8 width of an alphabet symbol and sizes
	// the fixed signature span a signer must reserve.
	maxSymbolBytes = 4
)

// signatureToken locates the first quoted signature value in raw bytes.
// Deliberately a pattern match, not an archive or JSON parser: the verifier
// must not depend on a structured-format parser at this trust boundary.
var signatureToken = regexp.MustCompile(`"signature"\s*:\s*"([^"]+)"`)

var (
	ErrNoSignature      = errors.New("no signature field present")
	ErrSignatureInvalid = errors.New("signature invalid")
	ErrMalformedKey     = errors.New("malformed key")
)

// Verify reports whether data carries a valid embedded signature under
// encodedKey. It never fails outward: malformed keys, missing or undecodable
// signatures, and arithmetic errors all report false.
func Verify(data []byte, encodedKey string) bool {
	return Check(data, encodedKey) == nil
}

// VerifyFile is Verify over the contents of path; unreadable files verify
// as false.
func VerifyFile(path, encodedKey string) bool {
	// #nosec G304 -- path chosen by the caller, file is only read
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return Verify(data, encodedKey)
}

// Check is Verify with the failure kind preserved for logging. Callers that
// gate extraction must treat any non-nil error as an invalid signature.
func Check(data []byte, encodedKey string) error {
	exponent, modulus, err := parseKey(encodedKey)
	if err != nil {
		return err
	}
	span, sigText, ok := locateSignature(data)
	if !ok {
		return ErrNoSignature
	}
	digest, err := rollingDigest(data, span, modulus)
	if err != nil {
		return err
	}
	codec, err := basen.NewCodec(digestBase, "")
	if err != nil {
		return err
	}
	sig, err := codec.Decode(sigText)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	decrypted := new(big.Int).Exp(sig, exponent, modulus)
	if decrypted.Cmp(digest) != 0 {
		return ErrSignatureInvalid
	}
	return nil
}

// Sign computes the rolling digest of data, raises it to the private
// exponent, and patches the result into the existing signature span. The
// span is fixed-width: data must already carry a placeholder token (see
// Placeholder), and shorter encodings are left-padded with the zero symbol
// so no byte outside the span moves.
func Sign(data []byte, encodedPrivateKey string) ([]byte, error) {
	exponent, modulus, err := parseKey(encodedPrivateKey)
	if err != nil {
		return nil, err
	}
	span, _, ok := locateSignature(data)
	if !ok {
		return nil, ErrNoSignature
	}
	digest, err := rollingDigest(data, span, modulus)
	if err != nil {
		return nil, err
	}
	sig := new(big.Int).Exp(digest, exponent, modulus)
	codec, err := basen.NewCodec(digestBase, "")
	if err != nil {
		return nil, err
	}
	encoded, err := codec.Encode(sig)
	if err != nil {
		return nil, err
	}
	width := span[1] - span[0]
	zero := string(codec.ZeroSymbol())
	for len(encoded) < width {
		encoded = zero + encoded
	}
	if len(encoded) != width {
		return nil, fmt.Errorf("signature needs %d bytes but span holds %d", len(encoded), width)
	}
	out := make([]byte, len(data))
	copy(out, data)
	copy(out[span[0]:span[1]], encoded)
	return out, nil
}

// SpanWidth returns the placeholder width in bytes a signer must reserve
// for signatures under encodedKey.
func SpanWidth(encodedKey string) (int, error) {
	_, modulus, err := parseKey(encodedKey)
	if err != nil {
		return 0, err
	}
	return maxSymbolBytes * ((modulus.BitLen() + 7) / 8), nil
}

// Placeholder returns the signature token a signer embeds before calling
// Sign, sized for encodedKey.
func Placeholder(encodedKey string) (string, error) {
	width, err := SpanWidth(encodedKey)
	if err != nil {
		return "", err
	}
	return `{"signature":"` + strings.Repeat("0", width) + `"}`, nil
}

// parseKey splits an encoded exponent|modulus pair and decodes both halves.
// The same format carries public and private keys.
func parseKey(encoded string) (exponent, modulus *big.Int, err error) {
	parts := strings.Split(encoded, keySeparator)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("%w: want exponent%smodulus, got %d parts", ErrMalformedKey, keySeparator, len(parts))
	}
	codec, err := basen.NewCodec(digestBase, "")
	if err != nil {
		return nil, nil, err
	}
	exponent, err = codec.Decode(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: exponent: %v", ErrMalformedKey, err)
	}
	modulus, err = codec.Decode(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: modulus: %v", ErrMalformedKey, err)
	}
	if modulus.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: modulus must be positive", ErrMalformedKey)
	}
	return exponent, modulus, nil
}

// locateSignature captures the byte span [start,end) and text of the first
// quoted signature value in data.
func locateSignature(data []byte) (span [2]int, text string, ok bool) {
	m := signatureToken.FindSubmatchIndex(data)
	if m == nil {
		return span, "", false
	}
	span[0], span[1] = m[2], m[3]
	return span, string(data[m[2]:m[3]]), true
}

// rollingDigest folds data into the accumulator byte by byte, skipping the
// signature span entirely. The virtual index counts only folded bytes, so
// the digest is invariant under changes to the span contents.
func rollingDigest(data []byte, span [2]int, modulus *big.Int) (*big.Int, error) {
	codec, err := basen.NewCodec(digestBase, "")
	if err != nil {
		return nil, err
	}
	digest, err := codec.Decode(digestSalt)
	if err != nil {
		return nil, err
	}
	base := big.NewInt(digestBase)
	remainder := new(big.Int)
	scaled := new(big.Int)
	virtualIndex := int64(0)
	for i, b := range data {
		if i >= span[0] && i < span[1] {
			continue
		}
		remainder.Mod(digest, base)
		mixed := (int64(b) ^ remainder.Int64()) + virtualIndex
		scaled.SetInt64(mixed * mixMultiplier)
		digest.Mul(digest, base)
		digest.Add(digest, scaled)
		digest.Mod(digest, modulus)
		virtualIndex++
	}
	return digest, nil
}
