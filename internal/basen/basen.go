// Package basen converts arbitrary-precision non-negative integers to and
// from strings over a fixed positional alphabet. Signature and key material
// travel as base-256 strings of this alphabet, so values routinely exceed
// machine-word width.
package basen

import (
	"errors"
	"fmt"
	"math/big"
)

// DefaultAlphabet is the collation alphabet used for key and signature
// encoding. The index of a symbol is its numeral value; symbols past 255 are
// spares for future wider bases.
const DefaultAlphabet = "" +
	"0123456789abcdef" + // 0 .. 15
	"ghijklmnopqrstuv" + // 16 .. 31
	"wxyzABCDEFGHIJKL" + // 32 .. 47
	"MNOPQRSTUVWXYZɅƱ" + // 48 .. 63
	"ΗꓑοƶƳᖴʋꓟ𐓒ԝꓦʈՕЅΒЈ" + // 64 .. 79
	"ѡΟеƿⅠυµıΕꞇ𝟩ⴹꓐꓪǝᴠ" + // 80 .. 95
	"𝟤ꓔÞųƟⲔВᏂ×ƧωƘꓠƏСЕ" + // 96 .. 111
	"ƐᴡꙄᛕꓧꜱ𝛢𝟟ƬƲᴛОƛɊȜр" + // 112 .. 127
	"Ϝ𝟧ƤƊɯᏴօĐսΡᎬꓚ𝟥у𝘈ꓬ" + // 128 .. 143
	"τÐɌɗΑΥƵⲘ𝐴ᎪРᴅᏮᴜνЗ" + // 144 .. 159
	"ѵⅼһƦƽМ𝕌ꓮꙅƴƖⲟⲦꓴᏟᗷ" + // 160 .. 175
	"ҮĸⲢꓗΤƼᗞƎꓰȣʌԛКΝƋո" + // 176 .. 191
	"৭ƙĵҳꓖоАᏎⲞхģᎻ𝟦𝖠Ƞȷ" + // 192 .. 207
	"ďȢӠϹ𝟨ᗅ𝟙ɪց𝟫Ϩꓓ𐐕Ꭰԁ𝟑" + // 208 .. 223
	"μƨ𝟪ꓝɋƌƻⅮΜɡΚ𝟢Нᒿþꓜ" + // 224 .. 239
	"ꓳ𝟣ꓣᴍᗪ𝙰бТŪī𝟛ŧß𝟚ᑕƍ" + // 240 .. 255
	"𐌣øĳƚƾ" // spares

var (
	ErrAlphabetTooShort = errors.New("alphabet too short")
	ErrDuplicateSymbol  = errors.New("duplicate symbol in alphabet")
	ErrInvalidSymbol    = errors.New("symbol not in alphabet")
	ErrNegative         = errors.New("negative values not supported")
)

// Codec performs positional conversion for one (base, alphabet) pair.
// Construction validates the alphabet; a constructed Codec is immutable and
// safe for concurrent use.
type Codec struct {
	base     int
	symToVal map[rune]int
	valToSym []rune
}

// NewCodec builds a codec over the first base symbols of alphabet. An empty
// alphabet selects DefaultAlphabet.
func NewCodec(base int, alphabet string) (*Codec, error) {
	if base < 2 {
		return nil, fmt.Errorf("base must be >= 2 (got %d)", base)
	}
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	symbols := []rune(alphabet)
	if len(symbols) < base {
		return nil, fmt.Errorf("%w: need %d symbols, have %d", ErrAlphabetTooShort, base, len(symbols))
	}
	c := &Codec{
		base:     base,
		symToVal: make(map[rune]int, base),
		valToSym: make([]rune, 0, base),
	}
	for i := 0; i < base; i++ {
		sym := symbols[i]
		if _, seen := c.symToVal[sym]; seen {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, sym)
		}
		c.symToVal[sym] = i
		c.valToSym = append(c.valToSym, sym)
	}
	return c, nil
}

// Base returns the numeric base the codec was constructed with.
func (c *Codec) Base() int { return c.base }

// ZeroSymbol returns the symbol with numeral value zero. It is the encoding
// of zero and the padding symbol for fixed-width signature spans.
func (c *Codec) ZeroSymbol() rune { return c.valToSym[0] }

// Decode converts s back to an integer using Horner's method. Any symbol
// outside the alphabet fails with ErrInvalidSymbol; nothing is substituted
// or truncated. The empty string decodes to zero.
func (c *Codec) Decode(s string) (*big.Int, error) {
	result := new(big.Int)
	base := big.NewInt(int64(c.base))
	digit := new(big.Int)
	for _, sym := range s {
		val, ok := c.symToVal[sym]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, sym)
		}
		result.Mul(result, base)
		result.Add(result, digit.SetInt64(int64(val)))
	}
	return result, nil
}

// Encode converts a non-negative integer to its positional string, most
// significant symbol first.
func (c *Codec) Encode(n *big.Int) (string, error) {
	if n.Sign() < 0 {
		return "", ErrNegative
	}
	if n.Sign() == 0 {
		return string(c.valToSym[0]), nil
	}
	base := big.NewInt(int64(c.base))
	rem := new(big.Int)
	cur := new(big.Int).Set(n)
	var out []rune
	for cur.Sign() > 0 {
		cur.QuoRem(cur, base, rem)
		out = append(out, c.valToSym[rem.Int64()])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}
