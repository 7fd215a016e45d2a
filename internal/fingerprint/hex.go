package fingerprint

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHex is returned by FromHex for a character that is not a
	// hex digit.
	ErrInvalidHex = errors.New("invalid hex digit")

	// ErrHexLength is returned by FromHex when the input is not HexLen
	// characters long.
	ErrHexLength = errors.New("invalid hex hash length")
)

const hexDigits = "0123456789ABCDEF"

// Hex renders the bit vector as HexLen uppercase hex digits, four bits per
// digit with the most significant bit first.
func (f *Fingerprint) Hex() string {
	out := make([]byte, HexLen)
	for i := range out {
		var nibble uint8
		for _, b := range f.bits[4*i : 4*i+4] {
			if b > 1 {
				panic(fmt.Sprintf("fingerprint: bit group %d holds non-binary value %d", i, b))
			}
			nibble = nibble<<1 | b
		}
		out[i] = hexDigits[nibble]
	}
	return string(out)
}

// MarshalText implements encoding.TextMarshaler using the hex form.
func (f *Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The result is partial,
// as with FromHex. On error f is left unchanged.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	fp, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*f = *fp
	return nil
}

// FromHex rebuilds a partial fingerprint from its hex form.
//
// Both upper- and lowercase digits are accepted. Only the bit vector is
// restored; the grayscale buffer and thresholds stay zero. On error no
// fingerprint is returned.
func FromHex(s string) (*Fingerprint, error) {
	if len(s) != HexLen {
		return nil, fmt.Errorf("%w: got %d characters, want %d", ErrHexLength, len(s), HexLen)
	}

	fp := &Fingerprint{partial: true}
	for i := 0; i < HexLen; i++ {
		nibble, ok := hexNibble(s[i])
		if !ok {
			return nil, fmt.Errorf("%w %q at position %d", ErrInvalidHex, s[i], i)
		}
		for j := 0; j < 4; j++ {
			fp.bits[4*i+j] = (nibble >> (3 - j)) & 1
		}
	}
	return fp, nil
}

// hexNibble decodes a single hex digit.
func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
