// Package bytecode turns user input into code for the vm.
package bytecode

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrInvalidBytecode = errors.New("invalid bytecode")

// ParseHex decodes a hex string into code. Whitespace anywhere is ignored, a
// single leading 0x or 0X is optional and digits may be any case. An odd
// number of digits or a non-hex character is an error.
func ParseHex(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") {
		clean = clean[2:]
	}

	code, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBytecode, err)
	}
	return code, nil
}

// MustParseHex is ParseHex for literals known to be valid.
func MustParseHex(s string) []byte {
	code, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return code
}

func ToHex(code []byte) string {
	return "0x" + hex.EncodeToString(code)
}
