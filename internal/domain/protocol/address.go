package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAddress is returned for anything that is not a 6 hex digit Insteon address.
var ErrInvalidAddress = errors.New("invalid device address")

const addressLen = 6

// Address is a normalized Insteon device address, e.g. "151CAC".
type Address string

// ParseAddress accepts "151cac" as well as the dotted "15.1C.AC" form printed on devices.
func ParseAddress(s string) (Address, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), ".", ""))
	if len(norm) != addressLen || !isHex(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return Address(norm), nil
}

func (a Address) String() string {
	return string(a)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'F':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
