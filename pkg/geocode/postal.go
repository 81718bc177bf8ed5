package geocode

import (
	"github.com/rotisserie/eris"
)

// ErrInvalidPostalCode is returned for anything other than exactly six
// digits. No request is made.
var ErrInvalidPostalCode = eris.New("please enter a valid 6-digit postal code")

// ValidatePostalCode checks that s is exactly six ASCII digits.
func ValidatePostalCode(s string) error {
	if len(s) != 6 {
		return ErrInvalidPostalCode
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ErrInvalidPostalCode
		}
	}
	return nil
}
