package otp

import (
	"fmt"
	"unicode"
)

const codeLength = 6

// ValidateCode checks a one-time password code locally: exactly 6 digits.
// Every flow that submits a code (login step-up, enable, disable) runs this
// before any network call.
func ValidateCode(code string) error {
	if len(code) != codeLength {
		return fmt.Errorf("code must be exactly %d digits", codeLength)
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("code must contain only digits")
		}
	}
	return nil
}
