package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/joyinliving/academy/core"
)

// password policy
var (
	pwdMinLen     = 8
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceText   = "password must not contain whitespace"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// ValidatePassword enforces the staff password policy against the account's
// own attributes (name, username, email local part).
func ValidatePassword(pwd string, usr User) error {
	fieldErr := func(text string) error {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: text})
	}

	if len(pwd) < pwdMinLen {
		return fieldErr(pwdMinLenText)
	}

	allNum := true
	for _, r := range pwd {
		if unicode.IsSpace(r) {
			return fieldErr(pwdNoSpaceText)
		}
		if !unicode.IsDigit(r) {
			allNum = false
		}
	}
	if allNum {
		return fieldErr(pwdNotAllNumText)
	}

	attrs := []string{usr.Name, usr.Username, usr.Email}
	if at := strings.IndexByte(usr.Email, '@'); at > 0 {
		attrs = append(attrs, usr.Email[:at])
	}
	lowPwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lowPwd, ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return fieldErr(pwdAttrSimText)
		}
	}
	return nil
}
