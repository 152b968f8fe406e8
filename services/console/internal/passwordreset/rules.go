package passwordreset

import "unicode/utf8"

// MinPasswordLength is the shortest password the form accepts.
const MinPasswordLength = 8

// MinTokenLength is the length a reset token has to exceed before the form is
// shown. Real validity is only known once the backend sees the token.
const MinTokenLength = 10

type rule struct {
	label string
	check func(password, confirm string) bool
}

var rules = []rule{
	{label: "At least 8 characters", check: longEnough},
	{label: "Passwords match", check: passwordsMatch},
}

func longEnough(password, _ string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

func passwordsMatch(password, confirm string) bool {
	return password != "" && password == confirm
}

func tokenLooksValid(token string) bool {
	return token != "" && len(token) > MinTokenLength
}

// Requirement is one line of the checklist shown next to the form.
type Requirement struct {
	Label string
	Met   bool
}
