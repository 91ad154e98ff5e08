// Package password implements the password composition policy applied at
// registration and password-change time.
package password

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

const (
	// MinLength and MaxLength are inclusive bounds, counted in characters.
	MinLength = 6
	MaxLength = 20

	// MaxBytes is the longest input bcrypt accepts.
	MaxBytes = 72

	// Symbols is the set of special characters, at least one of which is required.
	Symbols = "$@#%!&"
)

// Rule identifies a single composition rule.
type Rule string

const (
	RuleTooShort Rule = "too_short"
	RuleTooLong  Rule = "too_long"
	RuleTooBig   Rule = "too_many_bytes"
	RuleDigit    Rule = "digit"
	RuleUpper    Rule = "upper"
	RuleLower    Rule = "lower"
	RuleSymbol   Rule = "symbol"
)

var ruleText = map[Rule]string{
	RuleTooShort: fmt.Sprintf("must be at least %d characters long", MinLength),
	RuleTooLong:  fmt.Sprintf("must be at most %d characters long", MaxLength),
	RuleTooBig:   fmt.Sprintf("must be at most %d bytes long in UTF-8", MaxBytes),
	RuleDigit:    "must contain a digit",
	RuleUpper:    "must contain an upper-case letter",
	RuleLower:    "must contain a lower-case letter",
	RuleSymbol:   "must contain one of " + Symbols,
}

// Describe returns a human readable explanation of the rule.
func (r Rule) Describe() string {
	if s, ok := ruleText[r]; ok {
		return s
	}
	return string(r)
}

// Verdict is the outcome of Evaluate. A verdict with no failed rules is an
// acceptance.
type Verdict struct {
	Failed []Rule
}

// Accepted reports whether every rule held.
func (v Verdict) Accepted() bool { return len(v.Failed) == 0 }

// Err returns nil for an accepted verdict and a *RejectedError otherwise.
func (v Verdict) Err() error {
	if v.Accepted() {
		return nil
	}
	return &RejectedError{Failed: v.Failed}
}

// RejectedError carries the failed rules of a rejected password. It matches
// common.ErrPolicyRejected under errors.Is.
type RejectedError struct {
	Failed []Rule
}

func (e *RejectedError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, r := range e.Failed {
		parts = append(parts, r.Describe())
	}
	return fmt.Sprintf("%s: %s", common.ErrPolicyRejected, strings.Join(parts, "; "))
}

func (e *RejectedError) Unwrap() error { return common.ErrPolicyRejected }

// Evaluate checks password against every rule and reports all that failed.
func Evaluate(password string) Verdict {
	var failed []Rule
	var hasDigit, hasUpper, hasLower, hasSymbol bool

	n := utf8.RuneCountInString(password)
	if n < MinLength {
		failed = append(failed, RuleTooShort)
	}
	if n > MaxLength {
		failed = append(failed, RuleTooLong)
	} else if len(password) > MaxBytes {
		failed = append(failed, RuleTooBig)
	}

	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case strings.ContainsRune(Symbols, r):
			hasSymbol = true
		}
	}

	if !hasDigit {
		failed = append(failed, RuleDigit)
	}
	if !hasUpper {
		failed = append(failed, RuleUpper)
	}
	if !hasLower {
		failed = append(failed, RuleLower)
	}
	if !hasSymbol {
		failed = append(failed, RuleSymbol)
	}

	return Verdict{Failed: failed}
}

// Validate is shorthand for Evaluate(password).Err().
func Validate(password string) error {
	return Evaluate(password).Err()
}
