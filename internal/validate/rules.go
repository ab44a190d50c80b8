// Package validate decides whether a connection record may pass a
// simulated connection test.
package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Rule names a single check.
type Rule string

// Rules in evaluation order.
const (
	RuleHost        Rule = "host"
	RuleDatabase    Rule = "database"
	RulePort        Rule = "port"
	RuleUsername    Rule = "username"
	RulePassword    Rule = "password"
	RuleEnvironment Rule = "environment"
)

// Messages surfaced on a connection's lastError.
const (
	MsgHost        = "Host is not valid."
	MsgDatabase    = "Database name is not valid."
	MsgPort        = "Port is out of valid range."
	MsgUsername    = "Credentials are not valid: username must be at least 3 characters."
	MsgPassword    = "Credentials are not valid: password must be at least 8 characters and mix upper, lower case letters and digits."
	MsgEnvironment = "Target is not valid for this environment."
)

const (
	minHostLen     = 3
	minDatabaseLen = 2
	minUsernameLen = 3
	minPasswordLen = 8
	maxPort        = 65535

	// blockedHostMarker marks targets that may not be reached from this environment.
	blockedHostMarker = "legacy"
)

// ValidationError reports the first rule a connection failed.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type check struct {
	rule    Rule
	message string
	ok      func(core.Connection) bool
}

var checks = []check{
	{RuleHost, MsgHost, func(c core.Connection) bool {
		return utf8.RuneCountInString(c.Host) >= minHostLen
	}},
	{RuleDatabase, MsgDatabase, func(c core.Connection) bool {
		return utf8.RuneCountInString(c.Database) >= minDatabaseLen
	}},
	{RulePort, MsgPort, func(c core.Connection) bool {
		return c.Port > 0 && c.Port <= maxPort
	}},
	{RuleUsername, MsgUsername, func(c core.Connection) bool {
		return utf8.RuneCountInString(c.Username) >= minUsernameLen
	}},
	{RulePassword, MsgPassword, func(c core.Connection) bool {
		return PasswordStrong(c.Password)
	}},
	{RuleEnvironment, MsgEnvironment, func(c core.Connection) bool {
		return !HostBlocked(c.Host)
	}},
}

// Check evaluates the rules in order and returns the first failure,
// or nil when the connection is acceptable.
func Check(c core.Connection) *ValidationError {
	for _, ch := range checks {
		if !ch.ok(c) {
			return &ValidationError{Rule: ch.rule, Message: ch.message}
		}
	}
	return nil
}

// PasswordStrong reports whether pw has at least 8 characters and mixes
// upper case, lower case and digits.
func PasswordStrong(pw string) bool {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return false
	}

	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// HostBlocked reports whether host names a target excluded from this environment.
func HostBlocked(host string) bool {
	return strings.Contains(strings.ToLower(host), blockedHostMarker)
}
