package models

import "fmt"

// Credentials is the validated username/password pair produced when the login form is
// submitted. It lives for a single submission.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"-"` // Never serialize to JSON
}

// String keeps the password out of logs and %v formatting
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q}", c.Username)
}

// FieldErrors maps a form field name to its validation message
type FieldErrors map[string]string

// Has reports whether the given field failed validation
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Empty returns true when no field failed validation
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}
