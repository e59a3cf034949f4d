package models

import "time"

// VerificationToken is a single-use, time-limited credential proving control
// of the email address in Identifier.
type VerificationToken struct {
	Identifier string
	Token      string
	Expires    time.Time
}
