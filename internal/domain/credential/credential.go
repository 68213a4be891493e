package credential

import (
	"time"
)

// Credentials are the login secrets stored on admin users and students.
// Passwords and OTPs are bcrypt hashes; the reset token is a sha256 hex digest.
type Credentials struct {
	PasswordHash     string     `bson:"password_hash,omitempty"`
	OTPHash          string     `bson:"otp_hash,omitempty"`
	OTPExpiry        *time.Time `bson:"otp_expiry,omitempty"`
	ResetTokenHash   string     `bson:"reset_token_hash,omitempty"`
	ResetTokenExpiry *time.Time `bson:"reset_token_expiry,omitempty"`
}

func (c *Credentials) HasPassword() bool {
	return c != nil && c.PasswordHash != ""
}

// OTPActive reports whether an unexpired OTP is pending.
func (c *Credentials) OTPActive(now time.Time) bool {
	return c != nil && c.OTPHash != "" && c.OTPExpiry != nil && now.Before(*c.OTPExpiry)
}

// ResetActive reports whether an unexpired password reset is pending.
func (c *Credentials) ResetActive(now time.Time) bool {
	return c != nil && c.ResetTokenHash != "" && c.ResetTokenExpiry != nil && now.Before(*c.ResetTokenExpiry)
}

func (c *Credentials) ClearOTP() {
	c.OTPHash = ""
	c.OTPExpiry = nil
}

func (c *Credentials) ClearReset() {
	c.ResetTokenHash = ""
	c.ResetTokenExpiry = nil
}
