// Package secrets keeps credentials out of logs and checks that required
// settings are present.
package secrets

import "net/url"

// Mask hides a secret for logging, keeping only a short prefix of long ones.
func Mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "***"
	default:
		return secret[:4] + "..."
	}
}

// MaskURL replaces the password of a DSN such as
// postgres://roster:pw@db/roster or redis://:pw@redis:6379/0 with "***".
// Strings that do not parse as URLs with a password are returned as is.
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	if _, ok := u.User.Password(); !ok {
		return rawURL
	}
	u.User = url.UserPassword(u.User.Username(), "***")
	return u.String()
}
