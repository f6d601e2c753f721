package utils

import "regexp"

// #nosec G101 -- False positive - no hardcoded credentials.
const CredentialsInUrlRegexp = `((?:http|https|git)://)[^/@\s]+@`

var credentialsInUrl = regexp.MustCompile(CredentialsInUrlRegexp)

// MaskCredentialsInUrl hides the user-info part of repository URLs before they are logged.
func MaskCredentialsInUrl(line string) string {
	return credentialsInUrl.ReplaceAllString(line, "${1}***@")
}
